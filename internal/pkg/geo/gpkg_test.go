package geo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gpkgBlob(flags byte, envelope []byte, wkb []byte) []byte {
	out := []byte{'G', 'P', 0x00, flags, 0xE6, 0x10, 0x00, 0x00} // srid 4326, little-endian
	out = append(out, envelope...)
	return append(out, wkb...)
}

func TestDecodeGeoPackageBlob(t *testing.T) {
	t.Parallel()

	// No envelope
	g, err := DecodeGeoPackageBlob(gpkgBlob(0x01, nil, pointWKB))
	require.NoError(t, err)
	assert.Equal(t, orb.Point{1, 2}, g)

	// XY envelope, 32 bytes
	g, err = DecodeGeoPackageBlob(gpkgBlob(0x03, make([]byte, 32), pointWKB))
	require.NoError(t, err)
	assert.Equal(t, orb.Point{1, 2}, g)

	// Empty geometry flag
	g, err = DecodeGeoPackageBlob(gpkgBlob(0x21, nil, nil))
	require.NoError(t, err)
	assert.Nil(t, g)
}

func TestDecodeGeoPackageBlob_Invalid(t *testing.T) {
	t.Parallel()

	_, err := DecodeGeoPackageBlob([]byte{'G', 'P'})
	require.Error(t, err)
	assert.Equal(t, "invalid GeoPackage blob: 2 bytes, header needs 8", err.Error())

	_, err = DecodeGeoPackageBlob([]byte{'X', 'X', 0, 0, 0, 0, 0, 0})
	require.Error(t, err)
	assert.Equal(t, `invalid GeoPackage blob: magic is "XX", expected "GP"`, err.Error())

	// Envelope indicator 5 is out of range
	_, err = DecodeGeoPackageBlob(gpkgBlob(0x0B, nil, pointWKB))
	require.Error(t, err)

	// Truncated envelope
	_, err = DecodeGeoPackageBlob(gpkgBlob(0x03, make([]byte, 8), nil))
	require.Error(t, err)
}

func TestGeoPackageSRID(t *testing.T) {
	t.Parallel()

	srid, err := GeoPackageSRID(gpkgBlob(0x01, nil, pointWKB))
	require.NoError(t, err)
	assert.Equal(t, int32(4326), srid)

	// Big-endian header
	blob := []byte{'G', 'P', 0x00, 0x00, 0x00, 0x00, 0x10, 0xE6}
	srid, err = GeoPackageSRID(blob)
	require.NoError(t, err)
	assert.Equal(t, int32(4326), srid)

	_, err = GeoPackageSRID([]byte{'G'})
	require.Error(t, err)
}
