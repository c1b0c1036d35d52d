// Package geo converts between the geometry encodings used by the sources
// and the forms the warehouse accepts: WKB for size accounting and raw
// columns, WKT for JSON interchange, GeoPackage blobs and shapefile records
// on the way in.
package geo

import (
	"encoding/hex"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/ewkb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/orb/encoding/wkt"

	"github.com/bluecarto/geoloader/internal/pkg/utils/errors"
)

// EncodeWKB serializes the geometry to little-endian WKB.
func EncodeWKB(g orb.Geometry) ([]byte, error) {
	if g == nil {
		return nil, errors.New("cannot encode WKB: geometry is nil")
	}
	data, err := wkb.Marshal(g)
	if err != nil {
		return nil, errors.Wrap(err, "cannot encode WKB")
	}
	return data, nil
}

// EncodeWKBHex returns the hex form of the WKB encoding,
// as stored in raw geometry columns.
func EncodeWKBHex(g orb.Geometry) (string, error) {
	data, err := EncodeWKB(g)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(data), nil
}

// DecodeWKB parses a WKB payload.
func DecodeWKB(data []byte) (orb.Geometry, error) {
	g, err := wkb.Unmarshal(data)
	if err != nil {
		return nil, errors.Wrap(err, "cannot decode WKB")
	}
	return g, nil
}

// EncodeWKT serializes the geometry to WKT.
func EncodeWKT(g orb.Geometry) string {
	return wkt.MarshalString(g)
}

// DecodeWKT parses a WKT string.
func DecodeWKT(v string) (orb.Geometry, error) {
	g, err := wkt.Unmarshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "cannot decode WKT")
	}
	return g, nil
}

// DecodeEWKBHex parses a hex string of extended WKB, the text form PostGIS
// returns for geometry columns. The embedded SRID is dropped.
func DecodeEWKBHex(v string) (orb.Geometry, error) {
	data, err := hex.DecodeString(v)
	if err != nil {
		return nil, errors.Wrap(err, "cannot decode EWKB hex")
	}
	g, _, err := ewkb.Unmarshal(data)
	if err != nil {
		return nil, errors.Wrap(err, "cannot decode EWKB")
	}
	return g, nil
}
