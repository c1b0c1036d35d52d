package geo

import (
	"encoding/binary"

	"github.com/paulmach/orb"

	"github.com/bluecarto/geoloader/internal/pkg/utils/errors"
)

const gpkgHeaderLen = 8

// Envelope sizes in bytes by the envelope contents indicator, see the GeoPackage spec.
var gpkgEnvelopeSize = [5]int{0, 32, 48, 48, 64}

// DecodeGeoPackageBlob parses a GeoPackage geometry blob:
// a fixed header, an optional envelope and a standard WKB payload.
// For an empty geometry it returns nil without an error.
func DecodeGeoPackageBlob(data []byte) (orb.Geometry, error) {
	if len(data) < gpkgHeaderLen {
		return nil, errors.Errorf("invalid GeoPackage blob: %d bytes, header needs %d", len(data), gpkgHeaderLen)
	}
	if data[0] != 'G' || data[1] != 'P' {
		return nil, errors.Errorf(`invalid GeoPackage blob: magic is "%s", expected "GP"`, data[0:2])
	}

	flags := data[3]
	if flags&0x20 != 0 {
		// Empty geometry flag
		return nil, nil
	}

	envelope := int((flags >> 1) & 0x07)
	if envelope >= len(gpkgEnvelopeSize) {
		return nil, errors.Errorf("invalid GeoPackage blob: envelope indicator %d out of range", envelope)
	}

	offset := gpkgHeaderLen + gpkgEnvelopeSize[envelope]
	if len(data) < offset {
		return nil, errors.Errorf("invalid GeoPackage blob: %d bytes, envelope needs %d", len(data), offset)
	}

	return DecodeWKB(data[offset:])
}

// GeoPackageSRID reads the spatial reference ID from the blob header.
func GeoPackageSRID(data []byte) (int32, error) {
	if len(data) < gpkgHeaderLen || data[0] != 'G' || data[1] != 'P' {
		return 0, errors.New("invalid GeoPackage blob: missing header")
	}
	if data[3]&0x01 != 0 {
		return int32(binary.LittleEndian.Uint32(data[4:8])), nil
	}
	return int32(binary.BigEndian.Uint32(data[4:8])), nil
}
