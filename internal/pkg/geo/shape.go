package geo

import (
	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"

	"github.com/bluecarto/geoloader/internal/pkg/utils/errors"
)

// FromShape converts a shapefile record to an orb geometry.
// A null shape converts to nil without an error.
func FromShape(s shp.Shape) (orb.Geometry, error) {
	switch v := s.(type) {
	case *shp.Null:
		return nil, nil
	case *shp.Point:
		return orb.Point{v.X, v.Y}, nil
	case *shp.PointM:
		return orb.Point{v.X, v.Y}, nil
	case *shp.PointZ:
		return orb.Point{v.X, v.Y}, nil
	case *shp.MultiPoint:
		return toMultiPoint(v.Points), nil
	case *shp.MultiPointM:
		return toMultiPoint(v.Points), nil
	case *shp.MultiPointZ:
		return toMultiPoint(v.Points), nil
	case *shp.PolyLine:
		return toLines(v.Points, v.Parts), nil
	case *shp.PolyLineM:
		return toLines(v.Points, v.Parts), nil
	case *shp.PolyLineZ:
		return toLines(v.Points, v.Parts), nil
	case *shp.Polygon:
		return toPolygons(v.Points, v.Parts), nil
	case *shp.PolygonM:
		return toPolygons(v.Points, v.Parts), nil
	case *shp.PolygonZ:
		return toPolygons(v.Points, v.Parts), nil
	default:
		return nil, errors.Errorf("unsupported shape type %T", s)
	}
}

// ShapeTypeName maps a shapefile geometry type to its common name.
func ShapeTypeName(t shp.ShapeType) string {
	switch t {
	case shp.POINT, shp.POINTM, shp.POINTZ:
		return "Point"
	case shp.POLYLINE, shp.POLYLINEM, shp.POLYLINEZ:
		return "LineString"
	case shp.POLYGON, shp.POLYGONM, shp.POLYGONZ:
		return "Polygon"
	case shp.MULTIPOINT, shp.MULTIPOINTM, shp.MULTIPOINTZ:
		return "MultiPoint"
	case shp.NULL:
		return ""
	default:
		return "Unknown"
	}
}

func toMultiPoint(points []shp.Point) orb.MultiPoint {
	out := make(orb.MultiPoint, 0, len(points))
	for _, p := range points {
		out = append(out, orb.Point{p.X, p.Y})
	}
	return out
}

// splitParts cuts the flat point array at the part offsets.
func splitParts(points []shp.Point, parts []int32) []orb.LineString {
	if len(parts) == 0 {
		parts = []int32{0}
	}
	out := make([]orb.LineString, 0, len(parts))
	for i, start := range parts {
		end := len(points)
		if i+1 < len(parts) {
			end = int(parts[i+1])
		}
		line := make(orb.LineString, 0, end-int(start))
		for _, p := range points[start:end] {
			line = append(line, orb.Point{p.X, p.Y})
		}
		out = append(out, line)
	}
	return out
}

func toLines(points []shp.Point, parts []int32) orb.Geometry {
	lines := splitParts(points, parts)
	if len(lines) == 1 {
		return lines[0]
	}
	return orb.MultiLineString(lines)
}

// toPolygons groups the parts into polygons by ring winding: an outer ring
// is clockwise per the shapefile spec, the counter-clockwise rings that
// follow it are its holes. A leading counter-clockwise ring is kept as an
// outer ring, some writers emit reversed winding.
func toPolygons(points []shp.Point, parts []int32) orb.Geometry {
	var polygons orb.MultiPolygon
	var current orb.Polygon
	for _, line := range splitParts(points, parts) {
		ring := orb.Ring(line)
		if ring.Orientation() == orb.CW || current == nil {
			if current != nil {
				polygons = append(polygons, current)
			}
			current = orb.Polygon{ring}
		} else {
			current = append(current, ring)
		}
	}
	if current != nil {
		polygons = append(polygons, current)
	}
	if len(polygons) == 1 {
		return polygons[0]
	}
	return polygons
}
