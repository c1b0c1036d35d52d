package model

import (
	"strings"

	"github.com/keboola/go-utils/pkg/orderedmap"
)

// Classification says whether a dataset carries geometries.
type Classification string

const (
	SpatialDataset    Classification = "spatial"
	NonSpatialDataset Classification = "non-spatial"
)

// Schema describes one source layer: named property descriptors plus an
// optional geometry type. Property descriptors are source type names,
// for example "int:10", "str:80", "float:24.15" or "timestamp".
type Schema struct {
	// Properties maps property name to its source type descriptor, in layer order.
	Properties *orderedmap.OrderedMap `json:"properties"`
	// Geometry is the source geometry type, for example "Polygon", empty for non-spatial layers.
	Geometry string `json:"geometry,omitempty"`
}

// NewSchema creates an empty source schema.
func NewSchema() *Schema {
	return &Schema{Properties: orderedmap.New()}
}

// SetProperty adds or replaces a property descriptor.
func (s *Schema) SetProperty(name, descriptor string) *Schema {
	s.Properties.Set(name, descriptor)
	return s
}

// Property returns the descriptor of the named property.
func (s *Schema) Property(name string) (string, bool) {
	v, found := s.Properties.Get(name)
	if !found {
		return "", false
	}
	return v.(string), true
}

// PropertyNames returns property names in layer order.
func (s *Schema) PropertyNames() []string {
	return s.Properties.Keys()
}

// Classification reports whether the layer is spatial. A layer is spatial
// when it declares a geometry type or carries a geometry typed property,
// database sources expose geometry as a regular column.
func (s *Schema) Classification() Classification {
	if s.Geometry != "" {
		return SpatialDataset
	}
	for _, name := range s.Properties.Keys() {
		if descriptor, _ := s.Property(name); IsSpatialDescriptor(descriptor) {
			return SpatialDataset
		}
	}
	return NonSpatialDataset
}

// IsSpatialDescriptor reports whether the source type descriptor denotes
// a geometry column.
func IsSpatialDescriptor(descriptor string) bool {
	d := strings.ToLower(strings.TrimSpace(descriptor))
	return d == "geometry" || d == "geography" ||
		strings.HasPrefix(d, "geometry(") || strings.HasPrefix(d, "geography(")
}
