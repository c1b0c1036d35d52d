package model

import (
	"github.com/keboola/go-utils/pkg/orderedmap"
	"github.com/paulmach/orb"
)

// Feature is one source row: ordered properties plus an optional geometry.
type Feature struct {
	// Index is the zero-based position of the feature in the source layer.
	Index int
	// Properties hold the non-geometry values, in schema order.
	Properties *orderedmap.OrderedMap
	// Geometry is nil for features of non-spatial layers.
	Geometry orb.Geometry
}

// NewFeature creates a feature with empty properties.
func NewFeature(index int) Feature {
	return Feature{Index: index, Properties: orderedmap.New()}
}

// PropertyNames returns the property names in feature order.
func (f Feature) PropertyNames() []string {
	return f.Properties.Keys()
}

// Batch is a bounded, reusable buffer of features for chunked inserts.
type Batch struct {
	capacity int
	features []Feature
}

func NewBatch(capacity int) *Batch {
	return &Batch{capacity: capacity, features: make([]Feature, 0, capacity)}
}

func (b *Batch) Add(f Feature) {
	b.features = append(b.features, f)
}

func (b *Batch) Len() int {
	return len(b.features)
}

func (b *Batch) Empty() bool {
	return len(b.features) == 0
}

func (b *Batch) Full() bool {
	return len(b.features) >= b.capacity
}

// Features returns the buffered features. The slice is valid until the next Clear.
func (b *Batch) Features() []Feature {
	return b.features
}

func (b *Batch) Clear() {
	b.features = b.features[:0]
}
