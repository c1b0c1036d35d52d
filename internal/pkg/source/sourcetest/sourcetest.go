// Package sourcetest provides an in-memory Source for tests.
package sourcetest

import (
	"context"

	"github.com/bluecarto/geoloader/internal/pkg/model"
	"github.com/bluecarto/geoloader/internal/pkg/source"
	"github.com/bluecarto/geoloader/internal/pkg/utils/errors"
)

// Fake implements source.Source over a feature slice.
type Fake struct {
	path     string
	layer    string
	schema   *model.Schema
	features []model.Feature
	failAt   int
	failErr  error
	iterated bool
	closed   bool
}

func New(path string, schema *model.Schema, features ...model.Feature) *Fake {
	return &Fake{path: path, schema: schema, features: features, failAt: -1}
}

// WithLayer sets the layer name reported by the source.
func (f *Fake) WithLayer(layer string) *Fake {
	f.layer = layer
	return f
}

// FailAt makes the iterator fail before yielding the feature with the index.
func (f *Fake) FailAt(index int, err error) *Fake {
	f.failAt = index
	f.failErr = err
	return f
}

// Closed reports whether Close has been called.
func (f *Fake) Closed() bool {
	return f.closed
}

func (f *Fake) Path() string {
	return f.path
}

func (f *Fake) Layer() string {
	return f.layer
}

func (f *Fake) Schema() *model.Schema {
	return f.schema
}

func (f *Fake) Count() int {
	return len(f.features)
}

func (f *Fake) Classification() model.Classification {
	return f.schema.Classification()
}

func (f *Fake) Features(_ context.Context) (source.Iterator, error) {
	if f.iterated {
		return nil, errors.Errorf(`features of "%s" already consumed`, f.path)
	}
	f.iterated = true
	return &iterator{source: f, index: -1}, nil
}

func (f *Fake) Close() error {
	f.closed = true
	return nil
}

type iterator struct {
	source *Fake
	index  int
	err    error
}

func (it *iterator) Next() bool {
	if it.err != nil {
		return false
	}
	next := it.index + 1
	if next == it.source.failAt && it.source.failErr != nil {
		it.err = it.source.failErr
		return false
	}
	if next >= len(it.source.features) {
		return false
	}
	it.index = next
	return true
}

func (it *iterator) Feature() model.Feature {
	return it.source.features[it.index]
}

func (it *iterator) Err() error {
	return it.err
}
