// Package source defines the reading side of the pipeline. Each supported
// format implements Source in its own subpackage, the file subpackage picks
// one by the file extension.
package source

import (
	"context"

	"github.com/bluecarto/geoloader/internal/pkg/model"
)

// Source is one open dataset layer. A source belongs to the job that opened
// it and must be closed on every exit path.
type Source interface {
	// Path identifies the source for logs and the job ledger.
	Path() string
	// Layer is the selected layer, empty for single-layer sources.
	Layer() string
	// Schema describes the layer properties and its geometry type.
	Schema() *model.Schema
	// Count is the number of features in the layer.
	Count() int
	// Classification reports whether the layer is spatial, it is computed
	// once when the source is opened.
	Classification() model.Classification
	// Features opens a one-shot iterator over all features in stable order.
	Features(ctx context.Context) (Iterator, error)
	// Close releases the underlying file or connection.
	Close() error
}

// Iterator yields features one by one:
//
//	for it.Next() {
//		feature := it.Feature()
//		...
//	}
//	if err := it.Err(); err != nil {
//		...
//	}
type Iterator interface {
	// Next advances to the next feature, false means exhausted or failed.
	Next() bool
	// Feature returns the current feature, valid after Next returned true.
	Feature() model.Feature
	// Err returns the first error Next hit, nil after a clean pass.
	Err() error
}
