// Package warehouse defines the operations the load pipeline needs from the
// analytical warehouse. The bigquery subpackage implements them for Google
// BigQuery, the warehousetest subpackage provides an in-memory fake.
package warehouse

import (
	"context"

	"github.com/bluecarto/geoloader/internal/pkg/model"
)

// Row is one table row keyed by column name, values in their JSON form.
type Row map[string]any

// RowError is a per-row rejection from a streaming insert.
// The row index points into the inserted slice.
type RowError struct {
	Row int
	Err error
}

// Warehouse is the write and admin surface of the target warehouse.
// Implementations must be safe for concurrent use.
type Warehouse interface {
	// EnsureDataset creates the dataset if it does not exist yet.
	EnsureDataset(ctx context.Context, dataset string) error
	// TableExists reports whether the table is visible.
	TableExists(ctx context.Context, id model.TableID) (bool, error)
	// CreateTable creates the table with the given schema.
	CreateTable(ctx context.Context, id model.TableID, schema model.TableSchema) error
	// DeleteTable drops the table, a missing table is not an error.
	DeleteTable(ctx context.Context, id model.TableID) error
	// TableSchema reads the current table schema.
	// It returns TableNotFoundError if the table does not exist.
	TableSchema(ctx context.Context, id model.TableID) (model.TableSchema, error)
	// AddColumns appends new columns to the table schema, existing columns are kept.
	AddColumns(ctx context.Context, id model.TableID, columns []model.Column) error
	// TableRowCount counts the rows the table currently holds.
	TableRowCount(ctx context.Context, id model.TableID) (int64, error)
	// InsertRows streams the rows into the table. Per-row rejections are
	// returned in the first value, the error is set when the whole call failed.
	InsertRows(ctx context.Context, id model.TableID, rows []Row) ([]RowError, error)
	// LoadFromFile appends the content of a newline-delimited JSON file to the table.
	LoadFromFile(ctx context.Context, id model.TableID, path string) error
	// Execute runs an administrative SQL statement and discards the result.
	Execute(ctx context.Context, query string) error
	// Close releases the underlying client.
	Close() error
}
