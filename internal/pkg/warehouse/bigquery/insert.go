package bigquery

import (
	"context"
	"os"

	bq "cloud.google.com/go/bigquery"
	"github.com/gofrs/uuid/v5"

	"github.com/bluecarto/geoloader/internal/pkg/model"
	"github.com/bluecarto/geoloader/internal/pkg/utils/errors"
	"github.com/bluecarto/geoloader/internal/pkg/warehouse"
)

// row adapts a warehouse row to the streaming insert API.
type row struct {
	values   warehouse.Row
	insertID string
}

func (r row) Save() (map[string]bq.Value, string, error) {
	out := make(map[string]bq.Value, len(r.values))
	for name, value := range r.values {
		out[name] = value
	}
	return out, r.insertID, nil
}

func (w *Warehouse) InsertRows(ctx context.Context, id model.TableID, rows []warehouse.Row) ([]warehouse.RowError, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	savers := make([]bq.ValueSaver, 0, len(rows))
	for _, values := range rows {
		savers = append(savers, row{values: values, insertID: uuid.Must(uuid.NewV4()).String()})
	}

	err := w.table(id).Inserter().Put(ctx, savers)
	if err == nil {
		return nil, nil
	}

	// Partial failure, report rejected rows, the rest has been inserted.
	var multiErr bq.PutMultiError
	if errors.As(err, &multiErr) {
		out := make([]warehouse.RowError, 0, len(multiErr))
		for _, rowErr := range multiErr {
			out = append(out, warehouse.RowError{Row: rowErr.RowIndex, Err: rowErr.Errors})
		}
		return out, nil
	}

	return nil, errors.Wrapf(err, `cannot insert rows into table "%s"`, id)
}

func (w *Warehouse) LoadFromFile(ctx context.Context, id model.TableID, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, `cannot open load file "%s"`, path)
	}
	defer file.Close()

	source := bq.NewReaderSource(file)
	source.SourceFormat = bq.JSON

	loader := w.table(id).LoaderFrom(source)
	loader.WriteDisposition = bq.WriteAppend

	job, err := loader.Run(ctx)
	if err != nil {
		return errors.Wrapf(err, `cannot start load job for table "%s"`, id)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return errors.Wrapf(err, `cannot wait for load job for table "%s"`, id)
	}
	if err := jobError(status); err != nil {
		return errors.PrefixErrorf(err, `load job for table "%s" failed`, id)
	}
	return nil
}
