// Package bigquery implements the warehouse interface for Google BigQuery.
package bigquery

import (
	"context"
	"net/http"

	bq "cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/bluecarto/geoloader/internal/pkg/log"
	"github.com/bluecarto/geoloader/internal/pkg/model"
	"github.com/bluecarto/geoloader/internal/pkg/utils/errors"
	"github.com/bluecarto/geoloader/internal/pkg/warehouse"
)

// Config of the BigQuery client.
type Config struct {
	ProjectID       string `json:"projectId" validate:"required"`
	Location        string `json:"location,omitempty"`
	CredentialsFile string `json:"credentialsFile,omitempty"`
}

// Warehouse talks to one BigQuery project.
type Warehouse struct {
	logger   log.Logger
	client   *bq.Client
	location string
}

func NewWarehouse(ctx context.Context, logger log.Logger, cfg Config) (*Warehouse, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := bq.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "cannot create BigQuery client")
	}
	return &Warehouse{logger: logger, client: client, location: cfg.Location}, nil
}

func (w *Warehouse) EnsureDataset(ctx context.Context, dataset string) error {
	ds := w.client.Dataset(dataset)
	_, err := ds.Metadata(ctx)
	if notFound(err) {
		if err := ds.Create(ctx, &bq.DatasetMetadata{Location: w.location}); err != nil {
			return errors.Wrapf(err, `cannot create dataset "%s"`, dataset)
		}
		w.logger.Infof(`Created dataset "%s".`, dataset)
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, `cannot check dataset "%s"`, dataset)
	}
	return nil
}

func (w *Warehouse) TableExists(ctx context.Context, id model.TableID) (bool, error) {
	_, err := w.table(id).Metadata(ctx)
	switch {
	case notFound(err):
		return false, nil
	case err != nil:
		return false, errors.Wrapf(err, `cannot check table "%s"`, id)
	default:
		return true, nil
	}
}

func (w *Warehouse) CreateTable(ctx context.Context, id model.TableID, schema model.TableSchema) error {
	fields, err := toSchema(schema)
	if err != nil {
		return err
	}
	if err := w.table(id).Create(ctx, &bq.TableMetadata{Schema: fields}); err != nil {
		return errors.Wrapf(err, `cannot create table "%s"`, id)
	}
	w.logger.Infof(`Created table "%s".`, id)
	return nil
}

func (w *Warehouse) DeleteTable(ctx context.Context, id model.TableID) error {
	err := w.table(id).Delete(ctx)
	if notFound(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, `cannot delete table "%s"`, id)
	}
	w.logger.Infof(`Deleted table "%s".`, id)
	return nil
}

func (w *Warehouse) TableSchema(ctx context.Context, id model.TableID) (model.TableSchema, error) {
	md, err := w.table(id).Metadata(ctx)
	if notFound(err) {
		return model.TableSchema{}, warehouse.TableNotFoundError{Table: id}
	}
	if err != nil {
		return model.TableSchema{}, errors.Wrapf(err, `cannot read schema of table "%s"`, id)
	}
	return fromSchema(md.Schema), nil
}

func (w *Warehouse) AddColumns(ctx context.Context, id model.TableID, columns []model.Column) error {
	table := w.table(id)
	md, err := table.Metadata(ctx)
	if notFound(err) {
		return warehouse.TableNotFoundError{Table: id}
	}
	if err != nil {
		return errors.Wrapf(err, `cannot read schema of table "%s"`, id)
	}

	fields := md.Schema
	for _, column := range columns {
		field, err := toFieldSchema(column)
		if err != nil {
			return err
		}
		fields = append(fields, field)
	}

	// The ETag makes the update fail instead of overwriting a concurrent change.
	if _, err := table.Update(ctx, bq.TableMetadataToUpdate{Schema: fields}, md.ETag); err != nil {
		return errors.Wrapf(err, `cannot add columns to table "%s"`, id)
	}
	return nil
}

func (w *Warehouse) TableRowCount(ctx context.Context, id model.TableID) (int64, error) {
	md, err := w.table(id).Metadata(ctx)
	if notFound(err) {
		return 0, warehouse.TableNotFoundError{Table: id}
	}
	if err != nil {
		return 0, errors.Wrapf(err, `cannot read row count of table "%s"`, id)
	}
	return int64(md.NumRows), nil
}

func (w *Warehouse) Execute(ctx context.Context, query string) error {
	q := w.client.Query(query)
	q.Location = w.location
	job, err := q.Run(ctx)
	if err != nil {
		return errors.Wrap(err, "cannot run query")
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return errors.Wrap(err, "cannot wait for query")
	}
	return jobError(status)
}

func (w *Warehouse) Close() error {
	return w.client.Close()
}

func (w *Warehouse) table(id model.TableID) *bq.Table {
	if id.Project != "" {
		return w.client.DatasetInProject(id.Project, id.Dataset).Table(id.Table)
	}
	return w.client.Dataset(id.Dataset).Table(id.Table)
}

// jobError folds all errors of a finished job into one.
func jobError(status *bq.JobStatus) error {
	if status.Err() == nil {
		return nil
	}
	out := errors.NewMultiError()
	out.Append(status.Err())
	for _, detail := range status.Errors {
		if detail.Error() != status.Err().Error() {
			out.Append(detail)
		}
	}
	return out.ErrorOrNil()
}

func notFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
