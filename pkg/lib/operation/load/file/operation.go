// Package file implements the load of one dataset file into a warehouse table.
package file

import (
	"context"

	"github.com/jonboulle/clockwork"

	"github.com/bluecarto/geoloader/internal/pkg/loader"
	"github.com/bluecarto/geoloader/internal/pkg/log"
	"github.com/bluecarto/geoloader/internal/pkg/model"
	"github.com/bluecarto/geoloader/internal/pkg/schema"
	fileSource "github.com/bluecarto/geoloader/internal/pkg/source/file"
	"github.com/bluecarto/geoloader/internal/pkg/telemetry"
	"github.com/bluecarto/geoloader/internal/pkg/validator"
	"github.com/bluecarto/geoloader/internal/pkg/warehouse"
)

type Options struct {
	Path             string `validate:"required"`
	Layer            string
	Table            string `validate:"required,table_id"`
	JobSize          int    `validate:"min=0"`
	StartAt          int    `validate:"min=0"`
	ValidateFeatures bool
	StreamChunkSize  int `validate:"min=0"`
}

type dependencies interface {
	Clock() clockwork.Clock
	Logger() log.Logger
	Telemetry() telemetry.Telemetry
	Warehouse() warehouse.Warehouse
	Ledger() *loader.Ledger
	Loader() *loader.Loader
}

func Run(ctx context.Context, o Options, d dependencies) (result model.LoadJob, err error) {
	ctx, span := d.Telemetry().Tracer().Start(ctx, "geoloader.operation.load.file")
	defer span.End(&err)

	if err := validator.Validate(ctx, o); err != nil {
		return model.LoadJob{}, err
	}
	table, err := model.ParseTableID(o.Table)
	if err != nil {
		return model.LoadJob{}, err
	}

	src, err := fileSource.Open(ctx, d.Logger(), o.Path, o.Layer)
	if err != nil {
		return model.LoadJob{}, err
	}
	defer func() {
		if closeErr := src.Close(); closeErr != nil {
			d.Logger().Warnf(`cannot close source "%s": %s`, o.Path, closeErr)
		}
	}()

	if err := EnsureTable(ctx, d, table, schema.Translate(d.Logger(), src.Schema())); err != nil {
		return model.LoadJob{}, err
	}
	if err := d.Ledger().EnsureTables(ctx); err != nil {
		return model.LoadJob{}, err
	}

	result, err = d.Loader().Run(ctx, src, loader.Job{
		Table:            table,
		JobSize:          o.JobSize,
		StartAt:          o.StartAt,
		ValidateFeatures: o.ValidateFeatures,
		StreamChunkSize:  o.StreamChunkSize,
	})
	if err != nil {
		return result, err
	}

	d.Logger().Infof(`Loaded "%s" into table "%s".`, o.Path, table)
	return result, nil
}

// EnsureTable creates the table from the schema when it does not exist yet
// and waits until it is visible. An existing table is left untouched, its
// live schema is authoritative for the load.
func EnsureTable(ctx context.Context, d dependencies, id model.TableID, tableSchema model.TableSchema) error {
	exists, err := d.Warehouse().TableExists(ctx, id)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := d.Warehouse().EnsureDataset(ctx, id.Dataset); err != nil {
		return err
	}
	if err := d.Warehouse().CreateTable(ctx, id, tableSchema); err != nil {
		return err
	}
	return warehouse.WaitForTable(ctx, d.Clock(), d.Warehouse(), id)
}
