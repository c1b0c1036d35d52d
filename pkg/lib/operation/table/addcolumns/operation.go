// Package addcolumns implements the in-place extension of a table schema by
// the new fields of a dataset file. Existing columns are never altered.
package addcolumns

import (
	"context"

	"github.com/bluecarto/geoloader/internal/pkg/log"
	"github.com/bluecarto/geoloader/internal/pkg/model"
	"github.com/bluecarto/geoloader/internal/pkg/schema"
	fileSource "github.com/bluecarto/geoloader/internal/pkg/source/file"
	"github.com/bluecarto/geoloader/internal/pkg/telemetry"
	"github.com/bluecarto/geoloader/internal/pkg/validator"
	"github.com/bluecarto/geoloader/internal/pkg/warehouse"
)

type Options struct {
	Path  string `validate:"required"`
	Layer string
	Table string `validate:"required,table_id"`
}

type dependencies interface {
	Logger() log.Logger
	Telemetry() telemetry.Telemetry
	Warehouse() warehouse.Warehouse
}

func Run(ctx context.Context, o Options, d dependencies) (err error) {
	ctx, span := d.Telemetry().Tracer().Start(ctx, "geoloader.operation.table.addcolumns")
	defer span.End(&err)

	if err := validator.Validate(ctx, o); err != nil {
		return err
	}
	table, err := model.ParseTableID(o.Table)
	if err != nil {
		return err
	}

	src, err := fileSource.Open(ctx, d.Logger(), o.Path, o.Layer)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := src.Close(); closeErr != nil {
			d.Logger().Warnf(`cannot close source "%s": %s`, o.Path, closeErr)
		}
	}()

	live, err := d.Warehouse().TableSchema(ctx, table)
	if err != nil {
		return err
	}

	var missing []model.Column
	for _, column := range schema.Translate(d.Logger(), src.Schema()).Columns {
		if _, found := live.Column(column.Name); !found {
			missing = append(missing, column)
		}
	}
	if len(missing) == 0 {
		d.Logger().Infof(`Table "%s" already has all columns of "%s".`, table, o.Path)
		return nil
	}

	if err := d.Warehouse().AddColumns(ctx, table, missing); err != nil {
		return err
	}

	d.Logger().Infof(`Updated table "%s" with %d new columns.`, table, len(missing))
	return nil
}
