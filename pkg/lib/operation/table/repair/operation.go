// Package repair implements the in-place repair of geometries stored as raw
// hex WKB. Database loads run it to materialize the geography column.
package repair

import (
	"context"
	"fmt"

	"github.com/bluecarto/geoloader/internal/pkg/log"
	"github.com/bluecarto/geoloader/internal/pkg/model"
	"github.com/bluecarto/geoloader/internal/pkg/telemetry"
	"github.com/bluecarto/geoloader/internal/pkg/utils/errors"
	"github.com/bluecarto/geoloader/internal/pkg/validator"
	"github.com/bluecarto/geoloader/internal/pkg/warehouse"
)

type Options struct {
	Table        string `validate:"required,table_id"`
	SourceColumn string `validate:"required"`
	TargetColumn string `validate:"required"`
}

type dependencies interface {
	Logger() log.Logger
	Telemetry() telemetry.Telemetry
	Warehouse() warehouse.Warehouse
}

func Run(ctx context.Context, o Options, d dependencies) (err error) {
	ctx, span := d.Telemetry().Tracer().Start(ctx, "geoloader.operation.table.repair")
	defer span.End(&err)

	if err := validator.Validate(ctx, o); err != nil {
		return err
	}
	table, err := model.ParseTableID(o.Table)
	if err != nil {
		return err
	}

	tableSchema, err := d.Warehouse().TableSchema(ctx, table)
	if err != nil {
		return err
	}
	if _, found := tableSchema.Column(o.SourceColumn); !found {
		return errors.Errorf(`table "%s" has no column "%s"`, table, o.SourceColumn)
	}
	if _, found := tableSchema.Column(o.TargetColumn); !found {
		return errors.Errorf(`table "%s" has no column "%s"`, table, o.TargetColumn)
	}

	// make_valid repairs invalid rings and self-intersections on the fly.
	statement := fmt.Sprintf(
		"UPDATE `%s` SET %s = ST_GEOGFROMWKB(FROM_HEX(%s), make_valid => TRUE) WHERE %s IS NOT NULL",
		table, o.TargetColumn, o.SourceColumn, o.SourceColumn,
	)
	if err := d.Warehouse().Execute(ctx, statement); err != nil {
		return err
	}

	d.Logger().Infof(`Repaired geometries of table "%s".`, table)
	return nil
}
