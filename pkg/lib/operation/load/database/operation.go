// Package database implements the sync of one Postgres table into the
// warehouse. Rows are streamed, geometries travel as hex WKB in a string
// column and are materialized into the geography column afterwards.
package database

import (
	"context"

	"github.com/jonboulle/clockwork"

	"github.com/bluecarto/geoloader/internal/pkg/loader"
	"github.com/bluecarto/geoloader/internal/pkg/log"
	"github.com/bluecarto/geoloader/internal/pkg/model"
	"github.com/bluecarto/geoloader/internal/pkg/platform"
	"github.com/bluecarto/geoloader/internal/pkg/schema"
	"github.com/bluecarto/geoloader/internal/pkg/source/postgres"
	"github.com/bluecarto/geoloader/internal/pkg/telemetry"
	"github.com/bluecarto/geoloader/internal/pkg/validator"
	"github.com/bluecarto/geoloader/internal/pkg/warehouse"
	fileLoad "github.com/bluecarto/geoloader/pkg/lib/operation/load/file"
	"github.com/bluecarto/geoloader/pkg/lib/operation/table/repair"
)

type Options struct {
	DSN         string `validate:"required"`
	SourceTable string `validate:"required"`
	Table       string `validate:"required,table_id"`
	StartAt     int    `validate:"min=0"`
	ChunkSize   int    `validate:"min=0"`
	ReadyURL    string `validate:"omitempty,url"`
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
	ctx, span := d.Telemetry().Tracer().Start(ctx, "geoloader.operation.load.database")
	defer span.End(&err)

	if err := validator.Validate(ctx, o); err != nil {
		return model.LoadJob{}, err
	}
	table, err := model.ParseTableID(o.Table)
	if err != nil {
		return model.LoadJob{}, err
	}

	// The database may need to wake up from a suspended state first.
	if o.ReadyURL != "" {
		if err := platform.WaitReady(ctx, d.Logger(), d.Clock(), o.ReadyURL); err != nil {
			return model.LoadJob{}, err
		}
	}

	src, err := postgres.Open(ctx, d.Logger(), o.DSN, o.SourceTable)
	if err != nil {
		return model.LoadJob{}, err
	}
	defer func() {
		if closeErr := src.Close(); closeErr != nil {
			d.Logger().Warnf(`cannot close source "%s": %s`, o.SourceTable, closeErr)
		}
	}()

	translated := schema.Translate(d.Logger(), src.Schema())
	spatial := src.Classification() == model.SpatialDataset
	rawColumn := ""
	if spatial {
		translated = schema.WithRawGeometry(translated)
		rawColumn = schema.RawGeometryColumn
	}

	if err := fileLoad.EnsureTable(ctx, d, table, translated); err != nil {
		return model.LoadJob{}, err
	}
	if err := d.Ledger().EnsureTables(ctx); err != nil {
		return model.LoadJob{}, err
	}

	result, err = d.Loader().Run(ctx, src, loader.Job{
		Table:             table,
		StartAt:           o.StartAt,
		StreamChunkSize:   o.ChunkSize,
		RawGeometryColumn: rawColumn,
	})
	if err != nil {
		return result, err
	}

	if spatial {
		if err := repair.Run(ctx, repair.Options{
			Table:        o.Table,
			SourceColumn: schema.RawGeometryColumn,
			TargetColumn: schema.GeometryColumn,
		}, d); err != nil {
			return result, err
		}
	}

	d.Logger().Infof(`Loaded database table "%s" into table "%s".`, o.SourceTable, table)
	return result, nil
}
