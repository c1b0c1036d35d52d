// Package init implements the bootstrap of the job ledger tables.
package init

import (
	"context"

	"github.com/bluecarto/geoloader/internal/pkg/loader"
	"github.com/bluecarto/geoloader/internal/pkg/log"
	"github.com/bluecarto/geoloader/internal/pkg/telemetry"
)

type dependencies interface {
	Logger() log.Logger
	Telemetry() telemetry.Telemetry
	Ledger() *loader.Ledger
}

// Run creates the ledger dataset and tables when they are missing.
// It is safe to run repeatedly, existing tables are kept.
func Run(ctx context.Context, d dependencies) (err error) {
	ctx, span := d.Telemetry().Tracer().Start(ctx, "geoloader.operation.ledger.init")
	defer span.End(&err)

	if err := d.Ledger().EnsureTables(ctx); err != nil {
		return err
	}

	d.Logger().Infof(`Job ledger is ready in dataset "%s".`, d.Ledger().JobsTable().Dataset)
	return nil
}
