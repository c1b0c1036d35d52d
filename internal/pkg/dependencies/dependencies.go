// Package dependencies provides the dependency containers the CLI commands
// and the operations run with.
//
// [Base] holds the services that are always available: logger, telemetry,
// clock, environment and parsed options. [ForWarehouseCommand] adds the
// connected warehouse client and the load pipeline built on it, so commands
// that never touch the warehouse do not pay for the connection.
// [NewMockedDeps] provides the same surface backed by fakes for tests.
package dependencies

import (
	"io"

	"github.com/jonboulle/clockwork"

	"github.com/bluecarto/geoloader/internal/pkg/cli/options"
	"github.com/bluecarto/geoloader/internal/pkg/env"
	"github.com/bluecarto/geoloader/internal/pkg/loader"
	"github.com/bluecarto/geoloader/internal/pkg/log"
	"github.com/bluecarto/geoloader/internal/pkg/telemetry"
	"github.com/bluecarto/geoloader/internal/pkg/warehouse"
)

// Base interface provides the always available CLI dependencies.
type Base interface {
	Clock() clockwork.Clock
	Envs() env.Provider
	Logger() log.Logger
	Options() *options.Options
	Stdout() io.Writer
	Telemetry() telemetry.Telemetry
}

// ForWarehouseCommand interface provides dependencies for commands that talk
// to the warehouse.
type ForWarehouseCommand interface {
	Base
	Warehouse() warehouse.Warehouse
	Ledger() *loader.Ledger
	Loader() *loader.Loader
}
