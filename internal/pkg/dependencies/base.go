package dependencies

import (
	"io"

	"github.com/jonboulle/clockwork"

	"github.com/bluecarto/geoloader/internal/pkg/cli/options"
	"github.com/bluecarto/geoloader/internal/pkg/env"
	"github.com/bluecarto/geoloader/internal/pkg/log"
	"github.com/bluecarto/geoloader/internal/pkg/telemetry"
)

// base dependencies container implements the Base interface.
type base struct {
	clock   clockwork.Clock
	envs    env.Provider
	logger  log.Logger
	options *options.Options
	stdout  io.Writer
	tel     telemetry.Telemetry
}

func NewBaseDeps(logger log.Logger, tel telemetry.Telemetry, clock clockwork.Clock, envs env.Provider, opts *options.Options, stdout io.Writer) Base {
	return newBaseDeps(logger, tel, clock, envs, opts, stdout)
}

func newBaseDeps(logger log.Logger, tel telemetry.Telemetry, clock clockwork.Clock, envs env.Provider, opts *options.Options, stdout io.Writer) *base {
	return &base{
		clock:   clock,
		envs:    envs,
		logger:  logger,
		options: opts,
		stdout:  stdout,
		tel:     tel,
	}
}

func (v *base) Clock() clockwork.Clock {
	return v.clock
}

func (v *base) Envs() env.Provider {
	return v.envs
}

func (v *base) Logger() log.Logger {
	return v.logger
}

func (v *base) Options() *options.Options {
	return v.options
}

func (v *base) Stdout() io.Writer {
	return v.stdout
}

func (v *base) Telemetry() telemetry.Telemetry {
	return v.tel
}
