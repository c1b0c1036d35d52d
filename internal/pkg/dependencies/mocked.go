package dependencies

import (
	"io"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/bluecarto/geoloader/internal/pkg/cli/options"
	"github.com/bluecarto/geoloader/internal/pkg/env"
	"github.com/bluecarto/geoloader/internal/pkg/log"
	"github.com/bluecarto/geoloader/internal/pkg/telemetry"
	"github.com/bluecarto/geoloader/internal/pkg/warehouse/warehousetest"
)

// Mocked interface provides the dependencies backed by fakes for tests.
type Mocked interface {
	ForWarehouseCommand
	DebugLogger() log.DebugLogger
	FakeClock() *clockwork.FakeClock
	FakeWarehouse() *warehousetest.Fake
	TestTelemetry() *telemetry.ForTest
}

// mocked dependencies container implements the Mocked interface.
type mocked struct {
	ForWarehouseCommand
	debugLogger log.DebugLogger
	clock       *clockwork.FakeClock
	wh          *warehousetest.Fake
	tel         *telemetry.ForTest
}

type MockedOption func(*mockedConfig)

type mockedConfig struct {
	ledgerProject string
	ledgerDataset string
}

// WithLedgerLocation moves the ledger tables of the mocked container.
func WithLedgerLocation(project, dataset string) MockedOption {
	return func(c *mockedConfig) {
		c.ledgerProject = project
		c.ledgerDataset = dataset
	}
}

func NewMockedDeps(opts ...MockedOption) Mocked {
	cfg := mockedConfig{ledgerProject: "proj", ledgerDataset: "meta"}
	for _, o := range opts {
		o(&cfg)
	}

	logger := log.NewDebugLogger()
	tel := telemetry.NewForTest()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	wh := warehousetest.New()
	base := newBaseDeps(logger, tel, clock, env.Empty(), options.NewOptions(), io.Discard)

	return &mocked{
		ForWarehouseCommand: NewWarehouseDeps(base, wh, cfg.ledgerProject, cfg.ledgerDataset),
		debugLogger:         logger,
		clock:               clock,
		wh:                  wh,
		tel:                 tel,
	}
}

func (v *mocked) DebugLogger() log.DebugLogger {
	return v.debugLogger
}

func (v *mocked) FakeClock() *clockwork.FakeClock {
	return v.clock
}

func (v *mocked) FakeWarehouse() *warehousetest.Fake {
	return v.wh
}

func (v *mocked) TestTelemetry() *telemetry.ForTest {
	return v.tel
}
