package dependencies

import (
	"github.com/bluecarto/geoloader/internal/pkg/loader"
	"github.com/bluecarto/geoloader/internal/pkg/warehouse"
)

// forWarehouseCommand dependencies container implements the
// ForWarehouseCommand interface.
type forWarehouseCommand struct {
	Base
	wh       warehouse.Warehouse
	ledger   *loader.Ledger
	pipeline *loader.Loader
}

// NewWarehouseDeps wires the load pipeline over a connected warehouse.
// The job ledger lives in the given project and dataset.
func NewWarehouseDeps(d Base, wh warehouse.Warehouse, ledgerProject, ledgerDataset string) ForWarehouseCommand {
	ledger := loader.NewLedger(d.Logger(), wh, ledgerProject, ledgerDataset)
	return &forWarehouseCommand{
		Base:     d,
		wh:       wh,
		ledger:   ledger,
		pipeline: loader.New(d.Logger(), d.Clock(), wh, ledger, d.Stdout()),
	}
}

func (v *forWarehouseCommand) Warehouse() warehouse.Warehouse {
	return v.wh
}

func (v *forWarehouseCommand) Ledger() *loader.Ledger {
	return v.ledger
}

func (v *forWarehouseCommand) Loader() *loader.Loader {
	return v.pipeline
}
