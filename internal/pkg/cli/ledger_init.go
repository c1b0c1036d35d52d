package cli

import (
	"github.com/spf13/cobra"

	"github.com/bluecarto/geoloader/internal/pkg/model"
	ledgerInit "github.com/bluecarto/geoloader/pkg/lib/operation/ledger/init"
)

const ledgerInitShortDescription = `Create the job ledger tables`

const ledgerInitLongDescription = `Command "ledger init"

Create the job ledger dataset and tables.

Every load job is recorded in the "load_jobs" table and
every quarantined feature in the "load_failures" table.
The load commands create the ledger on demand, this
command provisions it up front, for example in a fresh
project.
`

func ledgerInitCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   `init`,
		Short: ledgerInitShortDescription,
		Long:  ledgerInitLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// There is no target table, the "ledger-dataset" flag is required
			d, err := root.WarehouseDeps(cmd.Context(), model.TableID{})
			if err != nil {
				return err
			}
			defer root.closeWarehouse(d)

			return ledgerInit.Run(cmd.Context(), d)
		},
	}
	return cmd
}
