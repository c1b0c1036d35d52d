package cli

import (
	"github.com/spf13/cobra"

	"github.com/bluecarto/geoloader/internal/pkg/model"
)

const statusShortDescription = `Show the configuration and the job ledger`

func statusCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   `status`,
		Short: statusShortDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			root.logger.Info(root.options.Dump())

			// The ledger can be inspected only when the warehouse is configured
			if root.options.GetString(`project`) == "" || root.options.GetString(`ledger-dataset`) == "" {
				root.logger.Info(`Set the "--project" and "--ledger-dataset" flags to inspect the job ledger.`)
				return nil
			}

			d, err := root.WarehouseDeps(cmd.Context(), model.TableID{})
			if err != nil {
				return err
			}
			defer root.closeWarehouse(d)

			for _, id := range []model.TableID{d.Ledger().JobsTable(), d.Ledger().FailuresTable()} {
				exists, err := d.Warehouse().TableExists(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !exists {
					root.logger.Infof(`Ledger table "%s" is not created yet.`, id)
					continue
				}

				count, err := d.Warehouse().TableRowCount(cmd.Context(), id)
				if err != nil {
					return err
				}
				root.logger.Infof(`Ledger table "%s" has %d rows.`, id, count)
			}
			return nil
		},
	}
	return cmd
}
