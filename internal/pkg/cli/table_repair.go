package cli

import (
	"github.com/spf13/cobra"

	"github.com/bluecarto/geoloader/internal/pkg/model"
	"github.com/bluecarto/geoloader/internal/pkg/schema"
	tableRepair "github.com/bluecarto/geoloader/pkg/lib/operation/table/repair"
)

const tableRepairShortDescription = `Repair the geometries of a table`

const tableRepairLongDescription = `Command "table repair"

Materialize the raw WKB geometries of a table into valid
GEOGRAPHY values, invalid rings and self-intersections
are repaired on the fly.

The database load keeps the raw geometry in the
"original_geometry" column, this command fills the
"geometry" column from it.
`

func tableRepairCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   `repair <table>`,
		Short: tableRepairShortDescription,
		Long:  tableRepairLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := model.ParseTableID(args[0])
			if err != nil {
				return err
			}

			d, err := root.WarehouseDeps(cmd.Context(), table)
			if err != nil {
				return err
			}
			defer root.closeWarehouse(d)

			return tableRepair.Run(cmd.Context(), tableRepair.Options{
				Table:        args[0],
				SourceColumn: root.options.GetString(`source-column`),
				TargetColumn: root.options.GetString(`target-column`),
			}, d)
		},
	}

	cmd.Flags().SortFlags = true
	cmd.Flags().String(`source-column`, schema.RawGeometryColumn, `column with the hex encoded WKB geometries`)
	cmd.Flags().String(`target-column`, schema.GeometryColumn, `column to fill with the repaired geometries`)
	return cmd
}
