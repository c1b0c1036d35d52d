package cli

import (
	"github.com/spf13/cobra"

	"github.com/bluecarto/geoloader/internal/pkg/model"
	tableAddColumns "github.com/bluecarto/geoloader/pkg/lib/operation/table/addcolumns"
)

const tableAddColumnsShortDescription = `Add the missing columns of a dataset file to a table`

const tableAddColumnsLongDescription = `Command "table add-columns"

Compare the schema of a dataset file with the schema of
an existing table and add the missing columns.

Values of the new columns stay NULL, reload the dataset
to fill them.
`

func tableAddColumnsCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   `add-columns <path> <table>`,
		Short: tableAddColumnsShortDescription,
		Long:  tableAddColumnsLongDescription,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := model.ParseTableID(args[1])
			if err != nil {
				return err
			}

			d, err := root.WarehouseDeps(cmd.Context(), table)
			if err != nil {
				return err
			}
			defer root.closeWarehouse(d)

			return tableAddColumns.Run(cmd.Context(), tableAddColumns.Options{
				Path:  args[0],
				Layer: root.options.GetString(`layer`),
				Table: args[1],
			}, d)
		},
	}

	cmd.Flags().SortFlags = true
	cmd.Flags().String(`layer`, ``, `layer of a multi-layer dataset, for example a GeoPackage table`)
	return cmd
}
