package cli

import (
	"github.com/spf13/cobra"

	"github.com/bluecarto/geoloader/internal/pkg/model"
	tableUnion "github.com/bluecarto/geoloader/pkg/lib/operation/table/union"
)

const tableUnionShortDescription = `Create a table as the union of other tables`

const tableUnionLongDescription = `Command "table union"

Create a table as the union of two or more tables.

Only the fields shared by all the input tables are kept.
Every output row gets a fresh id and a "source_table"
column with the name of the table it came from.
`

func tableUnionCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   `union <output-table> <table> <table>...`,
		Short: tableUnionShortDescription,
		Long:  tableUnionLongDescription,
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := model.ParseTableID(args[0])
			if err != nil {
				return err
			}

			d, err := root.WarehouseDeps(cmd.Context(), output)
			if err != nil {
				return err
			}
			defer root.closeWarehouse(d)

			return tableUnion.Run(cmd.Context(), tableUnion.Options{
				Tables:    args[1:],
				Output:    args[0],
				Overwrite: root.options.GetBool(`overwrite`),
			}, d)
		},
	}

	cmd.Flags().SortFlags = true
	cmd.Flags().Bool(`overwrite`, false, `replace the output table when it already exists`)
	return cmd
}
