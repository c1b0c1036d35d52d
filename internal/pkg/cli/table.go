package cli

import (
	"github.com/spf13/cobra"
)

const tableShortDescription = `Manage the warehouse tables`

func tableCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   `table`,
		Short: tableShortDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		tableUnionCommand(root),
		tableRepairCommand(root),
		tableAddColumnsCommand(root),
	)
	return cmd
}
