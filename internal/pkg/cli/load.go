package cli

import (
	"github.com/spf13/cobra"
)

const loadShortDescription = `Load a dataset into the warehouse`

func loadCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   `load`,
		Short: loadShortDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		loadFileCommand(root),
		loadDatabaseCommand(root),
	)
	return cmd
}
