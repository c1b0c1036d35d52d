package cli

import (
	"github.com/spf13/cobra"
)

const ledgerShortDescription = `Manage the job ledger`

func ledgerCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   `ledger`,
		Short: ledgerShortDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		ledgerInitCommand(root),
	)
	return cmd
}
