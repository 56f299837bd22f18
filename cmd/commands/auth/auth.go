package auth

import (
	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage location connections",
		Long: `Manage OAuth connections to CRM locations.

Use this command group to connect sub-accounts, inspect their session
state, and disconnect them.`,
	}

	cmd.AddCommand(ConnectCommand())
	cmd.AddCommand(StatusCommand())
	cmd.AddCommand(DisconnectCommand())

	return cmd
}
