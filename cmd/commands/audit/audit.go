package audit

import "github.com/spf13/cobra"

// NewCommand returns the "audit" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "View and manage the action audit trail",
		Long: "View the local audit trail of executed plan steps and prune old entries.\n\n" +
			"Audit history is stored locally in ~/.config/ghlm/ghlm.db.",
		SilenceUsage: true,
	}

	cmd.AddCommand(ListCommand())
	cmd.AddCommand(PruneCommand())

	return cmd
}
