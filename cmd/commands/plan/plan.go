package plan

import "github.com/spf13/cobra"

// NewCommand returns the "plan" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Validate, execute, and review action plans",
		Long: `Work with action plans: JSON documents describing an ordered
sequence of CRM tool calls.

Plans are validated before execution, risky plans ask for confirmation,
and every executed step is written to the local audit log.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(RunCommand())
	cmd.AddCommand(ValidateCommand())
	cmd.AddCommand(RunsCommand())
	cmd.AddCommand(AskCommand())
	cmd.AddCommand(DeployCommand())

	return cmd
}
