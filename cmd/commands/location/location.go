package location

import "github.com/spf13/cobra"

// NewCommand returns the "location" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "location",
		Short: "Browse location metadata",
		Long: `Read-only lookups against a connected location: opportunity
pipelines and contact tags. Results are cached locally and refreshed
in the background.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(PipelinesCommand())
	cmd.AddCommand(TagsCommand())

	return cmd
}
