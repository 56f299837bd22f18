package plan

import (
	"fmt"
	"os"

	"liv8/ghlm/internal/ghl"
	actionplan "liv8/ghlm/internal/plan"

	"github.com/spf13/cobra"
)

func ValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check an action plan without executing it",
		Long: `Check an action plan file against the plan contract: type, risk
level, step IDs, error policies, and tool names.

Example:
  ghlm plan validate welcome-sequence.json`,
		Args:         cobra.ExactArgs(1),
		RunE:         runValidate,
		SilenceUsage: true,
	}

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	p, err := actionplan.DecodePlan(raw)
	if err != nil {
		return err
	}

	// Schema validation accepts any non-empty tool name; resolving
	// against the catalog catches typos before run time.
	for _, step := range p.Steps {
		if _, err := ghl.Resolve(step.Tool); err != nil {
			return fmt.Errorf("step %q: %w", step.ID, err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Plan is valid: %d steps, risk %s\n", len(p.Steps), p.RiskLevel)
	return nil
}
