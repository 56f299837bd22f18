package plan

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"liv8/ghlm/internal/runstore"

	"github.com/spf13/cobra"
)

func RunsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent plan runs",
		Long: `List recent plan executions stored locally.

Examples:
  ghlm plan runs
  ghlm plan runs --limit 50
  ghlm plan runs -o json`,
		RunE:         runRuns,
		SilenceUsage: true,
	}

	cmd.Flags().Int("limit", 25, "Number of runs to display")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runRuns(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		return fmt.Errorf("limit must be greater than 0")
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = "table"
	}

	repo, err := runstore.Open()
	if err != nil {
		return err
	}
	defer repo.Close()

	runs, err := repo.ListRecent(limit)
	if err != nil {
		return err
	}

	if output == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(runs)
	}
	if output != "table" {
		return fmt.Errorf("unsupported output format %q", output)
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No plan runs found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tLOCATION\tSTATUS\tSTEPS\tRISK\tSUMMARY")
	fmt.Fprintln(w, "----\t--------\t------\t-----\t----\t-------")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\t%s\n",
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			run.LocationID,
			run.Status,
			run.StepsSucceeded,
			run.StepsTotal,
			run.RiskLevel,
			run.PlanSummary,
		)
	}
	w.Flush()
	return nil
}
