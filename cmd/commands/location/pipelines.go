package location

import (
	"fmt"
	"text/tabwriter"

	"liv8/ghlm/internal/app"
	"liv8/ghlm/internal/catalog"

	"github.com/spf13/cobra"
)

func PipelinesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipelines",
		Short: "List opportunity pipelines and their stages",
		Long: `List the location's opportunity pipelines with their stage IDs, as
needed by moveOpportunity steps.

Examples:
  ghlm location pipelines
  ghlm location pipelines --location 7gQ2xLoc --refresh`,
		RunE:         runPipelines,
		SilenceUsage: true,
	}

	cmd.Flags().String("location", "", "Location to query (defaults to configured location)")
	cmd.Flags().Bool("refresh", false, "Drop cached results before querying")

	return cmd
}

func runPipelines(cmd *cobra.Command, args []string) error {
	a, err := app.New()
	if err != nil {
		return err
	}

	locationFlag, _ := cmd.Flags().GetString("location")
	locationID, err := a.ResolveLocation(locationFlag)
	if err != nil {
		return err
	}

	svc := catalog.New(catalog.NewDefaultCache(), a.Vault, a.Client)
	if refresh, _ := cmd.Flags().GetBool("refresh"); refresh {
		if err := svc.Refresh(locationID); err != nil {
			return err
		}
	}

	pipelines, err := svc.Pipelines(cmd.Context(), locationID)
	if err != nil {
		return err
	}
	if len(pipelines) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No pipelines found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PIPELINE\tID\tSTAGE\tSTAGE ID")
	fmt.Fprintln(w, "--------\t--\t-----\t--------")
	for _, p := range pipelines {
		if len(p.Stages) == 0 {
			fmt.Fprintf(w, "%s\t%s\t-\t-\n", p.Name, p.ID)
			continue
		}
		for i, stage := range p.Stages {
			name, id := "", ""
			if i == 0 {
				name, id = p.Name, p.ID
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, id, stage.Name, stage.ID)
		}
	}
	w.Flush()
	return nil
}
