package location

import (
	"fmt"
	"text/tabwriter"

	"liv8/ghlm/internal/app"
	"liv8/ghlm/internal/catalog"

	"github.com/spf13/cobra"
)

func TagsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List contact tags",
		Long: `List the location's contact tags.

Examples:
  ghlm location tags
  ghlm location tags --location 7gQ2xLoc --refresh`,
		RunE:         runTags,
		SilenceUsage: true,
	}

	cmd.Flags().String("location", "", "Location to query (defaults to configured location)")
	cmd.Flags().Bool("refresh", false, "Drop cached results before querying")

	return cmd
}

func runTags(cmd *cobra.Command, args []string) error {
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

	tags, err := svc.Tags(cmd.Context(), locationID)
	if err != nil {
		return err
	}
	if len(tags) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tags found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TAG\tID")
	fmt.Fprintln(w, "---\t--")
	for _, tag := range tags {
		fmt.Fprintf(w, "%s\t%s\n", tag.Name, tag.ID)
	}
	w.Flush()
	return nil
}
