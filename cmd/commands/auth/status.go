package auth

import (
	"fmt"
	"strings"

	"liv8/ghlm/internal/app"

	"github.com/spf13/cobra"
)

func StatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [locationId]",
		Short: "Show connection status for a location",
		Long: `Show whether a location has a usable stored session.

Without an argument the configured default location is checked.

Example:
  ghlm auth status 7gQ2xLoc`,
		Args:         cobra.MaximumNArgs(1),
		RunE:         runStatus,
		SilenceUsage: true,
	}

	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := app.New()
	if err != nil {
		return err
	}

	flag := ""
	if len(args) == 1 {
		flag = strings.TrimSpace(args[0])
	}
	locationID, err := a.ResolveLocation(flag)
	if err != nil {
		return err
	}

	if a.Vault.HasValidToken(cmd.Context(), locationID) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: connected\n", locationID)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: not connected\n", locationID)
	}
	return nil
}
