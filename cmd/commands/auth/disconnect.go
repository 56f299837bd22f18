package auth

import (
	"fmt"
	"strings"

	"liv8/ghlm/internal/app"
	"liv8/ghlm/internal/util"

	"github.com/spf13/cobra"
)

func DisconnectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disconnect <locationId>",
		Short: "Remove a location's stored credentials",
		Long: `Remove a location's credentials from the vault. Disconnecting an
already-disconnected location is not an error.

Example:
  ghlm auth disconnect 7gQ2xLoc`,
		Args:         cobra.ExactArgs(1),
		RunE:         runDisconnect,
		SilenceUsage: true,
	}

	return cmd
}

func runDisconnect(cmd *cobra.Command, args []string) error {
	locationID := strings.TrimSpace(args[0])
	if err := util.ValidateLocationID(locationID); err != nil {
		return err
	}

	a, err := app.New()
	if err != nil {
		return err
	}

	a.Vault.ClearToken(cmd.Context(), locationID)
	fmt.Fprintf(cmd.OutOrStdout(), "Disconnected location %s\n", locationID)
	return nil
}
