package auth

import (
	"fmt"
	"os"
	"strings"

	"liv8/ghlm/internal/app"
	"liv8/ghlm/internal/util"

	"golang.org/x/term"

	"github.com/spf13/cobra"
)

func ConnectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connect <locationId>",
		Short: "Connect a location by exchanging an authorization code",
		Long: `Exchange an OAuth authorization code for location credentials and
store them in the local vault.

The client secret is read from the ` + app.EnvClientSecret + ` environment
variable; the client ID from ` + app.EnvClientID + ` or the oauth-client-id
config key.

Example:
  ghlm auth connect 7gQ2xLoc --code <authorization-code>`,
		Args:         cobra.ExactArgs(1),
		RunE:         runConnect,
		SilenceUsage: true,
	}

	cmd.Flags().String("code", "", "Authorization code (optional, overrides prompt)")

	return cmd
}

func runConnect(cmd *cobra.Command, args []string) error {
	locationID := strings.TrimSpace(args[0])
	if err := util.ValidateLocationID(locationID); err != nil {
		return err
	}

	code, _ := cmd.Flags().GetString("code")
	code = strings.TrimSpace(code)
	if code == "" {
		fmt.Fprint(cmd.OutOrStdout(), "Enter authorization code: ")
		bytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		code = strings.TrimSpace(string(bytes))
	}
	if code == "" {
		return fmt.Errorf("authorization code cannot be empty")
	}

	a, err := app.New()
	if err != nil {
		return err
	}

	token, err := a.Broker.ExchangeCode(cmd.Context(), code)
	if err != nil {
		return err
	}

	a.Vault.SaveToken(cmd.Context(), locationID, token)
	if !a.Vault.HasValidToken(cmd.Context(), locationID) {
		return fmt.Errorf("credentials could not be stored for location %s", locationID)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Connected location %s\n", locationID)

	if a.Config.DefaultLocation == "" {
		a.Config.DefaultLocation = locationID
		if err := a.Config.Save(); err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s as the default location\n", locationID)
		}
	}
	return nil
}
