package plan

import (
	"encoding/json"
	"fmt"
	"os"

	"liv8/ghlm/internal/deploy"

	"github.com/spf13/cobra"
)

func DeployCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy <manifest>",
		Short: "Compile an asset manifest into an action plan",
		Long: `Compile a JSON manifest of location assets (tags, seed contacts)
into an executable action plan.

Pipelines and workflows cannot be created through the public API, so
manifests declaring them are rejected.

Examples:
  ghlm plan deploy onboarding.json --out onboarding-plan.json
  ghlm plan deploy onboarding.json | ghlm plan run /dev/stdin`,
		Args:         cobra.ExactArgs(1),
		RunE:         runDeploy,
		SilenceUsage: true,
	}

	cmd.Flags().String("out", "", "Write the compiled plan to this file")

	return cmd
}

func runDeploy(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	manifest, err := deploy.Decode(raw)
	if err != nil {
		return err
	}

	p, err := deploy.Compile(manifest)
	if err != nil {
		return err
	}

	payload, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	payload = append(payload, '\n')

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		if err := os.WriteFile(out, payload, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Plan written to %s; execute with 'ghlm plan run %s'\n", out, out)
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), string(payload))
	return nil
}
