package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	actionplan "liv8/ghlm/internal/plan"
	"liv8/ghlm/internal/planner"

	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/llms/openai"
)

func AskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <request>",
		Short: "Generate an action plan from a natural-language request",
		Long: `Ask a language model to draft an action plan for a request.

The model only plans with tools ghlm can dispatch. Ambiguous requests
come back as a clarifying question instead of a plan. The API key is
read from OPENAI_API_KEY.

Examples:
  ghlm plan ask "tag every contact named in leads.csv as cold"
  ghlm plan ask "send a welcome SMS to Jane Doe" --out welcome.json`,
		Args:         cobra.MinimumNArgs(1),
		RunE:         runAsk,
		SilenceUsage: true,
	}

	cmd.Flags().String("model", "gpt-4o-mini", "Model to plan with")
	cmd.Flags().String("out", "", "Write the generated plan to this file")
	cmd.Flags().String("brand-voice", "", "Voice for generated SMS/email copy")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	request := strings.TrimSpace(strings.Join(args, " "))
	if request == "" {
		return fmt.Errorf("request cannot be empty")
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set")
	}
	modelName, _ := cmd.Flags().GetString("model")
	model, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(modelName),
	)
	if err != nil {
		return err
	}

	brandVoice, _ := cmd.Flags().GetString("brand-voice")
	resp, err := planner.New(model).Plan(cmd.Context(), request, nil, brandVoice)
	if err != nil {
		return err
	}

	switch r := resp.(type) {
	case *actionplan.ClarifyingQuestion:
		fmt.Fprintf(cmd.OutOrStdout(), "Need more detail: %s\n", r.Question)
		for _, choice := range r.Choices {
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", choice)
		}
		return nil
	case *actionplan.ActionPlan:
		payload, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return err
		}
		payload = append(payload, '\n')

		if out, _ := cmd.Flags().GetString("out"); out != "" {
			if err := os.WriteFile(out, payload, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Plan written to %s; review and execute with 'ghlm plan run %s'\n", out, out)
			return nil
		}

		fmt.Fprint(cmd.OutOrStdout(), string(payload))
		return nil
	default:
		return fmt.Errorf("unexpected planner response %T", resp)
	}
}
