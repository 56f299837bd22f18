package plan

import (
	"fmt"
	"os"
	"os/user"
	"strings"

	"liv8/ghlm/internal/app"
	"liv8/ghlm/internal/auditlog"
	"liv8/ghlm/internal/operator"
	actionplan "liv8/ghlm/internal/plan"
	"liv8/ghlm/internal/runstore"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	riskStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func RunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Execute an action plan",
		Long: `Validate and execute an action plan from a JSON file.

Plans marked requiresConfirmation ask before executing unless --yes is
given. Step results are printed in plan order and recorded in the run
history and audit log.

Examples:
  ghlm plan run welcome-sequence.json
  ghlm plan run cleanup.json --location 7gQ2xLoc --yes`,
		Args:         cobra.ExactArgs(1),
		RunE:         runRun,
		SilenceUsage: true,
	}

	cmd.Flags().String("location", "", "Location to run against (defaults to configured location)")
	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	p, err := actionplan.DecodePlan(raw)
	if err != nil {
		return err
	}

	a, err := app.New()
	if err != nil {
		return err
	}

	locationFlag, _ := cmd.Flags().GetString("location")
	if locationFlag == "" && p.Context != nil {
		locationFlag = p.Context.LocationID
	}
	locationID, err := a.ResolveLocation(locationFlag)
	if err != nil {
		return err
	}

	printPlanHeader(cmd, p, locationID)

	assumeYes, _ := cmd.Flags().GetBool("yes")
	if p.RequiresConfirmation && !assumeYes {
		confirmed, err := confirmRun(p)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(cmd.ErrOrStderr(), "Plan execution cancelled.")
			return nil
		}
	}

	repo, err := auditlog.Open()
	if err != nil {
		return err
	}
	defer repo.Close()

	runs, err := runstore.Open()
	if err != nil {
		return err
	}
	defer runs.Close()

	executor := operator.New(a.Vault, a.Client, repo)
	actor := currentActor(a)

	var result *operator.Result
	var execErr error
	run := func() {
		result, execErr = executor.Execute(cmd.Context(), locationID, actor, p)
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		accessible := os.Getenv("ACCESSIBLE") != ""
		spinErr := spinner.New().
			Title(fmt.Sprintf("Executing %d steps...", len(p.Steps))).
			Accessible(accessible).
			Output(cmd.ErrOrStderr()).
			Action(run).
			Run()
		if spinErr != nil {
			return spinErr
		}
	} else {
		run()
	}
	if execErr != nil {
		return execErr
	}

	printResult(cmd, result)

	record := &runstore.PlanRun{
		PlanSummary:    p.Summary,
		LocationID:     locationID,
		RiskLevel:      string(p.RiskLevel),
		Status:         result.Status,
		StepsTotal:     len(p.Steps),
		StepsSucceeded: result.Succeeded(),
	}
	if err := runs.Save(record); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: run history not saved: %v\n", err)
	}

	return nil
}

// currentActor attributes the run to the local OS user, plus the
// configured agency if one is set.
func currentActor(a *app.App) operator.Actor {
	actor := operator.Actor{AgencyID: a.Config.AgencyID}
	if u, err := user.Current(); err == nil {
		actor.UserID = u.Username
	} else {
		actor.UserID = os.Getenv("USER")
	}
	return actor
}

func printPlanHeader(cmd *cobra.Command, p *actionplan.ActionPlan, locationID string) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", p.Summary)
	fmt.Fprintf(cmd.OutOrStdout(), "Location: %s  Steps: %d  Risk: %s\n",
		locationID, len(p.Steps), riskStyle.Render(string(p.RiskLevel)))
}

func confirmRun(p *actionplan.ActionPlan) (bool, error) {
	var lines []string
	for _, step := range p.Steps {
		lines = append(lines, fmt.Sprintf("%s: %s", step.ID, step.Tool))
	}

	confirmed := false
	form := huh.NewForm(huh.NewGroup(
		huh.NewNote().
			Title("Steps").
			Description(strings.Join(lines, "\n")),
		huh.NewConfirm().
			Title("Execute this plan?").
			Affirmative("Yes, run it").
			Negative("Cancel").
			Value(&confirmed),
	))
	if os.Getenv("ACCESSIBLE") != "" {
		form = form.WithAccessible(true)
	}
	if err := form.Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}

func printResult(cmd *cobra.Command, result *operator.Result) {
	for _, sr := range result.Results {
		if sr.Success {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n", okStyle.Render("ok"), sr.StepID)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s %s: %s\n", failStyle.Render("failed"), sr.StepID, sr.Error)
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.Summary)
}
