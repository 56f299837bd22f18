// Package operator executes validated action plans step by step against
// the CRM, honoring each step's declared error policy and recording
// every attempt in the audit log.
package operator

import (
	"context"
	"fmt"

	"liv8/ghlm/internal/auditlog"
	"liv8/ghlm/internal/domain"
	"liv8/ghlm/internal/ghl"
	"liv8/ghlm/internal/plan"
	"liv8/ghlm/internal/retry"
	"liv8/ghlm/internal/vault"

	"github.com/charmbracelet/log"
)

// TokenSource yields a usable access token for a location, or an
// authentication error when no valid session exists. Implemented by
// vault.Vault.
type TokenSource interface {
	GetToken(ctx context.Context, locationID string) (*vault.Token, error)
}

// Invoker dispatches a single tool call against the CRM. Implemented
// by ghl.Client.
type Invoker interface {
	Invoke(ctx context.Context, accessToken, locationID string, tool ghl.Tool, input map[string]any) (any, error)
}

// Recorder persists audit entries. Implemented by
// auditlog.SQLiteRepository.
type Recorder interface {
	Save(entry *auditlog.Entry) error
}

// Actor identifies who initiated a run, for audit attribution. Either
// field may be empty when the identity is unknown.
type Actor struct {
	UserID   string
	AgencyID string
}

// Executor runs action plans sequentially. Steps never run
// concurrently: later steps may depend on side effects of earlier
// ones.
type Executor struct {
	tokens   TokenSource
	invoker  Invoker
	recorder Recorder
	logger   *log.Logger
}

// New returns an Executor. recorder may be nil, in which case runs are
// not audited.
func New(tokens TokenSource, invoker Invoker, recorder Recorder) *Executor {
	return &Executor{
		tokens:   tokens,
		invoker:  invoker,
		recorder: recorder,
		logger:   log.Default().WithPrefix("operator"),
	}
}

// Execute validates p, resolves credentials for locationID, then runs
// each step in plan order on behalf of actor. Step failures are
// contained per the step's onError policy; only validation and
// authentication problems abort the run before any step executes.
//
// An empty locationID falls back to the plan context's location.
func (e *Executor) Execute(ctx context.Context, locationID string, actor Actor, p *plan.ActionPlan) (*Result, error) {
	if p == nil {
		return nil, fmt.Errorf("nil plan: %w", domain.ErrValidation)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if locationID == "" && p.Context != nil {
		locationID = p.Context.LocationID
	}
	if locationID == "" {
		return nil, fmt.Errorf("no location for plan: %w", domain.ErrValidation)
	}

	token, err := e.tokens.GetToken(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, fmt.Errorf("no credentials for location %s: %w", locationID, domain.ErrAuthentication)
	}

	result := &Result{Status: StatusSuccess, Results: make([]StepResult, 0, len(p.Steps))}

	for _, step := range p.Steps {
		output, stepErr := e.runStep(ctx, token.AccessToken, locationID, step)
		e.record(locationID, actor, step, output, stepErr)

		sr := StepResult{StepID: step.ID, Success: stepErr == nil, Result: output}
		if stepErr != nil {
			sr.Error = stepErr.Error()
			result.Errors = append(result.Errors, StepError{StepID: step.ID, Error: stepErr.Error()})
		}
		result.Results = append(result.Results, sr)

		if stepErr != nil && step.OnError == plan.OnErrorHalt {
			e.logger.Warn("halting plan on step failure", "step", step.ID, "err", stepErr)
			break
		}
	}

	succeeded := result.Succeeded()
	if succeeded < len(p.Steps) {
		result.Status = StatusPartial
	}
	result.Summary = fmt.Sprintf("Executed %d/%d steps successfully", succeeded, len(p.Steps))
	return result, nil
}

// runStep resolves and invokes one step's tool. An unknown tool is a
// step failure, not a run failure. Steps declaring the retry policy
// get one bounded re-attempt for transient errors.
func (e *Executor) runStep(ctx context.Context, accessToken, locationID string, step plan.Step) (any, error) {
	tool, err := ghl.Resolve(step.Tool)
	if err != nil {
		return nil, err
	}

	var output any
	invoke := func() error {
		out, err := e.invoker.Invoke(ctx, accessToken, locationID, tool, step.Input)
		if err != nil {
			return err
		}
		output = out
		return nil
	}

	if step.OnError == plan.OnErrorRetry {
		err = retry.Do(ctx, retry.StepConfig(), retry.IsRetryable, invoke)
	} else {
		err = invoke()
	}
	if err != nil {
		return nil, err
	}
	return output, nil
}

// record writes the step's audit entry. Audit failures never affect
// the run outcome.
func (e *Executor) record(locationID string, actor Actor, step plan.Step, output any, stepErr error) {
	if e.recorder == nil {
		return
	}

	entry := &auditlog.Entry{
		UserID:     actor.UserID,
		AgencyID:   actor.AgencyID,
		LocationID: locationID,
		ActionName: step.ID,
		Tool:       step.Tool,
		Input:      auditlog.SanitizeInput(step.Input),
		Output:     auditlog.MarshalOutput(output),
		Status:     auditlog.StatusSuccess,
	}
	if stepErr != nil {
		entry.Status = auditlog.StatusFailure
		entry.ErrorMessage = stepErr.Error()
	}
	if err := e.recorder.Save(entry); err != nil {
		e.logger.Error("audit write failed", "step", step.ID, "err", err)
	}
}
