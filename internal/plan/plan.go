// Package plan defines the structured contract a plan must satisfy
// before execution, and the sibling shapes produced by the same
// generation boundary.
package plan

import (
	"encoding/json"
	"fmt"
	"strings"

	"liv8/ghlm/internal/domain"
)

// Plan type discriminators.
const (
	TypeActionPlan         = "action_plan"
	TypeClarifyingQuestion = "clarifying_question"
)

// OnError is a step's declared error policy.
type OnError string

const (
	// OnErrorHalt stops the plan at the first failure of this step;
	// already-collected results are returned as a partial outcome.
	OnErrorHalt OnError = "halt_and_ask"

	// OnErrorContinue proceeds to the next step regardless of failure.
	OnErrorContinue OnError = "continue"

	// OnErrorRetry re-attempts the step once before continuing.
	OnErrorRetry OnError = "retry"
)

// RiskLevel classifies a plan's blast radius for confirmation UX.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Step is a single tool invocation within a plan.
type Step struct {
	ID      string         `json:"id"`
	Tool    string         `json:"tool"`
	Input   map[string]any `json:"input"`
	OnError OnError        `json:"onError"`
}

// Context carries CRM identifiers relevant to the whole plan.
type Context struct {
	LocationID     string `json:"locationId,omitempty"`
	ContactID      string `json:"contactId,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
	OpportunityID  string `json:"opportunityId,omitempty"`
	SourceURL      string `json:"sourceUrl,omitempty"`
}

// ActionPlan is an ordered, schema-validated sequence of tool
// invocations. Insertion order is execution order. A plan is executed
// at most once; re-execution requires a new plan instance since steps
// are not idempotent by contract.
type ActionPlan struct {
	Type                 string    `json:"type"`
	Summary              string    `json:"summary"`
	RequiresConfirmation bool      `json:"requiresConfirmation"`
	RiskLevel            RiskLevel `json:"riskLevel"`
	Context              *Context  `json:"context,omitempty"`
	Steps                []Step    `json:"steps"`
}

// ClarifyingQuestion is returned by the generation boundary when input
// is ambiguous. The executor never receives this shape.
type ClarifyingQuestion struct {
	Type     string         `json:"type"`
	Question string         `json:"question"`
	Choices  []string       `json:"choices,omitempty"`
	Context  map[string]any `json:"context,omitempty"`
}

// PageContext describes the CRM page a request originated from.
type PageContext struct {
	Type           string `json:"type"`
	LocationID     string `json:"locationId,omitempty"`
	ContactID      string `json:"contactId,omitempty"`
	ContactName    string `json:"contactName,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
	OpportunityID  string `json:"opportunityId,omitempty"`
	PipelineStage  string `json:"pipelineStage,omitempty"`
	URL            string `json:"url,omitempty"`
}

// Describe renders the page context as labeled lines for prompt
// grounding, omitting empty fields.
func (pc *PageContext) Describe() string {
	var b strings.Builder
	write := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, value)
		}
	}
	write("Page type", pc.Type)
	write("Location", pc.LocationID)
	write("Contact", pc.ContactID)
	write("Contact name", pc.ContactName)
	write("Conversation", pc.ConversationID)
	write("Opportunity", pc.OpportunityID)
	write("Pipeline stage", pc.PipelineStage)
	write("URL", pc.URL)
	return strings.TrimRight(b.String(), "\n")
}

// Response is the closed union of shapes the generation boundary may
// produce.
type Response interface {
	responseType() string
}

func (*ActionPlan) responseType() string         { return TypeActionPlan }
func (*ClarifyingQuestion) responseType() string { return TypeClarifyingQuestion }

// DecodeResponse parses a generated payload into the matching union
// member. ActionPlans are validated before being returned.
func DecodeResponse(data []byte) (Response, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("unparseable response: %v: %w", err, domain.ErrValidation)
	}

	switch head.Type {
	case TypeActionPlan:
		var p ActionPlan
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("malformed action plan: %v: %w", err, domain.ErrValidation)
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		return &p, nil
	case TypeClarifyingQuestion:
		var q ClarifyingQuestion
		if err := json.Unmarshal(data, &q); err != nil {
			return nil, fmt.Errorf("malformed clarifying question: %v: %w", err, domain.ErrValidation)
		}
		if q.Question == "" {
			return nil, fmt.Errorf("clarifying question without question text: %w", domain.ErrValidation)
		}
		return &q, nil
	default:
		return nil, fmt.Errorf("unknown response type %q: %w", head.Type, domain.ErrValidation)
	}
}

// DecodePlan parses and validates an ActionPlan payload, rejecting
// sibling shapes.
func DecodePlan(data []byte) (*ActionPlan, error) {
	resp, err := DecodeResponse(data)
	if err != nil {
		return nil, err
	}
	p, ok := resp.(*ActionPlan)
	if !ok {
		return nil, fmt.Errorf("expected %s, got %s: %w", TypeActionPlan, resp.responseType(), domain.ErrValidation)
	}
	return p, nil
}

// Validate enforces the schema invariants an executable plan must
// satisfy. An invalid plan never reaches the executor.
//
// An empty step list is accepted: the deployed contract allows it, and
// such a plan executes trivially to success.
func (p *ActionPlan) Validate() error {
	if p.Type != TypeActionPlan {
		return fmt.Errorf("type must be %q, got %q: %w", TypeActionPlan, p.Type, domain.ErrValidation)
	}
	switch p.RiskLevel {
	case RiskLow, RiskMedium, RiskHigh:
	default:
		return fmt.Errorf("unknown risk level %q: %w", p.RiskLevel, domain.ErrValidation)
	}

	seen := make(map[string]struct{}, len(p.Steps))
	for i, step := range p.Steps {
		if step.ID == "" {
			return fmt.Errorf("step %d: missing id: %w", i, domain.ErrValidation)
		}
		if _, dup := seen[step.ID]; dup {
			return fmt.Errorf("step %d: duplicate id %q: %w", i, step.ID, domain.ErrValidation)
		}
		seen[step.ID] = struct{}{}

		if step.Tool == "" {
			return fmt.Errorf("step %q: missing tool: %w", step.ID, domain.ErrValidation)
		}
		switch step.OnError {
		case OnErrorHalt, OnErrorContinue, OnErrorRetry:
		default:
			return fmt.Errorf("step %q: unknown onError policy %q: %w", step.ID, step.OnError, domain.ErrValidation)
		}
	}
	return nil
}
