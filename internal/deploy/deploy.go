// Package deploy compiles declarative asset manifests into executable
// action plans, so a location can be seeded with tags and contacts in
// one reviewed run.
package deploy

import (
	"encoding/json"
	"fmt"

	"liv8/ghlm/internal/domain"
	"liv8/ghlm/internal/ghl"
	"liv8/ghlm/internal/plan"
)

// ContactSeed is one contact to create during deployment.
type ContactSeed struct {
	FirstName string   `json:"firstName,omitempty"`
	LastName  string   `json:"lastName,omitempty"`
	Email     string   `json:"email,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// Manifest declares the assets to deploy to a location.
//
// Pipelines and workflows are declared-only: the public CRM API cannot
// create them, so their presence makes the manifest invalid rather
// than silently skipped.
type Manifest struct {
	LocationID string        `json:"locationId"`
	Tags       []string      `json:"tags,omitempty"`
	Contacts   []ContactSeed `json:"contacts,omitempty"`
	Pipelines  []any         `json:"pipelines,omitempty"`
	Workflows  []any         `json:"workflows,omitempty"`
}

// Decode parses and validates a manifest document.
func Decode(raw []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("manifest is not valid JSON: %v: %w", err, domain.ErrValidation)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate rejects manifests that cannot be deployed.
func (m *Manifest) Validate() error {
	if m.LocationID == "" {
		return fmt.Errorf("manifest requires a locationId: %w", domain.ErrValidation)
	}
	if len(m.Pipelines) > 0 {
		return fmt.Errorf("pipelines cannot be created through the API, build them in the CRM UI: %w", domain.ErrValidation)
	}
	if len(m.Workflows) > 0 {
		return fmt.Errorf("workflows cannot be created through the API, build them in the CRM UI: %w", domain.ErrValidation)
	}
	for i, tag := range m.Tags {
		if tag == "" {
			return fmt.Errorf("tag %d is empty: %w", i, domain.ErrValidation)
		}
	}
	for i, c := range m.Contacts {
		if c.Email == "" && c.Phone == "" {
			return fmt.Errorf("contact %d needs an email or phone: %w", i, domain.ErrValidation)
		}
	}
	if len(m.Tags) == 0 && len(m.Contacts) == 0 {
		return fmt.Errorf("manifest declares no deployable assets: %w", domain.ErrValidation)
	}
	return nil
}

// Compile lowers the manifest into an ordered action plan: tags first
// so contact steps can reference them. The resulting plan always
// requires confirmation.
func Compile(m *Manifest) (*plan.ActionPlan, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	var steps []plan.Step
	for i, tag := range m.Tags {
		steps = append(steps, plan.Step{
			ID:      fmt.Sprintf("tag-%d", i+1),
			Tool:    string(ghl.ToolCreateTag),
			Input:   map[string]any{"name": tag},
			OnError: plan.OnErrorContinue,
		})
	}
	for i, c := range m.Contacts {
		input := map[string]any{}
		if c.FirstName != "" {
			input["firstName"] = c.FirstName
		}
		if c.LastName != "" {
			input["lastName"] = c.LastName
		}
		if c.Email != "" {
			input["email"] = c.Email
		}
		if c.Phone != "" {
			input["phone"] = c.Phone
		}
		if len(c.Tags) > 0 {
			tags := make([]any, len(c.Tags))
			for j, tag := range c.Tags {
				tags[j] = tag
			}
			input["tags"] = tags
		}
		steps = append(steps, plan.Step{
			ID:      fmt.Sprintf("contact-%d", i+1),
			Tool:    string(ghl.ToolCreateContact),
			Input:   input,
			OnError: plan.OnErrorHalt,
		})
	}

	p := &plan.ActionPlan{
		Type:                 plan.TypeActionPlan,
		Summary:              fmt.Sprintf("Deploy %d tags and %d contacts to %s", len(m.Tags), len(m.Contacts), m.LocationID),
		RequiresConfirmation: true,
		RiskLevel:            plan.RiskMedium,
		Context:              &plan.Context{LocationID: m.LocationID},
		Steps:                steps,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
