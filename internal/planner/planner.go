// Package planner turns natural-language CRM requests into structured
// action plans using a chat model, constrained to the closed tool
// catalog.
package planner

import (
	"context"
	"fmt"
	"strings"

	"liv8/ghlm/internal/domain"
	"liv8/ghlm/internal/ghl"
	"liv8/ghlm/internal/plan"

	"github.com/charmbracelet/log"
	"github.com/tmc/langchaingo/llms"
)

const systemPromptHeader = `You are a CRM operations planner. Convert the user's request into a
JSON action plan for the connected CRM location.

Respond with EXACTLY ONE JSON object and nothing else. Two shapes are
allowed:

1. An executable plan:
{"type":"action_plan","summary":"...","requiresConfirmation":true|false,
 "riskLevel":"low"|"medium"|"high","steps":[{"id":"s1","tool":"<tool>",
 "input":{...},"onError":"halt_and_ask"|"continue"|"retry"}]}

2. A clarifying question when the request is ambiguous:
{"type":"clarifying_question","question":"...","choices":["..."]}

Rules:
- Use only tools from the catalog below. Never invent tool names.
- Steps run in order; put prerequisites first.
- Set requiresConfirmation true and riskLevel high for destructive or
  bulk operations.
- Prefer halt_and_ask for steps whose failure invalidates later steps.`

// Planner generates action plans from free-form requests.
type Planner struct {
	model  llms.Model
	logger *log.Logger
}

// New returns a Planner backed by model.
func New(model llms.Model) *Planner {
	return &Planner{
		model:  model,
		logger: log.Default().WithPrefix("planner"),
	}
}

// systemPrompt appends the tool catalog so the model only plans with
// dispatchable tools.
func systemPrompt() string {
	var b strings.Builder
	b.WriteString(systemPromptHeader)
	b.WriteString("\n\nTool catalog:\n")
	for _, tool := range ghl.Tools() {
		fmt.Fprintf(&b, "- %s: %s\n", tool, tool.Description())
	}
	return b.String()
}

// Plan asks the model for a response to request, optionally grounded
// in page and a brand voice for outbound message copy, and returns the
// decoded plan or clarifying question. Model output that fails to
// decode is retried once with the decode error fed back.
func (p *Planner) Plan(ctx context.Context, request string, page *plan.PageContext, brandVoice string) (plan.Response, error) {
	prompt := systemPrompt()
	if brandVoice != "" {
		prompt += "\n\nWrite any SMS or email copy in this brand voice:\n" + brandVoice
	}
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(prompt)},
		},
	}
	if page != nil {
		messages = append(messages, llms.MessageContent{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart("Current CRM page context:\n" + page.Describe())},
		})
	}
	messages = append(messages, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextPart(request)},
	})

	resp, err := p.generate(ctx, messages)
	if err != nil {
		return nil, err
	}

	decoded, decodeErr := plan.DecodeResponse([]byte(StripFences(resp)))
	if decodeErr == nil {
		return decoded, nil
	}

	p.logger.Warn("plan decode failed, asking model to repair", "err", decodeErr)
	messages = append(messages,
		llms.MessageContent{
			Role:  llms.ChatMessageTypeAI,
			Parts: []llms.ContentPart{llms.TextPart(resp)},
		},
		llms.MessageContent{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(fmt.Sprintf(
				"That response was not a valid plan object: %v. Reply with only the corrected JSON object.", decodeErr))},
		},
	)

	resp, err = p.generate(ctx, messages)
	if err != nil {
		return nil, err
	}
	decoded, decodeErr = plan.DecodeResponse([]byte(StripFences(resp)))
	if decodeErr != nil {
		return nil, fmt.Errorf("model produced no usable plan: %w", decodeErr)
	}
	return decoded, nil
}

func (p *Planner) generate(ctx context.Context, messages []llms.MessageContent) (string, error) {
	resp, err := p.model.GenerateContent(ctx, messages, llms.WithJSONMode())
	if err != nil {
		return "", fmt.Errorf("plan generation: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return "", fmt.Errorf("model returned empty response: %w", domain.ErrValidation)
	}
	return resp.Choices[0].Content, nil
}

// StripFences removes a surrounding markdown code fence, with or
// without a language tag, from model output.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		first := strings.TrimSpace(s[:i])
		// A language tag like "json" sits alone on the fence line.
		if !strings.ContainsAny(first, "{[") {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
