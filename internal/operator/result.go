package operator

// Run statuses. A run that executed at least one step unsuccessfully,
// or none at all out of a non-empty plan, is partial.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
)

// StepResult reports the outcome of one executed step. Results keep
// plan order regardless of success.
type StepResult struct {
	StepID  string `json:"stepId"`
	Success bool   `json:"success"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// StepError pairs a failed step with its error message.
type StepError struct {
	StepID string `json:"stepId"`
	Error  string `json:"error"`
}

// Result is the aggregate outcome of an executed plan.
type Result struct {
	Status  string       `json:"status"`
	Results []StepResult `json:"results"`
	Errors  []StepError  `json:"errors,omitempty"`
	Summary string       `json:"summary"`
}

// Succeeded counts successful step results.
func (r *Result) Succeeded() int {
	n := 0
	for _, sr := range r.Results {
		if sr.Success {
			n++
		}
	}
	return n
}
