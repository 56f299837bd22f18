package auditlog

import "time"

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Entry represents one persisted tool execution, success or failure.
// Entries are append-only: the audit trail is the record of every
// remote mutation attempted on a location's behalf.
type Entry struct {
	ID           int64     `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	UserID       string    `json:"user_id,omitempty"`
	AgencyID     string    `json:"agency_id,omitempty"`
	LocationID   string    `json:"location_id"`
	ActionName   string    `json:"action_name"`
	Tool         string    `json:"tool"`
	Input        string    `json:"input,omitempty"`
	Output       string    `json:"output,omitempty"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
}
