// Package runstore persists the outcome of executed action plans so
// operators can review recent automation runs per location.
package runstore

import "time"

// Run statuses mirror the executor's terminal states.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
)

// PlanRun is one recorded execution of an action plan.
type PlanRun struct {
	ID             int64
	PlanSummary    string
	LocationID     string
	RiskLevel      string
	Status         string
	StepsTotal     int
	StepsSucceeded int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
