package domain

import "errors"

// Sentinel errors for cross-package error classification.
// Lower layers wrap these so the CLI and the operator can handle
// error categories uniformly without inspecting provider payloads.
//
//	return fmt.Errorf("refresh rejected: %w", domain.ErrAuthentication)
var (
	// ErrAuthentication indicates a credential is missing, corrupt,
	// expired without refresh capability, or that a refresh was
	// rejected. Callers must force re-authentication.
	ErrAuthentication = errors.New("authentication required")

	// ErrValidation indicates a plan or step failed schema validation
	// before execution. Execution never starts.
	ErrValidation = errors.New("validation failed")

	// ErrUnknownTool indicates a step named a tool outside the catalog.
	// This is a per-step failure, never fatal to a whole plan.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrNotFound indicates the requested CRM resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates the CRM rejected the request due to
	// invalid, expired, or missing credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates the CRM throttled the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrConflict indicates a state or uniqueness conflict, such as a
	// duplicate tag name.
	ErrConflict = errors.New("conflict")

	// ErrTimeout indicates a remote call exceeded its deadline.
	ErrTimeout = errors.New("request timed out")

	// ErrStorage indicates the key-value layer failed to read or write.
	// The vault degrades to "no credential" rather than propagating it.
	ErrStorage = errors.New("storage failure")
)
