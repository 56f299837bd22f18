package ghl

import (
	"fmt"
	"net/http"

	"liv8/ghlm/internal/domain"
)

// Tool is an abstract named CRM operation. The catalog is closed:
// adding a tool means adding a constant here and a case to every
// switch below, which the compiler's exhaustiveness (via the default
// returning an error) and tests keep honest.
type Tool string

const (
	ToolCreateContact     Tool = "ghl.createContact"
	ToolUpdateContact     Tool = "ghl.updateContact"
	ToolSearchContacts    Tool = "ghl.searchContacts"
	ToolAddTags           Tool = "ghl.addTags"
	ToolRemoveTags        Tool = "ghl.removeTags"
	ToolCreateTag         Tool = "ghl.createTag"
	ToolListTags          Tool = "ghl.listTags"
	ToolSendSMS           Tool = "ghl.sendSMS"
	ToolSendEmail         Tool = "ghl.sendEmail"
	ToolCreateNote        Tool = "ghl.createNote"
	ToolCreateTask        Tool = "ghl.createTask"
	ToolCreateOpportunity Tool = "ghl.createOpportunity"
	ToolMoveOpportunity   Tool = "ghl.moveOpportunity"
	ToolBookAppointment   Tool = "ghl.bookAppointment"
	ToolTriggerWorkflow   Tool = "ghl.triggerWorkflow"
	ToolListPipelines     Tool = "ghl.listPipelines"
)

// Tools lists the full catalog in a stable order.
func Tools() []Tool {
	return []Tool{
		ToolCreateContact, ToolUpdateContact, ToolSearchContacts,
		ToolAddTags, ToolRemoveTags, ToolCreateTag, ToolListTags,
		ToolSendSMS, ToolSendEmail, ToolCreateNote, ToolCreateTask,
		ToolCreateOpportunity, ToolMoveOpportunity,
		ToolBookAppointment, ToolTriggerWorkflow, ToolListPipelines,
	}
}

// Resolve maps an abstract tool name to a catalog member. Unknown
// names are a caller error, surfaced as a per-step failure by the
// executor rather than a fatal plan error.
func Resolve(name string) (Tool, error) {
	t := Tool(name)
	if _, ok := t.spec(); !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownTool, name)
	}
	return t, nil
}

// Description is a one-line summary used in planner prompts and help
// text.
func (t Tool) Description() string {
	switch t {
	case ToolCreateContact:
		return "Create a new contact (firstName, lastName, email, phone, tags)"
	case ToolUpdateContact:
		return "Update an existing contact (contactId plus changed fields)"
	case ToolSearchContacts:
		return "Search contacts by query string (query, limit)"
	case ToolAddTags:
		return "Add tags to a contact (contactId, tags)"
	case ToolRemoveTags:
		return "Remove tags from a contact (contactId, tags)"
	case ToolCreateTag:
		return "Create a location-level tag (name)"
	case ToolListTags:
		return "List all tags for the location"
	case ToolSendSMS:
		return "Send an SMS to a contact (contactId, message)"
	case ToolSendEmail:
		return "Send an email to a contact (contactId, subject, message)"
	case ToolCreateNote:
		return "Attach a note to a contact (contactId, body)"
	case ToolCreateTask:
		return "Create a task on a contact (contactId, title, dueDate)"
	case ToolCreateOpportunity:
		return "Create an opportunity (pipelineId, stageId, contactId, name)"
	case ToolMoveOpportunity:
		return "Move an opportunity to another stage (opportunityId, stageId)"
	case ToolBookAppointment:
		return "Book a calendar appointment (calendarId, contactId, startTime)"
	case ToolTriggerWorkflow:
		return "Enroll a contact in a workflow (contactId, workflowId)"
	case ToolListPipelines:
		return "List pipelines and their stages for the location"
	}
	return ""
}

// Mutating reports whether a successful call changes CRM state. The
// executor has no rollback: once a mutating step succeeds it stays
// applied even if a later step fails.
func (t Tool) Mutating() bool {
	switch t {
	case ToolSearchContacts, ToolListTags, ToolListPipelines:
		return false
	}
	return true
}

// callSpec describes the one REST call a tool maps to. Path segments
// in braces are filled from step input ({locationId} from the call's
// location). fixed entries are merged into the request body.
type callSpec struct {
	method       string
	path         string
	sendLocation bool
	fixed        map[string]any
}

func (t Tool) spec() (callSpec, bool) {
	switch t {
	case ToolCreateContact:
		return callSpec{method: http.MethodPost, path: "/contacts/", sendLocation: true}, true
	case ToolUpdateContact:
		return callSpec{method: http.MethodPut, path: "/contacts/{contactId}"}, true
	case ToolSearchContacts:
		return callSpec{method: http.MethodGet, path: "/contacts/", sendLocation: true}, true
	case ToolAddTags:
		return callSpec{method: http.MethodPost, path: "/contacts/{contactId}/tags"}, true
	case ToolRemoveTags:
		return callSpec{method: http.MethodDelete, path: "/contacts/{contactId}/tags"}, true
	case ToolCreateTag:
		return callSpec{method: http.MethodPost, path: "/locations/{locationId}/tags"}, true
	case ToolListTags:
		return callSpec{method: http.MethodGet, path: "/locations/{locationId}/tags"}, true
	case ToolSendSMS:
		return callSpec{
			method: http.MethodPost, path: "/conversations/messages",
			sendLocation: true, fixed: map[string]any{"type": "SMS"},
		}, true
	case ToolSendEmail:
		return callSpec{
			method: http.MethodPost, path: "/conversations/messages",
			sendLocation: true, fixed: map[string]any{"type": "Email"},
		}, true
	case ToolCreateNote:
		return callSpec{method: http.MethodPost, path: "/contacts/{contactId}/notes"}, true
	case ToolCreateTask:
		return callSpec{method: http.MethodPost, path: "/contacts/{contactId}/tasks"}, true
	case ToolCreateOpportunity:
		return callSpec{method: http.MethodPost, path: "/opportunities/", sendLocation: true}, true
	case ToolMoveOpportunity:
		return callSpec{method: http.MethodPut, path: "/opportunities/{opportunityId}/status"}, true
	case ToolBookAppointment:
		return callSpec{method: http.MethodPost, path: "/calendars/events/appointments", sendLocation: true}, true
	case ToolTriggerWorkflow:
		return callSpec{method: http.MethodPost, path: "/contacts/{contactId}/workflow/{workflowId}"}, true
	case ToolListPipelines:
		return callSpec{method: http.MethodGet, path: "/opportunities/pipelines", sendLocation: true}, true
	}
	return callSpec{}, false
}
