package ghl

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"liv8/ghlm/internal/domain"

	"github.com/google/go-cmp/cmp"
)

type capturedRequest struct {
	method string
	path   string
	query  string
	header http.Header
	body   map[string]any
}

// newCaptureServer records the last request and answers with the given
// status and payload.
func newCaptureServer(t *testing.T, status int, payload any) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.method = r.Method
		captured.path = r.URL.Path
		captured.query = r.URL.RawQuery
		captured.header = r.Header.Clone()
		captured.body = nil
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&captured.body)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func TestInvoke_CreateContact(t *testing.T) {
	srv, captured := newCaptureServer(t, http.StatusCreated, map[string]any{
		"contact": map[string]any{"id": "con_new"},
	})
	c := NewClient(srv.URL)

	result, err := c.Invoke(context.Background(), "tok_abc", "loc_1", ToolCreateContact, map[string]any{
		"firstName": "Ada",
		"email":     "ada@example.com",
	})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	if captured.method != http.MethodPost || captured.path != "/contacts/" {
		t.Errorf("unexpected request: %s %s", captured.method, captured.path)
	}
	if got := captured.header.Get("Authorization"); got != "Bearer tok_abc" {
		t.Errorf("Authorization = %q", got)
	}
	if got := captured.header.Get("LocationId"); got != "loc_1" {
		t.Errorf("LocationId = %q", got)
	}
	if got := captured.header.Get("Version"); got != apiVersion {
		t.Errorf("Version = %q", got)
	}

	wantBody := map[string]any{
		"firstName":  "Ada",
		"email":      "ada@example.com",
		"locationId": "loc_1",
	}
	if diff := cmp.Diff(wantBody, captured.body); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}

	resultMap, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("expected decoded map result, got %T", result)
	}
	if _, ok := resultMap["contact"]; !ok {
		t.Errorf("expected contact in result, got %v", resultMap)
	}
}

func TestInvoke_PathParamsConsumed(t *testing.T) {
	srv, captured := newCaptureServer(t, http.StatusOK, map[string]any{"succeded": true})
	c := NewClient(srv.URL)

	_, err := c.Invoke(context.Background(), "tok", "loc_1", ToolAddTags, map[string]any{
		"contactId": "con_9",
		"tags":      []string{"vip"},
	})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	if captured.path != "/contacts/con_9/tags" {
		t.Errorf("path = %q", captured.path)
	}
	if _, leaked := captured.body["contactId"]; leaked {
		t.Error("expected path param to be consumed from body")
	}
}

func TestInvoke_InputMapNotMutated(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusOK, map[string]any{})
	c := NewClient(srv.URL)

	input := map[string]any{"contactId": "con_9", "tags": []string{"vip"}}
	if _, err := c.Invoke(context.Background(), "tok", "loc_1", ToolAddTags, input); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	if _, ok := input["contactId"]; !ok {
		t.Error("caller's input map was mutated")
	}
}

func TestInvoke_GetSendsQuery(t *testing.T) {
	srv, captured := newCaptureServer(t, http.StatusOK, map[string]any{"contacts": []any{}})
	c := NewClient(srv.URL)

	_, err := c.Invoke(context.Background(), "tok", "loc_1", ToolSearchContacts, map[string]any{
		"query": "ada",
		"limit": 5,
	})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	if captured.method != http.MethodGet {
		t.Errorf("method = %q", captured.method)
	}
	for _, want := range []string{"query=ada", "limit=5", "locationId=loc_1"} {
		if !strings.Contains(captured.query, want) {
			t.Errorf("query %q missing %q", captured.query, want)
		}
	}
}

func TestInvoke_SendSMSInjectsType(t *testing.T) {
	srv, captured := newCaptureServer(t, http.StatusCreated, map[string]any{"messageId": "msg_1"})
	c := NewClient(srv.URL)

	_, err := c.Invoke(context.Background(), "tok", "loc_1", ToolSendSMS, map[string]any{
		"contactId": "con_9",
		"message":   "hello",
	})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if got := captured.body["type"]; got != "SMS" {
		t.Errorf("type = %v, want SMS", got)
	}
}

func TestInvoke_LocationPathParam(t *testing.T) {
	srv, captured := newCaptureServer(t, http.StatusOK, map[string]any{"tags": []any{}})
	c := NewClient(srv.URL)

	_, err := c.Invoke(context.Background(), "tok", "loc_42", ToolListTags, nil)
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if captured.path != "/locations/loc_42/tags" {
		t.Errorf("path = %q", captured.path)
	}
}

func TestInvoke_MissingPathParam(t *testing.T) {
	c := NewClient("http://unused.invalid")

	_, err := c.Invoke(context.Background(), "tok", "loc_1", ToolMoveOpportunity, map[string]any{
		"stageId": "stage_2",
	})
	if err == nil || !strings.Contains(err.Error(), "opportunityId") {
		t.Fatalf("expected missing parameter error, got %v", err)
	}
}

func TestInvoke_ErrorMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, domain.ErrUnauthorized},
		{http.StatusForbidden, domain.ErrUnauthorized},
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusTooManyRequests, domain.ErrRateLimited},
		{http.StatusConflict, domain.ErrConflict},
	}

	for _, tc := range cases {
		srv, _ := newCaptureServer(t, tc.status, map[string]any{"message": "remote says no"})
		c := NewClient(srv.URL)

		_, err := c.Invoke(context.Background(), "tok", "loc_1", ToolListPipelines, nil)
		if !errors.Is(err, tc.want) {
			t.Errorf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
		if err != nil && !strings.Contains(err.Error(), "remote says no") {
			t.Errorf("status %d: expected remote message in %q", tc.status, err.Error())
		}
	}
}

func TestInvoke_MessageList(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusUnprocessableEntity, map[string]any{
		"message": []any{"firstName is required", "email is invalid"},
	})
	c := NewClient(srv.URL)

	_, err := c.Invoke(context.Background(), "tok", "loc_1", ToolCreateContact, nil)
	if err == nil || !strings.Contains(err.Error(), "firstName is required; email is invalid") {
		t.Fatalf("expected joined message list, got %v", err)
	}
}

func TestInvoke_NonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>nope</html>"))
	}))
	defer srv.Close()
	c := NewClient(srv.URL)

	_, err := c.Invoke(context.Background(), "tok", "loc_1", ToolListPipelines, nil)
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected raw status line fallback, got %v", err)
	}
}
