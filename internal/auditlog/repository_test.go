package auditlog

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func tempRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ghlm.db")
	r, err := OpenAt(path)
	if err != nil {
		t.Fatalf("OpenAt failed: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestSave_AssignsIDAndTimestamp(t *testing.T) {
	r := tempRepo(t)

	entry := &Entry{
		LocationID: "loc_1",
		ActionName: "createContact",
		Tool:       "ghl.createContact",
		Status:     StatusSuccess,
	}

	if err := r.Save(entry); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if entry.ID == 0 {
		t.Error("expected ID to be assigned")
	}
	if entry.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestList(t *testing.T) {
	r := tempRepo(t)

	for i := range 3 {
		entry := &Entry{
			LocationID: "loc_1",
			Tool:       "ghl.sendSMS",
			Status:     StatusSuccess,
			Timestamp:  time.Now().UTC().Add(time.Duration(i) * time.Second),
		}
		if err := r.Save(entry); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	entries, err := r.List(2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Timestamp.Before(entries[1].Timestamp) {
		t.Error("expected entries sorted by timestamp descending")
	}
}

func TestListByLocation(t *testing.T) {
	r := tempRepo(t)

	entries := []*Entry{
		{LocationID: "loc_1", Tool: "ghl.addTags", Status: StatusSuccess},
		{LocationID: "loc_2", Tool: "ghl.addTags", Status: StatusSuccess},
		{LocationID: "loc_1", Tool: "ghl.sendSMS", Status: StatusFailure, ErrorMessage: "rate limited"},
	}
	for _, entry := range entries {
		if err := r.Save(entry); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	got, err := r.ListByLocation("loc_1", 10)
	if err != nil {
		t.Fatalf("ListByLocation failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries for loc_1, got %d", len(got))
	}
	for _, entry := range got {
		if entry.LocationID != "loc_1" {
			t.Errorf("unexpected location %q", entry.LocationID)
		}
	}
}

func TestPrune(t *testing.T) {
	r := tempRepo(t)

	old := &Entry{
		LocationID: "loc_1",
		Tool:       "ghl.createNote",
		Status:     StatusSuccess,
		Timestamp:  time.Now().UTC().Add(-48 * time.Hour),
	}
	recent := &Entry{
		LocationID: "loc_1",
		Tool:       "ghl.createNote",
		Status:     StatusSuccess,
	}
	for _, entry := range []*Entry{old, recent} {
		if err := r.Save(entry); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	removed, err := r.Prune(24 * time.Hour)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 pruned entry, got %d", removed)
	}

	remaining, err := r.List(10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("expected 1 remaining entry, got %d", len(remaining))
	}
}

func TestSanitizeInput_RedactsSensitiveKeys(t *testing.T) {
	got := SanitizeInput(map[string]any{
		"contactId":   "con_9",
		"message":     "hello",
		"accessToken": "ghl_access_secret",
		"apiKey":      "key_123",
	})

	if strings.Contains(got, "ghl_access_secret") || strings.Contains(got, "key_123") {
		t.Fatalf("expected secrets redacted, got %s", got)
	}
	if !strings.Contains(got, "con_9") || !strings.Contains(got, `"hello"`) {
		t.Fatalf("expected benign values preserved, got %s", got)
	}
	if !strings.Contains(got, "<redacted>") {
		t.Fatalf("expected redaction marker, got %s", got)
	}
}

func TestMarshalOutput(t *testing.T) {
	if got := MarshalOutput(nil); got != "" {
		t.Errorf("expected empty for nil output, got %q", got)
	}
	if got := MarshalOutput(map[string]any{"id": "con_1"}); !strings.Contains(got, "con_1") {
		t.Errorf("expected encoded output, got %q", got)
	}
}
