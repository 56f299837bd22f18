package ghl

import (
	"errors"
	"testing"

	"liv8/ghlm/internal/domain"
)

func TestResolve_KnownTools(t *testing.T) {
	for _, tool := range Tools() {
		got, err := Resolve(string(tool))
		if err != nil {
			t.Errorf("Resolve(%q) failed: %v", tool, err)
		}
		if got != tool {
			t.Errorf("Resolve(%q) = %q", tool, got)
		}
	}
}

func TestResolve_UnknownTool(t *testing.T) {
	_, err := Resolve("ghl.launchRocket")
	if !errors.Is(err, domain.ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
}

func TestCatalog_EveryToolHasSpecAndDescription(t *testing.T) {
	for _, tool := range Tools() {
		spec, ok := tool.spec()
		if !ok {
			t.Errorf("%q: missing call spec", tool)
			continue
		}
		if spec.method == "" || spec.path == "" {
			t.Errorf("%q: incomplete spec %+v", tool, spec)
		}
		if tool.Description() == "" {
			t.Errorf("%q: missing description", tool)
		}
	}
}

func TestMutating(t *testing.T) {
	readOnly := map[Tool]bool{
		ToolSearchContacts: true,
		ToolListTags:       true,
		ToolListPipelines:  true,
	}
	for _, tool := range Tools() {
		want := !readOnly[tool]
		if got := tool.Mutating(); got != want {
			t.Errorf("%q: Mutating() = %v, want %v", tool, got, want)
		}
	}
}
