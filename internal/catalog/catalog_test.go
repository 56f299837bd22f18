package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"liv8/ghlm/internal/domain"
	"liv8/ghlm/internal/ghl"
	"liv8/ghlm/internal/vault"
)

type fakeTokens struct {
	token *vault.Token
}

func (f *fakeTokens) GetToken(ctx context.Context, locationID string) (*vault.Token, error) {
	return f.token, nil
}

type fakeInvoker struct {
	response any
	err      error
	calls    int
	lastTool ghl.Tool
}

func (f *fakeInvoker) Invoke(ctx context.Context, accessToken, locationID string, tool ghl.Tool, input map[string]any) (any, error) {
	f.calls++
	f.lastTool = tool
	return f.response, f.err
}

func pipelineResponse() any {
	return map[string]any{
		"pipelines": []any{
			map[string]any{
				"id":   "pipe_1",
				"name": "Sales",
				"stages": []any{
					map[string]any{"id": "stage_1", "name": "New"},
					map[string]any{"id": "stage_2", "name": "Won"},
				},
			},
		},
	}
}

func newService(t *testing.T, invoker *fakeInvoker) *Service {
	t.Helper()
	cache := WithTTLs(t.TempDir(), 5*time.Minute, time.Hour)
	return New(cache, &fakeTokens{token: &vault.Token{AccessToken: "ghl_access"}}, invoker)
}

func TestPipelines(t *testing.T) {
	invoker := &fakeInvoker{response: pipelineResponse()}
	s := newService(t, invoker)

	pipelines, err := s.Pipelines(context.Background(), "loc_1")
	if err != nil {
		t.Fatalf("Pipelines failed: %v", err)
	}
	if invoker.lastTool != ghl.ToolListPipelines {
		t.Errorf("expected pipeline listing tool, got %q", invoker.lastTool)
	}
	if len(pipelines) != 1 || pipelines[0].Name != "Sales" || len(pipelines[0].Stages) != 2 {
		t.Errorf("unexpected pipelines: %+v", pipelines)
	}
}

func TestPipelines_CachesResult(t *testing.T) {
	invoker := &fakeInvoker{response: pipelineResponse()}
	s := newService(t, invoker)

	for range 3 {
		if _, err := s.Pipelines(context.Background(), "loc_1"); err != nil {
			t.Fatalf("Pipelines failed: %v", err)
		}
	}
	if invoker.calls != 1 {
		t.Errorf("expected 1 upstream call for fresh cache, got %d", invoker.calls)
	}
}

func TestTags(t *testing.T) {
	invoker := &fakeInvoker{response: map[string]any{
		"tags": []any{
			map[string]any{"id": "tag_1", "name": "vip"},
		},
	}}
	s := newService(t, invoker)

	tags, err := s.Tags(context.Background(), "loc_1")
	if err != nil {
		t.Fatalf("Tags failed: %v", err)
	}
	if invoker.lastTool != ghl.ToolListTags {
		t.Errorf("expected tag listing tool, got %q", invoker.lastTool)
	}
	if len(tags) != 1 || tags[0].Name != "vip" {
		t.Errorf("unexpected tags: %+v", tags)
	}
}

func TestRefresh_DropsCachedEntries(t *testing.T) {
	invoker := &fakeInvoker{response: pipelineResponse()}
	s := newService(t, invoker)

	if _, err := s.Pipelines(context.Background(), "loc_1"); err != nil {
		t.Fatalf("Pipelines failed: %v", err)
	}
	if err := s.Refresh("loc_1"); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if _, err := s.Pipelines(context.Background(), "loc_1"); err != nil {
		t.Fatalf("Pipelines failed: %v", err)
	}
	if invoker.calls != 2 {
		t.Errorf("expected refetch after refresh, got %d calls", invoker.calls)
	}
}

func TestPipelines_NoCredentials(t *testing.T) {
	cache := WithTTLs(t.TempDir(), 5*time.Minute, time.Hour)
	s := New(cache, &fakeTokens{token: nil}, &fakeInvoker{})

	if _, err := s.Pipelines(context.Background(), "loc_1"); !errors.Is(err, domain.ErrAuthentication) {
		t.Errorf("expected authentication error, got %v", err)
	}
}

func TestPipelines_UpstreamError(t *testing.T) {
	invoker := &fakeInvoker{err: errors.New("server on fire")}
	s := newService(t, invoker)

	if _, err := s.Pipelines(context.Background(), "loc_1"); err == nil {
		t.Fatal("expected upstream error to propagate")
	}
}

func TestGetOrFetch_StaleServedWhileRevalidating(t *testing.T) {
	cache := WithTTLs(t.TempDir(), 5*time.Minute, time.Hour)
	key := "loc_1_pipelines"
	if err := writeEntry(cache, key, entry[string]{Data: "cached", FetchedAt: time.Now().Add(-10 * time.Minute)}); err != nil {
		t.Fatalf("writeEntry error: %v", err)
	}

	called := make(chan struct{}, 1)
	fetch := func(ctx context.Context) (string, error) {
		called <- struct{}{}
		return "fresh", nil
	}

	got, err := getOrFetch(cache, context.Background(), key, fetch)
	if err != nil {
		t.Fatalf("getOrFetch error: %v", err)
	}
	if got != "cached" {
		t.Fatalf("got %q, want %q", got, "cached")
	}

	select {
	case <-called:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected background revalidation")
	}
}

func TestGetOrFetch_ExpiredFetchesInline(t *testing.T) {
	cache := WithTTLs(t.TempDir(), 5*time.Minute, time.Hour)
	key := "loc_1_tags"
	if err := writeEntry(cache, key, entry[string]{Data: "cached", FetchedAt: time.Now().Add(-2 * time.Hour)}); err != nil {
		t.Fatalf("writeEntry error: %v", err)
	}

	got, err := getOrFetch(cache, context.Background(), key, func(ctx context.Context) (string, error) {
		return "fresh", nil
	})
	if err != nil {
		t.Fatalf("getOrFetch error: %v", err)
	}
	if got != "fresh" {
		t.Fatalf("got %q, want %q", got, "fresh")
	}
}
