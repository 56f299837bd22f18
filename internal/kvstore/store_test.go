package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func tempFileStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))
}

func TestFileStore_GetMissing(t *testing.T) {
	s := tempFileStore(t)

	value, ok, err := s.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok || value != "" {
		t.Fatalf("expected absent key, got %q (present=%v)", value, ok)
	}
}

func TestFileStore_SetGetRoundTrip(t *testing.T) {
	s := tempFileStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "alpha", "one"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set(ctx, "beta", "two"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, ok, err := s.Get(ctx, "alpha")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok || value != "one" {
		t.Fatalf("expected %q, got %q (present=%v)", "one", value, ok)
	}
}

func TestFileStore_Overwrite(t *testing.T) {
	s := tempFileStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "key", "old"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set(ctx, "key", "new"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, _, err := s.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != "new" {
		t.Fatalf("expected overwritten value, got %q", value)
	}
}

func TestFileStore_RemoveAbsentIsNotError(t *testing.T) {
	s := tempFileStore(t)

	if err := s.Remove(context.Background(), "never-existed"); err != nil {
		t.Fatalf("Remove of absent key failed: %v", err)
	}
}

func TestFileStore_RemoveMultiple(t *testing.T) {
	s := tempFileStore(t)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		if err := s.Set(ctx, key, key); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	if err := s.Remove(ctx, "a", "c", "missing"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if _, ok, _ := s.Get(ctx, "a"); ok {
		t.Error("expected a to be removed")
	}
	if _, ok, _ := s.Get(ctx, "b"); !ok {
		t.Error("expected b to survive")
	}
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	ctx := context.Background()

	if err := NewFileStore(path).Set(ctx, "key", "value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, ok, err := NewFileStore(path).Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok || value != "value" {
		t.Fatalf("expected persisted value, got %q (present=%v)", value, ok)
	}
}

func TestFileStore_FileModeIsPrivate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	if err := NewFileStore(path).Set(context.Background(), "key", "value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600 permissions, got %v", perm)
	}
}

func TestMemStore(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	if err := s.Set(ctx, "key", "value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, ok, err := s.Get(ctx, "key")
	if err != nil || !ok || value != "value" {
		t.Fatalf("expected stored value, got %q (present=%v, err=%v)", value, ok, err)
	}
	if err := s.Remove(ctx, "key", "missing"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d keys", s.Len())
	}
}
