package config

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"liv8/ghlm/internal/config"
)

// setupTestConfig points the config package at a temp file and returns its path.
func setupTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	config.SetPath(path)
	t.Cleanup(config.ResetPath)
	return path
}

// execConfig creates the config command, wires up output buffers, runs with the
// given args, and returns what was written to stdout and stderr.
func execConfig(t *testing.T, args ...string) (stdout, stderr string) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	cmd := NewCommand()
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	cmd.Execute()
	return outBuf.String(), errBuf.String()
}

func TestSet_DefaultLocation(t *testing.T) {
	setupTestConfig(t)

	stdout, stderr := execConfig(t, "set", "default-location", "loc_1")

	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}
	if !strings.Contains(stdout, `"loc_1"`) {
		t.Errorf("expected confirmation with location, got: %s", stdout)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.DefaultLocation != "loc_1" {
		t.Errorf("expected DefaultLocation %q, got %q", "loc_1", cfg.DefaultLocation)
	}
}

func TestSet_DefaultLocation_Invalid(t *testing.T) {
	setupTestConfig(t)

	_, stderr := execConfig(t, "set", "default-location", "!bad!")

	if stderr == "" {
		t.Error("expected error for invalid location ID")
	}
}

func TestSet_UnknownKey(t *testing.T) {
	setupTestConfig(t)

	_, stderr := execConfig(t, "set", "bogus-key", "value")

	if !strings.Contains(stderr, "unknown configuration key") {
		t.Errorf("expected 'unknown configuration key' error, got: %s", stderr)
	}
}

func TestSet_APIBaseURL(t *testing.T) {
	setupTestConfig(t)

	_, stderr := execConfig(t, "set", "api-base-url", "https://example.test")

	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.APIBaseURL != "https://example.test" {
		t.Errorf("expected APIBaseURL persisted, got %q", cfg.APIBaseURL)
	}
}
