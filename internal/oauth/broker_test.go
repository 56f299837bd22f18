package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"liv8/ghlm/internal/domain"
)

func newTestBroker(t *testing.T, serverURL string) *HTTPBroker {
	t.Helper()
	return NewHTTPBroker(serverURL, "test-client", "test-secret")
}

func tokenHandler(t *testing.T, wantGrant string, status int, payload any) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/oauth/token" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm failed: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != wantGrant {
			t.Errorf("grant_type = %q, want %q", got, wantGrant)
		}
		if got := r.PostForm.Get("client_id"); got != "test-client" {
			t.Errorf("client_id = %q, want test-client", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func TestExchangeCode_Success(t *testing.T) {
	srv := httptest.NewServer(tokenHandler(t, "authorization_code", http.StatusOK, map[string]any{
		"access_token":  "ghl_access_abc",
		"refresh_token": "ghl_refresh_abc",
		"expires_in":    86400,
		"scope":         "contacts.readonly contacts.write",
	}))
	defer srv.Close()

	b := newTestBroker(t, srv.URL)
	before := time.Now()

	token, err := b.ExchangeCode(context.Background(), "auth-code-123")
	if err != nil {
		t.Fatalf("ExchangeCode failed: %v", err)
	}
	if token.AccessToken != "ghl_access_abc" {
		t.Errorf("AccessToken = %q", token.AccessToken)
	}
	if token.RefreshToken != "ghl_refresh_abc" {
		t.Errorf("RefreshToken = %q", token.RefreshToken)
	}
	if token.Scope != "contacts.readonly contacts.write" {
		t.Errorf("Scope = %q", token.Scope)
	}

	// expires_in of 86400s should land ~24h out.
	wantMin := before.Add(24*time.Hour - time.Minute).UnixMilli()
	wantMax := before.Add(24*time.Hour + time.Minute).UnixMilli()
	if token.ExpiresAt < wantMin || token.ExpiresAt > wantMax {
		t.Errorf("ExpiresAt = %d, want within a minute of 24h from now", token.ExpiresAt)
	}
}

func TestExchangeCode_EmptyCode(t *testing.T) {
	b := newTestBroker(t, "http://unused.invalid")

	_, err := b.ExchangeCode(context.Background(), "  ")
	if !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
}

func TestRefresh_Success(t *testing.T) {
	srv := httptest.NewServer(tokenHandler(t, "refresh_token", http.StatusOK, map[string]any{
		"access_token":  "ghl_access_new",
		"refresh_token": "ghl_refresh_new",
		"expires_in":    86400,
		"scope":         "contacts.readonly",
	}))
	defer srv.Close()

	token, err := newTestBroker(t, srv.URL).Refresh(context.Background(), "ghl_refresh_old")
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if token.AccessToken != "ghl_access_new" {
		t.Errorf("AccessToken = %q", token.AccessToken)
	}
}

func TestRefresh_EmptyToken(t *testing.T) {
	b := newTestBroker(t, "http://unused.invalid")

	_, err := b.Refresh(context.Background(), "")
	if !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
}

func TestRefresh_RejectedByServer(t *testing.T) {
	srv := httptest.NewServer(tokenHandler(t, "refresh_token", http.StatusBadRequest, map[string]any{
		"error":             "invalid_grant",
		"error_description": "refresh token revoked",
	}))
	defer srv.Close()

	_, err := newTestBroker(t, srv.URL).Refresh(context.Background(), "ghl_refresh_revoked")
	if !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
	if got := err.Error(); !strings.Contains(got, "refresh token revoked") {
		t.Errorf("expected server message in error, got %q", got)
	}
}

func TestExchange_NonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	_, err := newTestBroker(t, srv.URL).ExchangeCode(context.Background(), "code")
	if !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
	if got := err.Error(); !strings.Contains(got, "502") {
		t.Errorf("expected status line in error, got %q", got)
	}
}

func TestExchange_MissingAccessToken(t *testing.T) {
	srv := httptest.NewServer(tokenHandler(t, "authorization_code", http.StatusOK, map[string]any{
		"scope": "contacts.readonly",
	}))
	defer srv.Close()

	_, err := newTestBroker(t, srv.URL).ExchangeCode(context.Background(), "code")
	if !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
}

func TestExchange_DefaultLifetimeWhenOmitted(t *testing.T) {
	srv := httptest.NewServer(tokenHandler(t, "authorization_code", http.StatusOK, map[string]any{
		"access_token": "ghl_access_abc",
		"scope":        "contacts.readonly",
	}))
	defer srv.Close()

	before := time.Now()
	token, err := newTestBroker(t, srv.URL).ExchangeCode(context.Background(), "code")
	if err != nil {
		t.Fatalf("ExchangeCode failed: %v", err)
	}
	if token.ExpiresAt < before.Add(23*time.Hour).UnixMilli() {
		t.Errorf("expected default 24h lifetime, got ExpiresAt=%d", token.ExpiresAt)
	}
}
