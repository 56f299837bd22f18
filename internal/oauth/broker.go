// Package oauth performs the two token exchanges the vault depends on
// against the GHL OAuth server.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"liv8/ghlm/internal/domain"
	"liv8/ghlm/internal/vault"
)

const (
	// DefaultBaseURL is the GHL services host carrying /oauth/token.
	DefaultBaseURL = "https://services.leadconnectorhq.com"

	requestTimeout = 30 * time.Second

	// defaultLifetime applies when the server omits expires_in.
	// GHL access tokens live 24 hours.
	defaultLifetime = 24 * time.Hour
)

// Broker exchanges OAuth grants for vault tokens.
type Broker interface {
	// ExchangeCode trades an authorization code for a token pair.
	ExchangeCode(ctx context.Context, code string) (*vault.Token, error)

	// Refresh trades a refresh token for a fresh token pair.
	Refresh(ctx context.Context, refreshToken string) (*vault.Token, error)
}

// Compile-time check that HTTPBroker satisfies Broker.
var _ Broker = (*HTTPBroker)(nil)

// HTTPBroker implements Broker over the GHL OAuth endpoint. Exchange
// failures always propagate as explicit errors; nothing is swallowed
// here — invalidation decisions belong to the vault.
type HTTPBroker struct {
	baseURL      string
	clientID     string
	clientSecret string
	client       *http.Client
	now          func() time.Time
}

// NewHTTPBroker returns a broker for the given OAuth client. An empty
// baseURL selects the production GHL host.
func NewHTTPBroker(baseURL, clientID, clientSecret string) *HTTPBroker {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPBroker{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		client:       &http.Client{Timeout: requestTimeout},
		now:          time.Now,
	}
}

// tokenResponse is the GHL OAuth token payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`
}

// oauthError is the GHL OAuth error payload.
type oauthError struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
	Message     string `json:"message"`
}

func (b *HTTPBroker) ExchangeCode(ctx context.Context, code string) (*vault.Token, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("empty authorization code: %w", domain.ErrAuthentication)
	}

	form := url.Values{
		"grant_type": {"authorization_code"},
		"code":       {code},
	}
	return b.exchange(ctx, form)
}

func (b *HTTPBroker) Refresh(ctx context.Context, refreshToken string) (*vault.Token, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, fmt.Errorf("empty refresh token: %w", domain.ErrAuthentication)
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	return b.exchange(ctx, form)
}

func (b *HTTPBroker) exchange(ctx context.Context, form url.Values) (*vault.Token, error) {
	form.Set("client_id", b.clientID)
	form.Set("client_secret", b.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/oauth/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("oauth: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, fmt.Errorf("oauth: token endpoint: %w", domain.ErrTimeout)
		}
		return nil, fmt.Errorf("oauth: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("oauth: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: %w", exchangeErrorMessage(resp, body), domain.ErrAuthentication)
	}

	var payload tokenResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("oauth: failed to decode response: %w", err)
	}
	if payload.AccessToken == "" {
		return nil, fmt.Errorf("oauth: token response missing access_token: %w", domain.ErrAuthentication)
	}

	lifetime := defaultLifetime
	if payload.ExpiresIn > 0 {
		lifetime = time.Duration(payload.ExpiresIn) * time.Second
	}

	return &vault.Token{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		ExpiresAt:    b.now().Add(lifetime).UnixMilli(),
		Scope:        payload.Scope,
	}, nil
}

// exchangeErrorMessage extracts the server's reported message, falling
// back to the raw status line when the body is not parseable JSON.
func exchangeErrorMessage(resp *http.Response, body []byte) string {
	var payload oauthError
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Description != "":
			return "oauth: " + payload.Description
		case payload.Message != "":
			return "oauth: " + payload.Message
		case payload.Error != "":
			return "oauth: " + payload.Error
		}
	}
	return "oauth: " + resp.Status
}
