// Package vault stores CRM OAuth credentials per location with
// transparent expiry-aware refresh.
//
// The vault exclusively owns credential persistence: callers never
// write to the underlying store directly. A record returned by
// GetToken is never expired by more than the safety buffer — the vault
// refreshes or discards stale records before returning them.
package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"liv8/ghlm/internal/domain"
	"liv8/ghlm/internal/kvstore"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"
)

const (
	// KeyPrefix namespaces vault records in the underlying store.
	KeyPrefix = "vault_v1_"

	// SessionTokenKey mirrors the bare access token for ambient
	// lookups outside a specific-location context.
	SessionTokenKey = "sessionToken"

	// CurrentLocationKey mirrors the last-used location ID.
	CurrentLocationKey = "currentLocationId"

	// SafetyBuffer is the lead time before actual expiry at which a
	// token is proactively refreshed.
	SafetyBuffer = 5 * time.Minute
)

// RefreshBroker exchanges a refresh token for a fresh token pair.
// Implemented by oauth.HTTPBroker.
type RefreshBroker interface {
	Refresh(ctx context.Context, refreshToken string) (*Token, error)
}

// Vault persists encrypted, location-scoped credential records.
type Vault struct {
	store  kvstore.Store
	broker RefreshBroker
	cipher Cipher
	logger *log.Logger

	// refreshes collapses concurrent refresh attempts for the same
	// location into a single broker call.
	refreshes singleflight.Group

	// now is replaceable for tests.
	now func() time.Time
}

// Option configures a Vault.
type Option func(*Vault)

// WithCipher swaps the cipher used for records at rest. Records written
// under a previous cipher will no longer decode.
func WithCipher(c Cipher) Option {
	return func(v *Vault) { v.cipher = c }
}

// New returns a Vault over store, refreshing through broker. A nil
// broker yields a vault that can only serve and invalidate static
// tokens.
func New(store kvstore.Store, broker RefreshBroker, opts ...Option) *Vault {
	v := &Vault{
		store:  store,
		broker: broker,
		cipher: NewXORCipher(""),
		logger: log.Default().WithPrefix("vault"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func recordKey(locationID string) string {
	return KeyPrefix + locationID
}

// SaveToken serializes, encrypts, and persists the token under the
// location's key, and mirrors the bare access token and location ID
// under the ambient session keys.
//
// SaveToken never fails to the caller: a storage or encoding failure is
// logged and treated as "save did not happen". Callers that must know
// re-check via GetToken.
func (v *Vault) SaveToken(ctx context.Context, locationID string, token *Token) {
	if locationID == "" || token == nil {
		v.logger.Error("missing location ID or token for save")
		return
	}

	payload, err := json.Marshal(token)
	if err != nil {
		v.logger.Error("token serialization failed", "err", err)
		return
	}
	encrypted, err := v.cipher.Encrypt(payload)
	if err != nil {
		v.logger.Error("token encryption failed", "err", err)
		return
	}

	if err := v.store.Set(ctx, recordKey(locationID), encrypted); err != nil {
		v.logger.Error("save failed", "location", locationID, "err", err)
		return
	}
	if err := v.store.Set(ctx, SessionTokenKey, token.AccessToken); err != nil {
		v.logger.Warn("session mirror write failed", "err", err)
	}
	if err := v.store.Set(ctx, CurrentLocationKey, locationID); err != nil {
		v.logger.Warn("location mirror write failed", "err", err)
	}
	v.logger.Info("credentials saved", "location", locationID)
}

// GetToken returns a valid credential record for the location, or nil
// when none is stored.
//
// A corrupt record (undecryptable or unparseable) is deleted and
// reported as absent. A record expiring within the safety buffer is
// refreshed through the broker when possible; otherwise the record is
// cleared and ErrAuthentication is returned. Concurrent callers racing
// past the expiry boundary share a single refresh.
func (v *Vault) GetToken(ctx context.Context, locationID string) (*Token, error) {
	if locationID == "" {
		return nil, nil
	}

	encrypted, ok, err := v.store.Get(ctx, recordKey(locationID))
	if err != nil {
		v.logger.Error("storage access failed", "location", locationID, "err", err)
		return nil, nil
	}
	if !ok {
		return nil, nil
	}

	token, err := v.decode(encrypted)
	if err != nil {
		v.logger.Warn("corrupt token record, clearing", "location", locationID, "err", err)
		v.ClearToken(ctx, locationID)
		return nil, nil
	}

	if !token.ExpiresSoon(v.now(), SafetyBuffer) {
		return token, nil
	}

	if !token.Refreshable() || v.broker == nil {
		v.logger.Warn("static token expired", "location", locationID)
		v.ClearToken(ctx, locationID)
		return nil, fmt.Errorf("session expired, reconnect location %s: %w", locationID, domain.ErrAuthentication)
	}

	return v.refresh(ctx, locationID, token.RefreshToken)
}

// refresh performs a single-flight token refresh for the location.
func (v *Vault) refresh(ctx context.Context, locationID, refreshToken string) (*Token, error) {
	v.logger.Info("token expiring, refreshing", "location", locationID)

	result, err, _ := v.refreshes.Do(locationID, func() (any, error) {
		fresh, err := v.broker.Refresh(ctx, refreshToken)
		if err != nil {
			return nil, err
		}
		v.SaveToken(ctx, locationID, fresh)
		return fresh, nil
	})
	if err != nil {
		v.logger.Error("token refresh failed", "location", locationID, "err", err)
		v.ClearToken(ctx, locationID)
		return nil, fmt.Errorf("session expired, reconnect location %s: %w", locationID, domain.ErrAuthentication)
	}

	return result.(*Token), nil
}

func (v *Vault) decode(encrypted string) (*Token, error) {
	payload, err := v.cipher.Decrypt(encrypted)
	if err != nil {
		return nil, err
	}
	var token Token
	if err := json.Unmarshal(payload, &token); err != nil {
		return nil, fmt.Errorf("vault: unparseable token record: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("vault: token record missing access token")
	}
	return &token, nil
}

// ClearToken deletes the location's record and the mirrored session
// keys. Clearing an absent record is not an error.
func (v *Vault) ClearToken(ctx context.Context, locationID string) {
	err := v.store.Remove(ctx, recordKey(locationID), SessionTokenKey, CurrentLocationKey)
	if err != nil {
		v.logger.Warn("failed to clear token", "location", locationID, "err", err)
		return
	}
	v.logger.Info("credentials cleared", "location", locationID)
}

// HasValidToken reduces any GetToken outcome to a boolean.
func (v *Vault) HasValidToken(ctx context.Context, locationID string) bool {
	token, err := v.GetToken(ctx, locationID)
	return err == nil && token != nil
}
