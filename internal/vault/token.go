package vault

import "time"

// Token is the credential record stored per location.
type Token struct {
	// AccessToken is the bearer token for CRM calls.
	AccessToken string `json:"accessToken"`

	// RefreshToken is present only for refreshable grants.
	RefreshToken string `json:"refreshToken,omitempty"`

	// ExpiresAt is the absolute expiry in Unix milliseconds.
	ExpiresAt int64 `json:"expiresAt"`

	// Scope is the space-delimited set of granted permissions.
	Scope string `json:"scope"`
}

// ExpiresSoon reports whether the token is expired, or will expire
// within buffer of now.
func (t *Token) ExpiresSoon(now time.Time, buffer time.Duration) bool {
	return now.UnixMilli() > t.ExpiresAt-buffer.Milliseconds()
}

// Refreshable reports whether the record carries a refresh token.
func (t *Token) Refreshable() bool {
	return t.RefreshToken != ""
}
