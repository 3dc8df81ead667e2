package codes

import (
	"time"
)

// AuthorizationCode is a single-use grant artifact minted at consent time and
// redeemed exactly once at the token endpoint.
type AuthorizationCode struct {
	CodeID      string
	ClientID    string
	RedirectURI string // must echo the URI used at authorization time
	UserID      string
	ExpiryDate  time.Time
	Scopes      []string

	// PKCE binding; empty when no challenge was supplied.
	CodeChallenge       string
	CodeChallengeMethod string

	// Nonce carries the OpenID Connect nonce through to ID token issuance.
	Nonce string
}

// IsExpired reports whether the code has passed its expiry at the given time.
func (c *AuthorizationCode) IsExpired(now time.Time) bool {
	return c.ExpiryDate.Before(now)
}

// DeviceCode is the device-flow counterpart of an authorization code. The
// device polls the token endpoint with DeviceCodeID while the user approves
// UserCode on a second device.
type DeviceCode struct {
	DeviceCodeID string
	UserCode     string
	ClientID     string
	UserID       string // bound once the user approves
	ExpiryDate   time.Time
	Scopes       []string
	Interval     time.Duration
	Approved     bool
}

// IsExpired reports whether the device code has passed its expiry.
func (d *DeviceCode) IsExpired(now time.Time) bool {
	return d.ExpiryDate.Before(now)
}
