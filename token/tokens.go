package token

import (
	"time"
)

// AccessToken is the claims contract of an issued bearer token. Validity is
// simply "not expired"; scope sufficiency is checked by the Authenticator at
// the point of use.
type AccessToken struct {
	TokenString string    // signed JWT handed to the client
	JTI         string    // unique token id
	ClientID    string
	UserID      string    // empty for client-credentials tokens
	Scopes      []string  // nil when the grant carried no scope restriction
	ExpiryTime  time.Time
}

// IsExpired reports whether the token has passed its expiry at the given time.
func (t *AccessToken) IsExpired(now time.Time) bool {
	return t.ExpiryTime.Before(now)
}

// HasScope reports whether the token's scope set contains the scope.
func (t *AccessToken) HasScope(scope string) bool {
	for _, s := range t.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// RefreshToken is the claims contract of an issued refresh token. The token
// string handed to the client is an opaque random value; these fields are the
// server-side record it resolves to. The scope set is mutable in one
// direction only: a refresh exchange may narrow it, and a narrowed set never
// implicitly re-widens.
type RefreshToken struct {
	TokenString string
	ClientID    string
	UserID      string
	Scopes      []string
	Expiration  time.Time
}

// IsExpired reports whether the refresh token has passed its expiry.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return t.Expiration.Before(now)
}

// HasScope reports whether the refresh token's scope set contains the scope.
func (t *RefreshToken) HasScope(scope string) bool {
	for _, s := range t.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// IDToken is the claims contract of an issued OpenID Connect ID token.
type IDToken struct {
	TokenString string
	JTI         string
	Issuer      string
	Subject     string   // = userID
	Audience    []string // = [clientID]
	Expiry      time.Time
	IssuedAt    time.Time
	Nonce       string // echoes the nonce supplied at authorization time
	AuthTime    *time.Time
}
