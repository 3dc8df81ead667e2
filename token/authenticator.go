package token

import (
	"strings"
	"time"
)

// Authenticator performs the resource-side checks on resolved tokens.
type Authenticator struct {
	nowFunc func() time.Time
}

// AuthenticatorOption configures an Authenticator.
type AuthenticatorOption func(*Authenticator)

// WithAuthenticatorNowFunc overrides the clock, for tests.
func WithAuthenticatorNowFunc(nowFunc func() time.Time) AuthenticatorOption {
	return func(a *Authenticator) { a.nowFunc = nowFunc }
}

func NewAuthenticator(opts ...AuthenticatorOption) *Authenticator {
	a := &Authenticator{nowFunc: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ValidateAccessToken reports whether the token is live and carries every
// scope in requiredScopes (whitespace separated). With no required scopes any
// unexpired token passes. When scopes are required, a token without a scope
// set fails.
func (a *Authenticator) ValidateAccessToken(accessToken *AccessToken, requiredScopes string) bool {
	if accessToken == nil || accessToken.IsExpired(a.nowFunc()) {
		return false
	}

	required := strings.Fields(requiredScopes)
	if len(required) == 0 {
		return true
	}
	if len(accessToken.Scopes) == 0 {
		return false
	}
	for _, scope := range required {
		if !accessToken.HasScope(scope) {
			return false
		}
	}
	return true
}

// ValidateRefreshToken reports whether the token is live and was issued to
// the given client.
func (a *Authenticator) ValidateRefreshToken(refreshToken *RefreshToken, clientID string) bool {
	if refreshToken == nil || refreshToken.IsExpired(a.nowFunc()) {
		return false
	}
	return refreshToken.ClientID == clientID
}
