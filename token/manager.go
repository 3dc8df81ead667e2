package token

import "errors"

var (
	// ErrTokenNotFound is returned when a token string resolves to no record.
	ErrTokenNotFound = errors.New("token not found")

	// ErrInvalidToken is returned when an access token fails signature or
	// claims verification.
	ErrInvalidToken = errors.New("invalid token")

	// ErrScopeWidening is returned when a refresh token scope update attempts
	// to add a scope the token does not already hold.
	ErrScopeWidening = errors.New("refresh token scopes can only be narrowed")
)

// Manager issues and resolves the three token kinds. Access and ID tokens are
// signed JWTs; refresh tokens are opaque strings backed by a server-side
// record. Expiry instants are always computed from the manager's own clock,
// never trusted from the caller.
type Manager interface {
	// GenerateAccessToken issues a bearer access token.
	GenerateAccessToken(clientID, userID string, scopes []string, expirySeconds int) (*AccessToken, error)

	// GenerateAccessRefreshTokens issues an access token together with a
	// refresh token bound to the same client, user and scopes.
	GenerateAccessRefreshTokens(clientID, userID string, scopes []string, accessExpirySeconds int) (*AccessToken, *RefreshToken, error)

	// GenerateTokens issues the full set for an OpenID Connect exchange:
	// access, refresh and ID token. The nonce, when non-empty, is echoed in
	// the ID token claims.
	GenerateTokens(clientID, userID string, scopes []string, accessExpirySeconds, idExpirySeconds int, nonce string) (*AccessToken, *RefreshToken, *IDToken, error)

	// GenerateIDToken issues an ID token alone, for response types that
	// return one directly in the redirect fragment.
	GenerateIDToken(clientID, userID string, expirySeconds int, nonce string) (*IDToken, error)

	// GetAccessToken verifies a token string and returns its claims.
	// ErrInvalidToken when the signature or claims do not check out.
	GetAccessToken(tokenString string) (*AccessToken, error)

	// GetRefreshToken resolves an opaque refresh token string to its record.
	// ErrTokenNotFound when no record exists.
	GetRefreshToken(tokenString string) (*RefreshToken, error)

	// UpdateRefreshToken replaces the stored scope set of a refresh token.
	// Only narrowing is permitted; ErrScopeWidening otherwise.
	UpdateRefreshToken(refreshToken *RefreshToken, scopes []string) error
}
