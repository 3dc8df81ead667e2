package oauth2

import (
	"fmt"
	"net/http"
)

// OAuth2 error codes, per RFC 6749 §5.2 and RFC 8628 §3.5.
const (
	ErrorCodeInvalidRequest       = "invalid_request"
	ErrorCodeInvalidClient        = "invalid_client"
	ErrorCodeInvalidGrant         = "invalid_grant"
	ErrorCodeInvalidScope         = "invalid_scope"
	ErrorCodeUnsupportedGrantType = "unsupported_grant_type"
	ErrorCodeUnauthorizedClient   = "unauthorized_client"
	ErrorCodeAccessDenied         = "access_denied"
	ErrorCodeAuthorizationPending = "authorization_pending"
	ErrorCodeSlowDown             = "slow_down"
	ErrorCodeExpiredToken         = "expired_token"
	ErrorCodeServerError          = "server_error"
)

// TokenError is the error envelope returned from the token endpoint. The
// machine-readable Code is deliberately coarse; the Description carries the
// human-readable distinction.
type TokenError struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
	Status      int    `json:"-"`
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// MissingParameterError reports an absent required body parameter.
func MissingParameterError(parameter string) *TokenError {
	return &TokenError{
		Code:        ErrorCodeInvalidRequest,
		Description: fmt.Sprintf("Request was missing the '%s' parameter", parameter),
		Status:      http.StatusBadRequest,
	}
}

// UnsupportedGrantTypeError reports an unknown grant_type value.
func UnsupportedGrantTypeError(grantType string) *TokenError {
	return &TokenError{
		Code:        ErrorCodeUnsupportedGrantType,
		Description: fmt.Sprintf("This server does not support the '%s' grant type", grantType),
		Status:      http.StatusBadRequest,
	}
}

// InvalidClientError reports failed client authentication. The description is
// generic on purpose: it never reveals which part of the check failed.
func InvalidClientError() *TokenError {
	return &TokenError{
		Code:        ErrorCodeInvalidClient,
		Description: "Request had invalid client credentials",
		Status:      http.StatusUnauthorized,
	}
}

// UnauthorizedClientError reports a client using a grant type its
// registration does not allow.
func UnauthorizedClientError(gt GrantType) *TokenError {
	return &TokenError{
		Code:        ErrorCodeUnauthorizedClient,
		Description: fmt.Sprintf("You are not authorized to use the %s grant type", GrantTypeDisplayName(gt)),
		Status:      http.StatusBadRequest,
	}
}

// InvalidGrantError reports a bad grant artifact. The description is shared
// across expiry, wrong-client, redirect mismatch and PKCE failure so that
// callers cannot use it as an oracle.
func InvalidGrantError(description string) *TokenError {
	return &TokenError{
		Code:        ErrorCodeInvalidGrant,
		Description: description,
		Status:      http.StatusBadRequest,
	}
}

// InvalidScopeError reports a scope failure; the unknown / invalid / elevated
// distinction lives only in the description.
func InvalidScopeError(description string) *TokenError {
	return &TokenError{
		Code:        ErrorCodeInvalidScope,
		Description: description,
		Status:      http.StatusBadRequest,
	}
}

// ServerError reports an unexpected internal failure. The description stays
// generic; details go to the log, not the wire.
func ServerError() *TokenError {
	return &TokenError{
		Code:        ErrorCodeServerError,
		Description: "An internal error occurred",
		Status:      http.StatusInternalServerError,
	}
}

// DeviceFlowError reports a device grant polling condition.
func DeviceFlowError(code, description string) *TokenError {
	return &TokenError{
		Code:        code,
		Description: description,
		Status:      http.StatusBadRequest,
	}
}
