package oauth2

import (
	"sort"
	"strings"
)

// ResponseType represents the OAuth 2.0 response type requested at the
// authorization endpoint.
type ResponseType string

const (
	// CodeResponseType returns an authorization code that must be exchanged
	// for tokens at the token endpoint.
	CodeResponseType ResponseType = "code"

	// TokenResponseType returns an access token directly in the redirect
	// fragment (implicit flow).
	TokenResponseType ResponseType = "token"

	// IDTokenResponseType returns a signed OpenID Connect ID token in the
	// redirect fragment. Requires a nonce.
	IDTokenResponseType ResponseType = "id_token"

	// TokenAndIDTokenResponseType is the hybrid response: both an access
	// token and an ID token in the redirect fragment. Requires a nonce.
	TokenAndIDTokenResponseType ResponseType = "id_token token"
)

// NormalizeResponseType canonicalizes a space-delimited response_type value
// so that "token id_token" and "id_token token" compare equal.
func NormalizeResponseType(raw string) ResponseType {
	parts := strings.Fields(raw)
	sort.Strings(parts)
	return ResponseType(strings.Join(parts, " "))
}

// ContainsIDToken reports whether the response type asks for an ID token.
func (rt ResponseType) ContainsIDToken() bool {
	for _, part := range strings.Fields(string(rt)) {
		if part == string(IDTokenResponseType) {
			return true
		}
	}
	return false
}

// CodeChallengeMethod represents the PKCE challenge transform.
type CodeChallengeMethod string

const (
	// CodeChallengeMethodS256 means code_challenge = BASE64URL(SHA256(verifier)).
	CodeChallengeMethodS256 CodeChallengeMethod = "S256"

	// CodeChallengeMethodPlain means the verifier is sent unhashed.
	CodeChallengeMethodPlain CodeChallengeMethod = "plain"
)

// GrantType represents the OAuth 2.0 grant type presented at the token
// endpoint.
type GrantType string

const (
	AuthorizationCodeGrant GrantType = "authorization_code"
	RefreshTokenGrant      GrantType = "refresh_token"
	ClientCredentialsGrant GrantType = "client_credentials"
	PasswordGrant          GrantType = "password"
	DeviceCodeGrant        GrantType = "urn:ietf:params:oauth:grant-type:device_code"
)

// FlowType identifies the single OAuth flow a client registration is allowed
// to use. A client record carries exactly one flow; the flow fully determines
// the response types and token-endpoint grant types available to the client.
type FlowType string

const (
	FlowAuthorization     FlowType = "authorization"
	FlowImplicit          FlowType = "implicit"
	FlowPassword          FlowType = "password"
	FlowClientCredentials FlowType = "client_credentials"
	FlowRefresh           FlowType = "refresh"
	FlowDeviceCode        FlowType = "device_code"
)

// FlowForGrantType maps a wire-level grant_type onto the registration flow
// that authorizes it.
func FlowForGrantType(gt GrantType) (FlowType, bool) {
	switch gt {
	case AuthorizationCodeGrant:
		return FlowAuthorization, true
	case RefreshTokenGrant:
		return FlowRefresh, true
	case ClientCredentialsGrant:
		return FlowClientCredentials, true
	case PasswordGrant:
		return FlowPassword, true
	case DeviceCodeGrant:
		return FlowDeviceCode, true
	}
	return "", false
}

// GrantTypeDisplayName is used in unauthorized_client error descriptions.
func GrantTypeDisplayName(gt GrantType) string {
	switch gt {
	case AuthorizationCodeGrant:
		return "Authorization Code"
	case RefreshTokenGrant:
		return "Refresh Token"
	case ClientCredentialsGrant:
		return "Client Credentials"
	case PasswordGrant:
		return "Password"
	case DeviceCodeGrant:
		return "Device Code"
	}
	return string(gt)
}

// SplitScopes splits a space-delimited scope string into trimmed scope
// tokens, dropping empty entries.
func SplitScopes(scopes string) []string {
	if strings.TrimSpace(scopes) == "" {
		return nil
	}
	result := make([]string, 0, 4)
	for _, s := range strings.Fields(scopes) {
		result = append(result, strings.TrimSpace(s))
	}
	return result
}
