package oauth2

// TokenResponse is the success envelope returned from the token endpoint for
// every grant type, per RFC 6749 §5.1.
type TokenResponse struct {
	// AccessToken is the signed bearer token for protected resources.
	AccessToken string `json:"access_token,omitempty"`

	// TokenType is always "bearer".
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the access token lifetime in seconds, computed by the
	// issuer relative to its own clock.
	ExpiresIn int `json:"expires_in,omitempty"`

	// RefreshToken is an opaque token for obtaining new access tokens.
	// Omitted for grants that do not issue one.
	RefreshToken string `json:"refresh_token,omitempty"`

	// IDToken is the signed OpenID Connect ID token, present when the
	// exchange carried the openid scope.
	IDToken string `json:"id_token,omitempty"`

	// Scope is the space-delimited granted scope set; may be narrower than
	// requested.
	Scope string `json:"scope,omitempty"`
}

// DeviceAuthorizationResponse is returned from the device authorization
// endpoint, per RFC 8628 §3.2.
type DeviceAuthorizationResponse struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
}
