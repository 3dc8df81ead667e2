package oauth2

// TokenRequest holds the parsed body parameters of a token endpoint request.
// Which fields are required depends on the grant type; the grant handlers
// report a missing required field as an invalid_request error naming the
// parameter.
type TokenRequest struct {
	// GrantType selects the grant handler. Required for all requests.
	GrantType string

	// ClientID identifies the OAuth2 client making the request.
	ClientID string

	// ClientSecret authenticates confidential clients. Public clients omit it.
	ClientSecret string

	// ClientSecretPresent distinguishes an absent client_secret parameter
	// from an empty one, so the missing-parameter error can be reported
	// before client authentication runs.
	ClientSecretPresent bool

	// Code is the authorization code being redeemed (authorization_code grant).
	Code string

	// RedirectURI must echo the redirect_uri used at authorization time.
	RedirectURI string

	// CodeVerifier is the PKCE verifier matching the code's stored challenge.
	CodeVerifier string

	// RefreshToken is the token being exchanged (refresh_token grant).
	RefreshToken string

	// Scope optionally narrows the granted scopes (refresh and password grants).
	Scope string

	// Username and Password carry resource-owner credentials (password grant).
	Username string
	Password string

	// DeviceCode is the polled device code (device_code grant).
	DeviceCode string
}
