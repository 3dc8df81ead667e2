package auth

import "errors"

// Sentinel errors raised by the validators. The transport layer maps them
// onto wire-level OAuth error envelopes; within the auth package they stay
// distinct so callers can classify failures.
var (
	ErrInvalidClientID              = errors.New("invalid client identifier")
	ErrConfidentialClientTokenGrant = errors.New("confidential clients must use the authorization code flow")
	ErrInvalidRedirectURI           = errors.New("redirect URI does not match a registered URI")
	ErrInvalidResponseType          = errors.New("invalid response type")
	ErrHTTPRedirectURI              = errors.New("redirect URI must use https")
	ErrForbidden                    = errors.New("client is not allowed to use this grant type")
	ErrUnauthorized                 = errors.New("invalid client credentials")
	ErrNotFirstParty                = errors.New("client is not a first party client")
	ErrNotConfidential              = errors.New("client is not a confidential client")
	ErrUnknownScope                 = errors.New("unknown scope")
	ErrInvalidScope                 = errors.New("scope not allowed for this client")
	ErrMissingNonce                 = errors.New("nonce is required for id_token response types")
)
