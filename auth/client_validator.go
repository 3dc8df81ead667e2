package auth

import (
	"strings"

	"github.com/authcore-io/authcore/clients"
	"github.com/authcore-io/authcore/oauth2"
)

// ClientValidator gates both ends of the protocol: ValidateClient for the
// authorization endpoint, AuthenticateClient for the token endpoint. Both are
// pure checks with no side effects.
type ClientValidator struct {
	clientRepo     clients.Repo
	scopeValidator *ScopeValidator
	production     bool
}

// ClientValidatorOption configures a ClientValidator.
type ClientValidatorOption func(*ClientValidator)

// WithProductionMode enforces https redirect URIs at the authorization
// endpoint.
func WithProductionMode(production bool) ClientValidatorOption {
	return func(v *ClientValidator) { v.production = production }
}

func NewClientValidator(clientRepo clients.Repo, scopeValidator *ScopeValidator, opts ...ClientValidatorOption) *ClientValidator {
	v := &ClientValidator{
		clientRepo:     clientRepo,
		scopeValidator: scopeValidator,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateClient validates an authorization request against the client's
// registration. Checks run in a fixed order; the first failure wins, so the
// caller can rely on error classification.
func (v *ClientValidator) ValidateClient(clientID string, responseType oauth2.ResponseType, redirectURI string, scopes []string) (*clients.Client, error) {
	client, err := v.clientRepo.Get(clientID)
	if err != nil || client == nil {
		return nil, ErrInvalidClientID
	}

	if client.Confidential && responseType != oauth2.CodeResponseType {
		return nil, ErrConfidentialClientTokenGrant
	}

	if !client.ValidateRedirectURI(redirectURI) {
		return nil, ErrInvalidRedirectURI
	}

	switch responseType {
	case oauth2.CodeResponseType:
		if client.AllowedFlow != oauth2.FlowAuthorization {
			return nil, ErrForbidden
		}
	case oauth2.TokenResponseType, oauth2.IDTokenResponseType, oauth2.TokenAndIDTokenResponseType:
		if client.AllowedFlow != oauth2.FlowImplicit {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrInvalidResponseType
	}

	if err := v.scopeValidator.ValidateScopes(scopes, client); err != nil {
		return nil, err
	}

	if v.production && !strings.HasPrefix(redirectURI, "https://") {
		return nil, ErrHTTPRedirectURI
	}

	return client, nil
}

// AuthenticateClient authenticates a client at the token endpoint. The secret
// comparison is constant time. An empty grantType skips the flow check (the
// refresh and authorization-code handlers authorize via the artifact
// instead). checkConfidential additionally requires a confidential
// registration.
func (v *ClientValidator) AuthenticateClient(clientID, clientSecret string, grantType oauth2.GrantType, checkConfidential bool) (*clients.Client, error) {
	client, err := v.clientRepo.Get(clientID)
	if err != nil || client == nil {
		return nil, ErrUnauthorized
	}

	if !client.SecretMatches(clientSecret) {
		return nil, ErrUnauthorized
	}

	if grantType != "" {
		flow, known := oauth2.FlowForGrantType(grantType)
		if !known || client.AllowedFlow != flow {
			return nil, ErrForbidden
		}
		if grantType == oauth2.PasswordGrant && !client.FirstParty {
			return nil, ErrNotFirstParty
		}
	}

	if checkConfidential && !client.Confidential {
		return nil, ErrNotConfidential
	}

	return client, nil
}
