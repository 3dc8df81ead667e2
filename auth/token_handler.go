package auth

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/authcore-io/authcore/codes"
	"github.com/authcore-io/authcore/oauth2"
	"github.com/authcore-io/authcore/token"
	"github.com/authcore-io/authcore/users"
)

// Error descriptions returned from the token endpoint. The artifact failures
// are deliberately undifferentiated so the endpoint cannot be used as an
// oracle for which check failed.
const (
	descInvalidCode          = "The code provided was invalid or expired, or the redirect URI did not match"
	descInvalidRefreshToken  = "The refresh token is invalid"
	descInvalidCredentials   = "Request had invalid credentials"
	descUnknownScope         = "Request contained an unknown scope"
	descInvalidScope         = "Request contained an invalid scope"
	descElevatedScopes       = "Request contained elevated scopes"
	descDeviceCodeInvalid    = "The device code provided was invalid or expired"
	descAuthorizationPending = "The authorization request is still pending"
	descSlowDown             = "Polling too frequently, slow down"
	descDeviceCodeExpired    = "The device code has expired"
)

// TokenHandler dispatches token endpoint requests to the grant handlers.
// Every handler returns either the success envelope or a wire-level error;
// nothing else escapes to the transport layer.
type TokenHandler struct {
	clientValidator   *ClientValidator
	scopeValidator    *ScopeValidator
	codeValidator     *CodeValidator
	codeManager       codes.Manager
	tokenManager      token.Manager
	userManager       users.Manager
	authenticator     *token.Authenticator
	accessTokenExpiry int
	idTokenExpiry     int
	verificationURI   string
	logger            zerolog.Logger
	nowFunc           func() time.Time
}

// TokenHandlerOption configures a TokenHandler.
type TokenHandlerOption func(*TokenHandler)

// WithTokenExpiry sets the access token lifetime in seconds for all grants.
func WithTokenExpiry(seconds int) TokenHandlerOption {
	return func(h *TokenHandler) { h.accessTokenExpiry = seconds }
}

// WithHandlerIDTokenExpiry sets the ID token lifetime in seconds.
func WithHandlerIDTokenExpiry(seconds int) TokenHandlerOption {
	return func(h *TokenHandler) { h.idTokenExpiry = seconds }
}

// WithVerificationURI sets the URI users visit to approve device codes.
func WithVerificationURI(uri string) TokenHandlerOption {
	return func(h *TokenHandler) { h.verificationURI = uri }
}

// WithLogger sets the structured logger for grant failures.
func WithLogger(logger zerolog.Logger) TokenHandlerOption {
	return func(h *TokenHandler) { h.logger = logger }
}

// WithHandlerNowFunc overrides the clock, for tests.
func WithHandlerNowFunc(nowFunc func() time.Time) TokenHandlerOption {
	return func(h *TokenHandler) { h.nowFunc = nowFunc }
}

func NewTokenHandler(
	clientValidator *ClientValidator,
	scopeValidator *ScopeValidator,
	codeValidator *CodeValidator,
	codeManager codes.Manager,
	tokenManager token.Manager,
	userManager users.Manager,
	authenticator *token.Authenticator,
	opts ...TokenHandlerOption,
) *TokenHandler {
	h := &TokenHandler{
		clientValidator:   clientValidator,
		scopeValidator:    scopeValidator,
		codeValidator:     codeValidator,
		codeManager:       codeManager,
		tokenManager:      tokenManager,
		userManager:       userManager,
		authenticator:     authenticator,
		accessTokenExpiry: defaultAccessTokenExpiry,
		idTokenExpiry:     defaultIDTokenExpiry,
		verificationURI:   "/oauth/device",
		logger:            zerolog.Nop(),
		nowFunc:           time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle runs one token endpoint request through the grant dispatch.
func (h *TokenHandler) Handle(request *oauth2.TokenRequest) (*oauth2.TokenResponse, *oauth2.TokenError) {
	if request.GrantType == "" {
		return nil, oauth2.MissingParameterError(oauth2.ParamGrantType)
	}

	var (
		response *oauth2.TokenResponse
		tokenErr *oauth2.TokenError
	)
	switch oauth2.GrantType(request.GrantType) {
	case oauth2.AuthorizationCodeGrant:
		response, tokenErr = h.handleAuthorizationCodeGrant(request)
	case oauth2.RefreshTokenGrant:
		response, tokenErr = h.handleRefreshTokenGrant(request)
	case oauth2.ClientCredentialsGrant:
		response, tokenErr = h.handleClientCredentialsGrant(request)
	case oauth2.PasswordGrant:
		response, tokenErr = h.handlePasswordGrant(request)
	case oauth2.DeviceCodeGrant:
		response, tokenErr = h.handleDeviceCodeGrant(request)
	default:
		tokenErr = oauth2.UnsupportedGrantTypeError(request.GrantType)
	}

	if tokenErr != nil {
		h.logger.Debug().
			Str("grant_type", request.GrantType).
			Str("client_id", request.ClientID).
			Str("error", tokenErr.Code).
			Msg("token request rejected")
	}
	return response, tokenErr
}

// authenticateClient maps validator sentinels onto wire errors for the grant
// named in unauthorized_client descriptions.
func (h *TokenHandler) authenticateClient(clientID, clientSecret string, grantType oauth2.GrantType, checkConfidential bool, displayGrant oauth2.GrantType) (*oauth2.TokenError, bool) {
	_, err := h.clientValidator.AuthenticateClient(clientID, clientSecret, grantType, checkConfidential)
	switch err {
	case nil:
		return nil, true
	case ErrUnauthorized:
		return oauth2.InvalidClientError(), false
	case ErrForbidden, ErrNotFirstParty, ErrNotConfidential:
		return oauth2.UnauthorizedClientError(displayGrant), false
	default:
		return oauth2.ServerError(), false
	}
}

// validateScopes maps scope sentinels onto the invalid_scope envelope.
func (h *TokenHandler) validateScopes(scopes []string, clientID string) *oauth2.TokenError {
	client, err := h.clientValidator.clientRepo.Get(clientID)
	if err != nil {
		return oauth2.ServerError()
	}
	switch h.scopeValidator.ValidateScopes(scopes, client) {
	case nil:
		return nil
	case ErrUnknownScope:
		return oauth2.InvalidScopeError(descUnknownScope)
	case ErrInvalidScope:
		return oauth2.InvalidScopeError(descInvalidScope)
	default:
		return oauth2.ServerError()
	}
}

func joinScopes(scopes []string) string {
	return strings.Join(scopes, " ")
}
