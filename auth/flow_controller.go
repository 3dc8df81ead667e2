package auth

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/authcore-io/authcore/clients"
	"github.com/authcore-io/authcore/codes"
	"github.com/authcore-io/authcore/oauth2"
	"github.com/authcore-io/authcore/token"
)

const (
	defaultAccessTokenExpiry = 3600
	defaultIDTokenExpiry     = 3600
)

// AuthorizeRequest carries the validated parameters of an authorization
// request from the GET through the consent decision.
type AuthorizeRequest struct {
	ClientID            string
	RedirectURI         string
	ResponseType        oauth2.ResponseType
	Scopes              []string
	State               string
	Nonce               string
	CodeChallenge       string
	CodeChallengeMethod string
}

// FlowController drives the authorization endpoint state machine: validate
// the request, collect the consent decision, then turn it into the redirect
// the requested response type calls for. CSRF and session
// concerns stay at the transport layer; by the time CompleteAuthorization
// runs the decision is trusted.
type FlowController struct {
	clientValidator   *ClientValidator
	codeManager       codes.Manager
	tokenManager      token.Manager
	accessTokenExpiry int
	idTokenExpiry     int
}

// FlowControllerOption configures a FlowController.
type FlowControllerOption func(*FlowController)

// WithAccessTokenExpiry sets the implicit-grant access token lifetime in
// seconds.
func WithAccessTokenExpiry(seconds int) FlowControllerOption {
	return func(c *FlowController) { c.accessTokenExpiry = seconds }
}

// WithIDTokenExpiry sets the ID token lifetime in seconds.
func WithIDTokenExpiry(seconds int) FlowControllerOption {
	return func(c *FlowController) { c.idTokenExpiry = seconds }
}

func NewFlowController(clientValidator *ClientValidator, codeManager codes.Manager, tokenManager token.Manager, opts ...FlowControllerOption) *FlowController {
	c := &FlowController{
		clientValidator:   clientValidator,
		codeManager:       codeManager,
		tokenManager:      tokenManager,
		accessTokenExpiry: defaultAccessTokenExpiry,
		idTokenExpiry:     defaultIDTokenExpiry,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ValidateRequest checks an incoming authorization request before any consent
// page is shown. Response types that return an ID token directly require a
// nonce; the authorization code flow records one when supplied but does not
// demand it.
func (c *FlowController) ValidateRequest(request AuthorizeRequest) (*clients.Client, error) {
	client, err := c.clientValidator.ValidateClient(request.ClientID, request.ResponseType, request.RedirectURI, request.Scopes)
	if err != nil {
		return nil, err
	}
	if request.ResponseType.ContainsIDToken() && request.Nonce == "" {
		return nil, ErrMissingNonce
	}
	return client, nil
}

// CompleteAuthorization turns a consent decision into the redirect URL the
// user agent is sent to. Denial and an unrecognized response type redirect
// with an error rather than failing terminally, since the client is already
// validated. Scope and state are appended after the primary grant
// parameters.
func (c *FlowController) CompleteAuthorization(request AuthorizeRequest, userID string, approved bool) (string, error) {
	redirectURI := request.RedirectURI

	if !approved {
		redirectURI += "?error=access_denied&error_description=user+denied+the+request"
		return c.appendScopeAndState(redirectURI, request), nil
	}

	switch request.ResponseType {
	case oauth2.CodeResponseType:
		code, err := c.codeManager.GenerateCode(codes.CodeRequest{
			UserID:              userID,
			ClientID:            request.ClientID,
			RedirectURI:         request.RedirectURI,
			Scopes:              request.Scopes,
			CodeChallenge:       request.CodeChallenge,
			CodeChallengeMethod: request.CodeChallengeMethod,
			Nonce:               request.Nonce,
		})
		if err != nil {
			return "", errors.Wrap(err, "[FlowController.CompleteAuthorization] GenerateCode")
		}
		redirectURI += "?code=" + url.QueryEscape(code)

	case oauth2.TokenResponseType:
		accessToken, err := c.tokenManager.GenerateAccessToken(request.ClientID, userID, request.Scopes, c.accessTokenExpiry)
		if err != nil {
			return "", errors.Wrap(err, "[FlowController.CompleteAuthorization] GenerateAccessToken")
		}
		redirectURI += fmt.Sprintf("#token_type=bearer&access_token=%s&expires_in=%d",
			url.QueryEscape(accessToken.TokenString), c.accessTokenExpiry)

	case oauth2.IDTokenResponseType:
		idToken, err := c.tokenManager.GenerateIDToken(request.ClientID, userID, c.idTokenExpiry, request.Nonce)
		if err != nil {
			return "", errors.Wrap(err, "[FlowController.CompleteAuthorization] GenerateIDToken")
		}
		redirectURI += "#id_token=" + url.QueryEscape(idToken.TokenString)

	case oauth2.TokenAndIDTokenResponseType:
		accessToken, err := c.tokenManager.GenerateAccessToken(request.ClientID, userID, request.Scopes, c.accessTokenExpiry)
		if err != nil {
			return "", errors.Wrap(err, "[FlowController.CompleteAuthorization] GenerateAccessToken")
		}
		idToken, err := c.tokenManager.GenerateIDToken(request.ClientID, userID, c.idTokenExpiry, request.Nonce)
		if err != nil {
			return "", errors.Wrap(err, "[FlowController.CompleteAuthorization] GenerateIDToken")
		}
		redirectURI += fmt.Sprintf("#token_type=bearer&access_token=%s&expires_in=%d&id_token=%s",
			url.QueryEscape(accessToken.TokenString), c.accessTokenExpiry, url.QueryEscape(idToken.TokenString))

	default:
		redirectURI += "?error=invalid_request&error_description=unknown+response+type"
	}

	return c.appendScopeAndState(redirectURI, request), nil
}

func (c *FlowController) appendScopeAndState(redirectURI string, request AuthorizeRequest) string {
	if len(request.Scopes) > 0 {
		redirectURI += "&scope=" + url.QueryEscape(strings.Join(request.Scopes, " "))
	}
	if request.State != "" {
		redirectURI += "&state=" + url.QueryEscape(request.State)
	}
	return redirectURI
}
