package auth

import (
	"github.com/authcore-io/authcore/oauth2"
)

const scopeOpenID = "openid"

func (h *TokenHandler) handleAuthorizationCodeGrant(request *oauth2.TokenRequest) (*oauth2.TokenResponse, *oauth2.TokenError) {
	if request.Code == "" {
		return nil, oauth2.MissingParameterError(oauth2.ParamCode)
	}
	if request.RedirectURI == "" {
		return nil, oauth2.MissingParameterError(oauth2.ParamRedirectURI)
	}
	if request.ClientID == "" {
		return nil, oauth2.MissingParameterError(oauth2.ParamClientID)
	}

	// Public PKCE clients authenticate with an empty secret; the code itself
	// carries the authorization, so no flow check here.
	if tokenErr, ok := h.authenticateClient(request.ClientID, request.ClientSecret, "", false, oauth2.AuthorizationCodeGrant); !ok {
		return nil, tokenErr
	}

	code, err := h.codeManager.GetCode(request.Code)
	if err != nil {
		return nil, oauth2.InvalidGrantError(descInvalidCode)
	}
	if !h.codeValidator.ValidateCode(code, request.ClientID, request.RedirectURI, request.CodeVerifier) {
		return nil, oauth2.InvalidGrantError(descInvalidCode)
	}
	if tokenErr := h.validateScopes(code.Scopes, request.ClientID); tokenErr != nil {
		return nil, tokenErr
	}

	// Consumption is the commit point. A concurrent exchange of the same
	// code loses here and gets the same undifferentiated error.
	if err := h.codeManager.CodeUsed(code); err != nil {
		return nil, oauth2.InvalidGrantError(descInvalidCode)
	}

	if contains(code.Scopes, scopeOpenID) {
		accessToken, refreshToken, idToken, err := h.tokenManager.GenerateTokens(
			request.ClientID, code.UserID, code.Scopes, h.accessTokenExpiry, h.idTokenExpiry, code.Nonce)
		if err != nil {
			return nil, oauth2.ServerError()
		}
		return &oauth2.TokenResponse{
			AccessToken:  accessToken.TokenString,
			RefreshToken: refreshToken.TokenString,
			IDToken:      idToken.TokenString,
			TokenType:    "bearer",
			ExpiresIn:    h.accessTokenExpiry,
			Scope:        joinScopes(code.Scopes),
		}, nil
	}

	accessToken, refreshToken, err := h.tokenManager.GenerateAccessRefreshTokens(
		request.ClientID, code.UserID, code.Scopes, h.accessTokenExpiry)
	if err != nil {
		return nil, oauth2.ServerError()
	}
	return &oauth2.TokenResponse{
		AccessToken:  accessToken.TokenString,
		RefreshToken: refreshToken.TokenString,
		TokenType:    "bearer",
		ExpiresIn:    h.accessTokenExpiry,
		Scope:        joinScopes(code.Scopes),
	}, nil
}

func (h *TokenHandler) handleRefreshTokenGrant(request *oauth2.TokenRequest) (*oauth2.TokenResponse, *oauth2.TokenError) {
	if request.RefreshToken == "" {
		return nil, oauth2.MissingParameterError(oauth2.ParamRefreshToken)
	}
	if request.ClientID == "" {
		return nil, oauth2.MissingParameterError(oauth2.ParamClientID)
	}
	if !request.ClientSecretPresent {
		return nil, oauth2.MissingParameterError(oauth2.ParamClientSecret)
	}

	if tokenErr, ok := h.authenticateClient(request.ClientID, request.ClientSecret, "", true, oauth2.RefreshTokenGrant); !ok {
		return nil, tokenErr
	}

	refreshToken, err := h.tokenManager.GetRefreshToken(request.RefreshToken)
	if err != nil {
		return nil, oauth2.InvalidGrantError(descInvalidRefreshToken)
	}
	if !h.authenticator.ValidateRefreshToken(refreshToken, request.ClientID) {
		return nil, oauth2.InvalidGrantError(descInvalidRefreshToken)
	}

	scopes := refreshToken.Scopes
	if request.Scope != "" {
		requested := oauth2.SplitScopes(request.Scope)
		if tokenErr := h.validateScopes(requested, request.ClientID); tokenErr != nil {
			return nil, tokenErr
		}
		for _, scope := range requested {
			if !refreshToken.HasScope(scope) {
				return nil, oauth2.InvalidScopeError(descElevatedScopes)
			}
		}
		// Narrowing persists: the token never regains the dropped scopes.
		if err := h.tokenManager.UpdateRefreshToken(refreshToken, requested); err != nil {
			return nil, oauth2.ServerError()
		}
		scopes = requested
	}

	accessToken, err := h.tokenManager.GenerateAccessToken(request.ClientID, refreshToken.UserID, scopes, h.accessTokenExpiry)
	if err != nil {
		return nil, oauth2.ServerError()
	}
	return &oauth2.TokenResponse{
		AccessToken:  accessToken.TokenString,
		RefreshToken: request.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    h.accessTokenExpiry,
		Scope:        joinScopes(scopes),
	}, nil
}

func (h *TokenHandler) handleClientCredentialsGrant(request *oauth2.TokenRequest) (*oauth2.TokenResponse, *oauth2.TokenError) {
	if request.ClientID == "" {
		return nil, oauth2.MissingParameterError(oauth2.ParamClientID)
	}
	if !request.ClientSecretPresent {
		return nil, oauth2.MissingParameterError(oauth2.ParamClientSecret)
	}

	if tokenErr, ok := h.authenticateClient(request.ClientID, request.ClientSecret, oauth2.ClientCredentialsGrant, true, oauth2.ClientCredentialsGrant); !ok {
		return nil, tokenErr
	}

	scopes := oauth2.SplitScopes(request.Scope)
	if tokenErr := h.validateScopes(scopes, request.ClientID); tokenErr != nil {
		return nil, tokenErr
	}

	accessToken, refreshToken, err := h.tokenManager.GenerateAccessRefreshTokens(request.ClientID, "", scopes, h.accessTokenExpiry)
	if err != nil {
		return nil, oauth2.ServerError()
	}
	return &oauth2.TokenResponse{
		AccessToken:  accessToken.TokenString,
		RefreshToken: refreshToken.TokenString,
		TokenType:    "bearer",
		ExpiresIn:    h.accessTokenExpiry,
		Scope:        joinScopes(scopes),
	}, nil
}

func (h *TokenHandler) handlePasswordGrant(request *oauth2.TokenRequest) (*oauth2.TokenResponse, *oauth2.TokenError) {
	if request.Username == "" {
		return nil, oauth2.MissingParameterError(oauth2.ParamUsername)
	}
	if request.Password == "" {
		return nil, oauth2.MissingParameterError(oauth2.ParamPassword)
	}
	if request.ClientID == "" {
		return nil, oauth2.MissingParameterError(oauth2.ParamClientID)
	}

	if tokenErr, ok := h.authenticateClient(request.ClientID, request.ClientSecret, oauth2.PasswordGrant, false, oauth2.PasswordGrant); !ok {
		return nil, tokenErr
	}

	scopes := oauth2.SplitScopes(request.Scope)
	if tokenErr := h.validateScopes(scopes, request.ClientID); tokenErr != nil {
		return nil, tokenErr
	}

	userID, err := h.userManager.AuthenticateUser(request.Username, request.Password)
	if err != nil || userID == "" {
		return nil, oauth2.InvalidGrantError(descInvalidCredentials)
	}

	accessToken, refreshToken, err := h.tokenManager.GenerateAccessRefreshTokens(request.ClientID, userID, scopes, h.accessTokenExpiry)
	if err != nil {
		return nil, oauth2.ServerError()
	}
	return &oauth2.TokenResponse{
		AccessToken:  accessToken.TokenString,
		RefreshToken: refreshToken.TokenString,
		TokenType:    "bearer",
		ExpiresIn:    h.accessTokenExpiry,
		Scope:        joinScopes(scopes),
	}, nil
}
