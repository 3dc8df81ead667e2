package auth_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/authcore-io/authcore/codes"
	"github.com/authcore-io/authcore/oauth2"
)

func TestTokenHandler_Dispatch(t *testing.T) {
	f := setupTestFixture(t)

	t.Run("missing grant_type", func(t *testing.T) {
		_, tokenErr := f.handler.Handle(&oauth2.TokenRequest{})
		require.NotNil(t, tokenErr)
		require.Equal(t, "invalid_request", tokenErr.Code)
		require.Equal(t, "Request was missing the 'grant_type' parameter", tokenErr.Description)
		require.Equal(t, http.StatusBadRequest, tokenErr.Status)
	})

	t.Run("unknown grant_type", func(t *testing.T) {
		_, tokenErr := f.handler.Handle(&oauth2.TokenRequest{GrantType: "implicit"})
		require.NotNil(t, tokenErr)
		require.Equal(t, "unsupported_grant_type", tokenErr.Code)
		require.Equal(t, "This server does not support the 'implicit' grant type", tokenErr.Description)
	})
}

func TestTokenHandler_AuthorizationCodeGrant(t *testing.T) {
	f := setupTestFixture(t)

	baseRequest := func(code string) *oauth2.TokenRequest {
		return &oauth2.TokenRequest{
			GrantType:           string(oauth2.AuthorizationCodeGrant),
			ClientID:            "web-client",
			ClientSecret:        "web-secret",
			ClientSecretPresent: true,
			Code:                code,
			RedirectURI:         "https://app.test/callback",
		}
	}

	t.Run("missing parameters reported in order", func(t *testing.T) {
		_, tokenErr := f.handler.Handle(&oauth2.TokenRequest{GrantType: string(oauth2.AuthorizationCodeGrant)})
		require.Equal(t, "Request was missing the 'code' parameter", tokenErr.Description)

		_, tokenErr = f.handler.Handle(&oauth2.TokenRequest{
			GrantType: string(oauth2.AuthorizationCodeGrant), Code: "x",
		})
		require.Equal(t, "Request was missing the 'redirect_uri' parameter", tokenErr.Description)

		_, tokenErr = f.handler.Handle(&oauth2.TokenRequest{
			GrantType: string(oauth2.AuthorizationCodeGrant), Code: "x", RedirectURI: "https://app.test/callback",
		})
		require.Equal(t, "Request was missing the 'client_id' parameter", tokenErr.Description)
	})

	t.Run("invalid client credentials", func(t *testing.T) {
		code := mintCode(t, f, codes.CodeRequest{ClientID: "web-client", RedirectURI: "https://app.test/callback", UserID: "user-1"})
		request := baseRequest(code)
		request.ClientSecret = "wrong"
		_, tokenErr := f.handler.Handle(request)
		require.Equal(t, "invalid_client", tokenErr.Code)
		require.Equal(t, "Request had invalid client credentials", tokenErr.Description)
		require.Equal(t, http.StatusUnauthorized, tokenErr.Status)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, tokenErr := f.handler.Handle(baseRequest("no-such-code"))
		require.Equal(t, "invalid_grant", tokenErr.Code)
		require.Equal(t, "The code provided was invalid or expired, or the redirect URI did not match", tokenErr.Description)
	})

	t.Run("redirect URI mismatch", func(t *testing.T) {
		code := mintCode(t, f, codes.CodeRequest{ClientID: "web-client", RedirectURI: "https://app.test/other", UserID: "user-1"})
		_, tokenErr := f.handler.Handle(baseRequest(code))
		require.Equal(t, "invalid_grant", tokenErr.Code)
		require.Equal(t, "The code provided was invalid or expired, or the redirect URI did not match", tokenErr.Description)
	})

	t.Run("wrong client", func(t *testing.T) {
		code := mintCode(t, f, codes.CodeRequest{ClientID: "ABCDEF", RedirectURI: "https://app.test/callback", UserID: "user-1"})
		_, tokenErr := f.handler.Handle(baseRequest(code))
		require.Equal(t, "invalid_grant", tokenErr.Code)
	})

	t.Run("successful exchange", func(t *testing.T) {
		code := mintCode(t, f, codes.CodeRequest{
			ClientID: "web-client", RedirectURI: "https://app.test/callback",
			UserID: "user-1", Scopes: []string{"email", "profile"},
		})
		response, tokenErr := f.handler.Handle(baseRequest(code))
		require.Nil(t, tokenErr)
		require.NotEmpty(t, response.AccessToken)
		require.NotEmpty(t, response.RefreshToken)
		require.Empty(t, response.IDToken)
		require.Equal(t, "bearer", response.TokenType)
		require.Equal(t, "email profile", response.Scope)
	})

	t.Run("openid scope adds an id token echoing the nonce", func(t *testing.T) {
		code := mintCode(t, f, codes.CodeRequest{
			ClientID: "web-client", RedirectURI: "https://app.test/callback",
			UserID: "user-1", Scopes: []string{"openid", "email"}, Nonce: "n-0S6_WzA2Mj",
		})
		response, tokenErr := f.handler.Handle(baseRequest(code))
		require.Nil(t, tokenErr)
		require.NotEmpty(t, response.IDToken)
	})

	t.Run("a code is exchangeable exactly once", func(t *testing.T) {
		code := mintCode(t, f, codes.CodeRequest{
			ClientID: "web-client", RedirectURI: "https://app.test/callback", UserID: "user-1",
		})
		_, tokenErr := f.handler.Handle(baseRequest(code))
		require.Nil(t, tokenErr)

		_, tokenErr = f.handler.Handle(baseRequest(code))
		require.NotNil(t, tokenErr)
		require.Equal(t, "invalid_grant", tokenErr.Code)
	})

	t.Run("PKCE S256 verifier must match", func(t *testing.T) {
		// RFC 7636 appendix B vector.
		code := mintCode(t, f, codes.CodeRequest{
			ClientID: "pkce-client", RedirectURI: "https://native.test/callback", UserID: "user-1",
			CodeChallenge:       "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM",
			CodeChallengeMethod: "S256",
		})
		request := &oauth2.TokenRequest{
			GrantType:    string(oauth2.AuthorizationCodeGrant),
			ClientID:     "pkce-client",
			Code:         code,
			RedirectURI:  "https://native.test/callback",
			CodeVerifier: "wrong-verifier",
		}
		_, tokenErr := f.handler.Handle(request)
		require.Equal(t, "invalid_grant", tokenErr.Code)

		request.CodeVerifier = "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
		response, tokenErr := f.handler.Handle(request)
		require.Nil(t, tokenErr)
		require.NotEmpty(t, response.AccessToken)
	})

	t.Run("PKCE is mandatory once a challenge is recorded", func(t *testing.T) {
		code := mintCode(t, f, codes.CodeRequest{
			ClientID: "pkce-client", RedirectURI: "https://native.test/callback", UserID: "user-1",
			CodeChallenge:       "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM",
			CodeChallengeMethod: "S256",
		})
		_, tokenErr := f.handler.Handle(&oauth2.TokenRequest{
			GrantType:   string(oauth2.AuthorizationCodeGrant),
			ClientID:    "pkce-client",
			Code:        code,
			RedirectURI: "https://native.test/callback",
		})
		require.Equal(t, "invalid_grant", tokenErr.Code)
	})
}

func TestTokenHandler_RefreshTokenGrant(t *testing.T) {
	f := setupTestFixture(t)

	issueRefreshToken := func(t *testing.T, scopes []string) string {
		t.Helper()
		_, refreshToken, err := f.tokenManager.GenerateAccessRefreshTokens("ABCDEF", "user-1", scopes, 3600)
		require.NoError(t, err)
		return refreshToken.TokenString
	}

	refreshRequest := func(refreshToken, scope string) *oauth2.TokenRequest {
		return &oauth2.TokenRequest{
			GrantType:           string(oauth2.RefreshTokenGrant),
			ClientID:            "ABCDEF",
			ClientSecret:        "01234567890",
			ClientSecretPresent: true,
			RefreshToken:        refreshToken,
			Scope:               scope,
		}
	}

	t.Run("missing parameters", func(t *testing.T) {
		_, tokenErr := f.handler.Handle(&oauth2.TokenRequest{GrantType: string(oauth2.RefreshTokenGrant)})
		require.Equal(t, "Request was missing the 'refresh_token' parameter", tokenErr.Description)

		_, tokenErr = f.handler.Handle(&oauth2.TokenRequest{
			GrantType: string(oauth2.RefreshTokenGrant), RefreshToken: "x", ClientID: "ABCDEF",
		})
		require.Equal(t, "Request was missing the 'client_secret' parameter", tokenErr.Description)
	})

	t.Run("unknown refresh token", func(t *testing.T) {
		_, tokenErr := f.handler.Handle(refreshRequest("no-such-token", ""))
		require.Equal(t, "invalid_grant", tokenErr.Code)
		require.Equal(t, "The refresh token is invalid", tokenErr.Description)
	})

	t.Run("token bound to another client", func(t *testing.T) {
		_, refreshToken, err := f.tokenManager.GenerateAccessRefreshTokens("web-client", "user-1", nil, 3600)
		require.NoError(t, err)
		_, tokenErr := f.handler.Handle(refreshRequest(refreshToken.TokenString, ""))
		require.Equal(t, "invalid_grant", tokenErr.Code)
		require.Equal(t, "The refresh token is invalid", tokenErr.Description)
	})

	t.Run("public client is rejected", func(t *testing.T) {
		_, refreshToken, err := f.tokenManager.GenerateAccessRefreshTokens("spa-client", "user-1", nil, 3600)
		require.NoError(t, err)
		_, tokenErr := f.handler.Handle(&oauth2.TokenRequest{
			GrantType:           string(oauth2.RefreshTokenGrant),
			ClientID:            "spa-client",
			ClientSecretPresent: true,
			RefreshToken:        refreshToken.TokenString,
		})
		require.Equal(t, "unauthorized_client", tokenErr.Code)
		require.Equal(t, "You are not authorized to use the Refresh Token grant type", tokenErr.Description)
	})

	t.Run("no scope request keeps the full set", func(t *testing.T) {
		refreshToken := issueRefreshToken(t, []string{"email", "create", "profile"})
		response, tokenErr := f.handler.Handle(refreshRequest(refreshToken, ""))
		require.Nil(t, tokenErr)
		require.Equal(t, refreshToken, response.RefreshToken)
		require.Equal(t, "email create profile", response.Scope)
	})

	t.Run("narrowing persists and never re-widens", func(t *testing.T) {
		refreshToken := issueRefreshToken(t, []string{"email", "create", "profile"})

		response, tokenErr := f.handler.Handle(refreshRequest(refreshToken, "email"))
		require.Nil(t, tokenErr)
		require.Equal(t, "email", response.Scope)

		// The dropped scopes are gone: asking for them back is elevation.
		_, tokenErr = f.handler.Handle(refreshRequest(refreshToken, "email profile"))
		require.NotNil(t, tokenErr)
		require.Equal(t, "invalid_scope", tokenErr.Code)
		require.Equal(t, "Request contained elevated scopes", tokenErr.Description)
	})

	t.Run("unknown scope classified before elevation", func(t *testing.T) {
		refreshToken := issueRefreshToken(t, []string{"email"})
		_, tokenErr := f.handler.Handle(refreshRequest(refreshToken, "nonexistent"))
		require.Equal(t, "invalid_scope", tokenErr.Code)
		require.Equal(t, "Request contained an unknown scope", tokenErr.Description)
	})
}

func TestTokenHandler_ClientCredentialsGrant(t *testing.T) {
	f := setupTestFixture(t)

	t.Run("confidential client gets tokens without a user", func(t *testing.T) {
		response, tokenErr := f.handler.Handle(&oauth2.TokenRequest{
			GrantType:           string(oauth2.ClientCredentialsGrant),
			ClientID:            "machine-client",
			ClientSecret:        "machine-secret",
			ClientSecretPresent: true,
			Scope:               "create",
		})
		require.Nil(t, tokenErr)
		require.NotEmpty(t, response.AccessToken)
		require.NotEmpty(t, response.RefreshToken)
		require.Equal(t, "create", response.Scope)
	})

	t.Run("client without the flow is unauthorized", func(t *testing.T) {
		_, tokenErr := f.handler.Handle(&oauth2.TokenRequest{
			GrantType:           string(oauth2.ClientCredentialsGrant),
			ClientID:            "web-client",
			ClientSecret:        "web-secret",
			ClientSecretPresent: true,
		})
		require.Equal(t, "unauthorized_client", tokenErr.Code)
		require.Equal(t, "You are not authorized to use the Client Credentials grant type", tokenErr.Description)
	})

	t.Run("scope outside the client set is invalid", func(t *testing.T) {
		_, tokenErr := f.handler.Handle(&oauth2.TokenRequest{
			GrantType:           string(oauth2.ClientCredentialsGrant),
			ClientID:            "machine-client",
			ClientSecret:        "machine-secret",
			ClientSecretPresent: true,
			Scope:               "email",
		})
		require.Equal(t, "invalid_scope", tokenErr.Code)
		require.Equal(t, "Request contained an invalid scope", tokenErr.Description)
	})
}

func TestTokenHandler_PasswordGrant(t *testing.T) {
	f := setupTestFixture(t)

	t.Run("first party client with valid credentials", func(t *testing.T) {
		response, tokenErr := f.handler.Handle(&oauth2.TokenRequest{
			GrantType: string(oauth2.PasswordGrant),
			ClientID:  "first-party-app",
			Username:  "alice",
			Password:  "wonderland",
			Scope:     "email",
		})
		require.Nil(t, tokenErr)
		require.NotEmpty(t, response.AccessToken)
		require.NotEmpty(t, response.RefreshToken)
	})

	t.Run("third party client is rejected", func(t *testing.T) {
		_, tokenErr := f.handler.Handle(&oauth2.TokenRequest{
			GrantType: string(oauth2.PasswordGrant),
			ClientID:  "third-party-app",
			Username:  "alice",
			Password:  "wonderland",
		})
		require.Equal(t, "unauthorized_client", tokenErr.Code)
		require.Equal(t, "You are not authorized to use the Password grant type", tokenErr.Description)
	})

	t.Run("bad user credentials", func(t *testing.T) {
		_, tokenErr := f.handler.Handle(&oauth2.TokenRequest{
			GrantType: string(oauth2.PasswordGrant),
			ClientID:  "first-party-app",
			Username:  "alice",
			Password:  "not-wonderland",
		})
		require.Equal(t, "invalid_grant", tokenErr.Code)
		require.Equal(t, "Request had invalid credentials", tokenErr.Description)
	})
}

func TestTokenHandler_DeviceCodeGrant(t *testing.T) {
	pollRequest := func(deviceCode string) *oauth2.TokenRequest {
		return &oauth2.TokenRequest{
			GrantType:  string(oauth2.DeviceCodeGrant),
			ClientID:   "tv-client",
			DeviceCode: deviceCode,
		}
	}

	t.Run("full lifecycle", func(t *testing.T) {
		f := setupTestFixture(t)

		authorization, tokenErr := f.handler.HandleDeviceAuthorization(&oauth2.TokenRequest{
			ClientID: "tv-client",
			Scope:    "email",
		})
		require.Nil(t, tokenErr)
		require.NotEmpty(t, authorization.DeviceCode)
		require.NotEmpty(t, authorization.UserCode)
		require.Positive(t, authorization.ExpiresIn)

		// First poll consumes the interval budget; pending until approved.
		_, tokenErr = f.handler.Handle(pollRequest(authorization.DeviceCode))
		require.Equal(t, "authorization_pending", tokenErr.Code)

		// An immediate second poll is too fast.
		_, tokenErr = f.handler.Handle(pollRequest(authorization.DeviceCode))
		require.Equal(t, "slow_down", tokenErr.Code)

		require.NoError(t, f.codeManager.AuthorizeDeviceCode(authorization.UserCode, "user-1"))

		// Wait out the advertised interval before polling again.
		time.Sleep(time.Duration(authorization.Interval)*time.Second + 50*time.Millisecond)

		response, tokenErr := f.handler.Handle(pollRequest(authorization.DeviceCode))
		require.Nil(t, tokenErr)
		require.NotEmpty(t, response.AccessToken)
		require.Equal(t, "email", response.Scope)

		// The device code is single use.
		_, tokenErr = f.handler.Handle(pollRequest(authorization.DeviceCode))
		require.Equal(t, "invalid_grant", tokenErr.Code)
	})

	t.Run("unknown device code", func(t *testing.T) {
		f := setupTestFixture(t)
		_, tokenErr := f.handler.Handle(pollRequest("no-such-device-code"))
		require.Equal(t, "invalid_grant", tokenErr.Code)
		require.Equal(t, "The device code provided was invalid or expired", tokenErr.Description)
	})
}
