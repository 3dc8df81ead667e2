package server

import (
	"net/http"
	"strings"

	"github.com/authcore-io/authcore/oauth2"
	"github.com/authcore-io/authcore/token/keys"
)

// OpenIDConfigurationHandler serves the provider discovery document.
func (s *Server) OpenIDConfigurationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		issuer := strings.TrimSuffix(s.cfg.Issuer, "/")
		writeJSON(w, http.StatusOK, oauth2.DiscoveryDocument{
			Issuer:                      issuer,
			AuthorizationEndpoint:       issuer + RouteAuthorize,
			TokenEndpoint:               issuer + RouteToken,
			DeviceAuthorizationEndpoint: issuer + RouteDeviceAuthorization,
			UserInfoEndpoint:            issuer + RouteUserInfo,
			JWKSURI:                     issuer + RouteJWKS,
			ScopesSupported:             s.cfg.ValidScopes,
			ResponseTypesSupported: []string{
				string(oauth2.CodeResponseType),
				string(oauth2.TokenResponseType),
				string(oauth2.IDTokenResponseType),
				string(oauth2.TokenAndIDTokenResponseType),
			},
			GrantTypesSupported: []string{
				string(oauth2.AuthorizationCodeGrant),
				string(oauth2.RefreshTokenGrant),
				string(oauth2.ClientCredentialsGrant),
				string(oauth2.PasswordGrant),
				string(oauth2.DeviceCodeGrant),
			},
			SubjectTypesSupported:            []string{"public"},
			IDTokenSigningAlgValuesSupported: []string{keys.RS256},
			TokenEndpointAuthMethodsSupported: []string{
				"client_secret_post",
			},
			CodeChallengeMethodsSupported: []string{
				string(oauth2.CodeChallengeMethodS256),
				string(oauth2.CodeChallengeMethodPlain),
			},
			ClaimsSupported: []string{"sub", "iss", "aud", "exp", "iat", "nonce", "auth_time"},
		})
	}
}

// JWKSHandler serves every stored public key, so tokens signed under a
// rotated-but-retained key remain verifiable by relying parties.
func (s *Server) JWKSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identifiers, err := s.services.Keys.ListKeys()
		if err != nil {
			writeJSONError(w, oauth2.ErrorCodeServerError, "failed to list keys", http.StatusInternalServerError)
			return
		}

		jwks := keys.JWKS{Keys: []keys.JWK{}}
		for _, identifier := range identifiers {
			material, err := s.services.Keys.RetrieveKey(identifier, keys.KeyTypePublic)
			if err != nil {
				continue // private keys and deleted entries
			}
			converted, err := s.services.Keys.ConvertToJWK(material)
			if err != nil {
				s.logger.Warn().Err(err).Str("kid", identifier).Msg("skipping unconvertible key")
				continue
			}
			jwks.Keys = append(jwks.Keys, converted...)
		}
		writeJSON(w, http.StatusOK, jwks)
	}
}

// UserInfoHandler resolves the bearer token and returns the subject's claims.
func (s *Server) UserInfoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			w.Header().Set("WWW-Authenticate", `Bearer realm="userinfo"`)
			writeJSONError(w, "invalid_token", "Missing bearer token", http.StatusUnauthorized)
			return
		}

		accessToken, err := s.services.TokenManager.GetAccessToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil || !s.services.Authenticator.ValidateAccessToken(accessToken, "") {
			w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
			writeJSONError(w, "invalid_token", "The access token is invalid or expired", http.StatusUnauthorized)
			return
		}
		if accessToken.UserID == "" {
			writeJSONError(w, "invalid_token", "Token has no resource owner", http.StatusForbidden)
			return
		}

		user, err := s.services.Users.GetUser(accessToken.UserID)
		if err != nil {
			writeJSONError(w, oauth2.ErrorCodeServerError, "failed to resolve user", http.StatusInternalServerError)
			return
		}

		claims := map[string]any{
			"sub": user.ID,
		}
		if user.Email != "" {
			claims["email"] = user.Email
		}
		if user.Username != "" {
			claims["preferred_username"] = user.Username
		}
		if user.FirstName != "" {
			claims["given_name"] = user.FirstName
		}
		if user.LastName != "" {
			claims["family_name"] = user.LastName
		}
		writeJSON(w, http.StatusOK, claims)
	}
}
