package server

import (
	"net/http"
	"strings"

	"github.com/authcore-io/authcore/auth"
	"github.com/authcore-io/authcore/codes"
	"github.com/authcore-io/authcore/oauth2"
)

// AuthorizeGetHandler validates the authorization request and renders the
// consent page. Validation failures before a trusted redirect URI exists are
// terminal errors, never redirects.
func (s *Server) AuthorizeGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		request := auth.AuthorizeRequest{
			ClientID:            query.Get(oauth2.ParamClientID),
			RedirectURI:         query.Get(oauth2.ParamRedirectURI),
			ResponseType:        oauth2.NormalizeResponseType(query.Get(oauth2.ParamResponseType)),
			Scopes:              oauth2.SplitScopes(query.Get(oauth2.ParamScope)),
			State:               query.Get(oauth2.ParamState),
			Nonce:               query.Get(oauth2.ParamNonce),
			CodeChallenge:       query.Get(oauth2.ParamCodeChallenge),
			CodeChallengeMethod: query.Get(oauth2.ParamCodeChallengeMethod),
		}
		if request.ClientID == "" || request.RedirectURI == "" {
			http.Error(w, "invalid authorization request", http.StatusBadRequest)
			return
		}

		client, err := s.services.Flow.ValidateRequest(request)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		sessionID, csrfToken := s.consentSessions.Create()
		s.setSessionCookie(w, r, sessionID)

		description := client.Description
		if description == "" {
			description = client.ID
		}
		err = consentTemplate.Execute(w, map[string]any{
			"ClientDescription":   description,
			"ClientID":            request.ClientID,
			"RedirectURI":         request.RedirectURI,
			"ResponseType":        string(request.ResponseType),
			"Scope":               strings.Join(request.Scopes, " "),
			"Scopes":              request.Scopes,
			"State":               request.State,
			"Nonce":               request.Nonce,
			"CodeChallenge":       request.CodeChallenge,
			"CodeChallengeMethod": request.CodeChallengeMethod,
			"CSRFToken":           csrfToken,
		})
		if err != nil {
			s.logger.Error().Err(err).Msg("consent template")
		}
	}
}

// AuthorizePostHandler turns the consent decision into the redirect. A CSRF
// mismatch is a terminal 400: the decision cannot be trusted, so no redirect
// is issued.
func (s *Server) AuthorizePostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form data", http.StatusBadRequest)
			return
		}

		cookie, err := r.Cookie(consentSessionCookie)
		if err != nil || !s.consentSessions.Consume(cookie.Value, r.PostFormValue(oauth2.ParamCSRFToken)) {
			http.Error(w, "invalid csrf token", http.StatusBadRequest)
			return
		}

		request := auth.AuthorizeRequest{
			ClientID:            r.PostFormValue(oauth2.ParamClientID),
			RedirectURI:         r.PostFormValue(oauth2.ParamRedirectURI),
			ResponseType:        oauth2.NormalizeResponseType(r.PostFormValue(oauth2.ParamResponseType)),
			Scopes:              oauth2.SplitScopes(r.PostFormValue(oauth2.ParamScope)),
			State:               r.PostFormValue(oauth2.ParamState),
			Nonce:               r.PostFormValue(oauth2.ParamNonce),
			CodeChallenge:       r.PostFormValue(oauth2.ParamCodeChallenge),
			CodeChallengeMethod: r.PostFormValue(oauth2.ParamCodeChallengeMethod),
		}
		approved := r.PostFormValue(oauth2.ParamApplicationAuthorized) == "true"

		// Both decisions redirect, so the client and redirect URI must be
		// validated and the resource owner authenticated before either branch.
		// A tampered denial must never become a redirect to an arbitrary host.
		if _, err := s.services.Flow.ValidateRequest(request); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		userID, err := s.services.Users.AuthenticateUser(
			r.PostFormValue(oauth2.ParamUsername), r.PostFormValue(oauth2.ParamPassword))
		if err != nil || userID == "" {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		redirectURL, err := s.services.Flow.CompleteAuthorization(request, userID, approved)
		if err != nil {
			s.logger.Error().Err(err).Msg("complete authorization")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		if approved && request.ResponseType == oauth2.CodeResponseType {
			s.services.Metrics.CodesIssued.Inc()
		}
		http.Redirect(w, r, redirectURL, http.StatusFound)
	}
}

// TokenHandler serves the token endpoint. Every response, success or error,
// carries Cache-Control: no-store and Pragma: no-cache.
func (s *Server) TokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setNoStoreHeaders(w)
		if err := r.ParseForm(); err != nil {
			writeJSONError(w, oauth2.ErrorCodeInvalidRequest, "Failed to parse form data", http.StatusBadRequest)
			return
		}

		request := tokenRequestFromForm(r)
		response, tokenErr := s.services.Tokens.Handle(request)
		if tokenErr != nil {
			s.services.Metrics.GrantFailures.WithLabelValues(request.GrantType, tokenErr.Code).Inc()
			writeTokenError(w, tokenErr)
			return
		}
		s.services.Metrics.TokensIssued.WithLabelValues(request.GrantType).Inc()
		writeJSON(w, http.StatusOK, response)
	}
}

// DeviceAuthorizationHandler starts a device flow.
func (s *Server) DeviceAuthorizationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setNoStoreHeaders(w)
		if err := r.ParseForm(); err != nil {
			writeJSONError(w, oauth2.ErrorCodeInvalidRequest, "Failed to parse form data", http.StatusBadRequest)
			return
		}

		request := tokenRequestFromForm(r)
		response, tokenErr := s.services.Tokens.HandleDeviceAuthorization(request)
		if tokenErr != nil {
			writeTokenError(w, tokenErr)
			return
		}
		s.services.Metrics.DeviceCodesIssued.Inc()
		writeJSON(w, http.StatusOK, response)
	}
}

// DeviceVerificationGetHandler renders the user-code activation page.
func (s *Server) DeviceVerificationGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, csrfToken := s.consentSessions.Create()
		s.setSessionCookie(w, r, sessionID)
		_ = deviceTemplate.Execute(w, map[string]any{
			"UserCode":  r.URL.Query().Get(oauth2.ParamUserCode),
			"CSRFToken": csrfToken,
		})
	}
}

// DeviceVerificationPostHandler binds the approving user to the device code.
func (s *Server) DeviceVerificationPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form data", http.StatusBadRequest)
			return
		}

		cookie, err := r.Cookie(consentSessionCookie)
		if err != nil || !s.consentSessions.Consume(cookie.Value, r.PostFormValue(oauth2.ParamCSRFToken)) {
			http.Error(w, "invalid csrf token", http.StatusBadRequest)
			return
		}

		userID, err := s.services.Users.AuthenticateUser(
			r.PostFormValue(oauth2.ParamUsername), r.PostFormValue(oauth2.ParamPassword))
		if err != nil || userID == "" {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		switch err := s.services.Codes.AuthorizeDeviceCode(r.PostFormValue(oauth2.ParamUserCode), userID); err {
		case nil:
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("Device authorized. You can return to your device."))
		case codes.ErrUserCodeNotFound:
			http.Error(w, "invalid or expired code", http.StatusBadRequest)
		default:
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}
}

func (s *Server) setSessionCookie(w http.ResponseWriter, r *http.Request, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     consentSessionCookie,
		Value:    sessionID,
		Path:     "/oauth",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(consentSessionTTL.Seconds()),
	})
}

func setNoStoreHeaders(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

func tokenRequestFromForm(r *http.Request) *oauth2.TokenRequest {
	return &oauth2.TokenRequest{
		GrantType:           r.PostFormValue(oauth2.ParamGrantType),
		ClientID:            r.PostFormValue(oauth2.ParamClientID),
		ClientSecret:        r.PostFormValue(oauth2.ParamClientSecret),
		ClientSecretPresent: r.PostForm.Has(oauth2.ParamClientSecret),
		Code:                r.PostFormValue(oauth2.ParamCode),
		RedirectURI:         r.PostFormValue(oauth2.ParamRedirectURI),
		CodeVerifier:        r.PostFormValue(oauth2.ParamCodeVerifier),
		RefreshToken:        r.PostFormValue(oauth2.ParamRefreshToken),
		Scope:               r.PostFormValue(oauth2.ParamScope),
		Username:            r.PostFormValue(oauth2.ParamUsername),
		Password:            r.PostFormValue(oauth2.ParamPassword),
		DeviceCode:          r.PostFormValue(oauth2.ParamDeviceCode),
	}
}
