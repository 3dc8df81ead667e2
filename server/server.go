package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/authcore-io/authcore/auth"
	"github.com/authcore-io/authcore/codes"
	"github.com/authcore-io/authcore/internal/config"
	"github.com/authcore-io/authcore/internal/metrics"
	"github.com/authcore-io/authcore/token"
	"github.com/authcore-io/authcore/token/keys"
	"github.com/authcore-io/authcore/users"
)

// Services groups the domain services the transport layer dispatches into.
type Services struct {
	Flow          *auth.FlowController
	Tokens        *auth.TokenHandler
	TokenManager  token.Manager
	Authenticator *token.Authenticator
	Users         users.Manager
	Codes         codes.Manager
	Keys          keys.ManagementService
	Metrics       *metrics.Metrics
}

// Server is the net/http transport over the authorization core. It owns the
// mux and the consent session store; all protocol decisions live in the auth
// package.
type Server struct {
	mux             *http.ServeMux
	routes          []string
	cfg             *config.Config
	services        Services
	consentSessions *SessionStore
	logger          zerolog.Logger
	httpServer      *http.Server
}

func New(cfg *config.Config, services Services, logger zerolog.Logger) *Server {
	s := &Server{
		mux:             http.NewServeMux(),
		cfg:             cfg,
		services:        services,
		consentSessions: NewSessionStore(),
		logger:          logger,
	}
	s.initRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

// Start blocks serving HTTP until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:      s,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("authorization server listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests until the context expires.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
