package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/authcore-io/authcore/auth"
	"github.com/authcore-io/authcore/clients"
	"github.com/authcore-io/authcore/clients/fakerepo"
	"github.com/authcore-io/authcore/codes"
	"github.com/authcore-io/authcore/internal/config"
	"github.com/authcore-io/authcore/internal/metrics"
	"github.com/authcore-io/authcore/oauth2"
	"github.com/authcore-io/authcore/server"
	"github.com/authcore-io/authcore/token"
	"github.com/authcore-io/authcore/token/keys"
	"github.com/authcore-io/authcore/users"
	"github.com/authcore-io/authcore/users/repofake"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := run(logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
	logger.Info().Msg("server stopped")
}

func run(logger zerolog.Logger) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}
	displayAppname("authcore")

	srv, err := buildServer(cfg, logger)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server.Start: %w", err)
	case <-stopSignal():
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func buildServer(cfg *config.Config, logger zerolog.Logger) (*server.Server, error) {
	keyService := keys.NewInMemoryService()
	if err := keyService.RotateKey(false); err != nil {
		return nil, fmt.Errorf("initial key rotation: %w", err)
	}
	signerService := keys.NewSignerService(keyService)

	tokenManager := token.NewJWTManager(signerService, token.NewInMemoryRefreshTokenRepo(),
		token.WithIssuer(cfg.Issuer),
		token.WithRefreshTokenExpiry(cfg.RefreshTokenExpiry),
	)
	authenticator := token.NewAuthenticator()

	clientRepo := fakeclientrepo.NewFakeClientRepo()
	userManager := fakeusermanager.NewFakeUserManager()
	if !cfg.Production {
		if err := seedDevelopmentData(clientRepo, userManager); err != nil {
			return nil, fmt.Errorf("seedDevelopmentData: %w", err)
		}
		logger.Info().Msg("seeded development client and user")
	}
	codeManager := codes.NewInMemoryManager(
		codes.WithCodeExpiry(cfg.CodeExpiry, cfg.DeviceCodeExpiry),
		codes.WithPollInterval(cfg.DevicePollInterval),
	)

	scopeValidator := auth.NewScopeValidator(cfg.ValidScopes...)
	clientValidator := auth.NewClientValidator(clientRepo, scopeValidator,
		auth.WithProductionMode(cfg.Production))
	codeValidator := auth.NewCodeValidator()

	accessExpiry := int(cfg.AccessTokenExpiry.Seconds())
	idExpiry := int(cfg.IDTokenExpiry.Seconds())

	flow := auth.NewFlowController(clientValidator, codeManager, tokenManager,
		auth.WithAccessTokenExpiry(accessExpiry),
		auth.WithIDTokenExpiry(idExpiry),
	)
	tokens := auth.NewTokenHandler(clientValidator, scopeValidator, codeValidator,
		codeManager, tokenManager, userManager, authenticator,
		auth.WithTokenExpiry(accessExpiry),
		auth.WithHandlerIDTokenExpiry(idExpiry),
		auth.WithVerificationURI(cfg.Issuer+server.RouteDeviceVerification),
		auth.WithLogger(logger),
	)

	return server.New(cfg, server.Services{
		Flow:          flow,
		Tokens:        tokens,
		TokenManager:  tokenManager,
		Authenticator: authenticator,
		Users:         userManager,
		Codes:         codeManager,
		Keys:          keyService,
		Metrics:       metrics.New(prometheus.DefaultRegisterer),
	}, logger), nil
}

// seedDevelopmentData registers a demo client and user so the endpoints can be
// exercised out of the box. Production deployments load registrations from an
// external process instead.
func seedDevelopmentData(clientRepo clients.Repo, userManager *fakeusermanager.FakeUserManager) error {
	err := clientRepo.Upsert(&clients.Client{
		ID:           "demo-client",
		Secret:       "demo-secret",
		Description:  "Demo Application",
		RedirectURIs: []string{"http://localhost:3000/callback"},
		Confidential: true,
		AllowedFlow:  oauth2.FlowAuthorization,
	})
	if err != nil {
		return err
	}

	hash, err := users.HashPassword("password")
	if err != nil {
		return err
	}
	userManager.Add(&users.User{
		ID:           "demo-user",
		Username:     "demo",
		Email:        "demo@example.com",
		PasswordHash: hash,
	})
	return nil
}

func stopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
