package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/authcore-io/authcore/auth"
	"github.com/authcore-io/authcore/clients"
	"github.com/authcore-io/authcore/clients/fakerepo"
	"github.com/authcore-io/authcore/codes"
	"github.com/authcore-io/authcore/oauth2"
	"github.com/authcore-io/authcore/token"
	"github.com/authcore-io/authcore/token/keys"
	"github.com/authcore-io/authcore/users"
	"github.com/authcore-io/authcore/users/repofake"
)

type testFixture struct {
	clientRepo      clients.Repo
	userManager     *fakeusermanager.FakeUserManager
	codeManager     *codes.InMemoryManager
	tokenManager    token.Manager
	scopeValidator  *auth.ScopeValidator
	clientValidator *auth.ClientValidator
	codeValidator   *auth.CodeValidator
	flow            *auth.FlowController
	handler         *auth.TokenHandler
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	keyService := keys.NewInMemoryService()
	require.NoError(t, keyService.RotateKey(false))

	f := &testFixture{
		clientRepo:  fakeclientrepo.NewFakeClientRepo(),
		userManager: fakeusermanager.NewFakeUserManager(),
		codeManager: codes.NewInMemoryManager(codes.WithPollInterval(25 * time.Millisecond)),
	}
	f.tokenManager = token.NewJWTManager(
		keys.NewSignerService(keyService),
		token.NewInMemoryRefreshTokenRepo(),
		token.WithIssuer("https://auth.test"),
	)

	seedClients(t, f.clientRepo)
	seedUsers(t, f.userManager)

	f.scopeValidator = auth.NewScopeValidator("openid", "email", "profile", "create")
	f.clientValidator = auth.NewClientValidator(f.clientRepo, f.scopeValidator)
	f.codeValidator = auth.NewCodeValidator()
	f.flow = auth.NewFlowController(f.clientValidator, f.codeManager, f.tokenManager)
	f.handler = auth.NewTokenHandler(
		f.clientValidator, f.scopeValidator, f.codeValidator,
		f.codeManager, f.tokenManager, f.userManager,
		token.NewAuthenticator(),
	)
	return f
}

func seedClients(t *testing.T, repo clients.Repo) {
	t.Helper()
	for _, client := range []*clients.Client{
		{
			ID:           "web-client",
			Secret:       "web-secret",
			Description:  "Test Web Application",
			RedirectURIs: []string{"https://app.test/callback"},
			Confidential: true,
			AllowedFlow:  oauth2.FlowAuthorization,
			Scopes:       []string{"openid", "email", "profile", "create"},
		},
		{
			ID:           "spa-client",
			RedirectURIs: []string{"https://spa.test/callback"},
			AllowedFlow:  oauth2.FlowImplicit,
			Scopes:       []string{"openid", "email", "profile"},
		},
		{
			ID:           "pkce-client",
			RedirectURIs: []string{"https://native.test/callback"},
			AllowedFlow:  oauth2.FlowAuthorization,
			Scopes:       []string{"openid", "email"},
		},
		{
			ID:           "ABCDEF",
			Secret:       "01234567890",
			Confidential: true,
			AllowedFlow:  oauth2.FlowAuthorization,
			RedirectURIs: []string{"https://app.test/callback"},
			Scopes:       []string{"email", "create", "profile"},
		},
		{
			ID:           "machine-client",
			Secret:       "machine-secret",
			Confidential: true,
			AllowedFlow:  oauth2.FlowClientCredentials,
			Scopes:       []string{"create"},
		},
		{
			ID:          "first-party-app",
			FirstParty:  true,
			AllowedFlow: oauth2.FlowPassword,
			Scopes:      []string{"email", "profile"},
		},
		{
			ID:          "third-party-app",
			AllowedFlow: oauth2.FlowPassword,
			Scopes:      []string{"email"},
		},
		{
			ID:          "tv-client",
			AllowedFlow: oauth2.FlowDeviceCode,
			Scopes:      []string{"email", "profile"},
		},
	} {
		require.NoError(t, repo.Upsert(client))
	}
}

func seedUsers(t *testing.T, manager *fakeusermanager.FakeUserManager) {
	t.Helper()
	hash, err := users.HashPassword("wonderland")
	require.NoError(t, err)
	manager.Add(&users.User{
		ID:           "user-1",
		Username:     "alice",
		Email:        "alice@test.example",
		FirstName:    "Alice",
		LastName:     "Liddell",
		PasswordHash: hash,
	})
}

func mintCode(t *testing.T, f *testFixture, request codes.CodeRequest) string {
	t.Helper()
	code, err := f.codeManager.GenerateCode(request)
	require.NoError(t, err)
	return code
}
