package token

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/authcore-io/authcore/token/keys"
)

const (
	defaultIssuer             = "authcore"
	defaultRefreshTokenExpiry = 30 * 24 * time.Hour
	refreshTokenBytes         = 32
)

type accessTokenClaims struct {
	jwt.RegisteredClaims
	ClientID string `json:"client_id"`
	Scope    string `json:"scope,omitempty"`
}

type idTokenClaims struct {
	jwt.RegisteredClaims
	Nonce    string `json:"nonce,omitempty"`
	AuthTime int64  `json:"auth_time,omitempty"`
}

// JWTManager is the production Manager. Access and ID tokens are RS256 JWTs
// signed with a signer resolved per issuance, so a key rotation applies to
// the very next token. Refresh tokens are random opaque strings persisted in
// the RefreshTokenRepo.
type JWTManager struct {
	signerService      *keys.SignerService
	refreshRepo        RefreshTokenRepo
	issuer             string
	refreshTokenExpiry time.Duration
	nowFunc            func() time.Time
}

var _ Manager = (*JWTManager)(nil)

// JWTManagerOption configures a JWTManager.
type JWTManagerOption func(*JWTManager)

// WithIssuer sets the iss claim stamped into signed tokens.
func WithIssuer(issuer string) JWTManagerOption {
	return func(m *JWTManager) { m.issuer = issuer }
}

// WithRefreshTokenExpiry sets the lifetime of issued refresh tokens.
func WithRefreshTokenExpiry(expiry time.Duration) JWTManagerOption {
	return func(m *JWTManager) { m.refreshTokenExpiry = expiry }
}

// WithNowFunc overrides the clock, for tests.
func WithNowFunc(nowFunc func() time.Time) JWTManagerOption {
	return func(m *JWTManager) { m.nowFunc = nowFunc }
}

func NewJWTManager(signerService *keys.SignerService, refreshRepo RefreshTokenRepo, opts ...JWTManagerOption) *JWTManager {
	m := &JWTManager{
		signerService:      signerService,
		refreshRepo:        refreshRepo,
		issuer:             defaultIssuer,
		refreshTokenExpiry: defaultRefreshTokenExpiry,
		nowFunc:            time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *JWTManager) GenerateAccessToken(clientID, userID string, scopes []string, expirySeconds int) (*AccessToken, error) {
	now := m.nowFunc()
	expiry := now.Add(time.Duration(expirySeconds) * time.Second)
	jti := uuid.New().String()

	subject := userID
	if subject == "" {
		subject = clientID
	}

	claims := accessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    m.issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{clientID},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
		ClientID: clientID,
		Scope:    strings.Join(scopes, " "),
	}

	signer, err := m.signerService.Signer()
	if err != nil {
		return nil, errors.Wrap(err, "[JWTManager.GenerateAccessToken] Signer")
	}
	signed, err := signer.Sign(claims)
	if err != nil {
		return nil, errors.Wrap(err, "[JWTManager.GenerateAccessToken] Sign")
	}

	return &AccessToken{
		TokenString: signed,
		JTI:         jti,
		ClientID:    clientID,
		UserID:      userID,
		Scopes:      scopes,
		ExpiryTime:  expiry,
	}, nil
}

func (m *JWTManager) GenerateAccessRefreshTokens(clientID, userID string, scopes []string, accessExpirySeconds int) (*AccessToken, *RefreshToken, error) {
	accessToken, err := m.GenerateAccessToken(clientID, userID, scopes, accessExpirySeconds)
	if err != nil {
		return nil, nil, err
	}
	refreshToken, err := m.generateRefreshToken(clientID, userID, scopes)
	if err != nil {
		return nil, nil, err
	}
	return accessToken, refreshToken, nil
}

func (m *JWTManager) GenerateTokens(clientID, userID string, scopes []string, accessExpirySeconds, idExpirySeconds int, nonce string) (*AccessToken, *RefreshToken, *IDToken, error) {
	accessToken, refreshToken, err := m.GenerateAccessRefreshTokens(clientID, userID, scopes, accessExpirySeconds)
	if err != nil {
		return nil, nil, nil, err
	}
	idToken, err := m.GenerateIDToken(clientID, userID, idExpirySeconds, nonce)
	if err != nil {
		return nil, nil, nil, err
	}
	return accessToken, refreshToken, idToken, nil
}

func (m *JWTManager) GetAccessToken(tokenString string) (*AccessToken, error) {
	claims := &accessTokenClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, m.signerService.VerificationKey,
		jwt.WithValidMethods([]string{keys.RS256}),
		jwt.WithTimeFunc(m.nowFunc),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	userID := claims.Subject
	if userID == claims.ClientID {
		userID = ""
	}

	var expiry time.Time
	if claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
	}

	return &AccessToken{
		TokenString: tokenString,
		JTI:         claims.ID,
		ClientID:    claims.ClientID,
		UserID:      userID,
		Scopes:      splitScope(claims.Scope),
		ExpiryTime:  expiry,
	}, nil
}

func (m *JWTManager) GetRefreshToken(tokenString string) (*RefreshToken, error) {
	return m.refreshRepo.Get(tokenString)
}

func (m *JWTManager) UpdateRefreshToken(refreshToken *RefreshToken, scopes []string) error {
	for _, scope := range scopes {
		if !refreshToken.HasScope(scope) {
			return ErrScopeWidening
		}
	}
	if err := m.refreshRepo.UpdateScopes(refreshToken.TokenString, scopes); err != nil {
		return errors.Wrap(err, "[JWTManager.UpdateRefreshToken] UpdateScopes")
	}
	refreshToken.Scopes = append([]string(nil), scopes...)
	return nil
}

func (m *JWTManager) generateRefreshToken(clientID, userID string, scopes []string) (*RefreshToken, error) {
	raw := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, errors.Wrap(err, "[JWTManager.generateRefreshToken] rand.Read")
	}

	refreshToken := &RefreshToken{
		TokenString: base64.RawURLEncoding.EncodeToString(raw),
		ClientID:    clientID,
		UserID:      userID,
		Scopes:      append([]string(nil), scopes...),
		Expiration:  m.nowFunc().Add(m.refreshTokenExpiry),
	}
	if err := m.refreshRepo.Upsert(refreshToken); err != nil {
		return nil, errors.Wrap(err, "[JWTManager.generateRefreshToken] Upsert")
	}
	return refreshToken, nil
}

func (m *JWTManager) GenerateIDToken(clientID, userID string, expirySeconds int, nonce string) (*IDToken, error) {
	now := m.nowFunc()
	expiry := now.Add(time.Duration(expirySeconds) * time.Second)
	jti := uuid.New().String()

	claims := idTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    m.issuer,
			Subject:   userID,
			Audience:  jwt.ClaimStrings{clientID},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
		Nonce:    nonce,
		AuthTime: now.Unix(),
	}

	signer, err := m.signerService.Signer()
	if err != nil {
		return nil, errors.Wrap(err, "[JWTManager.GenerateIDToken] Signer")
	}
	signed, err := signer.Sign(claims)
	if err != nil {
		return nil, errors.Wrap(err, "[JWTManager.GenerateIDToken] Sign")
	}

	authTime := now
	return &IDToken{
		TokenString: signed,
		JTI:         jti,
		Issuer:      m.issuer,
		Subject:     userID,
		Audience:    []string{clientID},
		Expiry:      expiry,
		IssuedAt:    now,
		Nonce:       nonce,
		AuthTime:    &authTime,
	}, nil
}

func splitScope(scope string) []string {
	if scope == "" {
		return nil
	}
	return strings.Fields(scope)
}
