package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"time"

	"github.com/authcore-io/authcore/codes"
	"github.com/authcore-io/authcore/oauth2"
)

// CodeValidator checks a retrieved authorization code against the exchange
// request. Validation never consumes the code; consumption is the caller's
// explicit second step.
type CodeValidator struct {
	nowFunc func() time.Time
}

// CodeValidatorOption configures a CodeValidator.
type CodeValidatorOption func(*CodeValidator)

// WithCodeValidatorNowFunc overrides the clock, for tests.
func WithCodeValidatorNowFunc(nowFunc func() time.Time) CodeValidatorOption {
	return func(v *CodeValidator) { v.nowFunc = nowFunc }
}

func NewCodeValidator(opts ...CodeValidatorOption) *CodeValidator {
	v := &CodeValidator{nowFunc: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateCode reports whether the code may be exchanged: issued to this
// client, unexpired, same redirect URI as at authorization time, and when the
// code carries a PKCE challenge, a matching verifier. A code without a
// challenge skips PKCE entirely.
func (v *CodeValidator) ValidateCode(code *codes.AuthorizationCode, clientID, redirectURI, codeVerifier string) bool {
	if code == nil {
		return false
	}
	if code.ClientID != clientID {
		return false
	}
	if code.IsExpired(v.nowFunc()) {
		return false
	}
	if code.RedirectURI != redirectURI {
		return false
	}
	if code.CodeChallenge != "" {
		if codeVerifier == "" {
			return false
		}
		return ValidateCodeChallenge(code.CodeChallengeMethod, code.CodeChallenge, codeVerifier)
	}
	return true
}

// ValidateCodeChallenge applies the PKCE transform for the method and
// compares against the recorded challenge. S256 is
// base64url-nopad(SHA256(verifier)); any other method is treated as plain.
func ValidateCodeChallenge(method, challenge, verifier string) bool {
	var derived string
	if method == string(oauth2.CodeChallengeMethodS256) {
		digest := sha256.Sum256([]byte(verifier))
		derived = base64.RawURLEncoding.EncodeToString(digest[:])
	} else {
		derived = verifier
	}
	return subtle.ConstantTimeCompare([]byte(derived), []byte(challenge)) == 1
}
