package keys

import (
	"crypto/rsa"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// SignerService builds signers bound to the current private key. Every
// signing and verification site obtains a fresh Signer per call rather than
// caching one, so key rotation takes effect on the next call without a
// process restart.
type SignerService struct {
	keys ManagementService
}

func NewSignerService(keys ManagementService) *SignerService {
	return &SignerService{keys: keys}
}

// Keys exposes the backing management service.
func (s *SignerService) Keys() ManagementService {
	return s.keys
}

// Signer resolves the current private key and returns a signer for it.
func (s *SignerService) Signer() (*Signer, error) {
	privateIdentifier, err := s.keys.PrivateKeyIdentifier()
	if err != nil {
		return nil, errors.Wrap(err, "[SignerService.Signer] PrivateKeyIdentifier")
	}
	publicIdentifier, err := s.keys.PublicKeyIdentifier()
	if err != nil {
		return nil, errors.Wrap(err, "[SignerService.Signer] PublicKeyIdentifier")
	}
	material, err := s.keys.RetrieveKey(privateIdentifier, KeyTypePrivate)
	if err != nil {
		return nil, errors.Wrap(err, "[SignerService.Signer] RetrieveKey")
	}
	privateKey, err := ParsePrivateKeyPEM(material)
	if err != nil {
		return nil, errors.Wrap(err, "[SignerService.Signer] ParsePrivateKeyPEM")
	}
	return &Signer{privateKey: privateKey, keyID: publicIdentifier}, nil
}

// VerificationKey is a jwt.Keyfunc resolving the public key for a token by
// its kid header. Tokens signed under a rotated-but-retained key still
// verify; once the key is deleted, verification fails with ErrKeyNotFound.
func (s *SignerService) VerificationKey(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
		return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
	}

	kid, _ := token.Header["kid"].(string)
	if kid == "" {
		current, err := s.keys.PublicKeyIdentifier()
		if err != nil {
			return nil, errors.Wrap(err, "[SignerService.VerificationKey] PublicKeyIdentifier")
		}
		kid = current
	}

	material, err := s.keys.RetrieveKey(kid, KeyTypePublic)
	if err != nil {
		return nil, errors.Wrap(err, "[SignerService.VerificationKey] RetrieveKey")
	}
	return ParsePublicKeyPEM(material)
}

// Signer signs JWT claims with a snapshot of the current private key. The
// kid header carries the paired public key identifier.
type Signer struct {
	privateKey *rsa.PrivateKey
	keyID      string
}

func (s *Signer) Sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = s.keyID

	signedToken, err := token.SignedString(s.privateKey)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}
	return signedToken, nil
}

// KeyID returns the public key identifier the signer stamps into kid.
func (s *Signer) KeyID() string {
	return s.keyID
}
