package keys

import "errors"

// KeyType addresses one side of a stored key pair.
type KeyType string

const (
	KeyTypePublic  KeyType = "public"
	KeyTypePrivate KeyType = "private"
)

var (
	// ErrKeyNotFound is returned when no key material exists for an
	// identifier and type.
	ErrKeyNotFound = errors.New("key not found")

	// ErrNoCurrentKey is returned when no signing key pair has been made
	// current yet.
	ErrNoCurrentKey = errors.New("no current signing key")
)

// ManagementService owns the signing-key lifecycle. At most one key pair is
// current for signing at any time; historical pairs remain retrievable for
// verification until explicitly deleted.
type ManagementService interface {
	// GenerateKey creates and stores a new key pair without making it
	// current, returning the private and public key identifiers.
	GenerateKey() (privateKeyIdentifier, publicKeyIdentifier string, err error)

	// StoreKey stores PEM key material under an identifier.
	StoreKey(identifier string, keyType KeyType, material []byte) error

	// RetrieveKey returns the PEM material for an identifier;
	// ErrKeyNotFound when absent.
	RetrieveKey(identifier string, keyType KeyType) ([]byte, error)

	// PublicKeyIdentifier returns the current pair's public identifier;
	// ErrNoCurrentKey when rotation has never run.
	PublicKeyIdentifier() (string, error)

	// PrivateKeyIdentifier returns the current pair's private identifier;
	// ErrNoCurrentKey when rotation has never run.
	PrivateKeyIdentifier() (string, error)

	// RotateKey generates a new pair and makes it current. The new pointer
	// is published only after the material is stored. When deprecateOld is
	// true the previous pair's material is deleted, which stops
	// verification of tokens signed under it.
	RotateKey(deprecateOld bool) error

	// DeleteKey removes the material stored under an identifier, both sides.
	DeleteKey(identifier string) error

	// ListKeys returns the identifiers of all stored keys.
	ListKeys() ([]string, error)

	// ConvertToJWK produces the JWK representations of public key material,
	// as served at the JWKS boundary.
	ConvertToJWK(publicKey []byte) ([]JWK, error)
}
