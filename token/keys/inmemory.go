package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const rsaKeyBits = 2048

type storedKey struct {
	keyType  KeyType
	material []byte
}

type currentPair struct {
	privateIdentifier string
	publicIdentifier  string
}

// InMemoryService is the production ManagementService backed by process
// memory. The current pair is a single atomically swapped pointer: rotation
// publishes it only after the new material is stored, so a concurrent signer
// sees either the old complete pair or the new complete pair, never a half
// update.
type InMemoryService struct {
	keys    map[string]storedKey
	lock    sync.RWMutex
	current atomic.Pointer[currentPair]
}

var _ ManagementService = (*InMemoryService)(nil)

func NewInMemoryService() *InMemoryService {
	return &InMemoryService{
		keys: make(map[string]storedKey),
	}
}

func (s *InMemoryService) GenerateKey() (string, string, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		return "", "", errors.Wrap(err, "[InMemoryService.GenerateKey] rsa.GenerateKey")
	}

	publicPEM, err := ExportPublicKeyPEM(&privateKey.PublicKey)
	if err != nil {
		return "", "", errors.Wrap(err, "[InMemoryService.GenerateKey] ExportPublicKeyPEM")
	}

	privateIdentifier := uuid.New().String()
	publicIdentifier := uuid.New().String()

	s.lock.Lock()
	defer s.lock.Unlock()
	s.keys[privateIdentifier] = storedKey{keyType: KeyTypePrivate, material: ExportPrivateKeyPEM(privateKey)}
	s.keys[publicIdentifier] = storedKey{keyType: KeyTypePublic, material: publicPEM}

	return privateIdentifier, publicIdentifier, nil
}

func (s *InMemoryService) StoreKey(identifier string, keyType KeyType, material []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.keys[identifier] = storedKey{keyType: keyType, material: material}
	return nil
}

func (s *InMemoryService) RetrieveKey(identifier string, keyType KeyType) ([]byte, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	stored, ok := s.keys[identifier]
	if !ok || stored.keyType != keyType {
		return nil, ErrKeyNotFound
	}
	return stored.material, nil
}

func (s *InMemoryService) PublicKeyIdentifier() (string, error) {
	pair := s.current.Load()
	if pair == nil {
		return "", ErrNoCurrentKey
	}
	return pair.publicIdentifier, nil
}

func (s *InMemoryService) PrivateKeyIdentifier() (string, error) {
	pair := s.current.Load()
	if pair == nil {
		return "", ErrNoCurrentKey
	}
	return pair.privateIdentifier, nil
}

func (s *InMemoryService) RotateKey(deprecateOld bool) error {
	privateIdentifier, publicIdentifier, err := s.GenerateKey()
	if err != nil {
		return errors.Wrap(err, "[InMemoryService.RotateKey] GenerateKey")
	}

	// Material is durably stored before the pointer swap.
	previous := s.current.Swap(&currentPair{
		privateIdentifier: privateIdentifier,
		publicIdentifier:  publicIdentifier,
	})

	if deprecateOld && previous != nil {
		if err := s.DeleteKey(previous.privateIdentifier); err != nil {
			return errors.Wrap(err, "[InMemoryService.RotateKey] DeleteKey private")
		}
		if err := s.DeleteKey(previous.publicIdentifier); err != nil {
			return errors.Wrap(err, "[InMemoryService.RotateKey] DeleteKey public")
		}
	}
	return nil
}

func (s *InMemoryService) DeleteKey(identifier string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.keys, identifier)
	return nil
}

func (s *InMemoryService) ListKeys() ([]string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	identifiers := make([]string, 0, len(s.keys))
	for identifier := range s.keys {
		identifiers = append(identifiers, identifier)
	}
	return identifiers, nil
}

func (s *InMemoryService) ConvertToJWK(publicKey []byte) ([]JWK, error) {
	rsaKey, err := ParsePublicKeyPEM(publicKey)
	if err != nil {
		return nil, errors.Wrap(err, "[InMemoryService.ConvertToJWK] ParsePublicKeyPEM")
	}
	return []JWK{BuildJWK(s.identifierForMaterial(publicKey), rsaKey)}, nil
}

// identifierForMaterial finds the identifier the material is stored under, so
// the served JWK carries the kid verifiers will see in token headers.
func (s *InMemoryService) identifierForMaterial(material []byte) string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	for identifier, stored := range s.keys {
		if stored.keyType == KeyTypePublic && string(stored.material) == string(material) {
			return identifier
		}
	}
	return ""
}
