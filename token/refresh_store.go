package token

import "sync"

// RefreshTokenRepo stores refresh token records keyed by their opaque token
// string.
type RefreshTokenRepo interface {
	Upsert(refreshToken *RefreshToken) error
	Get(tokenString string) (*RefreshToken, error)
	Delete(tokenString string) error

	// UpdateScopes atomically replaces the scope set of a stored token.
	// Concurrent updates to the same token are serialized; each either
	// applies in full or returns an error.
	UpdateScopes(tokenString string, scopes []string) error
}

// InMemoryRefreshTokenRepo is a mutex-guarded map implementation of
// RefreshTokenRepo.
type InMemoryRefreshTokenRepo struct {
	tokens map[string]RefreshToken
	lock   sync.RWMutex
}

var _ RefreshTokenRepo = (*InMemoryRefreshTokenRepo)(nil)

func NewInMemoryRefreshTokenRepo() *InMemoryRefreshTokenRepo {
	return &InMemoryRefreshTokenRepo{
		tokens: make(map[string]RefreshToken),
	}
}

func (r *InMemoryRefreshTokenRepo) Upsert(refreshToken *RefreshToken) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.tokens[refreshToken.TokenString] = *refreshToken
	return nil
}

func (r *InMemoryRefreshTokenRepo) Get(tokenString string) (*RefreshToken, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	stored, ok := r.tokens[tokenString]
	if !ok {
		return nil, ErrTokenNotFound
	}
	return &stored, nil
}

func (r *InMemoryRefreshTokenRepo) Delete(tokenString string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.tokens, tokenString)
	return nil
}

func (r *InMemoryRefreshTokenRepo) UpdateScopes(tokenString string, scopes []string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	stored, ok := r.tokens[tokenString]
	if !ok {
		return ErrTokenNotFound
	}
	stored.Scopes = append([]string(nil), scopes...)
	r.tokens[tokenString] = stored
	return nil
}
