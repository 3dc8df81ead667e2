package fakeusermanager

import (
	"errors"
	"sync"

	"github.com/authcore-io/authcore/users"
)

var _ users.Manager = (*FakeUserManager)(nil)

type FakeUserManager struct {
	byID       map[string]*users.User
	byUsername map[string]*users.User
	lock       sync.RWMutex
}

func NewFakeUserManager() *FakeUserManager {
	return &FakeUserManager{
		byID:       make(map[string]*users.User),
		byUsername: make(map[string]*users.User),
	}
}

func (m *FakeUserManager) Add(user *users.User) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.byID[user.ID] = user
	m.byUsername[user.Username] = user
}

func (m *FakeUserManager) AuthenticateUser(username, password string) (string, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	user, ok := m.byUsername[username]
	if !ok {
		return "", nil
	}
	if !users.CheckPasswordHash(password, user.PasswordHash) {
		return "", nil
	}
	return user.ID, nil
}

func (m *FakeUserManager) GetUser(userID string) (*users.User, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	user, ok := m.byID[userID]
	if !ok {
		return nil, errors.New("not found")
	}
	return user, nil
}
