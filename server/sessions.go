package server

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"sync"
	"time"
)

const (
	consentSessionCookie = "authorize_session"
	consentSessionTTL    = 10 * time.Minute
)

type consentSession struct {
	CSRFToken string
	Expiry    time.Time
}

// SessionStore holds short-lived consent sessions keyed by session ID. Each
// session exists only to carry the CSRF token between the consent page and
// its submission. Expired sessions are purged opportunistically on Create,
// so abandoned consent pages cannot accumulate.
type SessionStore struct {
	sessions map[string]consentSession
	nowFunc  func() time.Time
	lock     sync.Mutex
}

// SessionStoreOption configures a SessionStore.
type SessionStoreOption func(*SessionStore)

// WithSessionNowFunc overrides the clock, for tests.
func WithSessionNowFunc(nowFunc func() time.Time) SessionStoreOption {
	return func(s *SessionStore) { s.nowFunc = nowFunc }
}

func NewSessionStore(opts ...SessionStoreOption) *SessionStore {
	s := &SessionStore{
		sessions: make(map[string]consentSession),
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create mints a session and its CSRF token.
func (s *SessionStore) Create() (sessionID, csrfToken string) {
	sessionID = randomToken()
	csrfToken = randomToken()

	s.lock.Lock()
	defer s.lock.Unlock()

	now := s.nowFunc()
	for id, session := range s.sessions {
		if now.After(session.Expiry) {
			delete(s.sessions, id)
		}
	}

	s.sessions[sessionID] = consentSession{
		CSRFToken: csrfToken,
		Expiry:    now.Add(consentSessionTTL),
	}
	return sessionID, csrfToken
}

// Consume removes the session and reports whether the presented CSRF token
// matches, in constant time. A session validates at most once.
func (s *SessionStore) Consume(sessionID, csrfToken string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return false
	}
	delete(s.sessions, sessionID)

	if s.nowFunc().After(session.Expiry) {
		return false
	}
	if csrfToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(session.CSRFToken), []byte(csrfToken)) == 1
}

// Len reports the number of stored sessions.
func (s *SessionStore) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.sessions)
}

func randomToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
