package codes

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

const (
	codeGenerationLength = 32
	userCodeLength       = 8
	userCodeAlphabet     = "BCDFGHJKLMNPQRSTVWXZ" // unambiguous consonants
)

// InMemoryManager is the production Manager backed by process memory. Codes
// are short-lived by design, so memory-backed storage satisfies the contract;
// any durable store must preserve the same at-most-one-consumption semantics.
type InMemoryManager struct {
	codes        map[string]*AuthorizationCode
	deviceCodes  map[string]*DeviceCode
	userCodes    map[string]string // user code -> device code ID
	pollLimiters map[string]*rate.Limiter
	lock         sync.Mutex

	codeExpiry       time.Duration
	deviceCodeExpiry time.Duration
	pollInterval     time.Duration
	nowFunc          func() time.Time
}

var _ Manager = (*InMemoryManager)(nil)

type InMemoryManagerOption func(*InMemoryManager)

// WithCodeExpiry overrides the authorization-code and device-code lifetimes.
func WithCodeExpiry(codeExpiry, deviceCodeExpiry time.Duration) InMemoryManagerOption {
	return func(m *InMemoryManager) {
		m.codeExpiry = codeExpiry
		m.deviceCodeExpiry = deviceCodeExpiry
	}
}

// WithPollInterval overrides the advertised device polling interval.
func WithPollInterval(interval time.Duration) InMemoryManagerOption {
	return func(m *InMemoryManager) {
		m.pollInterval = interval
	}
}

// WithNowFunc sets the now time function (primarily for testing).
func WithNowFunc(now func() time.Time) InMemoryManagerOption {
	return func(m *InMemoryManager) {
		m.nowFunc = now
	}
}

func NewInMemoryManager(options ...InMemoryManagerOption) *InMemoryManager {
	m := &InMemoryManager{
		codes:            make(map[string]*AuthorizationCode),
		deviceCodes:      make(map[string]*DeviceCode),
		userCodes:        make(map[string]string),
		pollLimiters:     make(map[string]*rate.Limiter),
		codeExpiry:       15 * time.Minute,
		deviceCodeExpiry: 5 * time.Minute,
		pollInterval:     5 * time.Second,
		nowFunc:          time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *InMemoryManager) GenerateCode(request CodeRequest) (string, error) {
	codeString, err := generateCodeString()
	if err != nil {
		return "", errors.Wrap(err, "[InMemoryManager.GenerateCode] generateCodeString")
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	m.purgeExpiredLocked()

	m.codes[codeString] = &AuthorizationCode{
		CodeID:              codeString,
		ClientID:            request.ClientID,
		RedirectURI:         request.RedirectURI,
		UserID:              request.UserID,
		ExpiryDate:          m.nowFunc().Add(m.codeExpiry),
		Scopes:              request.Scopes,
		CodeChallenge:       request.CodeChallenge,
		CodeChallengeMethod: request.CodeChallengeMethod,
		Nonce:               request.Nonce,
	}
	return codeString, nil
}

func (m *InMemoryManager) GetCode(code string) (*AuthorizationCode, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	authCode, ok := m.codes[code]
	if !ok {
		return nil, ErrCodeNotFound
	}
	return authCode, nil
}

// CodeUsed deletes the code under the manager lock, so of two concurrent
// exchanges racing on the same code exactly one observes the delete.
func (m *InMemoryManager) CodeUsed(code *AuthorizationCode) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if _, ok := m.codes[code.CodeID]; !ok {
		return ErrCodeAlreadyUsed
	}
	delete(m.codes, code.CodeID)
	return nil
}

func (m *InMemoryManager) GenerateDeviceCode(clientID string, scopes []string) (*DeviceCode, error) {
	codeString, err := generateCodeString()
	if err != nil {
		return nil, errors.Wrap(err, "[InMemoryManager.GenerateDeviceCode] generateCodeString")
	}
	userCode, err := generateUserCode()
	if err != nil {
		return nil, errors.Wrap(err, "[InMemoryManager.GenerateDeviceCode] generateUserCode")
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	m.purgeExpiredLocked()

	deviceCode := &DeviceCode{
		DeviceCodeID: codeString,
		UserCode:     userCode,
		ClientID:     clientID,
		ExpiryDate:   m.nowFunc().Add(m.deviceCodeExpiry),
		Scopes:       scopes,
		Interval:     m.pollInterval,
	}
	m.deviceCodes[codeString] = deviceCode
	m.userCodes[userCode] = codeString
	m.pollLimiters[codeString] = rate.NewLimiter(rate.Every(m.pollInterval), 1)

	snapshot := *deviceCode
	return &snapshot, nil
}

// GetDeviceCode returns a snapshot of the device code. Approval mutates the
// stored record under the manager lock, never a previously returned value.
func (m *InMemoryManager) GetDeviceCode(deviceCode string) (*DeviceCode, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	dc, ok := m.deviceCodes[deviceCode]
	if !ok {
		return nil, ErrCodeNotFound
	}
	if limiter, ok := m.pollLimiters[deviceCode]; ok && !limiter.Allow() {
		return nil, ErrPollTooFast
	}

	snapshot := *dc
	return &snapshot, nil
}

func (m *InMemoryManager) AuthorizeDeviceCode(userCode, userID string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	deviceCodeID, ok := m.userCodes[strings.ToUpper(strings.TrimSpace(userCode))]
	if !ok {
		return ErrUserCodeNotFound
	}
	dc, ok := m.deviceCodes[deviceCodeID]
	if !ok {
		return ErrUserCodeNotFound
	}
	if dc.IsExpired(m.nowFunc()) {
		return ErrUserCodeNotFound
	}
	dc.UserID = userID
	dc.Approved = true
	return nil
}

func (m *InMemoryManager) DeviceCodeUsed(deviceCode *DeviceCode) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if _, ok := m.deviceCodes[deviceCode.DeviceCodeID]; !ok {
		return ErrCodeAlreadyUsed
	}
	delete(m.deviceCodes, deviceCode.DeviceCodeID)
	delete(m.userCodes, deviceCode.UserCode)
	delete(m.pollLimiters, deviceCode.DeviceCodeID)
	return nil
}

// purgeExpiredLocked drops expired entries so abandoned flows cannot
// accumulate. Runs opportunistically on every generation, under the lock.
func (m *InMemoryManager) purgeExpiredLocked() {
	now := m.nowFunc()
	for key, code := range m.codes {
		if code.IsExpired(now) {
			delete(m.codes, key)
		}
	}
	for key, dc := range m.deviceCodes {
		if dc.IsExpired(now) {
			delete(m.deviceCodes, key)
			delete(m.userCodes, dc.UserCode)
			delete(m.pollLimiters, key)
		}
	}
}

func generateCodeString() (string, error) {
	bytes := make([]byte, codeGenerationLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

func generateUserCode() (string, error) {
	bytes := make([]byte, userCodeLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	code := make([]byte, userCodeLength)
	for i, b := range bytes {
		code[i] = userCodeAlphabet[int(b)%len(userCodeAlphabet)]
	}
	return string(code), nil
}
