package codes

import "errors"

var (
	// ErrCodeNotFound is returned when a code is unknown or already consumed.
	ErrCodeNotFound = errors.New("code not found")

	// ErrCodeAlreadyUsed is returned by CodeUsed when another request
	// consumed the code first. At most one consumption succeeds per code.
	ErrCodeAlreadyUsed = errors.New("code already used")

	// ErrUserCodeNotFound is returned when no pending device code matches
	// the presented user code.
	ErrUserCodeNotFound = errors.New("user code not found")

	// ErrPollTooFast is returned when a device polls faster than the
	// advertised interval.
	ErrPollTooFast = errors.New("polling faster than advertised interval")
)

// CodeRequest carries the bindings recorded on a new authorization code.
type CodeRequest struct {
	UserID              string
	ClientID            string
	RedirectURI         string
	Scopes              []string
	CodeChallenge       string
	CodeChallengeMethod string
	Nonce               string
}

// Manager is the capability contract for issuing, retrieving and consuming
// authorization codes and device codes. One production implementation backs
// it; tests use it directly.
type Manager interface {
	// GenerateCode mints a new single-use authorization code and returns
	// the code string handed to the client.
	GenerateCode(request CodeRequest) (string, error)

	// GetCode retrieves a live code by its string; ErrCodeNotFound when the
	// code is unknown or already consumed.
	GetCode(code string) (*AuthorizationCode, error)

	// CodeUsed consumes the code. The read-validate-consume sequence is
	// atomic per code: two concurrent exchanges of the same code see at
	// most one success.
	CodeUsed(code *AuthorizationCode) error

	// GenerateDeviceCode starts a device flow for the client.
	GenerateDeviceCode(clientID string, scopes []string) (*DeviceCode, error)

	// GetDeviceCode retrieves a pending device code, enforcing the poll
	// interval: ErrPollTooFast when the device polls too quickly.
	GetDeviceCode(deviceCode string) (*DeviceCode, error)

	// AuthorizeDeviceCode binds the approving user to the device code
	// matching the user code.
	AuthorizeDeviceCode(userCode, userID string) error

	// DeviceCodeUsed consumes an approved device code, single-use like an
	// authorization code.
	DeviceCodeUsed(deviceCode *DeviceCode) error
}
