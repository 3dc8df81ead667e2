package users

import (
	"golang.org/x/crypto/bcrypt"
)

// User is a resource owner known to the external user directory. The
// authorization core never stores credentials itself; it sees users only
// through the Manager capability.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	PasswordHash string `json:"-"`
}

// Manager is the capability contract onto the external user directory. The
// password grant and the userinfo endpoint are its only consumers.
type Manager interface {
	// AuthenticateUser checks the credentials and returns the user ID on
	// success, or empty string when the credentials do not match.
	AuthenticateUser(username, password string) (string, error)

	// GetUser returns the user for an ID, or an error if unknown.
	GetUser(userID string) (*User, error)
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a plaintext password against a bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
