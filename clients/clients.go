package clients

import (
	"crypto/subtle"

	"github.com/authcore-io/authcore/oauth2"
)

// Client is a registered OAuth2 client. Records are created and updated by an
// external registration process; the authorization core only reads them.
type Client struct {
	ID           string          `json:"id"`
	Secret       string          `json:"secret,omitempty"` // empty for public clients
	Description  string          `json:"description,omitempty"`
	RedirectURIs []string        `json:"redirectURIs,omitempty"`
	Confidential bool            `json:"confidential"`
	FirstParty   bool            `json:"firstParty"`
	AllowedFlow  oauth2.FlowType `json:"allowedFlow"` // exactly one flow per client
	Scopes       []string        `json:"scopes,omitempty"` // empty = inherit provider-wide set
}

// ValidateRedirectURI reports whether the URI exactly matches a registered
// redirect URI. No normalization: a trailing slash or different path is a
// different URI.
func (c *Client) ValidateRedirectURI(redirectURI string) bool {
	for _, uri := range c.RedirectURIs {
		if uri == redirectURI {
			return true
		}
	}
	return false
}

// SecretMatches compares a presented secret against the registration in
// constant time.
func (c *Client) SecretMatches(secret string) bool {
	return subtle.ConstantTimeCompare([]byte(c.Secret), []byte(secret)) == 1
}

// HasScope reports whether the client's own scope set contains the scope.
func (c *Client) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}
