package auth

import (
	"github.com/authcore-io/authcore/clients"
)

// ScopeValidator checks requested scopes against the provider-wide scope set
// and then against the client's registered set. The order matters: a scope
// the provider has never heard of is classified as unknown, a real scope the
// client is not registered for as invalid.
type ScopeValidator struct {
	validScopes []string
}

// NewScopeValidator builds a validator over the provider-wide scope set. With
// no scopes given, the provider-wide check is skipped and only per-client
// restrictions apply.
func NewScopeValidator(validScopes ...string) *ScopeValidator {
	return &ScopeValidator{validScopes: validScopes}
}

// ValidateScopes checks each requested scope. An empty request always passes.
func (v *ScopeValidator) ValidateScopes(scopes []string, client *clients.Client) error {
	if len(scopes) == 0 {
		return nil
	}

	if len(v.validScopes) > 0 {
		for _, scope := range scopes {
			if !contains(v.validScopes, scope) {
				return ErrUnknownScope
			}
		}
	}

	if client != nil && len(client.Scopes) > 0 {
		for _, scope := range scopes {
			if !client.HasScope(scope) {
				return ErrInvalidScope
			}
		}
	}
	return nil
}

func contains(set []string, value string) bool {
	for _, s := range set {
		if s == value {
			return true
		}
	}
	return false
}
