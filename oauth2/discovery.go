package oauth2

import "encoding/json"

// DiscoveryDocument describes the provider's endpoints and capabilities,
// served at /.well-known/openid-configuration.
type DiscoveryDocument struct {
	Issuer                            string   `json:"issuer,omitempty"`
	AuthorizationEndpoint             string   `json:"authorization_endpoint,omitempty"`
	TokenEndpoint                     string   `json:"token_endpoint,omitempty"`
	DeviceAuthorizationEndpoint       string   `json:"device_authorization_endpoint,omitempty"`
	UserInfoEndpoint                  string   `json:"userinfo_endpoint,omitempty"`
	JWKSURI                           string   `json:"jwks_uri,omitempty"`
	ScopesSupported                   []string `json:"scopes_supported,omitempty"`
	ResponseTypesSupported            []string `json:"response_types_supported,omitempty"`
	GrantTypesSupported               []string `json:"grant_types_supported,omitempty"`
	SubjectTypesSupported             []string `json:"subject_types_supported,omitempty"`
	IDTokenSigningAlgValuesSupported  []string `json:"id_token_signing_alg_values_supported,omitempty"`
	TokenEndpointAuthMethodsSupported []string `json:"token_endpoint_auth_methods_supported,omitempty"`
	CodeChallengeMethodsSupported     []string `json:"code_challenge_methods_supported,omitempty"`
	ClaimsSupported                   []string `json:"claims_supported,omitempty"`

	// Extend carries vendor extensions serialized alongside the named
	// fields. A named field wins over an Extend entry with the same key.
	Extend map[string]any `json:"-"`
}

// MarshalJSON merges the named fields with the Extend map into a single
// object.
func (d DiscoveryDocument) MarshalJSON() ([]byte, error) {
	type alias DiscoveryDocument
	fixed, err := json.Marshal(alias(d))
	if err != nil {
		return nil, err
	}
	if len(d.Extend) == 0 {
		return fixed, nil
	}

	merged := make(map[string]json.RawMessage, len(d.Extend)+16)
	for k, v := range d.Extend {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		merged[k] = raw
	}

	var named map[string]json.RawMessage
	if err := json.Unmarshal(fixed, &named); err != nil {
		return nil, err
	}
	for k, v := range named {
		merged[k] = v
	}
	return json.Marshal(merged)
}
