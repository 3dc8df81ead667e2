package oauth2

// Request parameter names shared by the authorization and token endpoints.
const (
	ParamClientID              = "client_id"
	ParamClientSecret          = "client_secret"
	ParamResponseType          = "response_type"
	ParamRedirectURI           = "redirect_uri"
	ParamScope                 = "scope"
	ParamState                 = "state"
	ParamGrantType             = "grant_type"
	ParamCode                  = "code"
	ParamCodeChallenge         = "code_challenge"
	ParamCodeChallengeMethod   = "code_challenge_method"
	ParamCodeVerifier          = "code_verifier"
	ParamNonce                 = "nonce"
	ParamRefreshToken          = "refresh_token"
	ParamUsername              = "username"
	ParamPassword              = "password"
	ParamDeviceCode            = "device_code"
	ParamUserCode              = "user_code"
	ParamCSRFToken             = "csrf_token"
	ParamApplicationAuthorized = "application_authorized"
)

// Response parameter names used in token responses and redirects.
const (
	ParamAccessToken      = "access_token"
	ParamTokenType        = "token_type"
	ParamExpiresIn        = "expires_in"
	ParamIDToken          = "id_token"
	ParamError            = "error"
	ParamErrorDescription = "error_description"
)
