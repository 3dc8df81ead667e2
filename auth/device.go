package auth

import (
	"github.com/authcore-io/authcore/codes"
	"github.com/authcore-io/authcore/oauth2"
)

// HandleDeviceAuthorization starts a device flow: authenticate the client,
// validate the requested scopes, mint the device/user code pair.
func (h *TokenHandler) HandleDeviceAuthorization(request *oauth2.TokenRequest) (*oauth2.DeviceAuthorizationResponse, *oauth2.TokenError) {
	if request.ClientID == "" {
		return nil, oauth2.MissingParameterError(oauth2.ParamClientID)
	}

	if tokenErr, ok := h.authenticateClient(request.ClientID, request.ClientSecret, oauth2.DeviceCodeGrant, false, oauth2.DeviceCodeGrant); !ok {
		return nil, tokenErr
	}

	scopes := oauth2.SplitScopes(request.Scope)
	if tokenErr := h.validateScopes(scopes, request.ClientID); tokenErr != nil {
		return nil, tokenErr
	}

	deviceCode, err := h.codeManager.GenerateDeviceCode(request.ClientID, scopes)
	if err != nil {
		return nil, oauth2.ServerError()
	}

	return &oauth2.DeviceAuthorizationResponse{
		DeviceCode:      deviceCode.DeviceCodeID,
		UserCode:        deviceCode.UserCode,
		VerificationURI: h.verificationURI,
		ExpiresIn:       int(deviceCode.ExpiryDate.Sub(h.nowFunc()).Seconds()),
		Interval:        int(deviceCode.Interval.Seconds()),
	}, nil
}

func (h *TokenHandler) handleDeviceCodeGrant(request *oauth2.TokenRequest) (*oauth2.TokenResponse, *oauth2.TokenError) {
	if request.DeviceCode == "" {
		return nil, oauth2.MissingParameterError(oauth2.ParamDeviceCode)
	}
	if request.ClientID == "" {
		return nil, oauth2.MissingParameterError(oauth2.ParamClientID)
	}

	if tokenErr, ok := h.authenticateClient(request.ClientID, request.ClientSecret, oauth2.DeviceCodeGrant, false, oauth2.DeviceCodeGrant); !ok {
		return nil, tokenErr
	}

	deviceCode, err := h.codeManager.GetDeviceCode(request.DeviceCode)
	switch err {
	case nil:
	case codes.ErrPollTooFast:
		return nil, oauth2.DeviceFlowError(oauth2.ErrorCodeSlowDown, descSlowDown)
	default:
		return nil, oauth2.InvalidGrantError(descDeviceCodeInvalid)
	}

	if deviceCode.ClientID != request.ClientID {
		return nil, oauth2.InvalidGrantError(descDeviceCodeInvalid)
	}
	if deviceCode.IsExpired(h.nowFunc()) {
		return nil, oauth2.DeviceFlowError(oauth2.ErrorCodeExpiredToken, descDeviceCodeExpired)
	}
	if !deviceCode.Approved {
		return nil, oauth2.DeviceFlowError(oauth2.ErrorCodeAuthorizationPending, descAuthorizationPending)
	}

	// Single-use like an authorization code.
	if err := h.codeManager.DeviceCodeUsed(deviceCode); err != nil {
		return nil, oauth2.InvalidGrantError(descDeviceCodeInvalid)
	}

	accessToken, refreshToken, err := h.tokenManager.GenerateAccessRefreshTokens(
		request.ClientID, deviceCode.UserID, deviceCode.Scopes, h.accessTokenExpiry)
	if err != nil {
		return nil, oauth2.ServerError()
	}
	return &oauth2.TokenResponse{
		AccessToken:  accessToken.TokenString,
		RefreshToken: refreshToken.TokenString,
		TokenType:    "bearer",
		ExpiresIn:    h.accessTokenExpiry,
		Scope:        joinScopes(deviceCode.Scopes),
	}, nil
}
