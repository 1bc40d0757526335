package models

// TokenRequest exchanges the provisioned device key for a bearer token.
type TokenRequest struct {
	DeviceKey string `json:"deviceKey" binding:"required"`
}

// TokenResponse carries the minted device token.
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// SendOTPRequest asks for a one-time code to be mailed to the user.
type SendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// SendOTPResponse mirrors the legacy endpoint contract: the code is echoed
// back alongside the delivery result.
type SendOTPResponse struct {
	Success bool   `json:"success"`
	OTP     string `json:"otp,omitempty"`
	Error   string `json:"error,omitempty"`
}
