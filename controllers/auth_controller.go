package controllers

import (
	"crypto/subtle"

	"lifeline/models"
	"lifeline/services"
	"lifeline/utils"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	jwtService *utils.JWTService
	otpService *services.OTPService
	deviceKey  string
}

func NewAuthController(jwtService *utils.JWTService, otpService *services.OTPService, deviceKey string) *AuthController {
	return &AuthController{
		jwtService: jwtService,
		otpService: otpService,
		deviceKey:  deviceKey,
	}
}

// Token exchanges the provisioned device key for a bearer token.
func (ac *AuthController) Token(c *gin.Context) {
	var req models.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid token request")
		return
	}

	if ac.deviceKey == "" || subtle.ConstantTimeCompare([]byte(req.DeviceKey), []byte(ac.deviceKey)) != 1 {
		utils.UnauthorizedResponse(c, "Invalid device key")
		return
	}

	token, expiresIn, err := ac.jwtService.GenerateAccessToken("device")
	if err != nil {
		utils.InternalServerErrorResponse(c, "Failed to mint token")
		return
	}

	utils.SuccessResponse(c, "Token issued", models.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
	})
}

// SendOTP mails a one-time code to the given address. The response shape
// mirrors the legacy endpoint: {success, otp} or {success:false, error}.
func (ac *AuthController) SendOTP(c *gin.Context) {
	var req models.SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, models.SendOTPResponse{Success: false, Error: "a valid email is required"})
		return
	}

	resp := ac.otpService.SendOTP(req.Email)
	if !resp.Success {
		c.JSON(502, resp)
		return
	}
	c.JSON(200, resp)
}
