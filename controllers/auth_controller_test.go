package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"lifeline/models"
	"lifeline/services"
	"lifeline/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingEmail struct{}

func (failingEmail) SendOTPEmail(string, string) error { return errors.New("smtp down") }

func newAuthRouter(t *testing.T, email services.EmailService) (*gin.Engine, *utils.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtService := utils.NewJWTService("test-secret")
	otpService := services.NewOTPService("JBSWY3DPEHPK3PXP", email)
	ac := NewAuthController(jwtService, otpService, "device-key-123")

	router := gin.New()
	router.POST("/auth/token", ac.Token)
	router.POST("/send-otp", ac.SendOTP)
	return router, jwtService
}

func TestTokenExchange(t *testing.T) {
	router, jwtService := newAuthRouter(t, services.NewMockEmailService())

	rec := doJSON(router, http.MethodPost, "/auth/token", `{"deviceKey":"device-key-123"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data models.TokenResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Bearer", resp.Data.TokenType)

	claims, err := jwtService.ValidateToken(resp.Data.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "device", claims.Subject)
}

func TestTokenExchangeRejectsWrongKey(t *testing.T) {
	router, _ := newAuthRouter(t, services.NewMockEmailService())

	rec := doJSON(router, http.MethodPost, "/auth/token", `{"deviceKey":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSendOTPLegacyShape(t *testing.T) {
	router, _ := newAuthRouter(t, services.NewMockEmailService())

	rec := doJSON(router, http.MethodPost, "/send-otp", `{"email":"rider@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.SendOTPResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.OTP, 6)
}

func TestSendOTPRejectsBadEmail(t *testing.T) {
	router, _ := newAuthRouter(t, services.NewMockEmailService())

	rec := doJSON(router, http.MethodPost, "/send-otp", `{"email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendOTPDeliveryFailure(t *testing.T) {
	router, _ := newAuthRouter(t, failingEmail{})

	rec := doJSON(router, http.MethodPost, "/send-otp", `{"email":"rider@example.com"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var resp models.SendOTPResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
}
