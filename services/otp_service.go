package services

import (
	"crypto/rand"
	"encoding/base32"
	"sync/atomic"
	"time"

	"lifeline/models"

	"github.com/pquerna/otp/hotp"
	"github.com/sirupsen/logrus"
)

// OTPService issues one-time codes over email. Codes are HOTP values from
// a per-deployment secret with a monotonically increasing counter, so a
// re-request always yields a fresh code.
type OTPService struct {
	secret  string
	counter uint64
	email   EmailService
}

func NewOTPService(secret string, email EmailService) *OTPService {
	if secret == "" {
		buf := make([]byte, 20)
		rand.Read(buf)
		secret = base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf)
		logrus.Warn("otp: no secret configured, generated an ephemeral one")
	}
	return &OTPService{
		secret:  secret,
		counter: uint64(time.Now().Unix()),
		email:   email,
	}
}

// SendOTP generates a code and mails it. The response mirrors the legacy
// endpoint contract: the code is echoed back on success.
func (os *OTPService) SendOTP(email string) models.SendOTPResponse {
	code, err := hotp.GenerateCode(os.secret, atomic.AddUint64(&os.counter, 1))
	if err != nil {
		logrus.WithError(err).Error("otp: code generation failed")
		return models.SendOTPResponse{Success: false, Error: "failed to generate code"}
	}

	if err := os.email.SendOTPEmail(email, code); err != nil {
		return models.SendOTPResponse{Success: false, Error: "failed to send email"}
	}

	return models.SendOTPResponse{Success: true, OTP: code}
}
