package services

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingEmail struct {
	mu    sync.Mutex
	sent  []string
	codes []string
	err   error
}

func (e *capturingEmail) SendOTPEmail(email, code string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.sent = append(e.sent, email)
	e.codes = append(e.codes, code)
	return nil
}

func TestSendOTPDeliversCode(t *testing.T) {
	email := &capturingEmail{}
	svc := NewOTPService("JBSWY3DPEHPK3PXP", email)

	resp := svc.SendOTP("rider@example.com")
	require.True(t, resp.Success)
	assert.Len(t, resp.OTP, 6)
	assert.Empty(t, resp.Error)

	require.Len(t, email.sent, 1)
	assert.Equal(t, "rider@example.com", email.sent[0])
	assert.Equal(t, resp.OTP, email.codes[0])
}

func TestSendOTPCodesAreFresh(t *testing.T) {
	email := &capturingEmail{}
	svc := NewOTPService("JBSWY3DPEHPK3PXP", email)

	first := svc.SendOTP("rider@example.com")
	second := svc.SendOTP("rider@example.com")
	require.True(t, first.Success)
	require.True(t, second.Success)
	assert.NotEqual(t, first.OTP, second.OTP)
}

func TestSendOTPReportsDeliveryFailure(t *testing.T) {
	email := &capturingEmail{err: errors.New("smtp down")}
	svc := NewOTPService("JBSWY3DPEHPK3PXP", email)

	resp := svc.SendOTP("rider@example.com")
	assert.False(t, resp.Success)
	assert.Empty(t, resp.OTP)
	assert.NotEmpty(t, resp.Error)
}

func TestOTPServiceGeneratesSecretWhenMissing(t *testing.T) {
	svc := NewOTPService("", &capturingEmail{})
	resp := svc.SendOTP("rider@example.com")
	assert.True(t, resp.Success)
}
