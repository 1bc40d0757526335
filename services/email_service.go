package services

import (
	"fmt"
	"net/smtp"

	"github.com/sirupsen/logrus"
)

// EmailService delivers transactional email. The only template this
// service needs is the one-time code delivery.
type EmailService interface {
	SendOTPEmail(email, code string) error
}

// SMTPEmailService implements EmailService over plain SMTP.
type SMTPEmailService struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewSMTPEmailService(host, port, username, password, from string) EmailService {
	return &SMTPEmailService{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (es *SMTPEmailService) SendOTPEmail(email, code string) error {
	subject := "Your Lifeline verification code"
	body := fmt.Sprintf("Your one-time verification code is %s.\r\n\r\nIf you did not request this code, you can ignore this email.\r\n", code)

	message := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s",
		es.from, email, subject, body)

	auth := smtp.PlainAuth("", es.username, es.password, es.host)
	addr := fmt.Sprintf("%s:%s", es.host, es.port)

	if err := smtp.SendMail(addr, auth, es.from, []string{email}, []byte(message)); err != nil {
		logrus.Errorf("Failed to send OTP email to %s: %v", email, err)
		return err
	}

	logrus.Infof("OTP email sent to %s", email)
	return nil
}

// MockEmailService logs instead of sending. Used when SMTP credentials are
// not configured.
type MockEmailService struct{}

func NewMockEmailService() EmailService {
	return &MockEmailService{}
}

func (es *MockEmailService) SendOTPEmail(email, code string) error {
	logrus.Infof("MOCK EMAIL: OTP %s for %s", code, email)
	return nil
}
