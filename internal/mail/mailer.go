// Package mail delivers password-reset codes.
package mail

import (
	"fmt"
	"net/smtp"

	"farmmarket/internal/config"
	"go.uber.org/zap"
)

type Mailer interface {
	SendResetCode(to, code string) error
}

// New returns an SMTP mailer when a host is configured, otherwise a
// logging mailer suitable for development.
func New(cfg config.SMTPConfig, logger *zap.Logger) Mailer {
	if cfg.Host == "" {
		return &logMailer{logger: logger}
	}
	return &smtpMailer{cfg: cfg}
}

type logMailer struct {
	logger *zap.Logger
}

func (m *logMailer) SendResetCode(to, code string) error {
	m.logger.Info("password reset code issued",
		zap.String("to", to),
		zap.String("code", code))
	return nil
}

type smtpMailer struct {
	cfg config.SMTPConfig
}

func (m *smtpMailer) SendResetCode(to, code string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Password Reset Code\r\n\r\n"+
		"Your password reset code is %s. It expires in 15 minutes.\r\n",
		m.cfg.From, to, code)
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}
