// Package notify delivers email and in-app notifications.
package notify

import (
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/nurlan/debtnet/internal/config"
)

// Mailer sends a plain-text email to a single recipient.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends mail through a configured SMTP relay.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
}

// NewSMTPMailer builds a mailer from SMTP config.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPMailer{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth: auth,
		from: cfg.From,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.from, to, subject, body)
	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

// LogMailer logs mail instead of sending it. Used when SMTP is not
// configured, which keeps local development working without a relay.
type LogMailer struct{}

func (LogMailer) Send(to, subject, body string) error {
	slog.Info("Mail (not sent, SMTP unconfigured)",
		"to", to,
		"subject", subject,
		"body", body,
	)
	return nil
}

// NewMailer picks the SMTP mailer when a host is configured, the log
// fallback otherwise.
func NewMailer(cfg config.SMTPConfig) Mailer {
	if cfg.Host == "" {
		return LogMailer{}
	}
	return NewSMTPMailer(cfg)
}
