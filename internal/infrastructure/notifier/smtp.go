// Package notifier implements the outbound mail senders consumed by the
// core service: real SMTP delivery and a log-only sender for development.
package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPConfig carries the mail relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

// SMTPNotifier sends plain-text mail through a single relay.
type SMTPNotifier struct {
	cfg SMTPConfig
}

func NewSMTP(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

// Send delivers body to recipient. net/smtp has no context support, so
// the context only names the caller's intent; deadlines do not interrupt
// an in-flight delivery.
func (n *SMTPNotifier) Send(_ context.Context, recipient, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", n.cfg.FromName, n.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if n.cfg.User != "" {
		auth = smtp.PlainAuth("", n.cfg.User, n.cfg.Password, n.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{recipient}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
