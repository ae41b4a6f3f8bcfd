package notification

import (
	"context"
	"fmt"
	"net/smtp"

	"fleet-reserve/internal/config"
)

// SMTPSender delivers messages through a plain SMTP relay.
type SMTPSender struct {
	cfg config.SMTPConfig
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	}

	body := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.cfg.From, msg.Recipient, msg.Subject, msg.HTMLBody,
	)

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{msg.Recipient}, []byte(body)); err != nil {
		return fmt.Errorf("smtp send to %s failed: %w", msg.Recipient, err)
	}

	return nil
}
