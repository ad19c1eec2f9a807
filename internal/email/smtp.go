package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/procurement-api/internal/config"
)

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender builds a gomail-backed Sender. It returns nil when cfg lacks
// credentials so callers fall into the skip path.
func NewSMTPSender(cfg config.MailConfig) Sender {
	if !cfg.Configured() {
		return nil
	}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &smtpSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   from,
	}
}

func (s *smtpSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
