// Package mail delivers outbound notification email over SMTP.
package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"
)

// ErrNoRecipients is returned when a message has no To address.
var ErrNoRecipients = errors.New("message has no recipients")

// Message is a single outbound email.
type Message struct {
	To      []string
	Subject string
	Body    string
	HTML    bool
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP sender when cfg.Enabled, otherwise a sender that only
// logs each message.
func New(cfg *Config, logger *slog.Logger) Sender {
	logger = logger.With("system", "mail")
	if !cfg.Enabled {
		return &logSender{logger: logger}
	}
	return &smtpSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.Sender,
		logger: logger,
	}
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
	logger *slog.Logger
}

func (s *smtpSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)

	contentType := "text/plain"
	if msg.HTML {
		contentType = "text/html"
	}
	m.SetBody(contentType, msg.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail %q: %w", msg.Subject, err)
	}

	s.logger.InfoContext(ctx, "mail sent", "to", msg.To, "subject", msg.Subject)
	return nil
}

type logSender struct {
	logger *slog.Logger
}

func (s *logSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	s.logger.InfoContext(ctx, "mail delivery disabled, message not sent",
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}
