package service

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"github.com/ventech/ventech_api/internal/config"
)

// Attachment is an in-memory file attached to an email.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Mail is a single outgoing message.
type Mail struct {
	To          string
	ReplyTo     string
	Subject     string
	HTMLBody    string
	TextBody    string
	Attachments []Attachment
}

// MailSender delivers a prepared gomail message.
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// MailService sends transactional email over SMTP.
type MailService struct {
	sender MailSender
	from   string
}

// NewMailService dials the configured SMTP server on every send.
func NewMailService(cfg *config.SMTPConfig) *MailService {
	return NewMailServiceWithSender(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg.From)
}

// NewMailServiceWithSender uses a custom sender.
func NewMailServiceWithSender(sender MailSender, from string) *MailService {
	return &MailService{sender: sender, from: from}
}

// Send builds and delivers m. The context only guards against sending after
// cancellation; gomail itself is not context aware.
func (s *MailService) Send(ctx context.Context, m Mail) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := s.build(m)
	if err := s.sender.DialAndSend(msg); err != nil {
		log.Error().Err(err).Str("to", m.To).Str("subject", m.Subject).Msg("email delivery failed")
		return fmt.Errorf("send mail to %s: %w", m.To, err)
	}
	log.Info().Str("to", m.To).Str("subject", m.Subject).Msg("email sent")
	return nil
}

func (s *MailService) build(m Mail) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", m.To)
	if m.ReplyTo != "" {
		msg.SetHeader("Reply-To", m.ReplyTo)
	}
	msg.SetHeader("Subject", m.Subject)

	if m.TextBody != "" {
		msg.SetBody("text/plain", m.TextBody)
		if m.HTMLBody != "" {
			msg.AddAlternative("text/html", m.HTMLBody)
		}
	} else {
		msg.SetBody("text/html", m.HTMLBody)
	}

	for _, a := range m.Attachments {
		data := a.Data
		msg.Attach(a.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}),
		)
	}
	return msg
}
