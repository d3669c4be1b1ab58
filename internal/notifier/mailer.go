package notifier

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	mail "github.com/go-mail/mail/v2"
)

var ErrSMTPNotConfigured = errors.New("smtp not configured (SMTP_HOST/SMTP_FROM)")

// Mail is one outgoing message. Body is HTML.
type Mail struct {
	To      []string
	ReplyTo string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

type SMTPConfig struct {
	Host          string
	Port          int
	User          string
	Pass          string
	From          string
	SkipTLSVerify bool
}

type SMTPMailer struct {
	config SMTPConfig
	dialer *mail.Dialer
}

func NewSMTPMailer(config SMTPConfig) (*SMTPMailer, error) {
	if config.Host == "" || config.From == "" {
		return nil, ErrSMTPNotConfigured
	}
	if config.Port == 0 {
		config.Port = 587
	}

	d := mail.NewDialer(config.Host, config.Port, config.User, config.Pass)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	if config.Port == 465 {
		d.SSL = true
	}
	d.TLSConfig = &tls.Config{
		ServerName:         config.Host,
		InsecureSkipVerify: config.SkipTLSVerify,
	}

	return &SMTPMailer{config: config, dialer: d}, nil
}

// Send dials per message; notification volume is a handful a day.
func (s *SMTPMailer) Send(ctx context.Context, m Mail) error {
	if len(m.To) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", s.config.From)
	msg.SetHeader("To", m.To...)
	if m.ReplyTo != "" {
		msg.SetHeader("Reply-To", m.ReplyTo)
	}
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/html", m.Body)

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
