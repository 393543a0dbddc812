package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"alfredoptarigan/cv-project/internal/config"
)

type Mailer interface {
	Send(ctx context.Context, subject, body string, recipients []string) error
}

// NewMailer returns an SMTP mailer, or a console mailer that only logs when no
// MAIL_HOST is configured.
func NewMailer(cfg config.MailConfig, log *zap.Logger) Mailer {
	if cfg.Host == "" {
		return &consoleMailer{from: cfg.From, log: log}
	}
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

func (m *smtpMailer) Send(ctx context.Context, subject, body string, recipients []string) error {
	if len(recipients) == 0 {
		return errors.New("no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", recipients...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	return m.dialer.DialAndSend(msg)
}

type consoleMailer struct {
	from string
	log  *zap.Logger
}

func (m *consoleMailer) Send(_ context.Context, subject, body string, recipients []string) error {
	if len(recipients) == 0 {
		return errors.New("no recipients")
	}
	m.log.Info("📧 Email (console backend)",
		zap.String("from", m.from),
		zap.String("to", strings.Join(recipients, ", ")),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}
