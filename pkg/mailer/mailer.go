package mailer

//go:generate mockgen -source=mailer.go -destination=../../internal/mock/mailer_mock.go -package=mock

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers a single message. Implementations must not retry.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	// AllowLogFallback permits the log-only mailer when Host is empty. It logs
	// message bodies (codes, temporary passwords), so only debug builds set it.
	AllowLogFallback bool
}

var ErrNoSMTPHost = errors.New("SMTP host is required unless debug mode is enabled")

// New returns an SMTP mailer when a host is configured. Without a host it
// returns the log-only mailer if allowed and ErrNoSMTPHost otherwise.
func New(cfg Config, log *zap.Logger) (Mailer, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		if !cfg.AllowLogFallback {
			return nil, ErrNoSMTPHost
		}
		log.Warn("SMTP host not configured, emails will only be logged")
		return NewLogMailer(log), nil
	}
	return NewSMTPMailer(cfg, log), nil
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	log    *zap.Logger
}

func NewSMTPMailer(cfg Config, log *zap.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
		log:    log.With(zap.String("component", "mailer")),
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	gm, err := buildMessage(m.from, msg)
	if err != nil {
		return err
	}

	if err := m.dialer.DialAndSend(gm); err != nil {
		m.log.Error("Failed to send email",
			zap.Error(err),
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject))
		return fmt.Errorf("send email to %s: %w", msg.To, err)
	}

	m.log.Info("Email sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

func buildMessage(from string, msg Message) (*gomail.Message, error) {
	if msg.To == "" {
		return nil, errors.New("no recipient specified")
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)
	return gm, nil
}

// LogMailer writes messages to the log instead of delivering them. Used in
// development so codes can be read from the console.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log.With(zap.String("component", "mailer"))}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return errors.New("no recipient specified")
	}

	m.log.Info("Email (not delivered)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body))
	return nil
}
