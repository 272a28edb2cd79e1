package config

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/resend/resend-go/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

const (
	EmailProviderResend = "resend"
	EmailProviderSMTP   = "smtp"
	EmailProviderNone   = "none"
)

type EmailConfig struct {
	Provider     string
	From         string
	ResendAPIKey string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
}

func NewEmailConfig(logger *zap.Logger) *EmailConfig {
	cfg := &EmailConfig{
		Provider:     os.Getenv("EMAIL_PROVIDER"),
		From:         os.Getenv("FROM_EMAIL"),
		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPPort:     587,
	}
	if cfg.Provider == "" {
		cfg.Provider = EmailProviderNone
	}
	if p := os.Getenv("SMTP_PORT"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			logger.Fatal("Invalid SMTP_PORT", zap.String("value", p))
		}
		cfg.SMTPPort = port
	}

	switch cfg.Provider {
	case EmailProviderResend:
		if cfg.ResendAPIKey == "" || cfg.From == "" {
			logger.Fatal("Missing Environment variables", zap.Strings("required", []string{"RESEND_API_KEY", "FROM_EMAIL"}))
		}
	case EmailProviderSMTP:
		if cfg.SMTPHost == "" || cfg.From == "" {
			logger.Fatal("Missing Environment variables", zap.Strings("required", []string{"SMTP_HOST", "FROM_EMAIL"}))
		}
	case EmailProviderNone:
	default:
		logger.Fatal("Unknown EMAIL_PROVIDER", zap.String("value", cfg.Provider))
	}
	return cfg
}

// Mailer delivers a single HTML email.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// NewMailer picks the delivery backend named by the config. It returns nil when email is disabled.
func NewMailer(lc fx.Lifecycle, cfg *EmailConfig, logger *zap.Logger) Mailer {
	var mailer Mailer
	switch cfg.Provider {
	case EmailProviderResend:
		mailer = &ResendMailer{client: resend.NewClient(cfg.ResendAPIKey), from: cfg.From}
	case EmailProviderSMTP:
		mailer = &SMTPMailer{
			dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
			from:   cfg.From,
		}
	default:
		return nil
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Email Service initialized", zap.String("provider", cfg.Provider))
			return nil
		},
	})
	return mailer
}

type ResendMailer struct {
	client *resend.Client
	from   string
}

func (m *ResendMailer) SendEmail(ctx context.Context, to, subject, body string) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}
	if _, err := m.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func (m *SMTPMailer) SendEmail(_ context.Context, to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
