package mailer

import (
	"github.com/yukikurage/sponsor-deliverables-api/internal/config"
	"go.uber.org/zap"
)

// FromConfig returns the SMTP transport when SMTP is configured. Otherwise messages
// are only logged and reported as failed, so no reminder is recorded as sent.
func FromConfig(cfg *config.Config, logger *zap.Logger) Transport {
	if !cfg.SMTPConfigured() {
		logger.Warn("SMTP_HOST not set, reminder emails will be logged and reported as failed")
		return NewLogTransport(logger)
	}
	return NewSMTPTransport(SMTPConfig{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		FromEmail: cfg.SMTPFromEmail,
		FromName:  cfg.SMTPFromName,
		Timeout:   cfg.SMTPTimeout,
	}, logger)
}
