package mailer

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotConfigured is reported for every message handed to an unconfigured transport.
var ErrNotConfigured = errors.New("email not configured")

// LogTransport writes messages to the log instead of sending them.
type LogTransport struct {
	logger *zap.Logger
	dryRun bool
}

// NewLogTransport creates the transport used when SMTP is not configured. Nothing is
// delivered, so every message is reported as failed.
func NewLogTransport(logger *zap.Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

// NewDryRunTransport creates a LogTransport that reports messages as sent. Only use it
// with sweeps that do not record notifications.
func NewDryRunTransport(logger *zap.Logger) *LogTransport {
	return &LogTransport{logger: logger, dryRun: true}
}

// Send logs msg.
func (t *LogTransport) Send(_ context.Context, msg Message) SendResult {
	fields := []zap.Field{
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("tag", msg.Tag),
	}

	if !t.dryRun {
		t.logger.Warn("email not configured, message not sent", fields...)
		return failed(ErrNotConfigured)
	}

	id := uuid.NewString()
	t.logger.Info("dry run, logging message",
		append(fields, zap.String("message_id", id), zap.String("text", msg.Text))...,
	)
	return SendResult{Success: true, MessageID: id}
}
