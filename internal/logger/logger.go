package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the application logger. Encoding is "console" or "json".
func New(level, encoding string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	if encoding != "" {
		cfg.Encoding = encoding
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder

	return cfg.Build()
}

// Must is New for process entry points. On a bad level it falls back to the default
// production logger.
func Must(level, encoding string) *zap.Logger {
	l, err := New(level, encoding)
	if err != nil {
		fallback, _ := zap.NewProduction()
		if fallback == nil {
			return zap.NewNop()
		}
		fallback.Warn("falling back to default logger", zap.Error(err))
		return fallback
	}
	return l
}
