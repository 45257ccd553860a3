package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is the global logger instance
	Logger = &SafeLogger{logger: zap.NewNop()}
)

// SafeLogger wraps a zap logger so that callers never have to nil-check it
type SafeLogger struct {
	logger *zap.Logger
}

// NewSafeLogger wraps an existing zap logger
func NewSafeLogger(l *zap.Logger) *SafeLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &SafeLogger{logger: l}
}

// InitLogger initializes the global logger
func InitLogger() error {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Set log level from environment
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel != "" {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(logLevel)); err == nil {
			config.Level = zap.NewAtomicLevelAt(level)
		}
	}

	l, err := config.Build(
		zap.AddCallerSkip(1),
		zap.Fields(
			zap.String("service", "app-wallet"),
			zap.String("version", "v1"),
		),
	)
	if err != nil {
		return err
	}

	Logger = &SafeLogger{logger: l}
	return nil
}

func (l *SafeLogger) z() *zap.Logger {
	if l == nil || l.logger == nil {
		return zap.NewNop()
	}
	return l.logger
}

// Debug logs at debug level
func (l *SafeLogger) Debug(msg string, fields ...zap.Field) { l.z().Debug(msg, fields...) }

// Info logs at info level
func (l *SafeLogger) Info(msg string, fields ...zap.Field) { l.z().Info(msg, fields...) }

// Warn logs at warn level
func (l *SafeLogger) Warn(msg string, fields ...zap.Field) { l.z().Warn(msg, fields...) }

// Error logs at error level
func (l *SafeLogger) Error(msg string, fields ...zap.Field) { l.z().Error(msg, fields...) }

// Fatal logs at fatal level and exits the process
func (l *SafeLogger) Fatal(msg string, fields ...zap.Field) { l.z().Fatal(msg, fields...) }

// With returns a child logger carrying the given fields
func (l *SafeLogger) With(fields ...zap.Field) *SafeLogger {
	return &SafeLogger{logger: l.z().With(fields...)}
}

// Named returns a named child logger
func (l *SafeLogger) Named(name string) *SafeLogger {
	return &SafeLogger{logger: l.z().Named(name)}
}

// Sync flushes buffered log entries
func (l *SafeLogger) Sync() error {
	return l.z().Sync()
}

// Zap exposes the underlying zap logger
func (l *SafeLogger) Zap() *zap.Logger {
	return l.z()
}
