package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger interface for structured logging.
// Fields are alternating key/value pairs.
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Fatal(msg string, err error, fields ...interface{})
	With(fields ...interface{}) Logger
	Sync() error
}

// ZapLogger implements Logger on top of a zap sugared logger
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// Options controls how the zap backend is built
type Options struct {
	Level string
	JSON  bool
}

// New creates a zap-backed logger
func New(opts Options) (Logger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(opts.Level))); err != nil {
			return nil, err
		}
	}

	var cfg zap.Config
	if opts.JSON {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true

	base, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &ZapLogger{sugar: base.Sugar()}, nil
}

// FromZap wraps an existing zap logger
func FromZap(l *zap.Logger) Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &ZapLogger{sugar: l.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

// NewNop returns a logger that discards everything
func NewNop() Logger {
	return &ZapLogger{sugar: zap.NewNop().Sugar()}
}

// Info logs an info message
func (l *ZapLogger) Info(msg string, fields ...interface{}) {
	l.sugar.Infow(msg, fields...)
}

// Error logs an error message
func (l *ZapLogger) Error(msg string, err error, fields ...interface{}) {
	l.sugar.Errorw(msg, append([]interface{}{zap.Error(err)}, fields...)...)
}

// Warn logs a warning message
func (l *ZapLogger) Warn(msg string, fields ...interface{}) {
	l.sugar.Warnw(msg, fields...)
}

// Debug logs a debug message
func (l *ZapLogger) Debug(msg string, fields ...interface{}) {
	l.sugar.Debugw(msg, fields...)
}

// Fatal logs a fatal error and exits
func (l *ZapLogger) Fatal(msg string, err error, fields ...interface{}) {
	l.sugar.Fatalw(msg, append([]interface{}{zap.Error(err)}, fields...)...)
}

// With returns a child logger carrying the given fields
func (l *ZapLogger) With(fields ...interface{}) Logger {
	return &ZapLogger{sugar: l.sugar.With(fields...)}
}

// Sync flushes buffered entries
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}
