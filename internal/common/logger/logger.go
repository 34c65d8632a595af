// Package logger provides the structured logging interface used across the service.
package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// Logger is the minimal logging surface components depend on. Fields are
// passed as alternating key/value pairs, sugared-logger style.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
	With(kv ...any) Logger
	WithError(err error) Logger
}

// New builds a plain zap logger from a level string and an output format
// ("json" for production encoding, anything else for console).
func New(levelStr, format string) *zap.Logger {
	level := zapcore.InfoLevel
	switch levelStr {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	l, _ := cfg.Build(zap.AddCallerSkip(1))
	return l
}

type sugared struct {
	s *zap.SugaredLogger
}

func (l *sugared) Debug(msg string, kv ...any) { l.s.Debugw(msg, kv...) }
func (l *sugared) Info(msg string, kv ...any)  { l.s.Infow(msg, kv...) }
func (l *sugared) Warn(msg string, kv ...any)  { l.s.Warnw(msg, kv...) }
func (l *sugared) Error(msg string, kv ...any) { l.s.Errorw(msg, kv...) }

func (l *sugared) With(kv ...any) Logger {
	return &sugared{s: l.s.With(kv...)}
}

func (l *sugared) WithError(err error) Logger {
	return &sugared{s: l.s.With("error", err)}
}

// NewStructured creates a Logger backed by zap.
func NewStructured(levelStr, format string) Logger {
	return &sugared{s: New(levelStr, format).Sugar()}
}

// FromZap wraps an existing *zap.Logger.
func FromZap(l *zap.Logger) Logger {
	return &sugared{s: l.Sugar()}
}

// NewTestLogger creates a Logger that writes through testing.T.
func NewTestLogger(t testing.TB) Logger {
	return &sugared{s: zaptest.NewLogger(t).Sugar()}
}

// NewNop creates a Logger that discards everything.
func NewNop() Logger {
	return &sugared{s: zap.NewNop().Sugar()}
}
