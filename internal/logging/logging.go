// Package logging defines the logger capability injected into every
// component. Components never reach for a global logger; they receive a
// Logger at construction time.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging capability used across the tool. Key-value pairs
// follow the sugared convention: alternating string keys and values.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
	Fatal(msg string, kv ...any)
}

type zapLogger struct {
	s *zap.SugaredLogger
}

// New returns a zap-backed logger writing to stderr. With verbose set,
// debug records are emitted as well.
func New(verbose bool) Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	l, err := cfg.Build()
	if err != nil {
		// Development config with stderr sinks cannot fail to build;
		// fall back to a no-op logger rather than panicking.
		return Nop()
	}
	return &zapLogger{s: l.Sugar()}
}

func (l *zapLogger) Debug(msg string, kv ...any) { l.s.Debugw(msg, kv...) }
func (l *zapLogger) Info(msg string, kv ...any)  { l.s.Infow(msg, kv...) }
func (l *zapLogger) Warn(msg string, kv ...any)  { l.s.Warnw(msg, kv...) }
func (l *zapLogger) Error(msg string, kv ...any) { l.s.Errorw(msg, kv...) }
func (l *zapLogger) Fatal(msg string, kv ...any) { l.s.Fatalw(msg, kv...) }

type nopLogger struct{}

// Nop returns a logger that discards everything. Used in tests and as a
// default when a component is constructed without a logger.
func Nop() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (nopLogger) Fatal(string, ...any) {}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop()
	}
	return l
}
