// Package logger is the structured logging layer of armlaunch. Records go
// through log/slog; supervisor and runtime code scope a Logger to a run or
// an entity so every line names what it is about.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Logger is what armlaunch packages log through
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	// With returns a Logger that adds args to every record
	With(args ...any) Logger
}

// New builds a Logger. Without options it writes text to stderr at info.
func New(opts ...Option) Logger {
	s := settings{level: slog.LevelInfo, out: os.Stderr, format: FormatText}
	for _, opt := range opts {
		opt(&s)
	}
	return slogLogger{l: slog.New(s.handler())}
}

// Nop discards everything
func Nop() Logger {
	return slogLogger{l: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// ForRun tags records with a run ID
func ForRun(l Logger, id string) Logger {
	return scoped(l, "run", id)
}

// ForEntity tags records with a launch entity name
func ForEntity(l Logger, name string) Logger {
	return scoped(l, "entity", name)
}

func scoped(l Logger, key, value string) Logger {
	if l == nil {
		l = Nop()
	}
	return l.With(key, value)
}

type slogLogger struct {
	l *slog.Logger
}

func (s slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

func (s slogLogger) With(args ...any) Logger {
	return slogLogger{l: s.l.With(args...)}
}
