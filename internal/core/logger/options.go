package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Format is the encoding of log records
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

type settings struct {
	level  slog.Level
	out    io.Writer
	format Format
}

func (s settings) handler() slog.Handler {
	opts := &slog.HandlerOptions{Level: s.level}
	if s.format == FormatJSON {
		return slog.NewJSONHandler(s.out, opts)
	}
	return slog.NewTextHandler(s.out, opts)
}

// Option configures New
type Option func(*settings)

// WithLevel drops records below level
func WithLevel(level slog.Level) Option {
	return func(s *settings) { s.level = level }
}

// WithOutput redirects records to w
func WithOutput(w io.Writer) Option {
	return func(s *settings) { s.out = w }
}

// WithFormat selects text or JSON records
func WithFormat(f Format) Option {
	return func(s *settings) { s.format = f }
}

var levels = map[string]slog.Level{
	"":        slog.LevelInfo,
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// ParseLevel maps a log_level value to a slog level. Empty means info.
func ParseLevel(name string) (slog.Level, error) {
	level, ok := levels[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", name)
	}
	return level, nil
}

// ParseFormat maps a log_format value to a Format. Empty means text.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON:
		return f, nil
	}
	return FormatText, fmt.Errorf("unknown log format: %s", name)
}
