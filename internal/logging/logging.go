// Package logging builds the slog loggers used by kiln runs.
//
// Console output for humans goes through the printer package; this package
// only produces the structured diagnostic stream, which is quiet unless a
// level is configured.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Log levels accepted in configuration.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
	LevelOff   = "off"
)

// Formats accepted in configuration.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// New returns a logger writing to w. An empty or "off" level discards
// everything; an unknown format falls back to text.
func New(w io.Writer, level, format string) *slog.Logger {
	lvl, ok := ParseLevel(level)
	if !ok || w == nil {
		return Discard()
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, FormatJSON) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel converts a configured level. ok is false for "off" and "".
// Unknown names map to info.
func ParseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", LevelOff:
		return 0, false
	case LevelDebug:
		return slog.LevelDebug, true
	case LevelWarn, "warning":
		return slog.LevelWarn, true
	case LevelError:
		return slog.LevelError, true
	default:
		return slog.LevelInfo, true
	}
}

// WithRun returns a child logger tagged with a fresh run ID, and the ID.
func WithRun(l *slog.Logger) (*slog.Logger, string) {
	if l == nil {
		l = Discard()
	}
	id := uuid.NewString()
	return l.With(slog.String("run_id", id)), id
}

// WithPhase returns a child logger tagged with the lifecycle phase.
func WithPhase(l *slog.Logger, phase string) *slog.Logger {
	return l.With(slog.String("phase", phase))
}
