// Package logging builds the slog logger handed to every component.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// New returns a text logger writing to w. Any -v flag switches to debug
// output; otherwise the configured level name applies.
func New(w io.Writer, verbosity int, level string) *slog.Logger {
	lvl := parseLevel(level)
	if verbosity > 0 {
		lvl = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// parseLevel converts a level name into its slog value. Unknown names fall
// back to info.
func parseLevel(lvl string) slog.Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
