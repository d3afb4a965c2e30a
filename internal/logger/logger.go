package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New constructs a text logger writing to w. verbose forces debug level;
// otherwise NEWSDESK_LOG_LEVEL decides.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := parseLevel(os.Getenv("NEWSDESK_LOG_LEVEL"))
	if verbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}

// Discard returns a logger that drops everything. Used in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
