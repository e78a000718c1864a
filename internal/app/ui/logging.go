package ui

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// InitLogger installs the default structured logger. Records are JSON on
// stderr so they never interleave with the console report on stdout.
// LOG_LEVEL selects debug, info, warn or error.
func InitLogger() {
	slog.SetDefault(NewLogger(os.Stderr, os.Getenv("LOG_LEVEL")))
}

func NewLogger(w io.Writer, levelStr string) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}
