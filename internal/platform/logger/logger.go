package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New returns a JSON slog logger; the level is read from ARCHIVA_LOG_LEVEL
// (debug, info, warn, error) and defaults to info.
func New() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("ARCHIVA_LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
