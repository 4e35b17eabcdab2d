package config

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds a text slog.Logger at the configured level.
func (c LoggingConfig) NewLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: c.slogLevel(),
	}))
}

func (c LoggingConfig) slogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
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
