package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New creates a JSON structured logger that writes to stdout.  Debug level
// is enabled outside production.
func New(env string) *slog.Logger {
	level := slog.LevelDebug
	if strings.EqualFold(env, "prod") || strings.EqualFold(env, "production") {
		level = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler).With("service", "imagen-studio")
}
