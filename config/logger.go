package config

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger builds the application logger from the loaded config.
// Production writes JSON; other environments write text. LogLevel accepts
// debug, info, warn or error and falls back to info.
func NewLogger(cfg *Config, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(cfg.LogLevel))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level, AddSource: level == slog.LevelDebug}

	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("service", "churchsite", "env", cfg.Environment)
}
