package app

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/heartmarshall/solarsite/internal/config"
)

// redactedKeys are attribute keys whose values never reach the log. Sign-in
// and remote wiring pass these around and a careless slog.Any would leak them.
var redactedKeys = map[string]bool{
	"password": true,
	"token":    true,
	"key":      true,
	"dsn":      true,
}

// NewLogger builds the process logger on stderr and installs it as the slog
// default. "json" is for deployments; anything else gets text with source
// locations for local runs and the console.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	logger := newLogger(cfg, os.Stderr)
	slog.SetDefault(logger)
	return logger
}

func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	json := strings.EqualFold(cfg.Format, "json")
	opts := &slog.HandlerOptions{
		Level:       parseLevel(cfg.Level),
		AddSource:   !json,
		ReplaceAttr: redact,
	}

	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if redactedKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, "[redacted]")
	}
	return a
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
