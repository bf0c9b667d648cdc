package app

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/solarsite/internal/config"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	return m
}

func TestNewLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	newLogger(config.LogConfig{Level: "info", Format: "json"}, &buf).
		Info("backend selected", slog.String("backend", "memory"))

	m := decodeLine(t, &buf)
	assert.Equal(t, "backend selected", m["msg"])
	assert.Equal(t, "memory", m["backend"])
	assert.NotContains(t, m, "source")
}

func TestNewLogger_TextIncludesSource(t *testing.T) {
	var buf bytes.Buffer
	newLogger(config.LogConfig{Level: "info", Format: "text"}, &buf).Info("hello")

	assert.Contains(t, buf.String(), "source=")
}

func TestNewLogger_SetsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := NewLogger(config.LogConfig{Level: "info", Format: "json"})

	assert.Equal(t, logger.Handler(), slog.Default().Handler())
}

func TestNewLogger_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	newLogger(config.LogConfig{Level: "info", Format: "json"}, &buf).Info("sign in",
		slog.String("email", "admin@demo.local"),
		slog.String("password", "demo1234"),
		slog.String("Token", "eyJhbGciOi"),
	)

	m := decodeLine(t, &buf)
	assert.Equal(t, "admin@demo.local", m["email"])
	assert.Equal(t, "[redacted]", m["password"])
	assert.Equal(t, "[redacted]", m["Token"])
	assert.NotContains(t, buf.String(), "demo1234")
}

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run("level_"+tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(config.LogConfig{Level: tt.level, Format: "text"}, &buf)

			logger.Log(context.Background(), tt.want, "visible")
			assert.NotZero(t, buf.Len())

			buf.Reset()
			logger.Log(context.Background(), tt.want-1, "suppressed")
			assert.Zero(t, buf.Len())
		})
	}
}
