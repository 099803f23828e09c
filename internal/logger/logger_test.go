package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo}, // Defaults to info
		{"", slog.LevelInfo},        // Defaults to info
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log := NewWithWriter(&bytes.Buffer{}, tt.level)
			require.NotNil(t, log)
			assert.True(t, log.Enabled(context.Background(), tt.expected))
			assert.False(t, log.Enabled(context.Background(), tt.expected-1))
		})
	}
}

func TestLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info")
	log.Info("document loaded", "kind", "pdf")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "document loaded", entry["msg"])
	assert.Equal(t, "pdf", entry["kind"])
}
