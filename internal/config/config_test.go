package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "REQUEST_TIMEOUT", "MAX_UPLOAD_SIZE", "SESSION_TTL",
		"LLM_PROVIDER", "OPENAI_API_KEY", "OPENAI_BASE_URL", "LLM_MODEL",
	} {
		// Setenv restores the prior value on cleanup.
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Port", cfg.Port, 8080},
		{"LogLevel", cfg.LogLevel, "info"},
		{"RequestTimeout", cfg.RequestTimeout, 120 * time.Second},
		{"MaxUploadSize", cfg.MaxUploadSize, int64(10485760)},
		{"SessionTTL", cfg.SessionTTL, time.Hour},
		{"LLMProvider", cfg.LLMProvider, "openai"},
		{"LLMModel", cfg.LLMModel, "gpt-4"},
		{"OpenAIKey", cfg.OpenAIKey, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg := Load()

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "sk-test", cfg.OpenAIKey)
}

func TestLoadProviderOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "stub")
	t.Setenv("LLM_MODEL", "gpt-4o-mini")

	cfg := Load()

	if cfg.LLMProvider != "stub" {
		t.Errorf("expected LLM provider 'stub', got %s", cfg.LLMProvider)
	}
	if cfg.LLMModel != "gpt-4o-mini" {
		t.Errorf("expected LLM model 'gpt-4o-mini', got %s", cfg.LLMModel)
	}
}
