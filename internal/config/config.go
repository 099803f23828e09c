package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration for the assistant.
type Config struct {
	// Server
	Port           int           `env:"PORT" envDefault:"8080"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"120s"`

	// Upload limits
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10MB in bytes

	// Sessions live in process memory only.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"1h"`

	// LLM
	LLMProvider   string `env:"LLM_PROVIDER" envDefault:"openai"` // "openai" (uses OpenAI API) or "stub" (offline, deterministic)
	OpenAIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	LLMModel      string `env:"LLM_MODEL" envDefault:"gpt-4"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
