package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/openai/openai-go/v3/option"

	"docqa/internal/config"
	"docqa/internal/llm"
	"docqa/internal/logger"
	"docqa/internal/session"
)

// Deps bundles common runtime dependencies for the assistant.
type Deps struct {
	Config     config.Config
	Log        *slog.Logger
	Sessions   *session.Store
	Controller *session.Controller
}

// Build loads env, config, and shared components.
func Build() (Deps, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Deps{}, fmt.Errorf("failed to load .env file: %w", err)
	}
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	return New(cfg, log)
}

// New wires components from an already loaded config.
func New(cfg config.Config, log *slog.Logger) (Deps, error) {
	factory, err := buildLLM(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	if cfg.OpenAIKey == "" && cfg.LLMProvider == "openai" {
		log.Info("OPENAI_API_KEY not set; sessions will prompt for a key")
	}
	return Deps{
		Config:     cfg,
		Log:        log,
		Sessions:   session.NewStore(cfg.SessionTTL),
		Controller: session.NewController(factory, cfg.OpenAIKey, log),
	}, nil
}

func buildLLM(cfg config.Config, log *slog.Logger) (llm.Factory, error) {
	switch cfg.LLMProvider {
	case "openai":
		var opts []option.RequestOption
		if cfg.OpenAIBaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.OpenAIBaseURL))
		}
		log.Info("using OpenAI LLM client", "model", cfg.LLMModel)
		return llm.NewOpenAIFactory(cfg.LLMModel, opts...), nil
	case "stub":
		log.Warn("using stub LLM client; answers are canned")
		return llm.NewStubFactory(), nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid options: openai, stub)", cfg.LLMProvider)
	}
}
