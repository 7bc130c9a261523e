package extraction

import (
	"fmt"
	"time"

	"github.com/Shimizu-Technology/paperhub-api/internal/config"
)

// NewBackend builds the backend named by cfg.ExtractionProvider. Keys are
// read from the environment on every call.
func NewBackend(cfg *config.Config) (Backend, error) {
	switch cfg.ExtractionProvider {
	case "gemini", "":
		return NewGeminiBackend(cfg.GeminiModel, EnvCredential{Name: "GEMINI_API_KEY"}), nil
	case "openai":
		return NewOpenAIBackend(cfg.OpenAIModel, EnvCredential{Name: "OPENAI_API_KEY"}), nil
	case "openrouter":
		return NewOpenRouterBackend(cfg.OpenRouterModel, EnvCredential{Name: "OPENROUTER_API_KEY"}, cfg.ExtractionTimeout+30*time.Second), nil
	default:
		return nil, fmt.Errorf("unknown extraction provider %q", cfg.ExtractionProvider)
	}
}

// OptionsFromConfig maps config values to gateway Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Timeout:  cfg.ExtractionTimeout,
		MaxBytes: cfg.MaxPDFSizeMB * 1024 * 1024,
		MaxPages: cfg.MaxPDFPages,
		Optimize: cfg.OptimizePDF,
	}
}
