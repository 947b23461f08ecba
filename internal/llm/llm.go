// Package llm adapts text-generation providers to a single Generator call.
package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hpungsan/specforge/internal/config"
)

// Generator produces raw text for a prompt. Implementations make exactly one
// provider call per Generate and never retry.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Func adapts a plain function to Generator.
type Func func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f Func) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Static returns the same response for every prompt. Useful for replaying a
// saved model response.
type Static string

// Generate returns the fixed response.
func (s Static) Generate(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return string(s), nil
}

// LoadStatic reads a saved response from path.
func LoadStatic(path string) (Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read response file: %w", err)
	}
	return Static(data), nil
}

// New builds the generator selected by cfg. The API key is read from the
// environment variable named by cfg.APIKeyEnv.
func New(ctx context.Context, cfg *config.Config) (Generator, error) {
	apiKey := ""
	if cfg.APIKeyEnv != "" {
		apiKey = strings.TrimSpace(os.Getenv(cfg.APIKeyEnv))
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case config.ProviderOpenAI, "":
		// OpenAI-compatible local servers often run without a key.
		if apiKey == "" && cfg.BaseURL == "" {
			return nil, fmt.Errorf("missing API key: set %s", keyEnvName(cfg))
		}
		return NewOpenAI(apiKey, cfg.Model, cfg.BaseURL), nil
	case config.ProviderGemini:
		if apiKey == "" {
			return nil, fmt.Errorf("missing API key: set %s", keyEnvName(cfg))
		}
		return NewGemini(ctx, apiKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown provider %q (valid: %s, %s)", cfg.Provider, config.ProviderOpenAI, config.ProviderGemini)
	}
}

func keyEnvName(cfg *config.Config) string {
	if cfg.APIKeyEnv == "" {
		return "api_key_env in config.json"
	}
	return cfg.APIKeyEnv
}
