// Package llm provides the AI backend boundary: a minimal completion client
// with provider implementations and the prompts the analysis layer sends.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/lazypower/curator/internal/config"
)

// Backend failure taxonomy. Providers classify their transport and status
// errors into these sentinels so callers can branch with errors.Is.
var (
	// ErrUnavailable means no AI backend is configured at all.
	ErrUnavailable = errors.New("llm backend not configured")

	// ErrRateLimited means the backend refused the call with a rate limit.
	ErrRateLimited = errors.New("llm rate limited")

	// ErrUnreachable means the backend could not be reached or errored
	// transiently.
	ErrUnreachable = errors.New("llm unreachable")
)

// Client is the interface for LLM providers.
type Client interface {
	Complete(ctx context.Context, prompt string) (*Response, error)
}

// Response holds the result of an LLM completion.
type Response struct {
	Content    string
	Provider   string
	TokensUsed int
}

// NewClient creates an LLM client based on the config provider setting.
func NewClient(cfg config.LLMConfig) (Client, error) {
	switch cfg.Provider {
	case "claude-cli":
		model := cfg.Model
		if model == "" {
			model = "haiku"
		}
		return NewClaudeCLI(model), nil
	case "anthropic":
		if cfg.AnthropicKey == "" {
			return nil, fmt.Errorf("anthropic provider requires ANTHROPIC_API_KEY or config: %w", ErrUnavailable)
		}
		model := cfg.Model
		if model == "" {
			model = "claude-haiku-4-5-20251001"
		}
		return NewAnthropic(cfg.AnthropicKey, model), nil
	case "ollama":
		url := cfg.OllamaURL
		if url == "" {
			url = "http://localhost:11434"
		}
		model := cfg.OllamaModel
		if model == "" {
			model = "llama3.2"
		}
		return NewOllama(url, model), nil
	case "":
		return nil, fmt.Errorf("no LLM provider set: %w", ErrUnavailable)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q: %w", cfg.Provider, ErrUnavailable)
	}
}
