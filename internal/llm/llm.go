// Package llm provides the text-generation backends used to pick a book from
// the shortlist. A Generator is created once at startup, is read-only after
// that, and is injected wherever a completion is needed.
package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/edgard/bookrec/internal/config"
)

// Generator produces one continuation of a prompt.
type Generator interface {
	// Generate returns the text the model appends to prompt, capped at
	// opts.MaxTokens generated tokens.
	Generate(ctx context.Context, prompt string, opts Options) (string, error)

	// Ping checks that the backend and its model are reachable.
	Ping(ctx context.Context) error

	// Name identifies the backend and model for logs and metrics.
	Name() string
}

// Options tunes a single generation.
type Options struct {
	MaxTokens int
}

// New creates the Generator selected by cfg.Provider.
func New(ctx context.Context, cfg config.LLMConfig, log *slog.Logger) (Generator, error) {
	if log == nil {
		log = slog.Default()
	}
	log.Info("Initializing text generator", "provider", cfg.Provider, "model", cfg.Model)

	switch cfg.Provider {
	case "gemini":
		g, err := NewGemini(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini generator: %w", err)
		}
		return g, nil
	case "ollama":
		g, err := NewOllama(cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama generator: %w", err)
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown llm provider specified: %s", cfg.Provider)
	}
}
