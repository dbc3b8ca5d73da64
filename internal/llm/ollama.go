package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/edgard/bookrec/internal/config"
)

// DefaultOllamaURL is used when no base URL is configured.
const DefaultOllamaURL = "http://127.0.0.1:11434"

// Ollama generates continuations with a locally served model. Requests use
// raw mode so the model continues the prompt verbatim, without a chat
// template around it.
type Ollama struct {
	client    *api.Client
	log       *slog.Logger
	modelName string
	options   map[string]any
}

// NewOllama creates an Ollama generator.
func NewOllama(cfg config.LLMConfig, log *slog.Logger) (*Ollama, error) {
	raw := cfg.BaseURL
	if raw == "" {
		raw = DefaultOllamaURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base URL %q: %w", raw, err)
	}

	logger := log.With("component", "ollama_generator")
	logger.Info("Ollama generator initialized successfully", "model", cfg.Model, "base_url", base.String())
	return &Ollama{
		client:    api.NewClient(base, &http.Client{Timeout: cfg.Timeout}),
		log:       logger,
		modelName: cfg.Model,
		options: map[string]any{
			"temperature": cfg.Temperature,
		},
	}, nil
}

// Name implements Generator.
func (o *Ollama) Name() string {
	return "ollama/" + o.modelName
}

// Ping implements Generator by asking the server to describe the model.
func (o *Ollama) Ping(ctx context.Context) error {
	if _, err := o.client.Show(ctx, &api.ShowRequest{Model: o.modelName}); err != nil {
		return fmt.Errorf("ollama model %s unavailable: %w", o.modelName, err)
	}
	return nil
}

// Generate implements Generator.
func (o *Ollama) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	stream := false
	options := make(map[string]any, len(o.options)+1)
	for k, v := range o.options {
		options[k] = v
	}
	options["num_predict"] = opts.MaxTokens

	req := &api.GenerateRequest{
		Model:   o.modelName,
		Prompt:  prompt,
		Raw:     true,
		Stream:  &stream,
		Options: options,
	}

	var sb strings.Builder
	err := o.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		if resp.Done {
			o.log.DebugContext(ctx, "Ollama generation finished", "done_reason", resp.DoneReason)
		}
		return nil
	})
	if err != nil {
		o.log.ErrorContext(ctx, "Ollama generation failed", "error", err)
		return "", fmt.Errorf("ollama generate failed: %w", err)
	}

	return sb.String(), nil
}
