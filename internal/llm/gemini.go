package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/edgard/bookrec/internal/config"
)

// Gemini generates continuations with Google's Gemini API.
type Gemini struct {
	genaiClient *genai.Client
	log         *slog.Logger
	modelName   string
	temperature float32
	maxRetries  int
	retryDelay  time.Duration
}

// NewGemini creates a Gemini generator. cfg.BaseURL, when set, overrides the
// API endpoint.
func NewGemini(ctx context.Context, cfg config.LLMConfig, log *slog.Logger) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	gi, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	logger := log.With("component", "gemini_generator")
	logger.Info("Gemini generator initialized successfully", "model", cfg.Model)
	return &Gemini{
		genaiClient: gi,
		log:         logger,
		modelName:   cfg.Model,
		temperature: cfg.Temperature,
		maxRetries:  cfg.MaxRetries,
		retryDelay:  cfg.RetryDelay,
	}, nil
}

// Name implements Generator.
func (g *Gemini) Name() string {
	return "gemini/" + g.modelName
}

// Ping implements Generator by looking the configured model up.
func (g *Gemini) Ping(ctx context.Context) error {
	if _, err := g.genaiClient.Models.Get(ctx, g.modelName, nil); err != nil {
		return fmt.Errorf("gemini model %s unavailable: %w", g.modelName, err)
	}
	return nil
}

// Generate implements Generator. Exactly one candidate is requested.
func (g *Gemini) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	temperature := g.temperature
	genCfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		CandidateCount:  1,
		MaxOutputTokens: int32(opts.MaxTokens), //nolint:gosec // bounded by config validation
	}
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := g.generateContentWithRetries(ctx, contents, genCfg)
	if err != nil {
		return "", err
	}

	return g.extractText(ctx, resp)
}

func (g *Gemini) generateContentWithRetries(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	var lastErr error

	for i := 0; i <= g.maxRetries; i++ {
		resp, err := g.genaiClient.Models.GenerateContent(ctx, g.modelName, contents, cfg)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var apiErr genai.APIError
		var apiErrPtr *genai.APIError
		code := 0
		if errors.As(err, &apiErr) {
			code = apiErr.Code
		} else if errors.As(err, &apiErrPtr) {
			code = apiErrPtr.Code
		}

		if (code == http.StatusInternalServerError || code == http.StatusServiceUnavailable) && i < g.maxRetries {
			g.log.InfoContext(ctx, "Retrying Gemini API call due to retriable APIError", "attempt", i+1, "delay", g.retryDelay, "code", code)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("gemini API call cancelled while waiting to retry: %w", ctx.Err())
			case <-time.After(g.retryDelay):
			}
			continue
		}

		g.log.ErrorContext(ctx, "Gemini API call failed", "attempt", i+1, "code", code, "error", err)
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}

	return nil, fmt.Errorf("gemini API call failed after %d retries: %w", g.maxRetries, lastErr)
}

func (g *Gemini) extractText(ctx context.Context, resp *genai.GenerateContentResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reasonMsg := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reasonMsg = resp.PromptFeedback.BlockReasonMessage
		}
		g.log.ErrorContext(ctx, "Gemini request blocked", "reason", reasonMsg)
		return "", fmt.Errorf("generation blocked by safety filter: %s", reasonMsg)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != "" {
			finishReason = fmt.Sprintf("%v", resp.Candidates[0].FinishReason)
		}
		// An empty continuation is still an answer; the caller falls back to the top pick.
		g.log.WarnContext(ctx, "Gemini response missing candidates or content", "finish_reason", finishReason)
		return "", nil
	}

	return resp.Text(), nil
}
