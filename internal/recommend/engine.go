package recommend

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/edgard/bookrec/internal/catalog"
	apperrors "github.com/edgard/bookrec/internal/errors"
	"github.com/edgard/bookrec/internal/llm"
	"github.com/edgard/bookrec/internal/logger"
	"github.com/edgard/bookrec/internal/metrics"
	"github.com/edgard/bookrec/internal/prompt"
	"github.com/edgard/bookrec/internal/ranking"
)

// controlMarkers matches tokenizer control tokens that some backends leak
// into decoded text.
var controlMarkers = regexp.MustCompile(`<\|[^|>]*\|>|</?s>|<pad>|<unk>`)

// Engine asks the language model to pick one entry of a shortlist and maps
// the answer back onto the shortlist.
type Engine struct {
	generator llm.Generator
	maxTokens int
	sem       *semaphore.Weighted
	metrics   *metrics.Metrics
	log       *slog.Logger
}

// EngineConfig tunes an Engine.
type EngineConfig struct {
	// MaxTokens caps the generated continuation.
	MaxTokens int
	// MaxConcurrent bounds in-flight generations; values below 1 mean 1.
	MaxConcurrent int64
}

// NewEngine wraps generator. m may be nil.
func NewEngine(generator llm.Generator, cfg EngineConfig, m *metrics.Metrics, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	return &Engine{
		generator: generator,
		maxTokens: cfg.MaxTokens,
		sem:       semaphore.NewWeighted(cfg.MaxConcurrent),
		metrics:   m,
		log:       log.With("component", "recommendation_engine"),
	}
}

// Recommend returns the shortlist entry the model picks for preferences.
// An empty shortlist fails before the model is called. A claim that matches
// no title resolves to the first entry, so the result is always a member of
// shortlist.
func (e *Engine) Recommend(ctx context.Context, shortlist ranking.Shortlist, preferences string) (catalog.Entry, error) {
	if len(shortlist) == 0 {
		return catalog.Entry{}, apperrors.NewEmptyShortlistError("no books found for the requested genre")
	}

	p := prompt.Build(shortlist, preferences)

	if err := e.sem.Acquire(ctx, 1); err != nil {
		return catalog.Entry{}, apperrors.NewGenerationFailedError("waiting for the language model", err)
	}
	start := time.Now()
	continuation, err := e.generator.Generate(ctx, p, llm.Options{MaxTokens: e.maxTokens})
	e.sem.Release(1)
	e.metrics.ObserveStage("generate", time.Since(start))
	if err != nil {
		e.log.ErrorContext(ctx, "Generation failed", "generator", e.generator.Name(), "error", err)
		return catalog.Entry{}, apperrors.NewGenerationFailedError("language model failed to generate a recommendation", err)
	}

	claim := ExtractClaim(p + StripControlMarkers(continuation))
	book, idx, matched := Resolve(shortlist, claim)
	if matched {
		e.metrics.RecordResolution(metrics.ResolutionMatched)
	} else {
		e.metrics.RecordResolution(metrics.ResolutionFallback)
	}

	e.log.DebugContext(ctx, "Resolved model claim",
		"claim", logger.Preview(claim),
		"matched", matched,
		"index", idx,
		"title", book.Title)

	return book, nil
}

// StripControlMarkers removes tokenizer control tokens from text.
func StripControlMarkers(text string) string {
	return controlMarkers.ReplaceAllString(text, "")
}

// ExtractClaim returns the text after the first prompt.Cue in text, up to the
// first line break, trimmed. Text without a cue is read from its start.
func ExtractClaim(text string) string {
	if _, after, found := strings.Cut(text, prompt.Cue); found {
		text = after
	}
	line, _, _ := strings.Cut(text, "\n")
	return strings.TrimSpace(line)
}

// Resolve scans shortlist in order for the first title containing claim,
// ignoring case. Without a match it returns the first entry and false.
// shortlist must not be empty.
func Resolve(shortlist ranking.Shortlist, claim string) (catalog.Entry, int, bool) {
	needle := strings.ToLower(claim)
	for i, book := range shortlist {
		if strings.Contains(strings.ToLower(book.Title), needle) {
			return book, i, true
		}
	}
	return shortlist[0], 0, false
}
