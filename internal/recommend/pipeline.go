// Package recommend runs the recommendation pipeline: fetch the genre from
// the catalog, rank it into a shortlist, and let the language model choose.
package recommend

import (
	"context"
	"log/slog"
	"time"

	"github.com/edgard/bookrec/internal/catalog"
	apperrors "github.com/edgard/bookrec/internal/errors"
	"github.com/edgard/bookrec/internal/metrics"
	"github.com/edgard/bookrec/internal/ranking"
)

// ThankYouMessage accompanies every successful recommendation.
const ThankYouMessage = "Thank you for using this book recommendation service! Read well!"

// Stage names one step of a request's lifecycle.
type Stage string

const (
	StageReceived   Stage = "received"
	StageFetching   Stage = "fetching"
	StageRanking    Stage = "ranking"
	StageGenerating Stage = "generating"
	StageResolved   Stage = "resolved"
	StageFailed     Stage = "failed"
)

// Recommendation is the terminal artifact of a successful run.
type Recommendation struct {
	Book    catalog.Entry
	Message string
}

// Recommender is what the HTTP layer depends on.
type Recommender interface {
	Recommend(ctx context.Context, req Request) (Recommendation, error)
}

// Pipeline wires the catalog, the ranker and the engine together. It holds
// no per-request state and is safe for concurrent use.
type Pipeline struct {
	fetcher    catalog.Fetcher
	engine     *Engine
	maxResults int
	metrics    *metrics.Metrics
	log        *slog.Logger
}

// NewPipeline creates a Pipeline. m may be nil.
func NewPipeline(fetcher catalog.Fetcher, engine *Engine, maxResults int, m *metrics.Metrics, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		fetcher:    fetcher,
		engine:     engine,
		maxResults: maxResults,
		metrics:    m,
		log:        log.With("component", "recommend_pipeline"),
	}
}

// Recommend runs one request start to finish. Every failure carries an
// apperrors code and no partial result is returned.
func (p *Pipeline) Recommend(ctx context.Context, req Request) (rec Recommendation, err error) {
	log := p.log.With("genre", req.Genre)
	log.DebugContext(ctx, "Recommendation request", "stage", StageReceived)

	defer func() {
		if err != nil {
			code := apperrors.Code(err)
			p.metrics.RecordRequest(code)
			log.WarnContext(ctx, "Recommendation failed", "stage", StageFailed, "code", code, "error", err)
			return
		}
		p.metrics.RecordRequest("OK")
		log.InfoContext(ctx, "Recommendation resolved", "stage", StageResolved, "title", rec.Book.Title)
	}()

	if err := req.Validate(); err != nil {
		return Recommendation{}, err
	}

	log.DebugContext(ctx, "Fetching catalog", "stage", StageFetching, "max_results", p.maxResults)
	start := time.Now()
	entries, err := p.fetcher.Fetch(ctx, req.Genre, p.maxResults)
	p.metrics.ObserveStage("fetch", time.Since(start))
	if err != nil {
		return Recommendation{}, err
	}
	p.metrics.RecordCatalogEntries(len(entries))

	log.DebugContext(ctx, "Ranking catalog entries", "stage", StageRanking, "entries", len(entries))
	shortlist := ranking.Rank(entries)

	log.DebugContext(ctx, "Generating recommendation", "stage", StageGenerating, "shortlist", len(shortlist))
	book, err := p.engine.Recommend(ctx, shortlist, req.Preferences)
	if err != nil {
		return Recommendation{}, err
	}

	return Recommendation{Book: book, Message: ThankYouMessage}, nil
}
