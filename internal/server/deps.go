// Package server exposes the recommendation pipeline over HTTP: an HTML form,
// a JSON endpoint, an HTML fragment endpoint, health probes and metrics.
package server

import (
	"log/slog"
	"time"

	"github.com/edgard/bookrec/internal/metrics"
	"github.com/edgard/bookrec/internal/recommend"
)

// ReadinessChecker reports whether the service can take traffic.
type ReadinessChecker interface {
	Ready() error
}

// HandlerDeps provides dependencies for the HTTP handlers. Readiness and
// Metrics may be nil.
type HandlerDeps struct {
	Logger         *slog.Logger
	Recommender    recommend.Recommender
	Readiness      ReadinessChecker
	Metrics        *metrics.Metrics
	RequestTimeout time.Duration
}
