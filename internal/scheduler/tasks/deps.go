// Package tasks implements the scheduled background tasks of the service.
package tasks

import (
	"log/slog"
	"time"

	"github.com/edgard/bookrec/internal/health"
	"github.com/edgard/bookrec/internal/llm"
	"github.com/edgard/bookrec/internal/metrics"
)

// TaskDeps contains the dependencies shared by scheduled tasks.
type TaskDeps struct {
	Logger       *slog.Logger
	Generator    llm.Generator
	Readiness    *health.Readiness
	Metrics      *metrics.Metrics
	ProbeTimeout time.Duration
}
