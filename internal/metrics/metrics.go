// Package metrics exposes Prometheus metrics for the recommendation pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bookrec"

// Claim resolution outcomes.
const (
	ResolutionMatched  = "matched"
	ResolutionFallback = "fallback"
)

// Metrics holds the service collectors. Each instance owns its registry so
// several can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	Requests          *prometheus.CounterVec
	StageDuration     *prometheus.HistogramVec
	CatalogEntries    prometheus.Histogram
	ClaimResolutions  *prometheus.CounterVec
	GeneratorReady    prometheus.Gauge
	SchedulerTaskRuns *prometheus.CounterVec
}

// New creates and registers all collectors, plus the Go runtime and process
// collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Recommendation requests by outcome code (OK or the error code).",
		}, []string{"code"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage.",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
		CatalogEntries: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_entries",
			Help:      "Number of entries returned by the catalog per request.",
			Buckets:   []float64{0, 1, 5, 10, 20, 40},
		}),
		ClaimResolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "claim_resolutions_total",
			Help:      "How the model's claimed title was resolved against the shortlist.",
		}, []string{"resolution"}),
		GeneratorReady: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "generator_ready",
			Help:      "1 when the last model probe succeeded, 0 otherwise.",
		}),
		SchedulerTaskRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_task_runs_total",
			Help:      "Scheduled task executions by task and result.",
		}, []string{"task", "result"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveStage records how long a pipeline stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordRequest counts one finished request under code.
func (m *Metrics) RecordRequest(code string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(code).Inc()
}

// RecordCatalogEntries records the size of one catalog response.
func (m *Metrics) RecordCatalogEntries(n int) {
	if m == nil {
		return
	}
	m.CatalogEntries.Observe(float64(n))
}

// RecordResolution counts one claim resolution.
func (m *Metrics) RecordResolution(resolution string) {
	if m == nil {
		return
	}
	m.ClaimResolutions.WithLabelValues(resolution).Inc()
}

// SetGeneratorReady publishes the latest model probe result.
func (m *Metrics) SetGeneratorReady(ready bool) {
	if m == nil {
		return
	}
	if ready {
		m.GeneratorReady.Set(1)
		return
	}
	m.GeneratorReady.Set(0)
}

// RecordTaskRun counts one scheduled task execution.
func (m *Metrics) RecordTaskRun(task string, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.SchedulerTaskRuns.WithLabelValues(task, result).Inc()
}
