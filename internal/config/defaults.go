package config

import "time"

// Default values for configuration
const (
	// Log defaults
	DefaultLogLevel = "info"
	DefaultLogJSON  = true

	// Server defaults
	DefaultServerAddr            = ":8000"
	DefaultServerReadTimeout     = 15 * time.Second
	DefaultServerWriteTimeout    = 3 * time.Minute
	DefaultServerShutdownTimeout = 10 * time.Second
	DefaultServerRequestTimeout  = 0 // unbounded, like the transport default

	// Catalog defaults
	DefaultCatalogBaseURL          = "https://www.googleapis.com/books/v1"
	DefaultCatalogMaxResults       = 40 // Google Books hard cap per page
	DefaultCatalogTimeout          = 30 * time.Second
	DefaultCatalogBreakerEnabled   = true
	DefaultCatalogBreakerThreshold = 5
	DefaultCatalogBreakerTimeout   = 30 * time.Second

	// LLM defaults
	DefaultLLMProvider      = "gemini"
	DefaultLLMModel         = "gemini-2.0-flash"
	DefaultLLMOllamaBaseURL = "http://127.0.0.1:11434"
	DefaultLLMMaxTokens     = 300
	DefaultLLMTemperature   = 0.7
	DefaultLLMTimeout       = 2 * time.Minute
	DefaultLLMMaxRetries    = 2
	DefaultLLMRetryDelay    = 2 * time.Second
	DefaultLLMMaxConcurrent = 1

	// Scheduler defaults
	DefaultModelProbeSchedule = "0 */5 * * * *"
)

// ModelProbeTask is the scheduler key of the generator health probe.
const ModelProbeTask = "model_probe"

func defaultValues() map[string]any {
	return map[string]any{
		"log.level": DefaultLogLevel,
		"log.json":  DefaultLogJSON,

		"server.addr":             DefaultServerAddr,
		"server.read_timeout":     DefaultServerReadTimeout,
		"server.write_timeout":    DefaultServerWriteTimeout,
		"server.shutdown_timeout": DefaultServerShutdownTimeout,
		"server.request_timeout":  time.Duration(DefaultServerRequestTimeout),

		"catalog.base_url":                  DefaultCatalogBaseURL,
		"catalog.api_key":                   "",
		"catalog.max_results":               DefaultCatalogMaxResults,
		"catalog.timeout":                   DefaultCatalogTimeout,
		"catalog.breaker.enabled":           DefaultCatalogBreakerEnabled,
		"catalog.breaker.failure_threshold": DefaultCatalogBreakerThreshold,
		"catalog.breaker.open_timeout":      DefaultCatalogBreakerTimeout,

		"llm.provider":       DefaultLLMProvider,
		"llm.model":          DefaultLLMModel,
		"llm.api_key":        "",
		"llm.base_url":       "",
		"llm.max_tokens":     DefaultLLMMaxTokens,
		"llm.temperature":    DefaultLLMTemperature,
		"llm.timeout":        DefaultLLMTimeout,
		"llm.max_retries":    DefaultLLMMaxRetries,
		"llm.retry_delay":    DefaultLLMRetryDelay,
		"llm.max_concurrent": DefaultLLMMaxConcurrent,

		"scheduler.tasks." + ModelProbeTask + ".enabled":      true,
		"scheduler.tasks." + ModelProbeTask + ".schedule":     DefaultModelProbeSchedule,
		"scheduler.tasks." + ModelProbeTask + ".run_on_start": true,
	}
}
