package config

import "time"

// Config is the root configuration of the book recommendation service.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"             validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     validate:"min=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    validate:"min=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=1s,max=5m"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"  validate:"min=0"`
}

// CatalogConfig controls the outbound Google Books query.
type CatalogConfig struct {
	BaseURL    string        `mapstructure:"base_url"    validate:"required,url"`
	APIKey     string        `mapstructure:"api_key"`
	MaxResults int           `mapstructure:"max_results" validate:"min=1,max=40"`
	Timeout    time.Duration `mapstructure:"timeout"     validate:"min=0"`
	Breaker    BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig controls the circuit breaker around catalog calls.
type BreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	FailureThreshold uint32        `mapstructure:"failure_threshold" validate:"required_if=Enabled true"`
	OpenTimeout      time.Duration `mapstructure:"open_timeout"      validate:"required_if=Enabled true"`
}

// LLMConfig selects and tunes the text-generation backend.
type LLMConfig struct {
	Provider      string        `mapstructure:"provider"       validate:"oneof=gemini ollama"`
	Model         string        `mapstructure:"model"          validate:"required"`
	APIKey        string        `mapstructure:"api_key"        validate:"required_if=Provider gemini"`
	BaseURL       string        `mapstructure:"base_url"       validate:"omitempty,url"`
	MaxTokens     int           `mapstructure:"max_tokens"     validate:"min=1,max=8192"`
	Temperature   float32       `mapstructure:"temperature"    validate:"min=0,max=2"`
	Timeout       time.Duration `mapstructure:"timeout"        validate:"min=0"`
	MaxRetries    int           `mapstructure:"max_retries"    validate:"min=0,max=10"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"    validate:"min=0"`
	MaxConcurrent int64         `mapstructure:"max_concurrent" validate:"min=1"`
}

// SchedulerConfig lists the background tasks and their cron schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig enables one task on a cron schedule (seconds field allowed).
// RunOnStart also runs the task once as soon as the scheduler starts.
type TaskConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Schedule   string `mapstructure:"schedule"     validate:"required_if=Enabled true"`
	RunOnStart bool   `mapstructure:"run_on_start"`
}
