package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable override.
const EnvPrefix = "BOOKREC"

// secretEnvAliases lets the secrets be supplied under the names operators
// already use, in priority order.
var secretEnvAliases = map[string][]string{
	"catalog.api_key": {"BOOKREC_CATALOG_API_KEY", "GOOGLE_BOOKS_API_KEY", "Google_Books_API_Key"},
	"llm.api_key":     {"BOOKREC_LLM_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// LoadConfig loads and validates configuration from:
// 1. Default values
// 2. the YAML file at path (optional, skipped when empty or missing)
// 3. a .env file in the working directory (optional)
// 4. BOOKREC_* environment variables and the secret aliases
func LoadConfig(path string) (*Config, error) {
	startTime := time.Now()

	loadDotEnv()

	v := viper.New()
	for key, value := range defaultValues() {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range secretEnvAliases {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("%w: failed to bind env for %s: %v", ErrConfiguration, key, err)
		}
	}

	if err := readConfigFile(v, path); err != nil {
		return nil, fmt.Errorf("%w: failed to load config file: %v", ErrConfiguration, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	slog.Info("configuration loaded successfully",
		"log_level", cfg.Log.Level,
		"server_addr", cfg.Server.Addr,
		"llm_provider", cfg.LLM.Provider,
		"llm_model", cfg.LLM.Model,
		"catalog_api_key", Redacted(cfg.Catalog.APIKey),
		"duration_ms", time.Since(startTime).Milliseconds())

	return cfg, nil
}

// Validate checks the struct tags of the whole configuration tree.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

func readConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			slog.Info("configuration file not found, using defaults", "path", path)
			return nil
		}
		return err
	}

	slog.Debug("configuration file loaded", "path", v.ConfigFileUsed())
	return nil
}

func loadDotEnv() {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("failed to load .env file", "error", err)
		}
		return
	}
	slog.Debug(".env file loaded")
}
