// ABOUTME: Centralized configuration for the focusflow CLI and MCP server
// ABOUTME: Parses environment variables with caarlos0/env, with validation and defaults
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/harper/focusflow/internal/recordstore"
)

// Config holds all configuration for focusflow
type Config struct {
	// Record store
	DBPath string `env:"FOCUSFLOW_DB"`

	// Model provider (any OpenAI-compatible endpoint)
	OpenAIKey     string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string        `env:"OPENAI_BASE_URL"`
	Model         string        `env:"FOCUSFLOW_MODEL" envDefault:"gpt-4o-mini"`
	ModelTimeout  time.Duration `env:"FOCUSFLOW_MODEL_TIMEOUT" envDefault:"30s"`
	Temperature   float32       `env:"FOCUSFLOW_TEMPERATURE" envDefault:"0.7"`

	// Charm cloud mirror
	CharmHost      string        `env:"CHARM_HOST" envDefault:"cloud.charm.sh"`
	CharmDBName    string        `env:"CHARM_DB" envDefault:"focusflow"`
	AutoSync       bool          `env:"CHARM_AUTO_SYNC" envDefault:"false"`
	SyncRetries    int           `env:"CHARM_SYNC_RETRIES" envDefault:"3"`
	SyncRetryDelay time.Duration `env:"CHARM_SYNC_RETRY_DELAY" envDefault:"500ms"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"warn"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = recordstore.DefaultDBPath()
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("FOCUSFLOW_TEMPERATURE must be 0-2, got %g", c.Temperature)
	}
	if c.ModelTimeout <= 0 {
		return fmt.Errorf("FOCUSFLOW_MODEL_TIMEOUT must be positive, got %v", c.ModelTimeout)
	}
	if c.SyncRetries < 0 || c.SyncRetries > 10 {
		return fmt.Errorf("CHARM_SYNC_RETRIES must be 0-10, got %d", c.SyncRetries)
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.LogFormat)
	}
	return nil
}

// HasModel reports whether a model provider key is configured
func (c *Config) HasModel() bool {
	return c.OpenAIKey != ""
}
