// Package config loads server settings from environment variables via
// envconfig.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime settings of the service.
type Config struct {
	// --- HTTP ---
	Port    int    `envconfig:"PORT" default:"8080"`
	GinMode string `envconfig:"GIN_MODE" default:"release"`

	// --- Sessions ---
	// How long an editing session may sit idle before the janitor
	// drops it, and how often the janitor runs (cron expression).
	SessionTTL      time.Duration `envconfig:"SESSION_TTL" default:"1h"`
	JanitorSchedule string        `envconfig:"JANITOR_SCHEDULE" default:"@every 10m"`

	// --- Templates ---
	TemplateDir string `envconfig:"TEMPLATE_DIR" default:"./configs"`
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be in 1..65535, got %d", c.Port)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.JanitorSchedule == "" {
		return fmt.Errorf("JANITOR_SCHEDULE must not be empty")
	}
	return nil
}

// Load reads the environment and returns a validated Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
