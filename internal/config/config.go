package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is read once at startup and never mutated afterwards.
type Config struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	Env             string        `envconfig:"ENV" default:"dev"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	SentryDSN       string        `envconfig:"SENTRY_DSN"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	MaxUploadBytes  int64         `envconfig:"MAX_UPLOAD_BYTES" default:"5242880"`
	SessionTTL      time.Duration `envconfig:"SESSION_TTL" default:"30m"`

	Branding
}

// Branding holds page title and logo shown on every render.
type Branding struct {
	Title    string `envconfig:"DASHBOARD_TITLE" default:"Financial Analysis Dashboard"`
	Subtitle string `envconfig:"DASHBOARD_SUBTITLE" default:"Track the key indicators of your business."`
	LogoURL  string `envconfig:"DASHBOARD_LOGO_URL"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config from env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate rejects limits that would make the server unusable.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}
