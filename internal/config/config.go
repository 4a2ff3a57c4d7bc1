// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Port                string        `koanf:"port"`
	DatabaseURL         string        `koanf:"database_url"`
	ReconcileServiceURL string        `koanf:"fastapi_url"`
	ReconcileTimeout    time.Duration `koanf:"reconcile_timeout"`
	AllowedOrigins      []string      `koanf:"-"`
	ExportMaxRows       int           `koanf:"export_max_rows"`
	LogLevel            string        `koanf:"log_level"`

	RawAllowedOrigins string `koanf:"cors_allowed_origins"`
}

func Default() *Config {
	return &Config{
		Port:              "5000",
		ReconcileTimeout:  60 * time.Second,
		LogLevel:          "info",
		RawAllowedOrigins: "http://localhost:5173",
	}
}

// Load reads the environment over the defaults.
//
//	PORT                 -> port
//	DATABASE_URL         -> database_url
//	FASTAPI_URL          -> fastapi_url
//	CORS_ALLOWED_ORIGINS -> cors_allowed_origins
func Load() (*Config, error) {
	k := koanf.New(".")

	// Keys stay flat: underscores are part of the key, not a nesting separator.
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.AllowedOrigins = splitList(cfg.RawAllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.ExportMaxRows < 0 {
		return fmt.Errorf("export_max_rows must be >= 0, got %d", c.ExportMaxRows)
	}
	if c.ReconcileTimeout <= 0 {
		return fmt.Errorf("reconcile_timeout must be positive, got %s", c.ReconcileTimeout)
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
