// Package config loads process configuration for the rupture binary from
// environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// #region config

// Config holds process settings. Command-line flags override these values.
type Config struct {
	DBPath        string `env:"RUPTURE_DB_PATH"`
	LogLevel      string `env:"RUPTURE_LOG_LEVEL"      envDefault:"info"`
	LogFormat     string `env:"RUPTURE_LOG_FORMAT"     envDefault:"text"`
	TraceExporter string `env:"RUPTURE_TRACE_EXPORTER" envDefault:"none"`
	Workers       int    `env:"RUPTURE_WORKERS"        envDefault:"4"`
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load returns the process configuration.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Workers < 1 {
		return Config{}, fmt.Errorf("RUPTURE_WORKERS must be positive, got %d", cfg.Workers)
	}
	return cfg, nil
}

// #endregion config
