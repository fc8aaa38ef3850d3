// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full server configuration. Every field has a workable
// default except the database DSN and the generator API key, which gate
// which adapters get wired.
type Config struct {
	Addr string `env:"LIFELINE_ADDR" envDefault:":8080"`

	// DBDSN selects postgres persistence; when empty the server runs on
	// in-memory repositories and runs are lost on restart.
	DBDSN       string `env:"LIFELINE_DB_DSN"`
	AutoMigrate bool   `env:"LIFELINE_AUTO_MIGRATE" envDefault:"true"`

	// GenAIAPIKey selects the hosted model generator; when empty the
	// server falls back to the scripted generator.
	GenAIAPIKey string `env:"LIFELINE_GENAI_API_KEY"`
	GenAIModel  string `env:"LIFELINE_GENAI_MODEL"`

	TuningPath string `env:"LIFELINE_TUNING_PATH"`

	PrefetchTTL      time.Duration `env:"LIFELINE_PREFETCH_TTL" envDefault:"10m"`
	PrefetchCapacity int           `env:"LIFELINE_PREFETCH_CAPACITY" envDefault:"1024"`
}

// FromEnv parses the configuration out of the process environment.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
