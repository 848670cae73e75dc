// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings, with local-development defaults.
type Config struct {
	Addr string `env:"ADDR" envDefault:":8080"`

	// Storage selects the backing store: "postgres" or "memory".
	// The memory backend exists for local development and tests.
	Storage string `env:"STORAGE" envDefault:"postgres"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName     string `env:"DB_NAME" envDefault:"clubevents"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	JWTSecret string        `env:"JWT_SECRET" envDefault:"dev-secret"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"12h"`

	RateRPS   float64 `env:"RATE_RPS" envDefault:"20"`
	RateBurst int     `env:"RATE_BURST" envDefault:"40"`
}

// Load parses configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Storage != "postgres" && cfg.Storage != "memory" {
		return Config{}, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
	return cfg, nil
}

// DSN builds a libpq-compatible connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}
