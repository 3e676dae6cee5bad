// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	Env  string `env:"ENV" envDefault:"development"`
	Port string `env:"PORT" envDefault:"8080"`

	// Process mode: "server", "worker", "scheduler", or "all"
	Mode string `env:"MODE" envDefault:"all"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Redis (asynq queue + reminder send markers)
	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	// Sessions / OAuth
	SessionSecret      string `env:"SESSION_SECRET"`
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleCallbackURL  string `env:"GOOGLE_CALLBACK_URL" envDefault:"http://localhost:8080/auth/callback"`

	// Email delivery
	ResendAPIKey string `env:"RESEND_API_KEY"`
	EmailFrom    string `env:"EMAIL_FROM" envDefault:"Cold DM Tracker <reminders@applyfast.dev>"`

	// Public base URL for links embedded in emails
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// Shared secret guarding the cron trigger endpoint
	CronSecret string `env:"CRON_SECRET,required"`

	// Secret signing unsubscribe capability tokens.
	// Falls back to SessionSecret when unset.
	UnsubscribeSecret string `env:"UNSUBSCRIBE_SECRET"`

	// Reminder dispatch
	SendHour    int           `env:"SEND_HOUR" envDefault:"8"`
	SendTimeout time.Duration `env:"SEND_TIMEOUT" envDefault:"15s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Warn if using default session secret (insecure for production)
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = "dev-secret-change-in-production-use-openssl-rand-hex-32"
		log.Println("WARNING: Using default SESSION_SECRET. Generate a secure secret with: openssl rand -hex 32")
	}
	if cfg.UnsubscribeSecret == "" {
		cfg.UnsubscribeSecret = cfg.SessionSecret
	}

	return cfg, nil
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
