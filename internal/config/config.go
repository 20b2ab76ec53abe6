// Package config handles application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// Fields are populated from environment variables.
type Config struct {
	// Server settings
	Port int    // HTTP port to listen on
	Env  string // development, staging, production

	// Database
	DatabasePath string // Path to SQLite file (gold price cache + signup log)

	// Gold price feed
	GoldAPIKey string // Access token for the GoldAPI-compatible feed
	GoldAPIURL string // Base URL of the feed; empty uses the default

	// Mailing list provider
	MailchimpAPIKey       string // API key; reminders are disabled when empty
	MailchimpServerPrefix string // Data-center prefix, e.g. us1
	MailchimpListID       string // Audience/list ID to upsert members into

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text
}

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Load reads configuration from environment variables.
// In development, it first loads from .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	// This is a no-op in production where env vars are set directly
	_ = godotenv.Load()

	cfg := &Config{}

	// Server settings
	cfg.Port = getEnvInt("PORT", 8080)
	cfg.Env = getEnv("ENV", EnvDevelopment)

	// Database
	cfg.DatabasePath = getEnv("DATABASE_PATH", "./data/zakat.db")

	// Gold price feed
	cfg.GoldAPIKey = getEnv("GOLD_API_KEY", "")
	cfg.GoldAPIURL = getEnv("GOLD_API_URL", "")

	// Mailing list provider
	cfg.MailchimpAPIKey = getEnv("MAILCHIMP_API_KEY", "")
	cfg.MailchimpServerPrefix = getEnv("MAILCHIMP_SERVER_PREFIX", "us1")
	cfg.MailchimpListID = getEnv("MAILCHIMP_LIST_ID", "")

	// Logging
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "text")

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present and valid.
func (c *Config) Validate() error {
	var errs []error

	// Validate port range
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}

	// Validate environment
	switch c.Env {
	case EnvDevelopment, EnvStaging, EnvProduction:
		// Valid
	default:
		errs = append(errs, fmt.Errorf("ENV must be one of: development, staging, production; got %q", c.Env))
	}

	// Validate database path is set
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("DATABASE_PATH is required"))
	}

	// The mailing-list integration is optional in development so the form
	// can be exercised without provider credentials, but a production
	// deployment without them is a misconfiguration.
	if c.Env == EnvProduction {
		if c.MailchimpAPIKey == "" {
			errs = append(errs, errors.New("MAILCHIMP_API_KEY is required in production"))
		}
		if c.MailchimpListID == "" {
			errs = append(errs, errors.New("MAILCHIMP_LIST_ID is required in production"))
		}
	}

	// Validate log level
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
		// Valid
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error; got %q", c.LogLevel))
	}

	// Validate log format
	switch c.LogFormat {
	case "json", "text":
		// Valid
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be one of: json, text; got %q", c.LogFormat))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// RemindersEnabled reports whether the mailing-list integration is configured.
func (c *Config) RemindersEnabled() bool {
	return c.MailchimpAPIKey != "" && c.MailchimpListID != ""
}

// getEnv reads an environment variable with a default fallback.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an environment variable as an integer with a default fallback.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
