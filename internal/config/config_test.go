package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	// Clear any existing env vars that might interfere
	clearEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with defaults failed: %v", err)
	}

	// Check defaults are applied
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Env != EnvDevelopment {
		t.Errorf("Env = %q, want %q", cfg.Env, EnvDevelopment)
	}
	if cfg.MailchimpServerPrefix != "us1" {
		t.Errorf("MailchimpServerPrefix = %q, want %q", cfg.MailchimpServerPrefix, "us1")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, want %q", cfg.LogFormat, "text")
	}
	if cfg.RemindersEnabled() {
		t.Error("RemindersEnabled() = true with no provider credentials, want false")
	}
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv()

	// Set custom values
	os.Setenv("PORT", "3000")
	os.Setenv("ENV", "production")
	os.Setenv("DATABASE_PATH", "/data/test.db")
	os.Setenv("GOLD_API_KEY", "goldapi-test-key")
	os.Setenv("GOLD_API_URL", "https://example.com/api")
	os.Setenv("MAILCHIMP_API_KEY", "mc-secret")
	os.Setenv("MAILCHIMP_SERVER_PREFIX", "us21")
	os.Setenv("MAILCHIMP_LIST_ID", "abc123")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("LOG_FORMAT", "json")
	defer clearEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if cfg.Env != EnvProduction {
		t.Errorf("Env = %q, want %q", cfg.Env, EnvProduction)
	}
	if cfg.DatabasePath != "/data/test.db" {
		t.Errorf("DatabasePath = %q, want %q", cfg.DatabasePath, "/data/test.db")
	}
	if cfg.GoldAPIKey != "goldapi-test-key" {
		t.Errorf("GoldAPIKey = %q, want %q", cfg.GoldAPIKey, "goldapi-test-key")
	}
	if cfg.MailchimpServerPrefix != "us21" {
		t.Errorf("MailchimpServerPrefix = %q, want %q", cfg.MailchimpServerPrefix, "us21")
	}
	if !cfg.RemindersEnabled() {
		t.Error("RemindersEnabled() = false with full provider credentials, want true")
	}
}

func TestLoad_ProductionRequiresProviderCredentials(t *testing.T) {
	clearEnv()

	os.Setenv("ENV", "production")
	defer clearEnv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() in production without MAILCHIMP_API_KEY should fail")
	}
}

func TestValidate_InvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Port = 0 }},
		{"bad env", func(c *Config) { c.Env = "testing" }},
		{"missing database path", func(c *Config) { c.DatabasePath = "" }},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Port:         8080,
				Env:          EnvDevelopment,
				DatabasePath: "./data/zakat.db",
				LogLevel:     "info",
				LogFormat:    "text",
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

// clearEnv removes all configuration env vars.
func clearEnv() {
	vars := []string{
		"PORT", "ENV", "DATABASE_PATH",
		"GOLD_API_KEY", "GOLD_API_URL",
		"MAILCHIMP_API_KEY", "MAILCHIMP_SERVER_PREFIX", "MAILCHIMP_LIST_ID",
		"LOG_LEVEL", "LOG_FORMAT",
	}
	for _, v := range vars {
		os.Unsetenv(v)
	}
}
