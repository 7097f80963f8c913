package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("TRACKING_CODE_MAX_ATTEMPTS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Tracking.Prefix != "TRK-" || cfg.Tracking.MaxAttempts != 5 {
		t.Errorf("tracking defaults = %+v", cfg.Tracking)
	}
	if cfg.Auth.JWTSecret != "dev-secret" {
		t.Errorf("expected development secret fallback, got %q", cfg.Auth.JWTSecret)
	}
	if cfg.Feed.CacheTTL != time.Minute {
		t.Errorf("feed cache ttl = %s", cfg.Feed.CacheTTL)
	}
}

func TestLoadRequiresSecretOutsideDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing secret in production")
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		Auth:     AuthConfig{JWTSecret: "s"},
		Tracking: TrackingConfig{Prefix: "TRK-", MaxAttempts: 5},
		Feed:     FeedConfig{DefaultPageSize: 20, MaxPageSize: 100},
		Tracing:  TracingConfig{SampleRatio: 1},
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"zero attempts", func(c *Config) { c.Tracking.MaxAttempts = 0 }, true},
		{"empty prefix", func(c *Config) { c.Tracking.Prefix = "" }, true},
		{"page size inversion", func(c *Config) { c.Feed.MaxPageSize = 10 }, true},
		{"sample ratio above one", func(c *Config) { c.Tracing.SampleRatio = 1.5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("SOME_TTL", "90s")
	if got := getEnvAsDuration("SOME_TTL", time.Second); got != 90*time.Second {
		t.Errorf("got %s", got)
	}
	t.Setenv("SOME_TTL", "garbage")
	if got := getEnvAsDuration("SOME_TTL", time.Second); got != time.Second {
		t.Errorf("expected fallback, got %s", got)
	}
}
