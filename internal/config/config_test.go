package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"hikari/internal/models"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
backend:
  base_url: "${HIKARI_TEST_BACKEND}"
  timeout: 3s
  endpoints:
    tables: "/api/layout/tables/?area=1"
session:
  authenticated: true
cache:
  tables_ttl: 30s
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	t.Setenv("HIKARI_TEST_BACKEND", "http://localhost:8000")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Backend.BaseURL != "http://localhost:8000" {
		t.Errorf("expected expanded base_url, got %s", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Timeout != 3*time.Second {
		t.Errorf("expected timeout 3s, got %s", cfg.Backend.Timeout)
	}
	if cfg.Backend.Endpoints.Tables != "/api/layout/tables/?area=1" {
		t.Errorf("tables endpoint override lost: %s", cfg.Backend.Endpoints.Tables)
	}
	if cfg.Backend.Endpoints.Availability != "/api/availability/" {
		t.Errorf("expected default availability endpoint, got %s", cfg.Backend.Endpoints.Availability)
	}
	if !cfg.Session.Authenticated {
		t.Errorf("expected authenticated session")
	}
	if cfg.Session.CSRFCookie != models.CSRFCookieName {
		t.Errorf("expected default csrf cookie, got %s", cfg.Session.CSRFCookie)
	}
	if cfg.Booking.MaxOnlineGuests != models.MaxOnlineGuests {
		t.Errorf("expected max guests %d, got %d", models.MaxOnlineGuests, cfg.Booking.MaxOnlineGuests)
	}
	if cfg.Cache.TablesTTL != 30*time.Second {
		t.Errorf("expected tables ttl 30s, got %s", cfg.Cache.TablesTTL)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidateConfig(t *testing.T) {
	valid := func() Config {
		c := Config{Backend: BackendConfig{BaseURL: "https://hikari.example"}}
		c.applyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(c *Config) {}, wantErr: false},
		{name: "missing base url", mutate: func(c *Config) { c.Backend.BaseURL = "" }, wantErr: true},
		{name: "relative base url", mutate: func(c *Config) { c.Backend.BaseURL = "/api" }, wantErr: true},
		{name: "zero guest cap", mutate: func(c *Config) { c.Booking.MaxOnlineGuests = -1 }, wantErr: true},
		{name: "negative rps", mutate: func(c *Config) { c.Backend.RateLimit.RPS = -2 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
