package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// writeConfig writes YAML content to a temp file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
security:
  jwt:
    secret: "`+testSecret+`"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "./data/lights.db" {
		t.Errorf("database path = %q, want default", cfg.Database.Path)
	}
	if !cfg.Database.WALMode {
		t.Error("WAL mode should default to true")
	}
	if cfg.API.Port != 8080 {
		t.Errorf("api port = %d, want 8080", cfg.API.Port)
	}
	if cfg.Security.JWT.Issuer != "lights-core" {
		t.Errorf("jwt issuer = %q, want lights-core", cfg.Security.JWT.Issuer)
	}
	if !cfg.Security.Password.Breach.Enabled {
		t.Error("breach checking should default to enabled")
	}
	if cfg.GetTokenTTL() != 24*time.Hour {
		t.Errorf("token ttl = %v, want 24h", cfg.GetTokenTTL())
	}
	if cfg.GetBreachTimeout() != 3*time.Second {
		t.Errorf("breach timeout = %v, want 3s", cfg.GetBreachTimeout())
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /tmp/other.db
  busy_timeout: 10
api:
  port: 9090
security:
  jwt:
    secret: "`+testSecret+`"
    token_ttl: 900
  password:
    breach:
      enabled: false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/other.db" {
		t.Errorf("database path = %q", cfg.Database.Path)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("api port = %d, want 9090", cfg.API.Port)
	}
	if cfg.Security.JWT.TokenTTL != 900 {
		t.Errorf("token ttl = %d, want 900", cfg.Security.JWT.TokenTTL)
	}
	if cfg.Security.Password.Breach.Enabled {
		t.Error("breach checking should be disabled by file")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /tmp/file.db
`)

	t.Setenv("LIGHTS_DATABASE_PATH", "/tmp/env.db")
	t.Setenv("LIGHTS_JWT_SECRET", testSecret)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/env.db" {
		t.Errorf("database path = %q, want env override", cfg.Database.Path)
	}
	if cfg.Security.JWT.Secret != testSecret {
		t.Error("jwt secret should come from environment")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:    "missing secret",
			mutate:  func(c *Config) { c.Security.JWT.Secret = "" },
			wantMsg: "security.jwt.secret is required",
		},
		{
			name:    "short secret",
			mutate:  func(c *Config) { c.Security.JWT.Secret = "short" },
			wantMsg: "at least 32 characters",
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantMsg: "database.path is required",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.API.Port = 70000 },
			wantMsg: "api.port",
		},
		{
			name:    "zero token ttl",
			mutate:  func(c *Config) { c.Security.JWT.TokenTTL = 0 },
			wantMsg: "token_ttl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Security.JWT.Secret = testSecret
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantMsg)
			}
		})
	}
}
