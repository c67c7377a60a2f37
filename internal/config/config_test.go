package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigFileWithEnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(`
server:
  base_url: "http://file.example.com"
  port: 9090
google:
  calendar_id: "gen-lang-client-555"
logging:
  level: "debug"
`), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("CONFIG_FILE", cfgPath)
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$fakefakefakefakefakefake")

	t.Setenv("PORT", "8081")
	t.Setenv("BASE_URL", "http://env.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8081 {
		t.Fatalf("expected env override port 8081, got %d", cfg.Server.Port)
	}
	if cfg.Server.BaseURL != "http://env.example.com" {
		t.Fatalf("expected env override base_url, got %s", cfg.Server.BaseURL)
	}
	if cfg.Google.CalendarID != "gen-lang-client-555" {
		t.Fatalf("expected file calendar_id, got %s", cfg.Google.CalendarID)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected logging level debug, got %s", cfg.Logging.Level)
	}
	if cfg.Display.Timezone != DefaultTimezone {
		t.Fatalf("expected default timezone, got %s", cfg.Display.Timezone)
	}
}

func TestLoadRequiresPasswordHash(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ADMIN_PASSWORD_HASH", "")
	os.Unsetenv("ADMIN_PASSWORD_HASH")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when ADMIN_PASSWORD_HASH is missing")
	}
}

func TestBaseURLTrailingSlashTrimmed(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$fakefakefakefakefakefake")
	t.Setenv("BASE_URL", "http://example.com/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.BaseURL != "http://example.com" {
		t.Fatalf("expected trimmed base URL, got %s", cfg.Server.BaseURL)
	}
}
