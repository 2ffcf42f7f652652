package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected :8080, got %s", cfg.Server.Addr)
	}
	if cfg.Session.Store != "memory" || cfg.Session.StorageKey != "token" {
		t.Errorf("unexpected session config: %+v", cfg.Session)
	}
	if cfg.UI.Language != "fr" {
		t.Errorf("expected fr, got %s", cfg.UI.Language)
	}
	if cfg.Backend.Timeout != 10*time.Second {
		t.Errorf("expected 10s timeout, got %v", cfg.Backend.Timeout)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DASHBOARD_BACKEND_URL", "http://inventory:8000")
	t.Setenv("DASHBOARD_BACKEND_TIMEOUT", "3s")
	t.Setenv("DASHBOARD_SESSION_STORE", "redis")
	t.Setenv("DASHBOARD_RATELIMIT_BURST", "7")

	cfg, err := Load("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend.URL != "http://inventory:8000" {
		t.Errorf("expected env backend url, got %s", cfg.Backend.URL)
	}
	if cfg.Backend.Timeout != 3*time.Second {
		t.Errorf("expected 3s, got %v", cfg.Backend.Timeout)
	}
	if cfg.Session.Store != "redis" {
		t.Errorf("expected redis, got %s", cfg.Session.Store)
	}
	if cfg.RateLimit.Burst != 7 {
		t.Errorf("expected burst 7, got %d", cfg.RateLimit.Burst)
	}
}

func TestLoad_DatabaseURLFallback(t *testing.T) {
	t.Setenv("DASHBOARD_SESSION_STORE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://user:pass@db:5432/dashboard")

	cfg, err := Load("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.URL != "postgres://user:pass@db:5432/dashboard" {
		t.Errorf("expected DATABASE_URL to be used, got %q", cfg.Database.URL)
	}
}

func TestLoad_SQLStoreNeedsDatabase(t *testing.T) {
	t.Setenv("DASHBOARD_SESSION_STORE", "mysql")
	t.Setenv("DATABASE_URL", "")

	if _, err := Load("", ""); err == nil {
		t.Error("expected an error without database url")
	}
}

func TestLoad_UnknownStore(t *testing.T) {
	t.Setenv("DASHBOARD_SESSION_STORE", "etcd")
	if _, err := Load("", ""); err == nil {
		t.Error("expected an error for an unknown store")
	}
}

func TestLoad_DotEnvAndConfigFile(t *testing.T) {
	dir := t.TempDir()

	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("DASHBOARD_UI_CURRENCY=EUR\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("DASHBOARD_UI_CURRENCY") })

	configFile := filepath.Join(dir, "dashboard.yaml")
	yaml := "ui:\n  language: en\nserver:\n  addr: \":9090\"\n"
	if err := os.WriteFile(configFile, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(envFile, configFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.UI.Currency != "EUR" {
		t.Errorf("expected EUR from .env, got %s", cfg.UI.Currency)
	}
	if cfg.UI.Language != "en" || cfg.Server.Addr != ":9090" {
		t.Errorf("expected values from config file, got %+v %+v", cfg.UI, cfg.Server)
	}
}

func TestLoad_MissingDotEnvIsFine(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env"), ""); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
