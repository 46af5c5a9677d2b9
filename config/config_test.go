package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.Browser.Headless || cfg.Fetcher.Engine != "browser" || cfg.Fetcher.MaxRetries != 3 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.GetPageLoadTimeout() != 60*time.Second || cfg.GetBackoff() != 5*time.Second || cfg.GetSettle() != time.Second {
		t.Fatalf("unexpected durations: %v %v %v", cfg.GetPageLoadTimeout(), cfg.GetBackoff(), cfg.GetSettle())
	}
	if cfg.Output.Dir != "output" || cfg.Storage.Driver != "none" || cfg.Server.Port != 8080 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadConfigFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	yaml := `
browser:
  headless: false
  pageloadtimeout: 30s
fetcher:
  engine: http
  maxretries: 5
  backoff: bogus
storage:
  driver: sqlite
  dsn: history.db
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("SITEMAP_OUTPUT_DIR", "elsewhere")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Browser.Headless || cfg.Fetcher.Engine != "http" || cfg.Fetcher.MaxRetries != 5 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.GetPageLoadTimeout() != 30*time.Second {
		t.Fatalf("timeout = %v, want 30s", cfg.GetPageLoadTimeout())
	}
	if cfg.GetBackoff() != 5*time.Second {
		t.Fatalf("invalid backoff should fall back to 5s, got %v", cfg.GetBackoff())
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.DSN != "history.db" {
		t.Fatalf("storage not applied: %+v", cfg.Storage)
	}
	if cfg.Output.Dir != "elsewhere" {
		t.Fatalf("env override not applied: %q", cfg.Output.Dir)
	}
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("browser: [unclosed"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for malformed config")
	}
}
