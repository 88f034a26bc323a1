package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/anonymeye/apex-platform/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBaseURL != config.DefaultAPIBaseURL {
		t.Errorf("APIBaseURL = %q, want default", cfg.APIBaseURL)
	}
	if cfg.APIVersion != "v1" {
		t.Errorf("APIVersion = %q, want v1", cfg.APIVersion)
	}
	if cfg.CacheTTL != config.DefaultCacheTTL {
		t.Errorf("CacheTTL = %v, want %v", cfg.CacheTTL, config.DefaultCacheTTL)
	}
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "api_base_url: https://apex.example.com\napi_version: v2\npage_limit: 50\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("APEX_API_URL", "https://override.example.com")
	t.Setenv("APEX_CACHE_TTL", "45s")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBaseURL != "https://override.example.com" {
		t.Errorf("env should win over file, got %q", cfg.APIBaseURL)
	}
	if cfg.APIVersion != "v2" {
		t.Errorf("APIVersion = %q, want v2 from file", cfg.APIVersion)
	}
	if cfg.PageLimit != 50 {
		t.Errorf("PageLimit = %d, want 50 from file", cfg.PageLimit)
	}
	if cfg.CacheTTL != 45*time.Second {
		t.Errorf("CacheTTL = %v, want 45s from env", cfg.CacheTTL)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api_base_url: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.Load(path); err == nil {
		t.Fatal("Load should fail on malformed YAML")
	}
}
