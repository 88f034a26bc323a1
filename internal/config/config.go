// Package config loads console configuration from an optional YAML file
// with APEX_* environment variables layered on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied before the file and environment are consulted.
const (
	DefaultAPIBaseURL = "http://localhost:8000"
	DefaultAPIVersion = "v1"
	DefaultTimeout    = 30 * time.Second
	DefaultPageLimit  = 20

	// Staleness window for cached list/get queries.
	DefaultCacheTTL = 30 * time.Second

	// Client-side request budget against the backend.
	DefaultRequestsPerMinute = 300
	DefaultBurst             = 20
)

// Config is the resolved console configuration.
type Config struct {
	APIBaseURL string        `yaml:"api_base_url"`
	APIVersion string        `yaml:"api_version"`
	StatePath  string        `yaml:"state_path"`
	Timeout    time.Duration `yaml:"timeout"`
	CacheTTL   time.Duration `yaml:"cache_ttl"`
	PageLimit  int           `yaml:"page_limit"`

	RequestsPerMinute int `yaml:"requests_per_minute"`
	Burst             int `yaml:"burst"`

	LogLevel string `yaml:"log_level"`
}

// DefaultConfigPath returns ~/.apex/config.yaml.
func DefaultConfigPath() string {
	if p := os.Getenv("APEX_CONFIG"); p != "" {
		return p
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".apex", "config.yaml")
}

// DefaultStatePath returns ~/.apex/state.db.
func DefaultStatePath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".apex", "state.db")
}

// Load resolves configuration: defaults, then the YAML file at path (missing
// file is fine), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{
		APIBaseURL:        DefaultAPIBaseURL,
		APIVersion:        DefaultAPIVersion,
		StatePath:         DefaultStatePath(),
		Timeout:           DefaultTimeout,
		CacheTTL:          DefaultCacheTTL,
		PageLimit:         DefaultPageLimit,
		RequestsPerMinute: DefaultRequestsPerMinute,
		Burst:             DefaultBurst,
		LogLevel:          "info",
	}

	if path == "" {
		path = DefaultConfigPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// No file: defaults + env only.
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(cfg)

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = DefaultPageLimit
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("APEX_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("APEX_API_VERSION"); v != "" {
		cfg.APIVersion = v
	}
	if v := os.Getenv("APEX_STATE_DB"); v != "" {
		cfg.StatePath = v
	}
	if v := os.Getenv("APEX_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	cfg.PageLimit = envInt("APEX_PAGE_LIMIT", cfg.PageLimit)
	cfg.RequestsPerMinute = envInt("APEX_REQUESTS_PER_MINUTE", cfg.RequestsPerMinute)
	cfg.Burst = envInt("APEX_BURST", cfg.Burst)
	if v := os.Getenv("APEX_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv("APEX_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CacheTTL = d
		}
	}
}

// envInt reads an int from an env var with a fallback default.
func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
