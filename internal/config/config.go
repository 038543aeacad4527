// Package config loads temper's configuration from ~/.temper/config.yaml,
// applying defaults and environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all temper configuration.
type Config struct {
	// Execution settings for the snippet engine
	Execution ExecutionConfig `yaml:"execution"`

	// Remote snippet gallery
	Gallery GalleryConfig `yaml:"gallery"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ExecutionConfig configures the snippet engine.
type ExecutionConfig struct {
	// Wall-clock budget for async snippet dispatch, in milliseconds
	TimeoutMS int `yaml:"timeout_ms"`

	// Output cap in characters; longer output is truncated, not rejected
	MaxOutputChars int `yaml:"max_output_chars"`
}

// Timeout returns the execution budget as a duration.
func (e ExecutionConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutMS) * time.Millisecond
}

// GalleryConfig configures the remote gallery client and its cache.
type GalleryConfig struct {
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
	CacheTTL string `yaml:"cache_ttl"`
}

// TimeoutDuration parses the request timeout, defaulting to 10s.
func (g GalleryConfig) TimeoutDuration() time.Duration {
	return parseDuration(g.Timeout, 10*time.Second)
}

// CacheTTLDuration parses the cache TTL, defaulting to 24h.
func (g GalleryConfig) CacheTTLDuration() time.Duration {
	return parseDuration(g.CacheTTL, 24*time.Hour)
}

// LoggingConfig configures the categorized debug logger. The logging
// package re-reads this section itself to avoid an import cycle.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	Categories map[string]bool `yaml:"categories,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Execution: ExecutionConfig{
			TimeoutMS:      5000,
			MaxOutputChars: 10000,
		},
		Gallery: GalleryConfig{
			BaseURL:  "https://gallery.temper.sh/api",
			Timeout:  "10s",
			CacheTTL: "24h",
		},
		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// Load reads config.yaml under the given home directory, layering it over
// defaults. A missing file is not an error. Environment overrides
// (TEMPER_GALLERY_URL, TEMPER_TIMEOUT_MS) are applied last.
func Load(homeDir string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(homeDir, "config.yaml"))
	switch {
	case os.IsNotExist(err):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.applyEnv()

	if cfg.Execution.TimeoutMS <= 0 {
		cfg.Execution.TimeoutMS = 5000
	}
	if cfg.Execution.MaxOutputChars <= 0 {
		cfg.Execution.MaxOutputChars = 10000
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TEMPER_GALLERY_URL"); v != "" {
		c.Gallery.BaseURL = v
	}
	if v := os.Getenv("TEMPER_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			c.Execution.TimeoutMS = ms
		}
	}
}

// HomeDir resolves temper's home directory (~/.temper), honoring
// TEMPER_HOME.
func HomeDir() (string, error) {
	if v := os.Getenv("TEMPER_HOME"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".temper"), nil
}

// SnippetsDir returns the local snippet store path under home.
func SnippetsDir(homeDir string) string {
	return filepath.Join(homeDir, "snippets")
}

// CachePath returns the gallery cache database path under home.
func CachePath(homeDir string) string {
	return filepath.Join(homeDir, "cache.db")
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
