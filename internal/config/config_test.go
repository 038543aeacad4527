package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Execution.Timeout())
	assert.Equal(t, 10000, cfg.Execution.MaxOutputChars)
	assert.Equal(t, "https://gallery.temper.sh/api", cfg.Gallery.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Gallery.TimeoutDuration())
	assert.Equal(t, 24*time.Hour, cfg.Gallery.CacheTTLDuration())
	assert.False(t, cfg.Logging.DebugMode)
}

func TestLoadLayersFileOverDefaults(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(`
execution:
  timeout_ms: 2500
gallery:
  cache_ttl: 1h
logging:
  debug_mode: true
  level: debug
`), 0644))

	cfg, err := Load(home)
	require.NoError(t, err)

	assert.Equal(t, 2500*time.Millisecond, cfg.Execution.Timeout())
	// Untouched sections keep their defaults.
	assert.Equal(t, 10000, cfg.Execution.MaxOutputChars)
	assert.Equal(t, "https://gallery.temper.sh/api", cfg.Gallery.BaseURL)
	assert.Equal(t, time.Hour, cfg.Gallery.CacheTTLDuration())
	assert.True(t, cfg.Logging.DebugMode)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsMalformedYaml(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("execution: ["), 0644))

	_, err := Load(home)
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TEMPER_GALLERY_URL", "http://localhost:9999/api")
	t.Setenv("TEMPER_TIMEOUT_MS", "1234")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999/api", cfg.Gallery.BaseURL)
	assert.Equal(t, 1234, cfg.Execution.TimeoutMS)
}

func TestLoadIgnoresBadEnvTimeout(t *testing.T) {
	t.Setenv("TEMPER_TIMEOUT_MS", "not-a-number")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Execution.TimeoutMS)
}

func TestLoadClampsNonPositiveValues(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(`
execution:
  timeout_ms: -5
  max_output_chars: 0
`), 0644))

	cfg, err := Load(home)
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Execution.TimeoutMS)
	assert.Equal(t, 10000, cfg.Execution.MaxOutputChars)
}

func TestHomeDirHonorsOverride(t *testing.T) {
	t.Setenv("TEMPER_HOME", "/tmp/custom-temper")
	home, err := HomeDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom-temper", home)
}

func TestDerivedPaths(t *testing.T) {
	assert.Equal(t, filepath.Join("/h", "snippets"), SnippetsDir("/h"))
	assert.Equal(t, filepath.Join("/h", "cache.db"), CachePath("/h"))
}

func TestParseDurationFallbacks(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("garbage", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("-3s", time.Minute))
	assert.Equal(t, 90*time.Second, parseDuration("90s", time.Minute))
}
