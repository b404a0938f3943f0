package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dori/ectrack/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
source = "https://example.com/export?format=csv"
data_dir = "/tmp/ectrack-test"
theme = "dracula"
cache_name = "tracker-v12"
fetch_timeout_sec = 3
watch_source = false
notify = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/export?format=csv", cfg.Source)
	assert.Equal(t, "dracula", cfg.Theme)
	assert.Equal(t, "tracker-v12", cfg.CacheName)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout())
	assert.False(t, cfg.WatchSource)
	assert.True(t, cfg.Notify)
	assert.Equal(t, filepath.Join("/tmp/ectrack-test", "ectrack.db"), cfg.DBPath())
	assert.Equal(t, filepath.Join("/tmp/ectrack-test", "cache"), cfg.CacheDir())
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `theme = "gruvbox"`))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, "gruvbox", cfg.Theme)
	assert.Equal(t, def.Source, cfg.Source)
	assert.Equal(t, cache.DefaultName, cfg.CacheName)
	assert.Equal(t, def.FetchTimeoutSec, cfg.FetchTimeoutSec)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	_, err := Load(writeConfig(t, `source = "  "`))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `fetch_timeout_sec = -1`))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `source = [1, 2]`))
	assert.Error(t, err)
}

func TestDebugFromEnv(t *testing.T) {
	t.Setenv(EnvDebug, "1")
	cfg, err := Load(writeConfig(t, ``))
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
}
