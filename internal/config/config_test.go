package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.CacheEnabled)
	assert.NotEmpty(t, cfg.CacheDir)
	assert.Equal(t, 5000, cfg.MaxCachedGraphs)
	assert.False(t, cfg.JSONLogs)
	assert.False(t, cfg.Verbose)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `cache_enabled: false
max_cached_graphs: 42
exclude_dirs:
  - generated
  - migrations
verbose: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.False(t, cfg.CacheEnabled)
	assert.Equal(t, 42, cfg.MaxCachedGraphs)
	assert.Equal(t, []string{"generated", "migrations"}, cfg.ExcludeDirs)
	assert.True(t, cfg.Verbose)
	// Unset keys keep their defaults.
	assert.NotEmpty(t, cfg.CacheDir)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache_enabled: [broken"), 0644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_cached_graphs: 10\n"), 0644))

	t.Setenv("GFG_MAX_CACHED_GRAPHS", "99")
	t.Setenv("GFG_CACHE_DIR", "/tmp/gfg-test-cache")
	t.Setenv("GFG_VERBOSE", "true")
	t.Setenv("GFG_JSON_LOGS", "1")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 99, cfg.MaxCachedGraphs, "env should override the file value")
	assert.Equal(t, "/tmp/gfg-test-cache", cfg.CacheDir)
	assert.True(t, cfg.Verbose)
	assert.True(t, cfg.JSONLogs)
}

func TestEnvInvalidNumberIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_cached_graphs: 10\n"), 0644))

	t.Setenv("GFG_MAX_CACHED_GRAPHS", "not-a-number")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.MaxCachedGraphs)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxCachedGraphs = -1
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.CacheEnabled = true
	cfg.CacheDir = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.CacheEnabled = false
	cfg.CacheDir = ""
	assert.NoError(t, cfg.Validate(), "cache dir is only required when the cache is enabled")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.MaxCachedGraphs = 7
	cfg.Verbose = true
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.MaxCachedGraphs)
	assert.True(t, loaded.Verbose)
}

func TestCacheFilePath(t *testing.T) {
	cfg := &Config{CacheDir: "/var/cache/gfg"}
	assert.Equal(t, filepath.Join("/var/cache/gfg", "graphs.msgpack"), cfg.CacheFilePath())
}
