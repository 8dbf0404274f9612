// Package config loads and persists gfg configuration from YAML files and
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for go-flow-graph.
type Config struct {
	// CacheEnabled toggles the on-disk graph cache used by batch builds.
	CacheEnabled bool `yaml:"cache_enabled" env:"GFG_CACHE_ENABLED"`

	// CacheDir is where the msgpack graph cache lives.
	CacheDir string `yaml:"cache_dir" env:"GFG_CACHE_DIR"`

	// MaxCachedGraphs bounds the LRU cache. 0 means unlimited.
	MaxCachedGraphs int `yaml:"max_cached_graphs" env:"GFG_MAX_CACHED_GRAPHS"`

	// ExcludeDirs are directory names skipped when scanning a tree.
	ExcludeDirs []string `yaml:"exclude_dirs" env:"GFG_EXCLUDE_DIRS"`

	// JSONLogs switches log output to one JSON object per line.
	JSONLogs bool `yaml:"json_logs" env:"GFG_JSON_LOGS"`

	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose" env:"GFG_VERBOSE"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		CacheEnabled:    true,
		CacheDir:        defaultCacheDir(),
		MaxCachedGraphs: 5000,
		ExcludeDirs:     nil, // scanner defaults apply when empty
		JSONLogs:        false,
		Verbose:         false,
	}
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gfg/cache"
	}
	return filepath.Join(home, ".gfg", "cache")
}

// globalConfigFilePath returns the global config file path (~/.gfg/config.yaml)
func globalConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gfg/config.yaml"
	}
	return filepath.Join(home, ".gfg", "config.yaml")
}

// projectConfigFilePath returns the project-level config file path (./.gfg/config.yaml)
func projectConfigFilePath() string {
	return ".gfg/config.yaml"
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Environment variables
// 2. Project-level config (./.gfg/config.yaml)
// 3. Global config (~/.gfg/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	globalConfigPath := globalConfigFilePath()
	if data, err := os.ReadFile(globalConfigPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", globalConfigPath, err)
		}
	}

	projectConfigPath := projectConfigFilePath()
	if data, err := os.ReadFile(projectConfigPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", projectConfigPath, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile reads configuration from a specific YAML file path.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the specified YAML file path, creating
// parent directories if needed.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}

	return nil
}

// GlobalPath returns the path Save should use for a user-wide config.
func GlobalPath() string {
	return globalConfigFilePath()
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.MaxCachedGraphs < 0 {
		return fmt.Errorf("max_cached_graphs must be >= 0, got %d", c.MaxCachedGraphs)
	}
	if c.CacheEnabled && c.CacheDir == "" {
		return fmt.Errorf("cache_dir must be set when cache_enabled is true")
	}
	return nil
}

// CacheFilePath returns the full path of the msgpack graph cache file.
func (c *Config) CacheFilePath() string {
	return filepath.Join(c.CacheDir, "graphs.msgpack")
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GFG_CACHE_ENABLED"); v != "" {
		cfg.CacheEnabled = v == "true" || v == "1"
	}
	if v := os.Getenv("GFG_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("GFG_MAX_CACHED_GRAPHS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxCachedGraphs = n
		}
	}
	if v := os.Getenv("GFG_JSON_LOGS"); v != "" {
		cfg.JSONLogs = v == "true" || v == "1"
	}
	if v := os.Getenv("GFG_VERBOSE"); v != "" {
		cfg.Verbose = v == "true" || v == "1"
	}
}
