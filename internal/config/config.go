// Package config provides TOML configuration loading for ectrack.
// The file lives at ~/.config/ectrack/config.toml by default; CLI flags take
// precedence over file values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dori/ectrack/internal/cache"
	"github.com/dori/ectrack/internal/db"
)

// EnvDebug enables debug logging when set to 1
const EnvDebug = "ECTRACK_DEBUG"

// Config represents the configuration file
type Config struct {
	// Source is the CSV location: a local path, file:// URL or http(s) URL.
	// Default: data.csv in the working directory
	Source string `toml:"source"`

	// DataDir holds the state database, offline cache, lock and log.
	// Default: ~/.local/share/ectrack
	DataDir string `toml:"data_dir"`

	// Theme is the initial UI theme (nord, dracula, gruvbox, catppuccin).
	Theme string `toml:"theme"`

	// CacheName versions the offline source cache. Changing it drops every
	// entry cached under a previous name.
	CacheName string `toml:"cache_name"`

	// FetchTimeoutSec bounds a single source fetch.
	FetchTimeoutSec int `toml:"fetch_timeout_sec"`

	// WatchSource reloads the checklist when a local source file changes.
	WatchSource bool `toml:"watch_source"`

	// Notify sends a desktop notification when a group or the list is complete.
	Notify bool `toml:"notify"`

	// Debug writes a log to <data_dir>/ectrack.log.
	Debug bool `toml:"debug"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Source:          "data.csv",
		DataDir:         db.DefaultDataDir(),
		Theme:           "nord",
		CacheName:       cache.DefaultName,
		FetchTimeoutSec: 15,
		WatchSource:     true,
		Notify:          false,
	}
}

// DefaultPath returns the default config file location
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(dir, "ectrack", "config.toml"), nil
}

// Load reads the config file at path over the defaults.
// A missing file is not an error; an empty path means DefaultPath.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if os.Getenv(EnvDebug) == "1" {
		c.Debug = true
	}
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Source) == "" {
		return fmt.Errorf("config: source must not be empty")
	}
	if c.FetchTimeoutSec < 0 {
		return fmt.Errorf("config: fetch_timeout_sec must not be negative")
	}
	if c.DataDir == "" {
		c.DataDir = db.DefaultDataDir()
	}
	if c.CacheName == "" {
		c.CacheName = cache.DefaultName
	}
	return nil
}

// FetchTimeout returns the fetch timeout as a duration
func (c *Config) FetchTimeout() time.Duration {
	if c.FetchTimeoutSec <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.FetchTimeoutSec) * time.Second
}

// DBPath returns the state database location
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "ectrack.db")
}

// CacheDir returns the offline cache directory
func (c *Config) CacheDir() string {
	return filepath.Join(c.DataDir, "cache")
}

// LockPath returns the single-instance lock file
func (c *Config) LockPath() string {
	return filepath.Join(c.DataDir, "ectrack.lock")
}

// LogPath returns the debug log file
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "ectrack.log")
}
