// Package lconfig loads and hot-reloads leta's TOML configuration file,
// grounded on keystorm's internal/config/loader.TOMLLoader (parsing via
// github.com/pelletier/go-toml/v2) and internal/config/watcher (hot reload
// via github.com/fsnotify/fsnotify). Sections mirror SPEC_FULL.md's
// Configuration section: [daemon], [workspaces], [format],
// [servers.<lang>].
package lconfig

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Daemon holds daemon-wide tuning (SPEC_FULL.md Configuration).
type Daemon struct {
	LogLevel        string        `toml:"log_level"`
	RequestTimeout  time.Duration `toml:"request_timeout"`
	IdleShutdown    time.Duration `toml:"idle_shutdown"`
	HoverCacheBytes int64         `toml:"hover_cache_bytes"`
}

// Workspaces holds workspace-wide defaults.
type Workspaces struct {
	Roots              []string `toml:"roots"`
	ExcludedLanguages  []string `toml:"excluded_languages"`
	ExcludeGlobs       []string `toml:"exclude_globs"`
}

// Format holds formatting defaults applied when a server's own settings
// don't specify them.
type Format struct {
	TabSize      int  `toml:"tab_size"`
	InsertSpaces bool `toml:"insert_spaces"`
}

// ServerOverride overrides a language's registry.Recipe launch command.
type ServerOverride struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
	Env     []string `toml:"env"`
}

// Config is the fully parsed, defaulted configuration.
type Config struct {
	Daemon     Daemon                    `toml:"daemon"`
	Workspaces Workspaces                `toml:"workspaces"`
	Format     Format                    `toml:"format"`
	Servers    map[string]ServerOverride `toml:"servers"`
}

// Default returns the built-in defaults, applied before any file is
// merged in.
func Default() *Config {
	return &Config{
		Daemon: Daemon{
			LogLevel:        "info",
			RequestTimeout:  30 * time.Second,
			IdleShutdown:    30 * time.Minute,
			HoverCacheBytes: 32 << 20,
		},
		Format: Format{TabSize: 4, InsertSpaces: true},
		Servers: map[string]ServerOverride{},
	}
}

// Load reads and parses the TOML file at path, returning defaults
// unmodified if the file does not exist (mirrors TOMLLoader.LoadFrom's
// "file doesn't exist, not an error" behavior).
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("lconfig: reading %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("lconfig: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Marshal renders cfg back to TOML text, used by the `config` CLI command
// to print the resolved, merged configuration.
func Marshal(cfg *Config) ([]byte, error) {
	return toml.Marshal(cfg)
}

// Store holds the live configuration and lets watchers swap it atomically
// on reload, giving in-flight requests a consistent snapshot while new
// ensure() calls see the updated config (§4.4-adjacent hot-reload note in
// SPEC_FULL.md).
type Store struct {
	mu  sync.RWMutex
	cfg *Config
}

// NewStore wraps an initial Config for concurrent access.
func NewStore(cfg *Config) *Store {
	return &Store{cfg: cfg}
}

// Get returns the current configuration snapshot.
func (s *Store) Get() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Set atomically replaces the configuration.
func (s *Store) Set(cfg *Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}
