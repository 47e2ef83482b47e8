// Package config loads Graphscope configuration from a TOML file.
//
// Configuration covers viewer defaults (render mode, layout engine), export
// settings, and the cache backend. Command-line flags always win over file
// values; a missing file just means defaults.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds Graphscope configuration.
type Config struct {
	Viewer ViewerConfig `toml:"viewer"`
	Export ExportConfig `toml:"export"`
	Cache  CacheConfig  `toml:"cache"`
}

// ViewerConfig controls viewer defaults.
type ViewerConfig struct {
	// Engine is the layout algorithm ("dot", "neato", "fdp", ...).
	Engine string `toml:"engine"`

	// Fancy starts the viewer in force-directed mode.
	Fancy bool `toml:"fancy"`

	// FreeMove starts fancy mode with relaxed anchoring.
	FreeMove bool `toml:"free_move"`
}

// ExportConfig controls raster export.
type ExportConfig struct {
	// Format is the default export format. Only "png" is supported.
	Format string `toml:"format"`
}

// CacheConfig selects and configures the layout cache backend.
type CacheConfig struct {
	// Backend is "file", "redis", or "none".
	Backend string `toml:"backend"`

	// Dir is the file backend's directory. Empty means the default under
	// the user cache directory.
	Dir string `toml:"dir"`

	// Redis backend settings.
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Viewer: ViewerConfig{Engine: "dot"},
		Export: ExportConfig{Format: "png"},
		Cache:  CacheConfig{Backend: "file"},
	}
}

// Dir returns the Graphscope config directory path.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "graphscope")
}

// DefaultCacheDir returns the default file-cache directory.
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "graphscope")
}

func configPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file at the default path. A missing file returns
// defaults; a malformed file returns the decode error.
func Load() (*Config, error) {
	return LoadFile(configPath())
}

// LoadFile reads a config file at an explicit path, merging over defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to the default path.
func Save(cfg *Config) error {
	path := configPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
