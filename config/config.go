// Package config loads .protosync.yaml from the workspace root.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the workspace-local configuration file.
const FileName = ".protosync.yaml"

// Config matches .protosync.yaml.
type Config struct {
	// HeaderMode selects header synchronization (write prototypes into the
	// paired .h) over in-source mode (rewrite the .c in place).
	HeaderMode bool         `yaml:"header_mode"`
	Server     ServerConfig `yaml:"server"`
	Cache      CacheConfig  `yaml:"cache"`
	Watch      WatchConfig  `yaml:"watch"`
	Logging    LogConfig    `yaml:"logging"`
}

// ServerConfig describes the language server to query for symbols. An empty
// command means "use the built-in tree-sitter parse".
type ServerConfig struct {
	Command    string   `yaml:"command"`
	Args       []string `yaml:"args"`
	LanguageID string   `yaml:"language_id"`
}

// CacheConfig controls the on-disk symbol cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms"`
}

// LogConfig describes log output.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		HeaderMode: true,
		Server: ServerConfig{
			LanguageID: "c",
		},
		Cache: CacheConfig{
			Enabled: true,
			Path:    filepath.Join(".protosync", "symbols.db"),
		},
		Watch: WatchConfig{
			DebounceMS: 500,
		},
		Logging: LogConfig{
			Level: "info",
		},
	}
}

// Load reads workspace/.protosync.yaml, falling back to defaults when the
// file does not exist. Values absent from the file keep their defaults.
func Load(workspace string) (*Config, error) {
	if workspace == "" {
		workspace = "."
	}
	cfg := Default()
	path := filepath.Join(workspace, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration back to workspace/.protosync.yaml.
func Save(workspace string, cfg *Config) error {
	if workspace == "" {
		workspace = "."
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(workspace, FileName), data, 0o644)
}
