// Package config provides configuration loading for tonearm.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the tonearm configuration file structure.
type Config struct {
	Server   ServerConfig   `json:"server"`
	Playback PlaybackConfig `json:"playback"`
}

// ServerConfig holds Subsonic server connection settings.
type ServerConfig struct {
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// PlaybackConfig holds playback preferences.
type PlaybackConfig struct {
	Volume        int  `json:"volume"`
	Shuffle       bool `json:"shuffle"`
	Scrobble      bool `json:"scrobble"`
	Notifications bool `json:"notifications"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Playback: PlaybackConfig{
			Volume:   70,
			Scrobble: true,
		},
	}
}

// ConfigDir returns the tonearm config directory (~/.tonearm).
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".tonearm")
}

// ConfigPath returns the path to the config file (~/.tonearm/config.json).
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// Load loads the config from ~/.tonearm/config.json.
// Returns default config if file doesn't exist.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom loads the config from an explicit path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if config.Playback.Volume < 0 {
		config.Playback.Volume = 0
	}
	if config.Playback.Volume > 100 {
		config.Playback.Volume = 100
	}

	return config, nil
}

// Save saves the config to ~/.tonearm/config.json.
func Save(config *Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	// The file holds server credentials; keep it user-readable only.
	return os.WriteFile(ConfigPath(), data, 0600)
}

// Validate reports whether the config is complete enough to connect.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url is not set (edit %s)", ConfigPath())
	}
	if c.Server.Username == "" {
		return fmt.Errorf("server.username is not set (edit %s)", ConfigPath())
	}
	return nil
}
