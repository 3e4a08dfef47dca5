// Package config loads the optional duopane configuration file.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the optional duopane configuration file.
type Config struct {
	Defaults  DefaultsConfig  `toml:"defaults"`
	Protected ProtectedConfig `toml:"protected"`
}

// DefaultsConfig holds persistent flag defaults.
type DefaultsConfig struct {
	Verify    *bool `toml:"verify"`
	Overwrite *bool `toml:"overwrite"`
	Recursive *bool `toml:"recursive"`
}

// ProtectedConfig adjusts the protected-path set beyond the platform
// defaults.
type ProtectedConfig struct {
	Add    []string `toml:"add"`
	Remove []string `toml:"remove"`
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "duopane", "config.toml")
}

// Load reads the config file from the XDG path. Returns a zero Config
// (no error) if the file does not exist. Config is always optional.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Config{}, nil
	}

	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	return cfg, nil
}
