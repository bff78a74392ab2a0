// Package config loads the optional palmdb configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable that overrides the config location.
const EnvPath = "PALMDB_CONFIG"

// Config mirrors ~/.config/palmdb/config.yaml. Pointer fields distinguish
// "not set" from a zero value so flags only lose to explicit settings.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Codec defaults
	UnixEpoch *bool  `yaml:"unix_epoch"`
	Strict    *bool  `yaml:"strict"`
	Location  string `yaml:"location"`

	// Server
	ServerAddress  string `yaml:"server_address"`
	MaxUploadBytes *int64 `yaml:"max_upload_bytes"`
}

// Path returns the config file location: $PALMDB_CONFIG if set, otherwise
// palmdb/config.yaml under the user config directory. It returns "" when
// neither can be determined.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "palmdb", "config.yaml")
}

// Load reads the config file at Path. A missing file yields a zero Config.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile reads and validates the config file at path. An empty path or a
// missing file yields a zero Config; a malformed file is an error.
func LoadFile(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values no command could use.
func (c Config) Validate() error {
	if c.MaxUploadBytes != nil && *c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive, got %d", *c.MaxUploadBytes)
	}
	if c.Location != "" {
		if _, err := c.TimeLocation(); err != nil {
			return err
		}
	}
	return nil
}
