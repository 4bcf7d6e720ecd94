// Package config loads vsfs settings from an optional YAML file overlaid with
// VSFS_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

const (
	envVarPrefix = "VSFS"
	appName      = "vsfs"

	DefaultImage = "vsfs.img"
)

type Config struct {
	Image string `yaml:"image"` // VSFS_IMAGE
	Debug uint64 `yaml:"debug"` // VSFS_DEBUG
}

// Load reads the file named by VSFS_CONFIG_FILE, or
// $HOME/.config/vsfs.yaml when that is unset.
func Load() (*Config, error) {
	configFile := os.Getenv(envVarPrefix + "_CONFIG_FILE")
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			configFile = filepath.Join(home, ".config", appName+".yaml")
		}
	}
	return LoadFile(configFile)
}

// LoadFile reads path if it exists, then applies the environment. A missing
// file is not an error.
func LoadFile(path string) (*Config, error) {
	var c Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		} else if err := yaml.UnmarshalStrict(data, &c); err != nil {
			return nil, fmt.Errorf("unmarshaling config file: %w", err)
		}
	}

	if err := envconfig.Process(envVarPrefix, &c); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}
	if c.Image == "" {
		c.Image = DefaultImage
	}
	return &c, nil
}
