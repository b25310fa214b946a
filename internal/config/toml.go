// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Swimmer   SwimmerConfig   `toml:"swimmer"`
	Compare   CompareConfig   `toml:"compare"`
	Standards StandardsConfig `toml:"standards"`
}

// SwimmerConfig maps swimmer profile settings.
type SwimmerConfig struct {
	Name      *string `toml:"name"`
	BirthDate *string `toml:"birth-date"`
	Gender    *string `toml:"gender"`
	Course    *string `toml:"course"`
}

// CompareConfig maps comparison settings.
type CompareConfig struct {
	ThresholdPct *float64 `toml:"threshold"`
	StandardSet  *string  `toml:"standard-set"`
}

// StandardsConfig maps standards download settings.
type StandardsConfig struct {
	URL *string `toml:"url"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
