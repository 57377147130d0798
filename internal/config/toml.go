// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML settings file.
type FileConfig struct {
	Experiment ExperimentConfig `toml:"experiment"`
	Stats      StatsConfig      `toml:"stats"`
	Logging    LoggingConfig    `toml:"logging"`
}

// ExperimentConfig maps experiment-related settings.
type ExperimentConfig struct {
	Config      *string `toml:"config"`
	LogsDir     *string `toml:"logs-dir"`
	Targets     *int    `toml:"targets"`
	LatencyMode *string `toml:"latency-mode"`
	OnExists    *string `toml:"on-exists"`
}

// StatsConfig maps results browser settings.
type StatsConfig struct {
	CurveWindow *int `toml:"curve-window"`
}

// LoggingConfig maps diagnostic log settings.
type LoggingConfig struct {
	Level      *string `toml:"level"`
	File       *string `toml:"file"`
	MaxSizeMB  *int    `toml:"max-size-mb"`
	MaxBackups *int    `toml:"max-backups"`
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
