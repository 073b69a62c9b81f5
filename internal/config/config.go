// Package config loads the operator-session settings: defaults,
// overlaid by an optional JSON file, overlaid by environment
// variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

// Config holds the resolved session settings.
type Config struct {
	// Listen is the HTTP listen address for the operator API.
	Listen string `json:"listen" env:"PITCHSYNC_LISTEN"`

	// DBPath locates the sqlite results database.
	DBPath string `json:"db_path" env:"PITCHSYNC_DB"`

	// OffsetClampRange bounds the frame offset the API reports for
	// display, as +/- sample steps. Stored offsets are never clamped.
	OffsetClampRange int `json:"offset_clamp_range" env:"PITCHSYNC_OFFSET_CLAMP"`

	// Debug enables the /debug/ handlers, including the SQL browser.
	Debug bool `json:"debug" env:"PITCHSYNC_DEBUG"`
}

// fileConfig mirrors Config with pointer fields so a partial JSON file
// only overrides what it names.
type fileConfig struct {
	Listen           *string `json:"listen,omitempty"`
	DBPath           *string `json:"db_path,omitempty"`
	OffsetClampRange *int    `json:"offset_clamp_range,omitempty"`
	Debug            *bool   `json:"debug,omitempty"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Listen:           ":8080",
		DBPath:           "pitchsync.db",
		OffsetClampRange: 250,
	}
}

// Load resolves the configuration. path may be empty to skip the file
// layer; a named file that cannot be read or parsed is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		var fc fileConfig
		if err := json.Unmarshal(data, &fc); err != nil {
			return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		fc.apply(&cfg)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing environment: %w", err)
	}

	if cfg.OffsetClampRange <= 0 {
		return cfg, fmt.Errorf("offset_clamp_range must be positive, got %d", cfg.OffsetClampRange)
	}
	return cfg, nil
}

func (fc *fileConfig) apply(cfg *Config) {
	if fc.Listen != nil {
		cfg.Listen = *fc.Listen
	}
	if fc.DBPath != nil {
		cfg.DBPath = *fc.DBPath
	}
	if fc.OffsetClampRange != nil {
		cfg.OffsetClampRange = *fc.OffsetClampRange
	}
	if fc.Debug != nil {
		cfg.Debug = *fc.Debug
	}
}
