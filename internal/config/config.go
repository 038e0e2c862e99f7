// Package config reads the harness settings shared by every test that uses
// the fixturetest package.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "FIXTURES"

// Config holds the harness configuration. Values come from FIXTURES_*
// environment variables on top of built-in defaults.
type Config struct {
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
	GraphDebug  bool   `mapstructure:"graph_debug"`
	OptionsFile string `mapstructure:"options_file"`
}

// Load reads configuration from the environment, applying built-in defaults
// for any values not set.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "human")
	v.SetDefault("graph_debug", true)
	v.SetDefault("options_file", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding fixture config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown log levels and formats.
func (c Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "human", "text", "json":
		return nil
	default:
		return fmt.Errorf("invalid log format %q: want human, text or json", c.LogFormat)
	}
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
