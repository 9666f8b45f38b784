// Package config loads carve settings from flags, the environment and an
// optional YAML file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/praetorian-inc/carve/pkg/record"
)

// EnvPrefix is prepended to environment variable names, e.g. CARVE_DELIMITER.
const EnvPrefix = "CARVE"

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds the settings shared by every carve command.
type Config struct {
	Delimiter string       `mapstructure:"delimiter" yaml:"delimiter"`
	Jobs      int          `mapstructure:"jobs" yaml:"jobs"`
	Color     string       `mapstructure:"color" yaml:"color"`
	Logger    LoggerConfig `mapstructure:"logger" yaml:"logger"`
}

// LoggerConfig controls diagnostic logging. Log output never goes to stdout.
type LoggerConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"`
	LogFile    string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("delimiter", string(rune(record.DefaultDelimiter)))
	v.SetDefault("jobs", 1)
	v.SetDefault("color", ColorAuto)

	// -- Logger --
	v.SetDefault("logger.level", "warn")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)
	v.SetDefault("logger.compress", false)
}

// NewViper returns a viper instance with defaults and environment binding.
// If path is empty, .carve.yaml is searched for in the working directory and $HOME.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		return v, nil
	}

	v.SetConfigName(".carve")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return v, nil
}

// NewDefaultConfig returns a Config populated with default values only.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper decodes and validates the settings held by v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if _, err := record.ValidateDelimiter(c.Delimiter); err != nil {
		return err
	}
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be a positive integer")
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("color must be one of auto, always, never (got %q)", c.Color)
	}
	return c.Logger.Validate()
}

// Validate checks the logger settings.
func (l LoggerConfig) Validate() error {
	switch l.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be console or json (got %q)", l.Format)
	}
	if l.LogFile != "" {
		if dir := filepath.Dir(l.LogFile); dir != "." {
			if info, err := os.Stat(dir); err != nil || !info.IsDir() {
				return fmt.Errorf("logger.log_file directory does not exist: %s", dir)
			}
		}
	}
	return nil
}

// DelimiterByte returns the validated delimiter.
func (c *Config) DelimiterByte() byte {
	d, err := record.ValidateDelimiter(c.Delimiter)
	if err != nil {
		return record.DefaultDelimiter
	}
	return d
}
