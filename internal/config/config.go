// Package config loads chatmd settings from the config file, environment and
// flags through viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Labels are the section headings used for each role in exported documents.
type Labels struct {
	User      string `mapstructure:"user"`
	Assistant string `mapstructure:"assistant"`
}

// Config represents the chatmd configuration
type Config struct {
	DB            string        `mapstructure:"db"`
	LogLevel      string        `mapstructure:"log_level"`
	MaxDepth      int           `mapstructure:"max_depth"`
	Workers       int           `mapstructure:"workers"`
	Engine        string        `mapstructure:"engine"`
	PlatformsFile string        `mapstructure:"platforms_file"`
	UserAgent     string        `mapstructure:"user_agent"`
	Timeout       time.Duration `mapstructure:"timeout"`
	HTTPAddress   string        `mapstructure:"http_address"`
	Labels        Labels        `mapstructure:"labels"`
	Numbering     bool          `mapstructure:"numbering"`
}

const (
	EngineBuiltin = "builtin"
	EngineLibrary = "library"
)

// Dir returns the chatmd home directory.
// Can be overridden for testing
var Dir = func() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".chatmd"
	}
	return filepath.Join(home, ".chatmd")
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		DB:          filepath.Join(Dir(), "exports.db"),
		LogLevel:    "info",
		MaxDepth:    200,
		Workers:     4,
		Engine:      EngineBuiltin,
		UserAgent:   "chatmd/1.0 (+https://github.com/tesh254/chatmd)",
		Timeout:     30 * time.Second,
		HTTPAddress: ":8080",
		Labels: Labels{
			User:      "Question",
			Assistant: "Answer",
		},
		Numbering: true,
	}
}

// SetDefaults registers every default with v so that file, env and flag
// values layer on top of them.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("db", d.DB)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("max_depth", d.MaxDepth)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("engine", d.Engine)
	v.SetDefault("platforms_file", d.PlatformsFile)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("http_address", d.HTTPAddress)
	v.SetDefault("labels.user", d.Labels.User)
	v.SetDefault("labels.assistant", d.Labels.Assistant)
	v.SetDefault("numbering", d.Numbering)
}

// Load decodes v into a validated Config with expanded paths.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.ExpandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DB == "" {
		return fmt.Errorf("db cannot be empty")
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("max_depth must be positive")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	switch c.Engine {
	case EngineBuiltin, EngineLibrary:
	default:
		return fmt.Errorf("invalid engine '%s': must be one of: builtin, library", c.Engine)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log_level '%s': must be one of: debug, info, warn, error", c.LogLevel)
	}

	if strings.TrimSpace(c.Labels.User) == "" || strings.TrimSpace(c.Labels.Assistant) == "" {
		return fmt.Errorf("labels.user and labels.assistant cannot be empty")
	}

	return nil
}

// ExpandPaths expands any ~ or relative paths to absolute paths
func (c *Config) ExpandPaths() error {
	var err error

	c.DB, err = expandPath(c.DB)
	if err != nil {
		return fmt.Errorf("failed to expand db: %w", err)
	}

	if c.PlatformsFile != "" {
		c.PlatformsFile, err = expandPath(c.PlatformsFile)
		if err != nil {
			return fmt.Errorf("failed to expand platforms_file: %w", err)
		}
	}

	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	return filepath.Abs(path)
}
