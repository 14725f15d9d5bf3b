// Package config provides configuration structures for the sqlward CLI.
package config

import (
	"fmt"
	"time"
)

// Config represents the CLI configuration.
type Config struct {
	// Core settings
	Database           string `yaml:"database" json:"database"`
	Mode               string `yaml:"mode" json:"mode"`
	LogLevel           string `yaml:"log_level" json:"log_level"`
	MaxStatementLength int    `yaml:"max_statement_length" json:"max_statement_length"`

	// Authentication configuration
	Auth AuthConfig `yaml:"auth" json:"auth"`

	// Metrics configuration
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// AuthConfig represents token verification configuration.
type AuthConfig struct {
	Enabled  bool          `yaml:"enabled" json:"enabled"`
	Secret   string        `yaml:"secret" json:"secret"`
	Issuer   string        `yaml:"issuer" json:"issuer"`
	TokenTTL time.Duration `yaml:"token_ttl" json:"token_ttl"`
}

// MetricsConfig represents metrics configuration.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Address string `yaml:"address" json:"address"`
	Path    string `yaml:"path" json:"path"`
}

// Validate validates the configuration and fills defaults.
func (c *Config) Validate() error {
	if c.Database == "" {
		c.Database = ":memory:"
	}

	if c.Mode == "" {
		c.Mode = "strict"
	}
	switch c.Mode {
	case "strict", "moderate", "permissive":
	default:
		return fmt.Errorf("unsupported safety mode: %s", c.Mode)
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	if c.MaxStatementLength <= 0 {
		c.MaxStatementLength = 100_000
	}

	if c.Auth.Enabled {
		if c.Auth.Secret == "" {
			return fmt.Errorf("auth requires a signing secret")
		}
		if c.Auth.TokenTTL <= 0 {
			c.Auth.TokenTTL = 1 * time.Hour
		}
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}

	return nil
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		Database:           ":memory:",
		Mode:               "strict",
		LogLevel:           "info",
		MaxStatementLength: 100_000,
		Auth: AuthConfig{
			Enabled:  false,
			TokenTTL: 1 * time.Hour,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Address: ":9090",
			Path:    "/metrics",
		},
	}
}
