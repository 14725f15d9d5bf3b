package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_FillsDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":memory:", cfg.Database)
	assert.Equal(t, "strict", cfg.Mode)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 100_000, cfg.MaxStatementLength)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestValidate_RejectsUnknownMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = "lenient"
	assert.Error(t, cfg.Validate())
}

func TestValidate_AuthRequiresSecret(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Auth.Enabled = true
	assert.Error(t, cfg.Validate())

	cfg.Auth.Secret = "s3cret"
	cfg.Auth.TokenTTL = 0
	require.NoError(t, cfg.Validate())
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}
