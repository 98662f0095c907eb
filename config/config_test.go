package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 6380, cfg.Port)
	assert.Equal(t, 512, cfg.SetMaxIntsetEntries)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1, cfg.Databases)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SETKV_PORT", "7000")
	t.Setenv("SETKV_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsBadThreshold(t *testing.T) {
	t.Setenv("SETKV_SET_MAX_INTSET_ENTRIES", "0")
	_, err := Load()
	assert.Error(t, err)
}
