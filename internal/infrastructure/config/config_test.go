package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("CARRIERS", "")
	t.Setenv("SORT_BY_FLIGHT", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.ProcessInterval)
	assert.Nil(t, cfg.Carriers)
	assert.False(t, cfg.SortByFlight)
	assert.True(t, cfg.ValidateConnections)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CARRIERS", "TS, AC,,")
	t.Setenv("SORT_BY_FLIGHT", "true")
	t.Setenv("VALIDATE_CONNECTIONS", "0")
	t.Setenv("PROCESS_INTERVAL", "5")
	t.Setenv("READ_TIMEOUT", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"TS", "AC"}, cfg.Carriers)
	assert.True(t, cfg.SortByFlight)
	assert.False(t, cfg.ValidateConnections)
	assert.Equal(t, 5*time.Second, cfg.ProcessInterval)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
}
