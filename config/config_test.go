package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulse/earnings-engine/config"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "earnings.db", cfg.DBPath)
	assert.Equal(t, 15000, cfg.MonthlyGoalPoints)

	ttl, err := cfg.CacheTTL()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, ttl)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"addr: \":9000\"\nmonthly_goal_points: 20000\ninsight_cache_ttl: 1m\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 20000, cfg.MonthlyGoalPoints)
	// Keys the file omits keep their defaults
	assert.Equal(t, "earnings.db", cfg.DBPath)

	ttl, err := cfg.CacheTTL()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ttl)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":9000\"\n"), 0o644))

	t.Setenv("PULSE_ADDR", ":7777")
	t.Setenv("PULSE_MONTHLY_GOAL", "500")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7777", cfg.Addr)
	assert.Equal(t, 500, cfg.MonthlyGoalPoints)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("PULSE_MONTHLY_GOAL", "lots")
	_, err := config.Load("")
	assert.Error(t, err)

	t.Setenv("PULSE_MONTHLY_GOAL", "")
	t.Setenv("PULSE_INSIGHT_CACHE_TTL", "soon")
	_, err = config.Load("")
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: [:::\n"), 0o644))

	_, err := config.Load(path)
	assert.Error(t, err)
}
