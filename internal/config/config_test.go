package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/umm_messages.csv", cfg.DataPath)
	assert.Equal(t, "csv", cfg.DataFormat)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 30*time.Second, cfg.LoadTimeout)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.InDelta(t, 50.0, cfg.EventThresholdMW, 0.001)
	assert.False(t, cfg.WaterValuesEnabled)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("DATA_PATH", "/srv/umm/messages.db")
	t.Setenv("DATA_FORMAT", "sqlite")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("CACHE_TTL", "1h")
	t.Setenv("LOAD_TIMEOUT", "2m")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("EVENT_THRESHOLD_MW", "400")
	t.Setenv("WATERVALUES_CONFIG", "plants.yaml")
	t.Setenv("WATERVALUES_SERIES_DIR", "/srv/series")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/umm/messages.db", cfg.DataPath)
	assert.Equal(t, "sqlite", cfg.DataFormat)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 2*time.Minute, cfg.LoadTimeout)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.InDelta(t, 400.0, cfg.EventThresholdMW, 0.001)
	assert.True(t, cfg.WaterValuesEnabled)
	assert.Equal(t, "plants.yaml", cfg.WaterValuesConfig)
	assert.Equal(t, "/srv/series", cfg.WaterValuesSeriesDir)
}

func TestLoad_InvalidDataFormat(t *testing.T) {
	t.Setenv("DATA_FORMAT", "parquet")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATA_FORMAT")
}

func TestLoad_InvalidCacheTTL(t *testing.T) {
	t.Setenv("CACHE_TTL", "soon")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CACHE_TTL")
}

func TestLoad_NegativeLoadTimeout(t *testing.T) {
	t.Setenv("LOAD_TIMEOUT", "-5s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOAD_TIMEOUT")
}

func TestLoad_InvalidThreshold(t *testing.T) {
	t.Setenv("EVENT_THRESHOLD_MW", "lots")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EVENT_THRESHOLD_MW")
}

func TestLoad_WaterValuesEnabledWithoutConfig(t *testing.T) {
	t.Setenv("WATERVALUES_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WATERVALUES_CONFIG")
}
