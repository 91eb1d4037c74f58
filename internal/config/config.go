package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataPath   string
	DataFormat string // "csv" or "sqlite"
	HTTPAddr   string
	LogLevel   string
	LogFormat  string

	CacheTTL        time.Duration
	LoadTimeout     time.Duration
	ShutdownTimeout time.Duration

	// EventThresholdMW is the default MW floor of the large-event view.
	EventThresholdMW float64

	// Water value analytics configuration.
	WaterValuesEnabled   bool
	WaterValuesConfig    string // plants YAML
	WaterValuesSeriesDir string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	cacheTTL, err := parseDuration("CACHE_TTL", "10m")
	if err != nil {
		return nil, err
	}
	loadTimeout, err := parseDuration("LOAD_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	threshold, err := parseThreshold()
	if err != nil {
		return nil, err
	}

	wvConfig := os.Getenv("WATERVALUES_CONFIG")
	wvEnabled := wvConfig != ""
	if v := os.Getenv("WATERVALUES_ENABLED"); v != "" {
		wvEnabled = v == "true"
	}

	cfg := &Config{
		DataPath:   envOrDefault("DATA_PATH", "data/umm_messages.csv"),
		DataFormat: envOrDefault("DATA_FORMAT", "csv"),
		HTTPAddr:   envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:   envOrDefault("LOG_LEVEL", "info"),
		LogFormat:  envOrDefault("LOG_FORMAT", "json"),

		CacheTTL:         cacheTTL,
		LoadTimeout:      loadTimeout,
		ShutdownTimeout:  shutdownTimeout,
		EventThresholdMW: threshold,

		WaterValuesEnabled:   wvEnabled,
		WaterValuesConfig:    wvConfig,
		WaterValuesSeriesDir: envOrDefault("WATERVALUES_SERIES_DIR", "data/series"),
	}

	if cfg.DataPath == "" {
		return nil, errors.New("DATA_PATH is required")
	}
	if cfg.DataFormat != "csv" && cfg.DataFormat != "sqlite" {
		return nil, fmt.Errorf("invalid DATA_FORMAT %q (want csv or sqlite)", cfg.DataFormat)
	}
	if cfg.WaterValuesEnabled && cfg.WaterValuesConfig == "" {
		return nil, errors.New("WATERVALUES_ENABLED is true but WATERVALUES_CONFIG is not set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseThreshold() (float64, error) {
	s := os.Getenv("EVENT_THRESHOLD_MW")
	if s == "" {
		return 50, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, errors.New("invalid EVENT_THRESHOLD_MW")
	}
	return v, nil
}
