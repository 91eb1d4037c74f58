// Command server runs the UMM analytics API: it loads the scraped message
// dataset through the cache coordinator and serves the aggregation endpoints.
//
// @title UMM Dashboard API
// @version 1.0
// @description Analytics over Nordic power-market urgent market messages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	_ "github.com/floratiew/ummdashboard/docs"
	"github.com/floratiew/ummdashboard/internal/api"
	"github.com/floratiew/ummdashboard/internal/cache"
	"github.com/floratiew/ummdashboard/internal/config"
	"github.com/floratiew/ummdashboard/internal/observability"
	"github.com/floratiew/ummdashboard/internal/store"
	"github.com/floratiew/ummdashboard/internal/watervalue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	var loader cache.Loader
	switch cfg.DataFormat {
	case "sqlite":
		loader = store.NewSQLiteSource(cfg.DataPath, logger)
	default:
		loader = store.NewCSVSource(cfg.DataPath, logger)
	}
	logger.Info("dataset source configured", "format", cfg.DataFormat, "path", cfg.DataPath)

	coordinator := cache.New(loader, cfg.CacheTTL, cfg.LoadTimeout, clockwork.NewRealClock(), logger, metrics)

	// Water values are feature-flagged via WATERVALUES_CONFIG / WATERVALUES_ENABLED.
	var waterValues api.WaterValues
	if cfg.WaterValuesEnabled {
		plants, err := watervalue.LoadPlants(cfg.WaterValuesConfig)
		if err != nil {
			logger.Error("failed to load water value plants", "error", err)
			os.Exit(1)
		}
		waterValues = watervalue.NewService(plants, cfg.WaterValuesSeriesDir, logger)
		logger.Info("water values enabled", "plants", len(plants), "series_dir", cfg.WaterValuesSeriesDir)
	} else {
		logger.Info("water values disabled")
	}

	srv := api.NewServer(cfg.HTTPAddr, coordinator, waterValues, cfg.EventThresholdMW, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Warm the dataset so the first request does not pay for the full parse.
	go func() {
		if _, err := coordinator.Messages(ctx); err != nil {
			logger.Warn("dataset warmup failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
