// Package api exposes the analytics JSON API plus the operational endpoints
// (health, readiness, metrics, swagger).
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/floratiew/ummdashboard/internal/domain"
	"github.com/floratiew/ummdashboard/internal/observability"
	"github.com/floratiew/ummdashboard/internal/watervalue"
)

// Dataset is the read side of the cache coordinator.
type Dataset interface {
	Messages(ctx context.Context) ([]domain.Message, error)
	CheckReadiness(ctx context.Context) error
}

// WaterValues runs the water value estimator over the configured plants.
type WaterValues interface {
	Estimates(ctx context.Context) ([]watervalue.PlantEstimate, error)
}

// Server exposes the UMM analytics API over HTTP.
type Server struct {
	httpServer  *http.Server
	dataset     Dataset
	waterValues WaterValues // nil when the feature is disabled
	thresholdMW float64
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// NewServer creates the HTTP server and its routes. waterValues may be nil,
// in which case /api/watervalues reports the feature as disabled.
func NewServer(addr string, dataset Dataset, waterValues WaterValues, thresholdMW float64, logger *slog.Logger, metrics *observability.Metrics) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		dataset:     dataset,
		waterValues: waterValues,
		thresholdMW: thresholdMW,
		logger:      logger,
		metrics:     metrics,
	}

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	s.route(mux, "GET /api/messages", s.handleMessages)
	s.route(mux, "GET /api/stats", s.handleStats)
	s.route(mux, "GET /api/summary", s.handleSummary)
	s.route(mux, "GET /api/summary/yearly", s.handleYearlySummary)
	s.route(mux, "GET /api/events", s.handleEvents)
	s.route(mux, "GET /api/watervalues", s.handleWaterValues)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
