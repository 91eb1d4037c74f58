package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// route registers an API handler under the given method-qualified pattern
// with request-ID logging and per-route metrics. The route label is the
// pattern without its method.
func (s *Server) route(mux *http.ServeMux, pattern string, next http.HandlerFunc) {
	route := pattern
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == ' ' {
			route = pattern[i+1:]
			break
		}
	}

	mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}

		start := time.Now()
		next(rec, r)
		elapsed := time.Since(start)

		s.metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
		s.metrics.HTTPRequestLatency.WithLabelValues(route).Observe(elapsed.Seconds())
		s.logger.Info("request handled",
			"request_id", requestID,
			"route", route,
			"query", r.URL.RawQuery,
			"code", rec.code,
			"duration", elapsed,
		)
	}))
}
