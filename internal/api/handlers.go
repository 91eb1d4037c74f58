package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/floratiew/ummdashboard/internal/aggregate"
	"github.com/floratiew/ummdashboard/internal/cache"
	"github.com/floratiew/ummdashboard/internal/domain"
	"github.com/floratiew/ummdashboard/internal/watervalue"
)

const (
	defaultMessageLimit = 100
	maxMessageLimit     = 1000
	defaultTopN         = 10
)

// MessageView is the API shape of one normalized message.
type MessageView struct {
	ID              string        `json:"id"`
	Version         int           `json:"version"`
	TypeCode        int           `json:"type_code"`
	Type            string        `json:"type"`
	Status          domain.Status `json:"status"`
	EventStatus     string        `json:"event_status"`
	PublicationTime time.Time     `json:"publication_time"`
	EventStart      *time.Time    `json:"event_start,omitempty"`
	EventEnd        *time.Time    `json:"event_end,omitempty"`
	Areas           []string      `json:"areas"`
	Publisher       string        `json:"publisher"`
	Resource        string        `json:"resource"`
	CapacityMW      float64       `json:"capacity_mw"`
	Remarks         string        `json:"remarks,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleHealthz reports process liveness.
// @Summary Liveness probe
// @Tags ops
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadyz reports whether a dataset snapshot is servable.
// @Summary Readiness probe
// @Tags ops
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /readyz [get]
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := s.dataset.CheckReadiness(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"reason": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleMessages lists filtered messages, newest first.
// @Summary Browse messages
// @Description Filtered UMM messages sorted by publication time descending.
// @Tags messages
// @Produce json
// @Param from query string false "Inclusive publication date (YYYY-MM-DD)"
// @Param to query string false "Inclusive publication date (YYYY-MM-DD)"
// @Param types query string false "Comma-separated message type codes"
// @Param areas query string false "Comma-separated area codes"
// @Param publisher query string false "Publisher substring"
// @Param q query string false "Free-text search"
// @Param limit query int false "Maximum rows (default 100, cap 1000)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errorResponse
// @Failure 503 {object} errorResponse
// @Router /api/messages [get]
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := parseLimit(r, defaultMessageLimit, maxMessageLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	msgs, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	matched := filter.Apply(msgs)
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].PublicationTime.After(matched[j].PublicationTime)
	})

	total := len(matched)
	if len(matched) > limit {
		matched = matched[:limit]
	}
	views := make([]MessageView, 0, len(matched))
	for _, m := range matched {
		views = append(views, messageView(m))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"messages": views,
		"count":    total,
		"limit":    limit,
	})
}

// handleStats returns facet metrics for the filtered view.
// @Summary Facet metrics
// @Tags messages
// @Produce json
// @Param from query string false "Inclusive publication date (YYYY-MM-DD)"
// @Param to query string false "Inclusive publication date (YYYY-MM-DD)"
// @Param types query string false "Comma-separated message type codes"
// @Param areas query string false "Comma-separated area codes"
// @Param publisher query string false "Publisher substring"
// @Param q query string false "Free-text search"
// @Success 200 {object} aggregate.Stats
// @Failure 400 {object} errorResponse
// @Failure 503 {object} errorResponse
// @Router /api/stats [get]
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	msgs, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, aggregate.Facets(msgs, filter))
}

// handleSummary returns the grouped outage summary plus its rankings.
// @Summary Outage summary
// @Description Grouped (area, year, type, status) rows with top areas, type counts, top publishers, and the yearly series.
// @Tags summary
// @Produce json
// @Param from query string false "Inclusive publication date (YYYY-MM-DD)"
// @Param to query string false "Inclusive publication date (YYYY-MM-DD)"
// @Param types query string false "Comma-separated message type codes"
// @Param areas query string false "Comma-separated area codes"
// @Param publisher query string false "Publisher substring"
// @Param q query string false "Free-text search"
// @Param n query int false "Ranking size (default 10)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errorResponse
// @Failure 503 {object} errorResponse
// @Router /api/summary [get]
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n, err := parseLimitParam(r, "n", defaultTopN)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	msgs, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	rows := aggregate.Summarize(msgs, filter)
	writeJSON(w, http.StatusOK, map[string]any{
		"groups":        rows,
		"topAreas":      aggregate.TopAreas(rows, n),
		"typeCounts":    aggregate.CountByType(msgs, filter),
		"topPublishers": aggregate.TopPublishers(msgs, filter, n),
		"years":         aggregate.YearlySeries(msgs, filter),
	})
}

// handleYearlySummary returns the yearly message series.
// @Summary Yearly series
// @Tags summary
// @Produce json
// @Param from query string false "Inclusive publication date (YYYY-MM-DD)"
// @Param to query string false "Inclusive publication date (YYYY-MM-DD)"
// @Param types query string false "Comma-separated message type codes"
// @Param areas query string false "Comma-separated area codes"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errorResponse
// @Failure 503 {object} errorResponse
// @Router /api/summary/yearly [get]
func (s *Server) handleYearlySummary(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	msgs, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"years": aggregate.YearlySeries(msgs, filter),
	})
}

// handleEvents returns the large outage events above the MW threshold.
// @Summary Large events
// @Description Per-area outage events whose distributed capacity share meets the threshold.
// @Tags events
// @Produce json
// @Param threshold query number false "MW floor (default from config)"
// @Param status query string false "Planned, Unplanned, or Unknown"
// @Param areas query string false "Comma-separated area codes"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errorResponse
// @Failure 503 {object} errorResponse
// @Router /api/events [get]
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	threshold := s.thresholdMW
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid threshold %q", raw))
			return
		}
		threshold = v
	}
	var status domain.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		switch domain.Status(raw) {
		case domain.StatusPlanned, domain.StatusUnplanned, domain.StatusUnknown:
			status = domain.Status(raw)
		default:
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid status %q", raw))
			return
		}
	}

	msgs, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	events, summaries := aggregate.LargeEvents(msgs, threshold, aggregate.EventFilter{
		Status: status,
		Areas:  splitAreas(r.URL.Query().Get("areas")),
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"events":        events,
		"summaryByArea": summaries,
		"thresholdMw":   threshold,
	})
}

// handleWaterValues runs the water value estimator for the configured plants.
// @Summary Water value estimates
// @Tags watervalues
// @Produce json
// @Param plant query string false "Restrict to one plant id"
// @Param method query string false "Restrict to one method: minimum or jump"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /api/watervalues [get]
func (s *Server) handleWaterValues(w http.ResponseWriter, r *http.Request) {
	if s.waterValues == nil {
		writeError(w, http.StatusNotFound, "water values are not enabled")
		return
	}

	method := r.URL.Query().Get("method")
	switch method {
	case "", watervalue.MethodMinimum, watervalue.MethodJump:
	default:
		writeError(w, http.StatusBadRequest, "method must be minimum or jump")
		return
	}
	plant := r.URL.Query().Get("plant")

	estimates, err := s.waterValues.Estimates(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "water value estimation failed")
		return
	}

	if plant != "" || method != "" {
		filtered := estimates[:0:0]
		for _, e := range estimates {
			if plant != "" && e.PlantID != plant {
				continue
			}
			if method != "" && e.Method != method {
				continue
			}
			filtered = append(filtered, e)
		}
		estimates = filtered
	}
	if estimates == nil {
		estimates = []watervalue.PlantEstimate{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"plants": estimates})
}

// snapshot fetches the dataset, mapping coordinator errors onto HTTP codes.
// A false return means the response has been written.
func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) ([]domain.Message, bool) {
	msgs, err := s.dataset.Messages(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, cache.ErrNotReady):
			w.Header().Set("Retry-After", "2")
			writeError(w, http.StatusServiceUnavailable, "dataset is still loading, retry shortly")
		case errors.Is(err, cache.ErrLoadFailed):
			writeError(w, http.StatusInternalServerError, "dataset could not be loaded")
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return nil, false
	}
	return msgs, true
}

// parseFilter reads the shared filter params. Both date bounds are whole
// days: from marks the start of its day, to runs through the end of its day.
func parseFilter(r *http.Request) (aggregate.Filter, error) {
	q := r.URL.Query()
	var f aggregate.Filter

	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return f, fmt.Errorf("invalid from date %q", raw)
		}
		f.From = t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return f, fmt.Errorf("invalid to date %q", raw)
		}
		f.To = t.AddDate(0, 0, 1)
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return f, errors.New("to date precedes from date")
	}

	if raw := q.Get("types"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			code, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return f, fmt.Errorf("invalid type code %q", part)
			}
			f.OutageTypes = append(f.OutageTypes, code)
		}
	}

	f.Areas = splitAreas(q.Get("areas"))
	f.Publisher = q.Get("publisher")
	f.Search = q.Get("q")
	return f, nil
}

func splitAreas(raw string) []string {
	if raw == "" {
		return nil
	}
	var areas []string
	for _, part := range strings.Split(raw, ",") {
		if a := strings.ToUpper(strings.TrimSpace(part)); a != "" {
			areas = append(areas, a)
		}
	}
	return areas
}

func parseLimit(r *http.Request, fallback, max int) (int, error) {
	limit, err := parseLimitParam(r, "limit", fallback)
	if err != nil {
		return 0, err
	}
	if limit > max {
		limit = max
	}
	return limit, nil
}

func parseLimitParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, nil
}

func messageView(m domain.Message) MessageView {
	v := MessageView{
		ID:              m.ID,
		Version:         m.Version,
		TypeCode:        m.OutageTypeCode,
		Type:            domain.OutageTypeLabel(m.OutageTypeCode),
		Status:          domain.ClassifyStatus(m),
		EventStatus:     domain.EventStatusLabel(m.EventStatus),
		PublicationTime: m.PublicationTime,
		Areas:           m.Areas,
		Publisher:       m.Participant,
		Resource:        m.ResourceName,
		CapacityMW:      m.CapacityMW,
		Remarks:         m.Remarks,
	}
	if !m.EventStart.IsZero() {
		t := m.EventStart
		v.EventStart = &t
	}
	if !m.EventEnd.IsZero() {
		t := m.EventEnd
		v.EventEnd = &t
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
