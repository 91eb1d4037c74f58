package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floratiew/ummdashboard/internal/cache"
	"github.com/floratiew/ummdashboard/internal/domain"
	"github.com/floratiew/ummdashboard/internal/observability"
	"github.com/floratiew/ummdashboard/internal/watervalue"
)

// --- mocks ---

type stubDataset struct {
	msgs []domain.Message
	err  error
}

func (s *stubDataset) Messages(context.Context) ([]domain.Message, error) {
	return s.msgs, s.err
}

func (s *stubDataset) CheckReadiness(context.Context) error {
	if s.err != nil {
		return s.err
	}
	return nil
}

type stubWaterValues struct {
	estimates []watervalue.PlantEstimate
	err       error
}

func (s *stubWaterValues) Estimates(context.Context) ([]watervalue.PlantEstimate, error) {
	return s.estimates, s.err
}

func testMessages() []domain.Message {
	at := func(s string) time.Time {
		t, _ := time.Parse(time.RFC3339, s)
		return t
	}
	return []domain.Message{
		{
			ID:              "umm-1",
			OutageTypeCode:  domain.TypeProductionUnavailability,
			EventStatus:     1,
			PublicationTime: at("2023-06-12T08:30:00Z"),
			Areas:           []string{"NO2"},
			Participant:        "Statkraft Energi AS",
			ResourceName:       "Tonstad",
			CapacityMW:         120,
			UnavailabilityType: 1,
			Remarks:            "Annual revision",
		},
		{
			ID:              "umm-2",
			OutageTypeCode:  domain.TypeTransmissionOutage,
			EventStatus:     1,
			PublicationTime: at("2023-07-01T00:00:00Z"),
			Areas:           []string{"NO1", "SE3"},
			Participant:     "Statnett SF",
			CapacityMW:      300,
			Remarks:         "Unexpected fault on link",
		},
		{
			ID:              "umm-3",
			OutageTypeCode:  domain.TypeMarketNotice,
			EventStatus:     3,
			PublicationTime: at("2022-01-15T12:00:00Z"),
			Areas:           []string{},
			Participant:     "Svenska kraftnät",
		},
	}
}

func newTestServer(t *testing.T, dataset Dataset, wv WaterValues) *Server {
	t.Helper()
	return NewServer(":0", dataset, wv, 50, slog.Default(), observability.NewMetricsForTesting())
}

func doRequest(t *testing.T, s *Server, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, &stubDataset{}, nil)
	rec, body := doRequest(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestReadyz(t *testing.T) {
	s := newTestServer(t, &stubDataset{msgs: testMessages()}, nil)
	rec, body := doRequest(t, s, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", body["status"])
}

func TestReadyz_Unavailable(t *testing.T) {
	s := newTestServer(t, &stubDataset{err: errors.New("no snapshot")}, nil)
	rec, body := doRequest(t, s, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unavailable", body["status"])
}

func TestMessages_SortedNewestFirst(t *testing.T) {
	s := newTestServer(t, &stubDataset{msgs: testMessages()}, nil)
	rec, body := doRequest(t, s, "/api/messages")
	require.Equal(t, http.StatusOK, rec.Code)

	msgs := body["messages"].([]any)
	require.Len(t, msgs, 3)
	assert.Equal(t, "umm-2", msgs[0].(map[string]any)["id"])
	assert.Equal(t, "umm-1", msgs[1].(map[string]any)["id"])
	assert.Equal(t, "umm-3", msgs[2].(map[string]any)["id"])

	first := msgs[0].(map[string]any)
	assert.Equal(t, "Transmission outage", first["type"])
	assert.Equal(t, "Unplanned", first["status"])
	assert.Equal(t, "Active", first["event_status"])
}

func TestMessages_FilterAndLimit(t *testing.T) {
	s := newTestServer(t, &stubDataset{msgs: testMessages()}, nil)

	rec, body := doRequest(t, s, "/api/messages?areas=no2")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["messages"].([]any), 1)

	rec, body = doRequest(t, s, "/api/messages?limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["messages"].([]any), 1)
	// count reports all matches, not the truncated page
	assert.EqualValues(t, 3, body["count"])
}

func TestMessages_DateRangeIsInclusive(t *testing.T) {
	s := newTestServer(t, &stubDataset{msgs: testMessages()}, nil)
	rec, body := doRequest(t, s, "/api/messages?from=2023-06-12&to=2023-06-12")
	require.Equal(t, http.StatusOK, rec.Code)

	msgs := body["messages"].([]any)
	require.Len(t, msgs, 1)
	assert.Equal(t, "umm-1", msgs[0].(map[string]any)["id"])
}

func TestMessages_BadParams(t *testing.T) {
	s := newTestServer(t, &stubDataset{msgs: testMessages()}, nil)
	for _, path := range []string{
		"/api/messages?from=12.06.2023",
		"/api/messages?to=never",
		"/api/messages?types=prod",
		"/api/messages?limit=-1",
		"/api/messages?from=2023-06-12&to=2023-01-01",
	} {
		rec, body := doRequest(t, s, path)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.NotEmpty(t, body["error"], path)
	}
}

func TestStats(t *testing.T) {
	s := newTestServer(t, &stubDataset{msgs: testMessages()}, nil)
	rec, body := doRequest(t, s, "/api/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.EqualValues(t, 3, body["messages"])
	assert.EqualValues(t, 3, body["total"])
	assert.EqualValues(t, 3, body["publishers"])
	assert.EqualValues(t, 3, body["areas"])
}

func TestSummary(t *testing.T) {
	s := newTestServer(t, &stubDataset{msgs: testMessages()}, nil)
	rec, body := doRequest(t, s, "/api/summary?n=2")
	require.Equal(t, http.StatusOK, rec.Code)

	require.Contains(t, body, "groups")
	require.Contains(t, body, "topAreas")
	require.Contains(t, body, "typeCounts")
	require.Contains(t, body, "topPublishers")
	require.Contains(t, body, "years")

	// umm-2 lists two areas, so four grouping keys exist in total.
	assert.Len(t, body["groups"].([]any), 4)
	assert.Len(t, body["topAreas"].([]any), 2)
}

func TestEvents(t *testing.T) {
	s := newTestServer(t, &stubDataset{msgs: testMessages()}, nil)

	// Default 50 MW threshold: umm-1 (120) and umm-2 (150 per area) qualify.
	rec, body := doRequest(t, s, "/api/events")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["events"].([]any), 3)

	rec, body = doRequest(t, s, "/api/events?threshold=140")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["events"].([]any), 2)
	assert.EqualValues(t, 140, body["thresholdMw"])

	rec, body = doRequest(t, s, "/api/events?status=Planned")
	require.Equal(t, http.StatusOK, rec.Code)
	for _, e := range body["events"].([]any) {
		assert.Equal(t, "Planned", e.(map[string]any)["status"])
	}
}

func TestEvents_BadParams(t *testing.T) {
	s := newTestServer(t, &stubDataset{msgs: testMessages()}, nil)
	for _, path := range []string{
		"/api/events?threshold=tall",
		"/api/events?status=Perhaps",
	} {
		rec, _ := doRequest(t, s, path)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestYearlySummary(t *testing.T) {
	s := newTestServer(t, &stubDataset{msgs: testMessages()}, nil)
	rec, body := doRequest(t, s, "/api/summary/yearly")
	require.Equal(t, http.StatusOK, rec.Code)

	years := body["years"].([]any)
	require.Len(t, years, 2)
	assert.EqualValues(t, 2022, years[0].(map[string]any)["year"])
	assert.EqualValues(t, 2023, years[1].(map[string]any)["year"])
}

func TestWaterValues_Disabled(t *testing.T) {
	s := newTestServer(t, &stubDataset{msgs: testMessages()}, nil)
	rec, _ := doRequest(t, s, "/api/watervalues")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWaterValues(t *testing.T) {
	value := 42.5
	wv := &stubWaterValues{estimates: []watervalue.PlantEstimate{{
		PlantID:     "kvilldal",
		Area:        "NO2",
		Method:      watervalue.MethodMinimum,
		WaterValues: []watervalue.LevelValue{{Level: 1, Value: &value}},
	}}}

	s := newTestServer(t, &stubDataset{msgs: testMessages()}, wv)
	rec, body := doRequest(t, s, "/api/watervalues")
	require.Equal(t, http.StatusOK, rec.Code)

	plants := body["plants"].([]any)
	require.Len(t, plants, 1)
	assert.Equal(t, "kvilldal", plants[0].(map[string]any)["plantId"])
}

func TestWaterValues_Filters(t *testing.T) {
	wv := &stubWaterValues{estimates: []watervalue.PlantEstimate{
		{PlantID: "kvilldal", Method: watervalue.MethodMinimum},
		{PlantID: "kvilldal", Method: watervalue.MethodJump},
		{PlantID: "tonstad", Method: watervalue.MethodMinimum},
	}}
	s := newTestServer(t, &stubDataset{msgs: testMessages()}, wv)

	rec, body := doRequest(t, s, "/api/watervalues?plant=kvilldal")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["plants"].([]any), 2)

	rec, body = doRequest(t, s, "/api/watervalues?method=jump")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["plants"].([]any), 1)
	assert.Equal(t, "kvilldal", body["plants"].([]any)[0].(map[string]any)["plantId"])

	rec, body = doRequest(t, s, "/api/watervalues?plant=nosuch")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["plants"])

	rec, _ = doRequest(t, s, "/api/watervalues?method=guesswork")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWaterValues_Error(t *testing.T) {
	s := newTestServer(t, &stubDataset{msgs: testMessages()}, &stubWaterValues{err: errors.New("boom")})
	rec, _ := doRequest(t, s, "/api/watervalues")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSnapshotErrorMapping(t *testing.T) {
	notReady := &stubDataset{err: fmt.Errorf("%w: still loading", cache.ErrNotReady)}
	s := newTestServer(t, notReady, nil)
	rec, _ := doRequest(t, s, "/api/stats")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	failed := &stubDataset{err: fmt.Errorf("%w: open dataset: no such file", cache.ErrLoadFailed)}
	s = newTestServer(t, failed, nil)
	rec, _ = doRequest(t, s, "/api/summary")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t, &stubDataset{msgs: testMessages()}, nil)
	rec, _ := doRequest(t, s, "/api/stats")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
