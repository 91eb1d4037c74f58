package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floratiew/ummdashboard/internal/domain"
)

func TestLargeEvents(t *testing.T) {
	t.Run("threshold excludes small events and tracks the max", func(t *testing.T) {
		msgs := []domain.Message{
			msgAt("small", 2023, 1, []string{"SE3"}, 30),
			msgAt("large", 2023, 1, []string{"SE3"}, 80),
		}
		events, summaries := LargeEvents(msgs, 50, EventFilter{})

		require.Len(t, events, 1)
		assert.Equal(t, "large", events[0].MessageID)

		require.Len(t, summaries, 1)
		assert.Equal(t, "SE3", summaries[0].Area)
		assert.Equal(t, 1, summaries[0].EventCount)
		assert.InDelta(t, 80.0, summaries[0].MaxCapacityMW, 1e-9)
		assert.InDelta(t, 80.0, summaries[0].TotalMW, 1e-9)
	})

	t.Run("multi-area message contributes its share per area", func(t *testing.T) {
		msgs := []domain.Message{msgAt("split", 2023, 3, []string{"NO1", "NO2"}, 200)}
		events, summaries := LargeEvents(msgs, 50, EventFilter{})

		require.Len(t, events, 2)
		assert.InDelta(t, 100.0, events[0].CapacityMW, 1e-9)
		assert.InDelta(t, 100.0, events[1].CapacityMW, 1e-9)
		assert.Len(t, summaries, 2)
	})

	t.Run("non-outage types and area-less messages are skipped", func(t *testing.T) {
		msgs := []domain.Message{
			msgAt("notice", 2023, 4, []string{"NO1"}, 500),
			msgAt("nowhere", 2023, 1, nil, 500),
		}
		events, summaries := LargeEvents(msgs, 50, EventFilter{})
		assert.Empty(t, events)
		assert.Empty(t, summaries)
	})

	t.Run("status and area filters", func(t *testing.T) {
		planned := msgAt("p", 2023, 1, []string{"NO1"}, 90)
		planned.UnavailabilityType = 1
		unplanned := msgAt("u", 2023, 1, []string{"NO2"}, 120)
		unplanned.UnavailabilityType = 2

		events, _ := LargeEvents([]domain.Message{planned, unplanned}, 50, EventFilter{Status: domain.StatusUnplanned})
		require.Len(t, events, 1)
		assert.Equal(t, "u", events[0].MessageID)

		events, _ = LargeEvents([]domain.Message{planned, unplanned}, 50, EventFilter{Areas: []string{"NO1"}})
		require.Len(t, events, 1)
		assert.Equal(t, "p", events[0].MessageID)
	})

	t.Run("summaries sorted descending by max capacity", func(t *testing.T) {
		msgs := []domain.Message{
			msgAt("a", 2023, 1, []string{"NO1"}, 60),
			msgAt("b", 2023, 1, []string{"SE3"}, 300),
			msgAt("c", 2023, 1, []string{"DK1"}, 150),
		}
		_, summaries := LargeEvents(msgs, 50, EventFilter{})
		require.Len(t, summaries, 3)
		assert.Equal(t, []string{"SE3", "DK1", "NO1"},
			[]string{summaries[0].Area, summaries[1].Area, summaries[2].Area})
	})
}

func TestYearlySeries(t *testing.T) {
	msgs := []domain.Message{
		msgAt("a", 2021, 1, nil, 0),
		msgAt("b", 2023, 4, nil, 0),
		msgAt("c", 2023, 3, nil, 0),
		msgAt("d", 2022, 5, nil, 0),
		{ID: "undated", OutageTypeCode: 1},
	}

	series := YearlySeries(msgs, Filter{})
	require.Len(t, series, 3)

	assert.Equal(t, YearBucket{Year: 2021, TotalCount: 1, OutageCount: 1}, series[0])
	assert.Equal(t, YearBucket{Year: 2022, TotalCount: 1, OutageCount: 0}, series[1])
	assert.Equal(t, YearBucket{Year: 2023, TotalCount: 2, OutageCount: 1}, series[2])
}

func TestYearlySeriesRespectsFilter(t *testing.T) {
	msgs := []domain.Message{
		{ID: "a", OutageTypeCode: 1, PublicationTime: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), Participant: "Statnett SF"},
		{ID: "b", OutageTypeCode: 1, PublicationTime: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), Participant: "Fingrid Oyj"},
	}
	series := YearlySeries(msgs, Filter{Publisher: "fingrid"})
	require.Len(t, series, 1)
	assert.Equal(t, 1, series[0].TotalCount)
}
