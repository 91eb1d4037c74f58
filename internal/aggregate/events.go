package aggregate

import (
	"sort"
	"time"

	"github.com/floratiew/ummdashboard/internal/domain"
)

// AreaEvent is one (message, area) pair from the threshold view. CapacityMW
// is the message capacity divided by the number of areas the message lists,
// so summing events across areas never double-counts a message's total.
type AreaEvent struct {
	Area            string        `json:"area"`
	MessageID       string        `json:"message_id"`
	CapacityMW      float64       `json:"capacity_mw"`
	Status          domain.Status `json:"status"`
	PublicationTime time.Time     `json:"publication_time"`
}

// AreaEventSummary aggregates qualifying events per area.
type AreaEventSummary struct {
	Area          string  `json:"area"`
	EventCount    int     `json:"event_count"`
	TotalMW       float64 `json:"total_mw"`
	MaxCapacityMW float64 `json:"max_capacity_mw"`
}

// EventFilter narrows the large-event view.
type EventFilter struct {
	// Status keeps only events with the given classification; empty keeps all.
	Status domain.Status

	// Areas keeps only events in the given areas; empty keeps all.
	Areas []string
}

// LargeEvents derives per-area outage events at or above the MW threshold.
// Only outage-type messages (codes 1-3) with at least one resolvable area
// participate; the threshold applies to the distributed per-area share.
// Summaries are sorted descending by the largest qualifying capacity, ties
// by first encounter.
func LargeEvents(msgs []domain.Message, thresholdMW float64, f EventFilter) ([]AreaEvent, []AreaEventSummary) {
	events := make([]AreaEvent, 0, 32)
	summaries := make([]AreaEventSummary, 0, 16)
	index := make(map[string]int, 16)

	for _, m := range msgs {
		if !domain.IsOutageType(m.OutageTypeCode) || len(m.Areas) == 0 {
			continue
		}
		status := domain.ClassifyStatus(m)
		if f.Status != "" && status != f.Status {
			continue
		}
		share := m.CapacityMW / float64(len(m.Areas))
		if share < thresholdMW {
			continue
		}

		for _, area := range m.Areas {
			if len(f.Areas) > 0 && !containsString(f.Areas, area) {
				continue
			}
			events = append(events, AreaEvent{
				Area:            area,
				MessageID:       m.ID,
				CapacityMW:      share,
				Status:          status,
				PublicationTime: m.PublicationTime,
			})

			i, ok := index[area]
			if !ok {
				i = len(summaries)
				index[area] = i
				summaries = append(summaries, AreaEventSummary{Area: area})
			}
			summaries[i].EventCount++
			summaries[i].TotalMW += share
			if share > summaries[i].MaxCapacityMW {
				summaries[i].MaxCapacityMW = share
			}
		}
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].MaxCapacityMW > summaries[j].MaxCapacityMW
	})
	return events, summaries
}

// YearBucket is one entry of the yearly time series.
type YearBucket struct {
	Year        int `json:"year"`
	TotalCount  int `json:"total_count"`
	OutageCount int `json:"outage_count"`
}

// YearlySeries buckets filtered messages by publication year, ascending.
// OutageCount restricts to outage-type codes 1-3. Messages without a
// publication time have no year and are skipped.
func YearlySeries(msgs []domain.Message, f Filter) []YearBucket {
	buckets := map[int]*YearBucket{}
	for _, m := range msgs {
		if !f.Matches(m) || m.Year() == 0 {
			continue
		}
		b, ok := buckets[m.Year()]
		if !ok {
			b = &YearBucket{Year: m.Year()}
			buckets[m.Year()] = b
		}
		b.TotalCount++
		if domain.IsOutageType(m.OutageTypeCode) {
			b.OutageCount++
		}
	}

	series := make([]YearBucket, 0, len(buckets))
	for _, b := range buckets {
		series = append(series, *b)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Year < series[j].Year })
	return series
}

func containsString(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
