package aggregate

import (
	"sort"

	"github.com/floratiew/ummdashboard/internal/domain"
)

// Key is the canonical grouping tuple. Structural equality on the struct
// avoids the delimiter-collision bugs of string-concatenated keys.
type Key struct {
	Area       string        `json:"area"`
	Year       int           `json:"year"`
	OutageType int           `json:"outage_type_code"`
	Status     domain.Status `json:"status"`
}

// Row is one grouped summary entry.
type Row struct {
	Key
	OutageTypeLabel string  `json:"outage_type"`
	Count           int     `json:"count"`
	CapacityMW      float64 `json:"capacity_mw"`
}

// AreaTotal is a per-area rollup across all other grouping dimensions.
type AreaTotal struct {
	Area       string  `json:"area"`
	Count      int     `json:"count"`
	CapacityMW float64 `json:"capacity_mw"`
}

// Summarize groups the filtered messages by (area, year, outage type,
// planned status). A message listing N areas contributes a full count to each
// area but only 1/N of its capacity, so capacity sums across areas never
// exceed the message total. Messages with no resolvable area group under the
// UNKNOWN sentinel. Row order is first-encounter order, which follows the
// stable input order of the dataset.
func Summarize(msgs []domain.Message, f Filter) []Row {
	rows := make([]Row, 0, 64)
	index := make(map[Key]int, 64)

	for _, m := range msgs {
		if !f.Matches(m) {
			continue
		}
		status := domain.ClassifyStatus(m)
		areas := m.Areas
		if len(areas) == 0 {
			areas = []string{domain.UnknownArea}
		}
		share := m.CapacityMW / float64(len(areas))

		for _, area := range areas {
			key := Key{Area: area, Year: m.Year(), OutageType: m.OutageTypeCode, Status: status}
			i, ok := index[key]
			if !ok {
				i = len(rows)
				index[key] = i
				rows = append(rows, Row{Key: key, OutageTypeLabel: domain.OutageTypeLabel(key.OutageType)})
			}
			rows[i].Count++
			rows[i].CapacityMW += share
		}
	}
	return rows
}

// TopAreas ranks areas by total grouped count, descending, truncated to n.
// Ties keep the first-encountered area first; with rows in first-encounter
// order the ranking is deterministic.
func TopAreas(rows []Row, n int) []AreaTotal {
	totals := make([]AreaTotal, 0, 16)
	index := make(map[string]int, 16)

	for _, r := range rows {
		i, ok := index[r.Area]
		if !ok {
			i = len(totals)
			index[r.Area] = i
			totals = append(totals, AreaTotal{Area: r.Area})
		}
		totals[i].Count += r.Count
		totals[i].CapacityMW += r.CapacityMW
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Count > totals[j].Count
	})
	if n >= 0 && n < len(totals) {
		totals = totals[:n]
	}
	return totals
}

// TypeCount is the number of messages per message type.
type TypeCount struct {
	Code  int    `json:"code"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// CountByType tallies filtered messages per message-type code, ordered by
// ascending code with unknown codes last under "Other".
func CountByType(msgs []domain.Message, f Filter) []TypeCount {
	counts := map[int]int{}
	other := 0
	for _, m := range msgs {
		if !f.Matches(m) {
			continue
		}
		if domain.OutageTypeLabel(m.OutageTypeCode) == "Other" {
			other++
			continue
		}
		counts[m.OutageTypeCode]++
	}

	out := make([]TypeCount, 0, len(counts)+1)
	for code := domain.TypeProductionUnavailability; code <= domain.TypeOtherMarketInformation; code++ {
		if c, ok := counts[code]; ok {
			out = append(out, TypeCount{Code: code, Label: domain.OutageTypeLabel(code), Count: c})
		}
	}
	if other > 0 {
		out = append(out, TypeCount{Label: "Other", Count: other})
	}
	return out
}

// PublisherCount is the number of messages per publisher.
type PublisherCount struct {
	Publisher string `json:"publisher"`
	Count     int    `json:"count"`
}

// TopPublishers ranks publishers by filtered message count, descending,
// truncated to n. Ties keep first-encounter order.
func TopPublishers(msgs []domain.Message, f Filter, n int) []PublisherCount {
	counts := make([]PublisherCount, 0, 32)
	index := make(map[string]int, 32)

	for _, m := range msgs {
		if !f.Matches(m) {
			continue
		}
		name := m.Participant
		if name == "" {
			name = "Unknown"
		}
		i, ok := index[name]
		if !ok {
			i = len(counts)
			index[name] = i
			counts = append(counts, PublisherCount{Publisher: name})
		}
		counts[i].Count++
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if n >= 0 && n < len(counts) {
		counts = counts[:n]
	}
	return counts
}

// Stats are the facet metrics for a filtered view of the dataset.
type Stats struct {
	Messages   int `json:"messages"`
	Total      int `json:"total"`
	Publishers int `json:"publishers"`
	Areas      int `json:"areas"`
}

// Facets computes filtered counts plus distinct publisher and area tallies.
func Facets(msgs []domain.Message, f Filter) Stats {
	publishers := map[string]struct{}{}
	areas := map[string]struct{}{}
	matched := 0
	for _, m := range msgs {
		if !f.Matches(m) {
			continue
		}
		matched++
		if m.Participant != "" {
			publishers[m.Participant] = struct{}{}
		}
		for _, a := range m.Areas {
			areas[a] = struct{}{}
		}
	}
	return Stats{
		Messages:   matched,
		Total:      len(msgs),
		Publishers: len(publishers),
		Areas:      len(areas),
	}
}
