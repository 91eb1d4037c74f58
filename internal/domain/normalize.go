package domain

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// biddingZoneRe matches Nordic bidding-zone codes: two letters and one
// digit, e.g. NO2, SE4, DK1.
var biddingZoneRe = regexp.MustCompile(`^[A-Z]{2}[0-9]$`)

// Normalize converts a raw stored record into the canonical Message form.
// It is a pure function of its input: the same record always yields an
// identical Message, and per-field defects (unparseable numbers, malformed
// embedded JSON) degrade to zero values instead of errors.
func Normalize(raw RawMessageRecord) Message {
	production := decodeUnits(raw.ProductionUnitsJSON)
	generation := decodeUnits(raw.GenerationUnitsJSON)
	transmission := decodeTransmissionUnits(raw.TransmissionUnitsJSON)

	return Message{
		ID:                 strings.TrimSpace(raw.MessageID),
		Version:            parseIntOrZero(raw.Version),
		OutageTypeCode:     parseIntOrZero(raw.MessageType),
		EventStatus:        parseIntOrZero(raw.EventStatus),
		PublicationTime:    parseTimestamp(raw.PublicationDate),
		EventStart:         parseTimestamp(raw.EventStart),
		EventEnd:           parseTimestamp(raw.EventStop),
		Areas:              extractAreas(raw.AreasJSON, production, generation, transmission),
		Participant:        strings.TrimSpace(raw.PublisherName),
		ResourceName:       resourceName(production, generation),
		CapacityMW:         unavailableCapacity(production, generation),
		UnavailabilityType: parseIntOrZero(raw.UnavailabilityType),
		Remarks:            raw.Remarks,
	}
}

// extractAreas collects area-code candidates in a fixed order: the explicit
// areas list, then production-unit areas, then generation-unit areas, then
// transmission in/out areas. Candidates are uppercased, trimmed,
// de-duplicated, and kept in first-seen order.
func extractAreas(areasJSON string, production, generation []ProductionUnit, transmission []TransmissionUnit) []string {
	candidates := make([]string, 0, 4)
	for _, a := range decodeAreaRefs(areasJSON) {
		candidates = append(candidates, a.Name)
	}
	for _, u := range production {
		candidates = append(candidates, u.AreaName)
	}
	for _, u := range generation {
		candidates = append(candidates, u.AreaName)
	}
	for _, u := range transmission {
		candidates = append(candidates, u.InAreaName, u.OutAreaName)
	}

	areas := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		areas = append(areas, c)
	}
	return areas
}

// PrimaryArea picks the single best area for callers that need exactly one:
// the first candidate matching the bidding-zone pattern, else the first area
// of any shape, else the UnknownArea sentinel.
func PrimaryArea(areas []string) string {
	for _, a := range areas {
		if biddingZoneRe.MatchString(a) {
			return a
		}
	}
	if len(areas) > 0 {
		return areas[0]
	}
	return UnknownArea
}

// unavailableCapacity sums unavailableCapacity across every time period of
// every production and generation sub-unit, rounded to one decimal place.
// Missing figures count as zero.
func unavailableCapacity(production, generation []ProductionUnit) float64 {
	var total float64
	for _, units := range [][]ProductionUnit{production, generation} {
		for _, u := range units {
			for _, p := range u.TimePeriods {
				if p.UnavailableCapacity != nil && *p.UnavailableCapacity > 0 {
					total += *p.UnavailableCapacity
				}
			}
		}
	}
	return math.Round(total*10) / 10
}

// resourceName returns the first non-empty name-like field across production
// then generation sub-units, falling back to the fixed placeholder.
func resourceName(production, generation []ProductionUnit) string {
	for _, units := range [][]ProductionUnit{production, generation} {
		for _, u := range units {
			for _, name := range []string{u.Name, u.ProductionUnitName, u.GenerationUnitName} {
				if n := strings.TrimSpace(name); n != "" {
					return n
				}
			}
		}
	}
	return UnspecifiedResource
}

// decodeUnits parses a JSON-encoded array of production or generation
// sub-units. Malformed input yields an empty slice, never an error.
func decodeUnits(raw string) []ProductionUnit {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var units []ProductionUnit
	if err := json.Unmarshal([]byte(raw), &units); err != nil {
		return nil
	}
	return units
}

func decodeTransmissionUnits(raw string) []TransmissionUnit {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var units []TransmissionUnit
	if err := json.Unmarshal([]byte(raw), &units); err != nil {
		return nil
	}
	return units
}

func decodeAreaRefs(raw string) []areaRef {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var areas []areaRef
	if err := json.Unmarshal([]byte(raw), &areas); err != nil {
		return nil
	}
	return areas
}

// parseIntOrZero parses a string as an integer, returning 0 on failure.
// The scraper occasionally emits float-shaped codes ("1.0"), which are
// accepted and truncated.
func parseIntOrZero(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

// timestampLayouts are tried in order when parsing feed timestamps. The API
// emits RFC 3339; older CSV exports drop the zone designator.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimestamp parses a feed timestamp, returning the zero time on failure.
func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
