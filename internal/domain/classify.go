package domain

import "strings"

// Status is the planned/unplanned classification of an outage's cause.
type Status string

const (
	StatusPlanned   Status = "Planned"
	StatusUnplanned Status = "Unplanned"
	StatusUnknown   Status = "Unknown"
)

// plannedKeywords and unplannedKeywords drive the remarks fallback in
// ClassifyStatus. Planned keywords are tested first, so a remark like
// "emergency maintenance" classifies as Planned. The order is a deliberate
// tie-break, not an accident.
var (
	plannedKeywords   = []string{"planned", "maintenance", "scheduled"}
	unplannedKeywords = []string{"unplanned", "unexpected", "fault", "failure", "emergency"}
)

// ClassifyStatus derives the planned/unplanned status of a message. The
// explicit unavailability_type code wins when present (1 planned,
// 2 unplanned); otherwise the lower-cased remarks are scanned for planned
// keywords, then unplanned keywords. First match wins.
func ClassifyStatus(m Message) Status {
	switch m.UnavailabilityType {
	case unavailabilityPlanned:
		return StatusPlanned
	case unavailabilityUnplanned:
		return StatusUnplanned
	}

	remarks := strings.ToLower(m.Remarks)
	for _, kw := range plannedKeywords {
		if strings.Contains(remarks, kw) {
			return StatusPlanned
		}
	}
	for _, kw := range unplannedKeywords {
		if strings.Contains(remarks, kw) {
			return StatusUnplanned
		}
	}
	return StatusUnknown
}

// outageTypeLabels maps message_type codes to display labels.
var outageTypeLabels = map[int]string{
	TypeProductionUnavailability:  "Production unavailability",
	TypeConsumptionUnavailability: "Consumption unavailability",
	TypeTransmissionOutage:        "Transmission outage",
	TypeMarketNotice:              "Market notice",
	TypeOtherMarketInformation:    "Other market information",
}

// OutageTypeLabel returns the display label for a message_type code, or
// "Other" for codes outside the published table.
func OutageTypeLabel(code int) string {
	if label, ok := outageTypeLabels[code]; ok {
		return label
	}
	return "Other"
}

// IsOutageType reports whether the code counts as an outage for summary
// purposes. Only production/consumption unavailability and transmission
// outages qualify; market notices and other information do not.
func IsOutageType(code int) bool {
	return code >= TypeProductionUnavailability && code <= TypeTransmissionOutage
}

// eventStatusLabels maps event_status codes to display labels.
var eventStatusLabels = map[int]string{
	1: "Active",
	3: "Cancelled / postponed",
}

// EventStatusLabel returns the display label for an event_status code, or
// "Other" for unrecognised codes.
func EventStatusLabel(code int) string {
	if label, ok := eventStatusLabels[code]; ok {
		return label
	}
	return "Other"
}
