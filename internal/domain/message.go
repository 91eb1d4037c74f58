package domain

import "time"

// Message type codes as published by the UMM feed.
const (
	TypeProductionUnavailability  = 1
	TypeConsumptionUnavailability = 2
	TypeTransmissionOutage        = 3
	TypeMarketNotice              = 4
	TypeOtherMarketInformation    = 5
)

// Unavailability type sentinels used by ClassifyStatus.
const (
	unavailabilityPlanned   = 1
	unavailabilityUnplanned = 2
)

// UnknownArea is the sentinel returned by PrimaryArea when no area code can
// be resolved from any sub-document. It never appears inside Message.Areas.
const UnknownArea = "UNKNOWN"

// UnspecifiedResource is the placeholder resource name used when no
// production or generation sub-unit carries a usable name.
const UnspecifiedResource = "Unspecified resource"

// RawMessageRecord is one row of the scraped UMM CSV (or one row of the
// messages table when the dataset lives in SQLite). All fields are kept as
// raw strings; the *JSON columns hold JSON-encoded arrays of sub-documents.
// Records are never mutated after read.
type RawMessageRecord struct {
	MessageID          string
	Version            string
	MessageType        string
	EventStatus        string
	PublicationDate    string
	EventStart         string
	EventStop          string
	PublisherID        string
	PublisherName      string
	UnavailabilityType string
	Remarks            string

	AreasJSON              string
	MarketParticipantsJSON string
	ProductionUnitsJSON    string
	GenerationUnitsJSON    string
	TransmissionUnitsJSON  string
}

// areaRef is an entry of the areas_json column.
type areaRef struct {
	Name string `json:"name"`
}

// TimePeriod is one availability window inside a production, generation, or
// transmission sub-unit.
type TimePeriod struct {
	EventStart          string   `json:"eventStart"`
	EventStop           string   `json:"eventStop"`
	UnavailableCapacity *float64 `json:"unavailableCapacity"`
	AvailableCapacity   *float64 `json:"availableCapacity"`
}

// ProductionUnit is an entry of the production_units_json column. Generation
// units share the same wire shape apart from the unit-name alias.
type ProductionUnit struct {
	Name               string       `json:"name"`
	ProductionUnitName string       `json:"productionUnitName"`
	GenerationUnitName string       `json:"generationUnitName"`
	AreaName           string       `json:"areaName"`
	InstalledCapacity  *float64     `json:"installedCapacity"`
	FuelType           int          `json:"fuelType"`
	TimePeriods        []TimePeriod `json:"timePeriods"`
}

// TransmissionUnit is an entry of the transmission_units_json column.
// Transmission outages reference the interconnector endpoints rather than a
// single area.
type TransmissionUnit struct {
	Name        string       `json:"name"`
	InAreaName  string       `json:"inAreaName"`
	OutAreaName string       `json:"outAreaName"`
	TimePeriods []TimePeriod `json:"timePeriods"`
}

// Message is the canonical in-memory form of a UMM used by all aggregation.
// Instances are created once per dataset load and immutable thereafter.
type Message struct {
	ID              string    `json:"id"`
	Version         int       `json:"version,omitempty"`
	OutageTypeCode  int       `json:"outage_type_code"`
	EventStatus     int       `json:"event_status"`
	PublicationTime time.Time `json:"publication_time"`
	EventStart      time.Time `json:"event_start"`
	EventEnd        time.Time `json:"event_end"`

	// Areas is the ordered, de-duplicated set of bidding-zone and other
	// area codes the message touches. Possibly empty, never nil.
	Areas []string `json:"areas"`

	Participant      string  `json:"participant"`
	ResourceName     string  `json:"resource_name"`
	CapacityMW       float64 `json:"capacity_mw"`
	UnavailabilityType int   `json:"unavailability_type,omitempty"`
	Remarks          string  `json:"remarks,omitempty"`
}

// Year returns the four-digit publication year, or 0 when the publication
// time is unknown.
func (m Message) Year() int {
	if m.PublicationTime.IsZero() {
		return 0
	}
	return m.PublicationTime.UTC().Year()
}

// HasArea reports whether the message lists the given area code.
func (m Message) HasArea(code string) bool {
	for _, a := range m.Areas {
		if a == code {
			return true
		}
	}
	return false
}
