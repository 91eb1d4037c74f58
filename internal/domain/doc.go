// Package domain models Nord Pool Urgent Market Messages (UMMs).
//
// # Data Source
//
// UMMs are regulatory outage and availability notices published by market
// participants through the Nord Pool UMM API
// (https://ummapi.nordpoolgroup.com/messages). A scraper downloads the feed
// into a flat CSV where nested API sub-documents (areas, production units,
// generation units, transmission units, market participants) are stored as
// JSON-encoded text columns, one column per sub-document list.
//
// # Message Type Codes
//
// The message_type column carries a small integer enum:
//
//	1 = Production unavailability
//	2 = Consumption unavailability
//	3 = Transmission outage
//	4 = Market notice
//	5 = Other market information
//
// Codes 1-3 are outages for summary purposes; 4-5 are excluded from outage
// aggregations but retained for raw browsing. Any other value maps to "Other".
//
// # Area Codes
//
// Bidding zones are two uppercase letters followed by one digit, e.g. NO2 or
// SE4. A message may list areas directly, or only indirectly through the area
// fields of its production, generation, or transmission sub-units. Candidates
// are collected in a fixed order (areas, then production units, then
// generation units, then transmission in/out areas) so repeated normalization
// of the same record is byte-for-byte stable. When a caller needs exactly one
// area and none can be resolved, the sentinel "UNKNOWN" stands in; the
// sentinel is never inserted into the multi-area set itself.
//
// # Capacity
//
// Unavailable capacity in MW is summed across every time-period entry of
// every production and generation sub-unit on the message. Missing or
// non-numeric figures count as zero. The total is rounded to one decimal
// place to match the upstream feed's own precision.
//
// # Planned / Unplanned Classification
//
// The unavailability_type column is authoritative when present: 1 means
// planned, 2 means unplanned. Many historical rows lack it, so free-text
// remarks serve as a fallback, tested against planned keywords before
// unplanned keywords. The order is load-bearing: "emergency maintenance"
// contains keywords from both lists and classifies as Planned.
//
// # Malformed Data
//
// A JSON-encoded sub-document column that fails to decode yields an empty
// list for that column, never an error. One bad row must not fail a dataset
// load; only file-level failures propagate.
package domain
