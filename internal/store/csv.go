// Package store loads raw UMM records from their file-based backings (the
// scraped CSV export or its SQLite conversion) and normalizes them into
// domain messages. Per-row defects never abort a load; only file-level
// failures surface to the caller.
package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/floratiew/ummdashboard/internal/domain"
)

// CSVSource reads the scraped umm_messages.csv export. It implements
// cache.Loader.
type CSVSource struct {
	path   string
	logger *slog.Logger
}

// NewCSVSource creates a loader for the given CSV file path.
func NewCSVSource(path string, logger *slog.Logger) *CSVSource {
	return &CSVSource{path: path, logger: logger}
}

// LoadMessages parses and normalizes every row of the CSV file. Rows with a
// deviant field count are skipped and counted, not fatal.
func (s *CSVSource) LoadMessages(ctx context.Context) ([]domain.Message, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // header decides; short rows are handled per-row

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read dataset header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}

	msgs := make([]domain.Message, 0, 1024)
	skipped := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("dataset load cancelled: %w", err)
		}
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed quoting in a single row; skip it.
			skipped++
			continue
		}

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}

		raw := domain.RawMessageRecord{
			MessageID:              field("message_id"),
			Version:                field("version"),
			MessageType:            field("message_type"),
			EventStatus:            field("event_status"),
			PublicationDate:        field("publication_date"),
			EventStart:             field("event_start"),
			EventStop:              field("event_stop"),
			PublisherID:            field("publisher_id"),
			PublisherName:          field("publisher_name"),
			UnavailabilityType:     field("unavailability_type"),
			Remarks:                field("remarks"),
			AreasJSON:              field("areas_json"),
			MarketParticipantsJSON: field("market_participants_json"),
			ProductionUnitsJSON:    field("production_units_json"),
			GenerationUnitsJSON:    field("generation_units_json"),
			TransmissionUnitsJSON:  field("transmission_units_json"),
		}
		msgs = append(msgs, domain.Normalize(raw))
	}

	if skipped > 0 {
		s.logger.Warn("skipped malformed dataset rows", "path", s.path, "rows", skipped)
	}
	return msgs, nil
}
