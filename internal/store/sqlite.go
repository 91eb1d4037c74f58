package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/floratiew/ummdashboard/internal/domain"
)

// selectMessages matches the schema produced by the CSV-to-SQLite converter.
const selectMessages = `
SELECT message_id, version, message_type, event_status,
       publication_date, event_start, event_stop,
       publisher_id, publisher_name, unavailability_type, remarks,
       areas_json, production_units_json, generation_units_json, transmission_units_json
FROM messages`

// SQLiteSource reads the messages table of the converted SQLite database.
// It implements cache.Loader.
type SQLiteSource struct {
	path   string
	logger *slog.Logger
}

// NewSQLiteSource creates a loader for the given SQLite database path.
func NewSQLiteSource(path string, logger *slog.Logger) *SQLiteSource {
	return &SQLiteSource{path: path, logger: logger}
}

// LoadMessages opens the database read-only, scans every row of the messages
// table, and normalizes it. Scan failures on individual rows are skipped.
func (s *SQLiteSource) LoadMessages(ctx context.Context) ([]domain.Message, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", s.path))
	if err != nil {
		return nil, fmt.Errorf("open dataset database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, selectMessages)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	msgs := make([]domain.Message, 0, 1024)
	skipped := 0
	for rows.Next() {
		var (
			id, version, msgType, eventStatus        sql.NullString
			pubDate, eventStart, eventStop           sql.NullString
			publisherID, publisherName, unavailType  sql.NullString
			remarks, areas, production, generation   sql.NullString
			transmission                             sql.NullString
		)
		if err := rows.Scan(
			&id, &version, &msgType, &eventStatus,
			&pubDate, &eventStart, &eventStop,
			&publisherID, &publisherName, &unavailType, &remarks,
			&areas, &production, &generation, &transmission,
		); err != nil {
			skipped++
			continue
		}

		raw := domain.RawMessageRecord{
			MessageID:             id.String,
			Version:               version.String,
			MessageType:           msgType.String,
			EventStatus:           eventStatus.String,
			PublicationDate:       pubDate.String,
			EventStart:            eventStart.String,
			EventStop:             eventStop.String,
			PublisherID:           publisherID.String,
			PublisherName:         publisherName.String,
			UnavailabilityType:    unavailType.String,
			Remarks:               remarks.String,
			AreasJSON:             areas.String,
			ProductionUnitsJSON:   production.String,
			GenerationUnitsJSON:   generation.String,
			TransmissionUnitsJSON: transmission.String,
		}
		msgs = append(msgs, domain.Normalize(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan messages: %w", err)
	}

	if skipped > 0 {
		s.logger.Warn("skipped unreadable dataset rows", "path", s.path, "rows", skipped)
	}
	return msgs, nil
}
