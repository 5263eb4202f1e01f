package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/globalfaces/phoenix-backend/internal/domain"
	"github.com/globalfaces/phoenix-backend/pkg/ids"
)

// EventRepository appends to the EVENT_LOG audit trail. Rows are write-once;
// nothing in the system updates or deletes them.
type EventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Insert appends an event under a generated, time-ordered identifier.
func (r *EventRepository) Insert(ctx context.Context, ev domain.Event) (string, error) {
	eventID := ids.New("evt")
	if err := r.insert(ctx, eventID, ev); err != nil {
		return "", err
	}
	return eventID, nil
}

func (r *EventRepository) insert(ctx context.Context, eventID string, ev domain.Event) error {
	attrs, err := json.Marshal(ev.Attributes)
	if err != nil {
		return fmt.Errorf("failed to marshal event attributes: %w", err)
	}

	// PARSE_JSON is not allowed in a VALUES clause, hence INSERT ... SELECT.
	query := `
		INSERT INTO EVENT_LOG (EVENT_ID, SESSION_ID, DONOR_ID, FUNDRAISER_ID, EVENT_TYPE, ATTRIBUTES, CREATED_AT)
		SELECT ?, ?, ?, ?, ?, PARSE_JSON(?), CURRENT_TIMESTAMP()
	`

	_, err = r.db.ExecContext(ctx, query,
		eventID,
		nullIfEmpty(ev.SessionID),
		nullIfEmpty(ev.DonorID),
		nullIfEmpty(ev.FundraiserID),
		ev.EventType,
		string(attrs),
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// InsertIfAbsent appends an event under a caller-supplied identifier unless a
// row with that identifier already exists. The MERGE makes check and insert a
// single statement, so two concurrent deliveries of the same provider event
// cannot both land. Returns whether this call inserted the row.
func (r *EventRepository) InsertIfAbsent(ctx context.Context, eventID string, ev domain.Event) (bool, error) {
	attrs, err := json.Marshal(ev.Attributes)
	if err != nil {
		return false, fmt.Errorf("failed to marshal event attributes: %w", err)
	}

	query := `
		MERGE INTO EVENT_LOG t
		USING (SELECT ? AS EVENT_ID) s
		ON t.EVENT_ID = s.EVENT_ID
		WHEN NOT MATCHED THEN
			INSERT (EVENT_ID, SESSION_ID, DONOR_ID, FUNDRAISER_ID, EVENT_TYPE, ATTRIBUTES, CREATED_AT)
			VALUES (s.EVENT_ID, ?, ?, ?, ?, PARSE_JSON(?), CURRENT_TIMESTAMP())
	`

	result, err := r.db.ExecContext(ctx, query,
		eventID,
		nullIfEmpty(ev.SessionID),
		nullIfEmpty(ev.DonorID),
		nullIfEmpty(ev.FundraiserID),
		ev.EventType,
		string(attrs),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert event %s: %w", eventID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows > 0, nil
}

// nullIfEmpty maps "" to SQL NULL so optional references stay null in the
// warehouse instead of becoming empty strings.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
