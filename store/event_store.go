// api/store/event_store.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"activitymonitor/api/models"
)

// PostgresEventStore persists each event as one flat row: envelope fields as
// typed columns, payload as a JSONB blob. Every StoreEvent call runs in its
// own transaction; there is no multi-event commit.
type PostgresEventStore struct {
	db *sql.DB
}

func NewPostgresEventStore(db *sql.DB) *PostgresEventStore {
	return &PostgresEventStore{db: db}
}

func (s *PostgresEventStore) StoreEvent(ctx context.Context, event models.Event) error {
	payloadJSON, err := json.Marshal(event.Payload())
	if err != nil {
		return &StorageError{Op: "encode payload", Err: err}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &StorageError{Op: "begin transaction", Err: err}
	}

	query := `
		INSERT INTO activity_events (id, session_id, website_id, url, timestamp, event_type, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err = tx.ExecContext(ctx, query,
		uuid.New(),
		event.SessionID,
		event.WebsiteID,
		event.URL,
		event.Timestamp,
		string(event.Type()),
		payloadJSON,
	)
	if err != nil {
		_ = tx.Rollback()
		return &StorageError{Op: "insert event", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &StorageError{Op: "commit transaction", Err: err}
	}
	return nil
}
