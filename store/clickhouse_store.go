// api/store/clickhouse_store.go
package store

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"activitymonitor/api/database"
	"activitymonitor/api/models"
)

// ClickHouseEventStore is the append-only persistent sink. ClickHouse has no
// transactions; a failed Send leaves nothing behind, which is the closest
// equivalent of the per-event commit-or-rollback contract.
type ClickHouseEventStore struct {
	DB *database.ClickHouseClient
}

func NewClickHouseEventStore(chClient *database.ClickHouseClient) *ClickHouseEventStore {
	return &ClickHouseEventStore{DB: chClient}
}

func (s *ClickHouseEventStore) StoreEvent(ctx context.Context, event models.Event) error {
	payloadJSON, err := json.Marshal(event.Payload())
	if err != nil {
		return &StorageError{Op: "encode payload", Err: err}
	}

	// Column names and order must exactly match the activity_events table.
	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO activity_events (id, session_id, website_id, url, timestamp, event_type, payload)
	`)
	if err != nil {
		return &StorageError{Op: "prepare insert", Err: err}
	}

	err = batch.Append(
		uuid.New(),
		event.SessionID,
		event.WebsiteID,
		event.URL,
		event.Timestamp,
		string(event.Type()),
		string(payloadJSON),
	)
	if err != nil {
		_ = batch.Abort()
		return &StorageError{Op: "append event", Err: err}
	}

	if err := batch.Send(); err != nil {
		return &StorageError{Op: "send insert", Err: err}
	}
	return nil
}
