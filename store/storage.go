// api/store/storage.go
package store

import (
	"context"
	"fmt"

	"activitymonitor/api/models"
)

// EventStore is the single contract every storage backend implements. The
// concrete sink is chosen at startup and passed in explicitly; the batch
// processor depends on nothing else.
type EventStore interface {
	StoreEvent(ctx context.Context, event models.Event) error
}

// StorageError wraps a persistence-backend failure so callers can tell it
// apart from validation failures.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
