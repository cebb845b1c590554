package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"activitymonitor/api/models"
	"activitymonitor/api/store"
)

// fakeStore records every stored event and can be told to fail on specific
// dispatch calls (0-based call order).
type fakeStore struct {
	events []models.Event
	calls  int
	failOn map[int]bool
}

func (f *fakeStore) StoreEvent(_ context.Context, event models.Event) error {
	call := f.calls
	f.calls++
	if f.failOn[call] {
		return &store.StorageError{Op: "insert event", Err: errors.New("connection reset")}
	}
	f.events = append(f.events, event)
	return nil
}

func validClickRecord(t *testing.T, url string) json.RawMessage {
	t.Helper()
	raw := fmt.Sprintf(`{
		"session_id": "11111111-1111-1111-1111-111111111111",
		"website_id": "22222222-2222-2222-2222-222222222222",
		"url": %q,
		"timestamp": "2024-05-01T10:00:00Z",
		"event_type": "click",
		"payload": {"element_id": "btn", "position": {"x": 1, "y": 2}}
	}`, url)
	return json.RawMessage(raw)
}

func invalidRecord() json.RawMessage {
	return json.RawMessage(`{"event_type": "click", "payload": {}}`)
}

func TestProcessAllValidBestEffort(t *testing.T) {
	fake := &fakeStore{}
	processor := NewProcessor(fake, PolicyBestEffort)

	batch := []json.RawMessage{
		validClickRecord(t, "https://example.com/1"),
		validClickRecord(t, "https://example.com/2"),
		validClickRecord(t, "https://example.com/3"),
	}

	resp := processor.Process(context.Background(), batch)

	if !resp.Success {
		t.Errorf("Expected success, got message: %s", resp.Message)
	}
	if resp.ProcessedEventCount != 3 {
		t.Errorf("Expected 3 processed events, got %d", resp.ProcessedEventCount)
	}
	if len(fake.events) != 3 {
		t.Fatalf("Expected 3 stored events, got %d", len(fake.events))
	}
	// Dispatch must preserve input order.
	for i, event := range fake.events {
		want := fmt.Sprintf("https://example.com/%d", i+1)
		if event.URL != want {
			t.Errorf("Event %d stored out of order: got URL %s, want %s", i, event.URL, want)
		}
	}
}

func TestProcessBestEffortSkipsInvalid(t *testing.T) {
	fake := &fakeStore{}
	processor := NewProcessor(fake, PolicyBestEffort)

	batch := []json.RawMessage{
		validClickRecord(t, "https://example.com/1"),
		invalidRecord(),
		validClickRecord(t, "https://example.com/3"),
	}

	resp := processor.Process(context.Background(), batch)

	if resp.Success {
		t.Error("Expected success=false when a record fails validation")
	}
	if resp.ProcessedEventCount != 2 {
		t.Errorf("Expected 2 processed events, got %d", resp.ProcessedEventCount)
	}
	if len(fake.events) != 2 {
		t.Errorf("Expected 2 stored events, got %d", len(fake.events))
	}
	if !strings.Contains(resp.Message, "event 1") {
		t.Errorf("Expected message to name the failing index, got %q", resp.Message)
	}
}

func TestProcessAllOrNothingAbortsOnInvalid(t *testing.T) {
	fake := &fakeStore{}
	processor := NewProcessor(fake, PolicyAllOrNothing)

	batch := []json.RawMessage{
		validClickRecord(t, "https://example.com/1"),
		invalidRecord(),
		validClickRecord(t, "https://example.com/3"),
	}

	resp := processor.Process(context.Background(), batch)

	if resp.Success {
		t.Error("Expected success=false")
	}
	if resp.ProcessedEventCount != 0 {
		t.Errorf("Expected 0 processed events under all-or-nothing, got %d", resp.ProcessedEventCount)
	}
	if len(fake.events) != 0 {
		t.Errorf("Expected no stored events, got %d", len(fake.events))
	}
	if !strings.Contains(resp.Message, "event 1") {
		t.Errorf("Expected message to name the failing index, got %q", resp.Message)
	}
}

func TestProcessBestEffortStorageFailure(t *testing.T) {
	fake := &fakeStore{failOn: map[int]bool{1: true}}
	processor := NewProcessor(fake, PolicyBestEffort)

	batch := []json.RawMessage{
		validClickRecord(t, "https://example.com/1"),
		validClickRecord(t, "https://example.com/2"),
		validClickRecord(t, "https://example.com/3"),
	}

	resp := processor.Process(context.Background(), batch)

	if resp.Success {
		t.Error("Expected success=false when storage fails for one event")
	}
	if resp.ProcessedEventCount != 2 {
		t.Errorf("Expected 2 processed events, got %d", resp.ProcessedEventCount)
	}
	if !strings.Contains(resp.Message, "storage") {
		t.Errorf("Expected message to mention the storage failure, got %q", resp.Message)
	}
}

func TestProcessAllOrNothingStopsOnStorageFailure(t *testing.T) {
	fake := &fakeStore{failOn: map[int]bool{1: true}}
	processor := NewProcessor(fake, PolicyAllOrNothing)

	batch := []json.RawMessage{
		validClickRecord(t, "https://example.com/1"),
		validClickRecord(t, "https://example.com/2"),
		validClickRecord(t, "https://example.com/3"),
	}

	resp := processor.Process(context.Background(), batch)

	if resp.Success {
		t.Error("Expected success=false")
	}
	// The first event's transaction was already committed; later events are
	// never attempted.
	if resp.ProcessedEventCount != 1 {
		t.Errorf("Expected 1 processed event, got %d", resp.ProcessedEventCount)
	}
	if fake.calls != 2 {
		t.Errorf("Expected dispatch to stop after the failure, got %d calls", fake.calls)
	}
}

func TestProcessSuccessMessage(t *testing.T) {
	fake := &fakeStore{}
	processor := NewProcessor(fake, PolicyBestEffort)

	resp := processor.Process(context.Background(), []json.RawMessage{
		validClickRecord(t, "https://example.com"),
	})

	if resp.Message != "successfully processed 1 events" {
		t.Errorf("Unexpected acknowledgment message: %q", resp.Message)
	}
}

func TestPolicyFromString(t *testing.T) {
	tests := []struct {
		in   string
		want Policy
	}{
		{"all_or_nothing", PolicyAllOrNothing},
		{"best_effort", PolicyBestEffort},
		{"", PolicyBestEffort},
		{"bogus", PolicyBestEffort},
	}
	for _, tt := range tests {
		if got := PolicyFromString(tt.in); got != tt.want {
			t.Errorf("PolicyFromString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
