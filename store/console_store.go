// api/store/console_store.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"activitymonitor/api/models"
)

// ConsoleStore writes a human-readable dump of each event to an output
// stream (stdout by default). It never fails and is meant for local
// diagnostics only, not production use.
type ConsoleStore struct {
	Out io.Writer
}

func NewConsoleStore() *ConsoleStore {
	return &ConsoleStore{Out: os.Stdout}
}

func (s *ConsoleStore) StoreEvent(_ context.Context, event models.Event) error {
	payloadJSON, err := json.Marshal(event.Payload())
	if err != nil {
		payloadJSON = []byte("<unserializable payload>")
	}

	divider := strings.Repeat("=", 30)
	fmt.Fprintln(s.Out, divider)
	fmt.Fprintf(s.Out, "Storing event: %s\n", event.Type())
	fmt.Fprintf(s.Out, "  - Event Type: %s\n", event.Type())
	fmt.Fprintf(s.Out, "  - Session ID: %s\n", event.SessionID)
	fmt.Fprintf(s.Out, "  - Timestamp: %s\n", event.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(s.Out, "  - Payload: %s\n", payloadJSON)
	fmt.Fprintln(s.Out, divider)
	return nil
}
