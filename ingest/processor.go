// api/ingest/processor.go
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"activitymonitor/api/models"
	"activitymonitor/api/store"
)

// Policy decides what a batch does when one of its events fails.
type Policy string

const (
	// PolicyAllOrNothing rejects the whole batch on any validation failure
	// and stops dispatching on the first storage failure.
	PolicyAllOrNothing Policy = "all_or_nothing"
	// PolicyBestEffort stores every valid event and reports the rest.
	PolicyBestEffort Policy = "best_effort"
)

// PolicyFromString maps a configuration value to a Policy, defaulting to
// best effort.
func PolicyFromString(s string) Policy {
	if Policy(s) == PolicyAllOrNothing {
		return PolicyAllOrNothing
	}
	return PolicyBestEffort
}

// Processor validates a batch of raw event records and dispatches the valid
// ones, in input order, to a single EventStore. It is request-scoped state
// free: one Processor can serve any number of batches.
type Processor struct {
	store  store.EventStore
	policy Policy
}

func NewProcessor(eventStore store.EventStore, policy Policy) *Processor {
	return &Processor{store: eventStore, policy: policy}
}

// eventFailure pairs a failing record with its position in the batch.
type eventFailure struct {
	index int
	err   error
}

// Process runs one batch. It never returns an error: every outcome,
// including total failure, is reported through the BatchEventResponse.
func (p *Processor) Process(ctx context.Context, rawEvents []json.RawMessage) models.BatchEventResponse {
	events := make([]*models.Event, len(rawEvents))
	var failures []eventFailure

	for i, raw := range rawEvents {
		event, err := models.ParseEvent(raw)
		if err != nil {
			failures = append(failures, eventFailure{index: i, err: err})
			continue
		}
		events[i] = &event
	}

	if p.policy == PolicyAllOrNothing && len(failures) > 0 {
		return buildResponse(len(rawEvents), 0, failures)
	}

	stored := 0
	for i, event := range events {
		if event == nil {
			continue
		}
		if err := p.store.StoreEvent(ctx, *event); err != nil {
			failures = append(failures, eventFailure{index: i, err: err})
			if p.policy == PolicyAllOrNothing {
				break
			}
			continue
		}
		stored++
	}

	return buildResponse(len(rawEvents), stored, failures)
}

func buildResponse(total, stored int, failures []eventFailure) models.BatchEventResponse {
	if len(failures) == 0 {
		return models.BatchEventResponse{
			Success:             true,
			ProcessedEventCount: stored,
			Message:             fmt.Sprintf("successfully processed %d events", stored),
		}
	}

	sort.Slice(failures, func(i, j int) bool { return failures[i].index < failures[j].index })
	parts := make([]string, len(failures))
	for i, f := range failures {
		parts[i] = fmt.Sprintf("event %d: %v", f.index, f.err)
	}

	return models.BatchEventResponse{
		Success:             false,
		ProcessedEventCount: stored,
		Message: fmt.Sprintf("%d of %d events failed (%d stored): %s",
			len(failures), total, stored, strings.Join(parts, "; ")),
	}
}
