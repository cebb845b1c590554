// api/models/batch.go
package models

import "encoding/json"

// BatchEventRequest is the ingestion input: a payload wrapping an ordered,
// non-empty list of raw event records. Records stay raw here so each one can
// be validated independently and failures reported per index.
type BatchEventRequest struct {
	Payload BatchEventPayload `json:"payload" binding:"required"`
}

type BatchEventPayload struct {
	Events []json.RawMessage `json:"events" binding:"required,min=1"`
}

// BatchEventResponse summarizes one batch submission. It is always returned
// to the caller, even when every event failed.
type BatchEventResponse struct {
	Success             bool   `json:"success"`
	ProcessedEventCount int    `json:"processed_event_count"`
	Message             string `json:"message"`
}
