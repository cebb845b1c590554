// api/models/event.go
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType discriminates which payload shape an event carries.
type EventType string

const (
	EventTypeClick        EventType = "click"
	EventTypeScroll       EventType = "scroll"
	EventTypeMouseMove    EventType = "mouse_move"
	EventTypeKeypress     EventType = "keypress"
	EventTypeWindowResize EventType = "window_resize"
)

// resolutionOrder is the fixed precedence used for structural matching when
// an incoming record carries no event_type tag.
var resolutionOrder = []EventType{
	EventTypeClick,
	EventTypeScroll,
	EventTypeMouseMove,
	EventTypeKeypress,
	EventTypeWindowResize,
}

// Payload is implemented by the five concrete payload types. The set is
// closed; see payloadSchemas.
type Payload interface {
	Type() EventType
}

// Event couples the common envelope fields with exactly one payload. The
// payload is unexported and only settable through NewEvent or ParseEvent,
// so an event whose tag disagrees with its payload cannot be constructed.
type Event struct {
	SessionID uuid.UUID
	WebsiteID uuid.UUID
	URL       string
	Timestamp time.Time
	payload   Payload
}

// NewEvent builds an event from already-typed parts. The discriminant is
// derived from the payload itself.
func NewEvent(sessionID, websiteID uuid.UUID, url string, timestamp time.Time, payload Payload) Event {
	return Event{
		SessionID: sessionID,
		WebsiteID: websiteID,
		URL:       url,
		Timestamp: timestamp,
		payload:   payload,
	}
}

// Type returns the discriminant tag, always consistent with the payload.
func (e Event) Type() EventType { return e.payload.Type() }

// Payload returns the type-specific data attached to the event.
func (e Event) Payload() Payload { return e.payload }

// MarshalJSON renders the envelope plus payload in the ingestion wire shape.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		SessionID uuid.UUID `json:"session_id"`
		WebsiteID uuid.UUID `json:"website_id"`
		URL       string    `json:"url"`
		Timestamp time.Time `json:"timestamp"`
		EventType EventType `json:"event_type"`
		Payload   Payload   `json:"payload"`
	}{e.SessionID, e.WebsiteID, e.URL, e.Timestamp, e.Type(), e.payload})
}

// rawEvent is the untrusted wire form of a single event record.
type rawEvent struct {
	SessionID string          `json:"session_id"`
	WebsiteID string          `json:"website_id"`
	URL       string          `json:"url"`
	Timestamp string          `json:"timestamp"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
}

// ParseEvent validates one raw record and resolves it to a typed Event.
//
// Resolution prefers an explicit event_type tag; when the tag is absent the
// payload is matched structurally against each schema in resolutionOrder and
// the first full match wins. An explicit tag naming no known variant fails
// with *AmbiguousEventError; a record matching no schema fails with
// ErrUnrecognizedEvent; field-level problems fail with *SchemaError listing
// every offending field. A missing timestamp defaults to the ingestion time.
func ParseEvent(raw json.RawMessage) (Event, error) {
	var re rawEvent
	if err := json.Unmarshal(raw, &re); err != nil {
		return Event{}, &SchemaError{Fields: []FieldError{
			{Field: "event", Reason: "malformed event record: " + err.Error()},
		}}
	}

	// An explicit but unknown tag is rejected before anything else; no
	// amount of envelope fixing would make the record storable.
	if re.EventType != "" {
		if _, ok := payloadSchemas[EventType(re.EventType)]; !ok {
			return Event{}, &AmbiguousEventError{Tag: re.EventType}
		}
	}

	var envErrs []FieldError
	sessionID := parseRequiredUUID("session_id", re.SessionID, &envErrs)
	websiteID := parseRequiredUUID("website_id", re.WebsiteID, &envErrs)

	if re.URL == "" {
		envErrs = append(envErrs, FieldError{Field: "url", Reason: "required field is missing"})
	}

	timestamp := time.Now().UTC()
	if re.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, re.Timestamp)
		if err != nil {
			envErrs = append(envErrs, FieldError{Field: "timestamp", Reason: "must be an RFC3339 date-time"})
		} else {
			timestamp = parsed
		}
	}

	if len(re.Payload) == 0 {
		envErrs = append(envErrs, FieldError{Field: "payload", Reason: "required field is missing"})
		return Event{}, &SchemaError{Fields: envErrs}
	}

	payload, resolveErr := resolvePayload(EventType(re.EventType), re.Payload)
	if resolveErr != nil {
		// Envelope problems are folded into a payload SchemaError so the
		// caller sees every bad field at once. Resolution failures
		// (unrecognized shape) win over envelope problems.
		if schemaErr, ok := resolveErr.(*SchemaError); ok && len(envErrs) > 0 {
			return Event{}, &SchemaError{Fields: append(envErrs, schemaErr.Fields...)}
		}
		return Event{}, resolveErr
	}
	if len(envErrs) > 0 {
		return Event{}, &SchemaError{Fields: envErrs}
	}

	return NewEvent(sessionID, websiteID, re.URL, timestamp, payload), nil
}

func resolvePayload(tag EventType, raw json.RawMessage) (Payload, error) {
	if tag != "" {
		schema := payloadSchemas[tag]
		payload, serr := decodePayload(schema, raw)
		if serr != nil {
			return nil, serr
		}
		return payload, nil
	}
	for _, candidate := range resolutionOrder {
		payload, serr := decodePayload(payloadSchemas[candidate], raw)
		if serr == nil {
			return payload, nil
		}
	}
	return nil, ErrUnrecognizedEvent
}

func parseRequiredUUID(field, value string, errs *[]FieldError) uuid.UUID {
	if value == "" {
		*errs = append(*errs, FieldError{Field: field, Reason: "required field is missing"})
		return uuid.Nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		*errs = append(*errs, FieldError{Field: field, Reason: "must be a valid UUID"})
		return uuid.Nil
	}
	return id
}
