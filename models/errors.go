// api/models/errors.go
package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnrecognizedEvent is returned when an incoming record matches none of
// the known payload shapes.
var ErrUnrecognizedEvent = errors.New("event matches none of the known payload shapes")

// FieldError describes a single failing field within a payload or envelope.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// SchemaError reports every offending field found while validating one
// event record, not just the first.
type SchemaError struct {
	Fields []FieldError
}

func (e *SchemaError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Reason)
	}
	return "schema validation failed: " + strings.Join(parts, "; ")
}

// AmbiguousEventError is returned when a record carries an explicit
// event_type that does not name any known variant. It unwraps to
// ErrUnrecognizedEvent so callers can treat both resolution failures
// uniformly with errors.Is.
type AmbiguousEventError struct {
	Tag string
}

func (e *AmbiguousEventError) Error() string {
	return fmt.Sprintf("event_type %q does not name a known event variant", e.Tag)
}

func (e *AmbiguousEventError) Unwrap() error {
	return ErrUnrecognizedEvent
}
