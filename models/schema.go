// api/models/schema.go
package models

import (
	"encoding/json"
	"fmt"
)

// Each payload variant is described by a declarative schema: the field
// names, their expected JSON types and whether they are required. Validation
// walks the whole schema and collects every offending field so a client sees
// all of its mistakes at once. Unknown payload fields are ignored; position
// mappings are the exception and must contain exactly the keys "x" and "y".

type fieldKind int

const (
	kindString fieldKind = iota
	kindInt
	kindFloat
	kindBool
	kindStringList
	kindPoint
	kindPointList
)

func (k fieldKind) String() string {
	switch k {
	case kindString:
		return "string"
	case kindInt:
		return "integer"
	case kindFloat:
		return "number"
	case kindBool:
		return "boolean"
	case kindStringList:
		return "list of strings"
	case kindPoint:
		return `mapping with integer keys "x" and "y"`
	case kindPointList:
		return "list of x/y mappings"
	default:
		return "unknown"
	}
}

type fieldSpec struct {
	name     string
	kind     fieldKind
	required bool
}

type payloadSchema struct {
	eventType EventType
	fields    []fieldSpec
	build     func(vals map[string]any) Payload
}

// payloadSchemas is the closed set of event variants. Registering a new
// variant here is the only way to extend the union.
var payloadSchemas = map[EventType]payloadSchema{
	EventTypeClick: {
		eventType: EventTypeClick,
		fields: []fieldSpec{
			{name: "element_id", kind: kindString, required: true},
			{name: "element_classes", kind: kindStringList, required: false},
			{name: "position", kind: kindPoint, required: true},
		},
		build: func(vals map[string]any) Payload {
			p := ClickPayload{
				ElementID: vals["element_id"].(string),
				// Fresh slice per instance; optional with an empty default.
				ElementClasses: []string{},
				Position:       vals["position"].(Position),
			}
			if classes, ok := vals["element_classes"]; ok {
				p.ElementClasses = classes.([]string)
			}
			return p
		},
	},
	EventTypeScroll: {
		eventType: EventTypeScroll,
		fields: []fieldSpec{
			{name: "scroll_depth_px", kind: kindInt, required: true},
			{name: "scroll_depth_percent", kind: kindFloat, required: true},
			{name: "viewport_height", kind: kindInt, required: true},
			{name: "document_height", kind: kindInt, required: true},
		},
		build: func(vals map[string]any) Payload {
			return ScrollPayload{
				ScrollDepthPx:      vals["scroll_depth_px"].(int),
				ScrollDepthPercent: vals["scroll_depth_percent"].(float64),
				ViewportHeight:     vals["viewport_height"].(int),
				DocumentHeight:     vals["document_height"].(int),
			}
		},
	},
	EventTypeMouseMove: {
		eventType: EventTypeMouseMove,
		fields: []fieldSpec{
			{name: "positions", kind: kindPointList, required: true},
			{name: "button", kind: kindString, required: true},
			{name: "duration_ms", kind: kindInt, required: true},
		},
		build: func(vals map[string]any) Payload {
			return MouseMovementPayload{
				Positions:  vals["positions"].([]Position),
				Button:     vals["button"].(string),
				DurationMs: vals["duration_ms"].(int),
			}
		},
	},
	EventTypeKeypress: {
		eventType: EventTypeKeypress,
		fields: []fieldSpec{
			{name: "key", kind: kindString, required: true},
			{name: "code", kind: kindString, required: true},
			{name: "alt_key", kind: kindBool, required: false},
			{name: "ctrl_key", kind: kindBool, required: false},
			{name: "shift_key", kind: kindBool, required: false},
			{name: "meta_key", kind: kindBool, required: false},
			{name: "target_element_id", kind: kindString, required: true},
		},
		build: func(vals map[string]any) Payload {
			p := KeypressPayload{
				Key:             vals["key"].(string),
				Code:            vals["code"].(string),
				TargetElementID: vals["target_element_id"].(string),
			}
			if v, ok := vals["alt_key"]; ok {
				p.AltKey = v.(bool)
			}
			if v, ok := vals["ctrl_key"]; ok {
				p.CtrlKey = v.(bool)
			}
			if v, ok := vals["shift_key"]; ok {
				p.ShiftKey = v.(bool)
			}
			if v, ok := vals["meta_key"]; ok {
				p.MetaKey = v.(bool)
			}
			return p
		},
	},
	EventTypeWindowResize: {
		eventType: EventTypeWindowResize,
		fields: []fieldSpec{
			{name: "old_width", kind: kindInt, required: true},
			{name: "old_height", kind: kindInt, required: true},
			{name: "new_width", kind: kindInt, required: true},
			{name: "new_height", kind: kindInt, required: true},
		},
		build: func(vals map[string]any) Payload {
			return WindowResizePayload{
				OldWidth:  vals["old_width"].(int),
				OldHeight: vals["old_height"].(int),
				NewWidth:  vals["new_width"].(int),
				NewHeight: vals["new_height"].(int),
			}
		},
	},
}

// decodePayload validates raw against the schema and builds the concrete
// payload. On failure it returns a SchemaError listing every bad field.
func decodePayload(schema payloadSchema, raw json.RawMessage) (Payload, *SchemaError) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, &SchemaError{Fields: []FieldError{
			{Field: "payload", Reason: "must be a JSON object"},
		}}
	}

	vals := make(map[string]any, len(schema.fields))
	var errs []FieldError
	for _, spec := range schema.fields {
		rawVal, present := fields[spec.name]
		if !present {
			if spec.required {
				errs = append(errs, FieldError{Field: spec.name, Reason: "required field is missing"})
			}
			continue
		}
		val, err := decodeField(spec, rawVal)
		if err != nil {
			errs = append(errs, *err)
			continue
		}
		vals[spec.name] = val
	}

	if len(errs) > 0 {
		return nil, &SchemaError{Fields: errs}
	}
	return schema.build(vals), nil
}

func decodeField(spec fieldSpec, raw json.RawMessage) (any, *FieldError) {
	fail := func() *FieldError {
		return &FieldError{Field: spec.name, Reason: "expected " + spec.kind.String()}
	}

	switch spec.kind {
	case kindString:
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fail()
		}
		return v, nil
	case kindInt:
		var v int
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fail()
		}
		return v, nil
	case kindFloat:
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fail()
		}
		return v, nil
	case kindBool:
		var v bool
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fail()
		}
		return v, nil
	case kindStringList:
		var v []string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fail()
		}
		if v == nil {
			v = []string{}
		}
		return v, nil
	case kindPoint:
		p, err := decodePoint(raw)
		if err != nil {
			return nil, &FieldError{Field: spec.name, Reason: err.Error()}
		}
		return p, nil
	case kindPointList:
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, fail()
		}
		points := make([]Position, 0, len(elems))
		for i, elem := range elems {
			p, err := decodePoint(elem)
			if err != nil {
				return nil, &FieldError{
					Field:  fmt.Sprintf("%s[%d]", spec.name, i),
					Reason: err.Error(),
				}
			}
			points = append(points, p)
		}
		return points, nil
	default:
		return nil, fail()
	}
}

// decodePoint enforces the fixed key set: exactly "x" and "y", integers.
func decodePoint(raw json.RawMessage) (Position, error) {
	var m map[string]int
	if err := json.Unmarshal(raw, &m); err != nil {
		return Position{}, fmt.Errorf(`expected mapping with integer keys "x" and "y"`)
	}
	x, hasX := m["x"]
	y, hasY := m["y"]
	if !hasX || !hasY || len(m) != 2 {
		return Position{}, fmt.Errorf(`must contain exactly the keys "x" and "y"`)
	}
	return Position{X: x, Y: y}, nil
}
