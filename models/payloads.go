// api/models/payloads.go
package models

// Position is an x/y coordinate pair on the page.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ClickPayload carries the details of a click event.
type ClickPayload struct {
	ElementID      string   `json:"element_id"`
	ElementClasses []string `json:"element_classes"`
	Position       Position `json:"position"`
}

func (ClickPayload) Type() EventType { return EventTypeClick }

// ScrollPayload carries the details of a scroll event.
// ScrollDepthPercent is expected in [0,100] but not enforced here.
type ScrollPayload struct {
	ScrollDepthPx      int     `json:"scroll_depth_px"`
	ScrollDepthPercent float64 `json:"scroll_depth_percent"`
	ViewportHeight     int     `json:"viewport_height"`
	DocumentHeight     int     `json:"document_height"`
}

func (ScrollPayload) Type() EventType { return EventTypeScroll }

// MouseMovementPayload carries a sampled mouse trajectory. Positions may
// be empty.
type MouseMovementPayload struct {
	Positions  []Position `json:"positions"`
	Button     string     `json:"button"`
	DurationMs int        `json:"duration_ms"`
}

func (MouseMovementPayload) Type() EventType { return EventTypeMouseMove }

// KeypressPayload carries the details of a keypress event. The modifier
// flags are independent and default to false.
type KeypressPayload struct {
	Key             string `json:"key"`
	Code            string `json:"code"`
	AltKey          bool   `json:"alt_key"`
	CtrlKey         bool   `json:"ctrl_key"`
	ShiftKey        bool   `json:"shift_key"`
	MetaKey         bool   `json:"meta_key"`
	TargetElementID string `json:"target_element_id"`
}

func (KeypressPayload) Type() EventType { return EventTypeKeypress }

// WindowResizePayload carries the window dimensions before and after a
// resize. No ordering constraint between old and new is enforced.
type WindowResizePayload struct {
	OldWidth  int `json:"old_width"`
	OldHeight int `json:"old_height"`
	NewWidth  int `json:"new_width"`
	NewHeight int `json:"new_height"`
}

func (WindowResizePayload) Type() EventType { return EventTypeWindowResize }
