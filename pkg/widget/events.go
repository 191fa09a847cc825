package widget

import (
	"github.com/matzehuels/dotring/pkg/errors"
	"github.com/matzehuels/dotring/pkg/ring"
)

// EventKind names a pointer or drag event delivered to a widget.
type EventKind string

const (
	EventPress     EventKind = "press"
	EventMove      EventKind = "move"
	EventRelease   EventKind = "release"
	EventClick     EventKind = "click"
	EventDragOver  EventKind = "dragover"
	EventDragLeave EventKind = "dragleave"
	EventDrop      EventKind = "drop"
)

// ValidEventKinds is the set of kinds accepted on the wire.
var ValidEventKinds = map[EventKind]bool{
	EventPress:     true,
	EventMove:      true,
	EventRelease:   true,
	EventClick:     true,
	EventDragOver:  true,
	EventDragLeave: true,
	EventDrop:      true,
}

// DragPayload is the data carried from drag-start to drop.
type DragPayload struct {
	ID    string `json:"id,omitempty"`
	Color string `json:"color,omitempty"`
}

// Event is a pointer event in surface-relative pixels.
type Event struct {
	Kind    EventKind    `json:"kind"`
	X       float64      `json:"x"`
	Y       float64      `json:"y"`
	Payload *DragPayload `json:"payload,omitempty"`
}

// Point returns the event position.
func (e Event) Point() ring.Point {
	return ring.Point{X: e.X, Y: e.Y}
}

// Validate rejects unknown kinds.
func (e Event) Validate() error {
	if !ValidEventKinds[e.Kind] {
		return errors.New(errors.ErrCodeInvalidEvent, "unknown event kind %q", e.Kind)
	}
	return nil
}

// Handler reacts to one event and reports whether the widget needs a redraw.
type Handler func(c *Controller, ev Event) bool

// defaultHandlers builds the handler table every controller starts with.
func defaultHandlers() map[EventKind]Handler {
	return map[EventKind]Handler{
		EventPress:     (*Controller).onPress,
		EventMove:      (*Controller).onMove,
		EventRelease:   (*Controller).onRelease,
		EventClick:     (*Controller).onClick,
		EventDragOver:  (*Controller).onDragOver,
		EventDragLeave: (*Controller).onDragLeave,
		EventDrop:      (*Controller).onDrop,
	}
}
