package sink

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/dotring/pkg/observability"
	"github.com/matzehuels/dotring/pkg/ring"
	"github.com/matzehuels/dotring/pkg/widget"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	ctx     context.Context
	id      string
	compact bool
}

// WithJSONID records the widget's host identifier in the snapshot.
func WithJSONID(id string) JSONOption { return func(r *jsonRenderer) { r.id = id } }

// WithJSONCompact disables indentation.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

// WithJSONContext sets the context passed to render hooks.
func WithJSONContext(ctx context.Context) JSONOption { return func(r *jsonRenderer) { r.ctx = ctx } }

// Snapshot is the serialized state of a widget.
type Snapshot struct {
	ID          string         `json:"id,omitempty"`
	Variant     widget.Variant `json:"variant"`
	Width       float64        `json:"width"`
	Height      float64        `json:"height"`
	Circle      ring.Circle    `json:"circle"`
	Action      widget.Action  `json:"action"`
	Cursor      widget.Cursor  `json:"cursor"`
	Selected    int            `json:"selected"`
	Dots        []SnapshotDot  `json:"dots"`
	Hover       *SnapshotHover `json:"hover,omitempty"`
	Tooltip     widget.Tooltip `json:"tooltip"`
	Panel       widget.Panel   `json:"panel"`
	RemovalZone *widget.Rect   `json:"removal_zone,omitempty"`
}

// SnapshotDot is one placed dot with its resolved position.
type SnapshotDot struct {
	Index   int     `json:"index"`
	Label   string  `json:"label"`
	Angle   float64 `json:"angle"`
	Degrees int     `json:"degrees"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Color   string  `json:"color"`
}

// SnapshotHover is the highlighted slot under a drag.
type SnapshotHover struct {
	Angle   float64 `json:"angle"`
	Degrees int     `json:"degrees"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// TakeSnapshot captures the current state of c.
func TakeSnapshot(c *widget.Controller) Snapshot {
	w, h := c.Size()
	snap := Snapshot{
		Variant:     c.Variant(),
		Width:       w,
		Height:      h,
		Circle:      c.Circle(),
		Action:      c.Action(),
		Cursor:      c.Cursor(),
		Selected:    c.Selected(),
		Tooltip:     c.Tooltip(),
		Panel:       c.Panel(),
		RemovalZone: c.RemovalZone(),
	}

	dots := c.Dots()
	snap.Dots = make([]SnapshotDot, len(dots))
	for i, d := range dots {
		p := c.DotPosition(i)
		snap.Dots[i] = SnapshotDot{
			Index:   i,
			Label:   widget.Label(i),
			Angle:   d.Angle,
			Degrees: ring.Degrees(d.Angle),
			X:       p.X,
			Y:       p.Y,
			Color:   d.Color,
		}
	}

	if angle, ok := c.Hover(); ok {
		p := c.Circle().PointAt(angle)
		snap.Hover = &SnapshotHover{Angle: angle, Degrees: ring.Degrees(angle), X: p.X, Y: p.Y}
	}
	return snap
}

// RenderJSON exports the widget state as a JSON document.
func RenderJSON(c *widget.Controller, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{ctx: context.Background()}
	for _, opt := range opts {
		opt(&r)
	}

	start := time.Now()
	observability.Render().OnRenderStart(r.ctx, "json", c.Len())

	snap := TakeSnapshot(c)
	snap.ID = r.id

	var (
		data []byte
		err  error
	)
	if r.compact {
		data, err = json.Marshal(snap)
	} else {
		data, err = json.MarshalIndent(snap, "", "  ")
	}
	observability.Render().OnRenderComplete(r.ctx, "json", len(data), time.Since(start), err)
	return data, err
}
