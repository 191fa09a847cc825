package widget

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/dotring/pkg/ring"
)

// Tooltip is the floating position readout shown while a drag hovers over
// the ring.
type Tooltip struct {
	Visible bool    `json:"visible"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Text    string  `json:"text,omitempty"`
}

// SelectorOption is one entry of the management panel's dot selector.
type SelectorOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Panel is the dot management panel beside the ring.
type Panel struct {
	Visible         bool             `json:"visible"`
	Count           int              `json:"count"`
	CountText       string           `json:"count_text"`
	SelectorVisible bool             `json:"selector_visible"`
	Options         []SelectorOption `json:"options"`
	RemoveLabel     string           `json:"remove_label"`
	RemoveEnabled   bool             `json:"remove_enabled"`
}

// Dots returns a copy of the dot collection in index order.
func (c *Controller) Dots() []ring.Dot {
	out := make([]ring.Dot, len(c.dots))
	copy(out, c.dots)
	return out
}

// Len returns the number of dots on the ring.
func (c *Controller) Len() int { return len(c.dots) }

// Selected returns the selected index, or -1 when nothing is selected.
func (c *Controller) Selected() int { return c.selected }

// Hover returns the snapped angle under a drag in progress.
func (c *Controller) Hover() (float64, bool) { return c.hoverAngle, c.hovering }

func (c *Controller) Tooltip() Tooltip     { return c.tooltip }
func (c *Controller) Cursor() Cursor       { return c.cursor }
func (c *Controller) Action() Action       { return c.action }
func (c *Controller) Variant() Variant     { return c.opts.Variant }
func (c *Controller) Options() Options     { return c.opts }
func (c *Controller) Circle() ring.Circle  { return c.circle }
func (c *Controller) RemovalZone() *Rect   { return c.opts.RemovalZone }
func (c *Controller) DotRadius() float64   { return c.opts.DotRadius }
func (c *Controller) Size() (w, h float64) { return c.opts.Width, c.opts.Height }

// Panel reports the management panel. It is hidden while the ring is empty.
// Managed widgets remove through the selector, which is listed in remove
// mode; toggle widgets remove the selected dot.
func (c *Controller) Panel() Panel {
	p := Panel{
		Visible:   len(c.dots) > 0,
		Count:     len(c.dots),
		CountText: fmt.Sprintf("Dots on circle: %d", len(c.dots)),
		Options:   make([]SelectorOption, len(c.dots)),
	}
	for i := range c.dots {
		p.Options[i] = SelectorOption{Value: strconv.Itoa(i), Label: "Dot " + Label(i)}
	}

	switch {
	case c.opts.Variant == VariantManaged:
		p.SelectorVisible = c.action == ActionRemove
		p.RemoveLabel = "Remove Selected Dot"
		p.RemoveEnabled = true
	case c.selected >= 0:
		p.RemoveLabel = "Remove Dot " + Label(c.selected)
		p.RemoveEnabled = true
	default:
		p.RemoveLabel = "Select a dot to remove"
	}
	return p
}

// Label is the display name of the dot at index i.
func Label(i int) string {
	return "#" + strconv.Itoa(i+1)
}

// PotentialPositions returns the slots a new dot could take. Markers are only
// shown in add mode once the ring has at least one dot.
func (c *Controller) PotentialPositions() []ring.Point {
	if c.action != ActionAdd || len(c.dots) == 0 {
		return nil
	}
	angles := ring.EquallySpaced(len(c.dots) + 1)
	out := make([]ring.Point, len(angles))
	for i, a := range angles {
		out[i] = c.circle.PointAt(a)
	}
	return out
}

// DragPosition returns the dragged dot's index and its draw position as of
// the last Frame.
func (c *Controller) DragPosition() (int, ring.Point, bool) {
	if !c.drag.active {
		return -1, ring.Point{}, false
	}
	return c.drag.index, c.drag.pos, true
}

// DotPosition returns where dot i is drawn, honoring an active drag.
func (c *Controller) DotPosition(i int) ring.Point {
	if c.drag.active && c.drag.index == i {
		return c.drag.pos
	}
	return c.circle.PointAt(c.dots[i].Angle)
}
