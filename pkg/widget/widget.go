package widget

import (
	"context"
	"fmt"
	"strconv"

	"github.com/matzehuels/dotring/pkg/errors"
	"github.com/matzehuels/dotring/pkg/observability"
	"github.com/matzehuels/dotring/pkg/ring"
)

// Action is the click mode of a managed widget.
type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
)

// ParseAction converts a name to an Action.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionAdd, ActionRemove:
		return a, nil
	}
	return "", errors.New(errors.ErrCodeInvalidAction, "unknown action %q (must be 'add' or 'remove')", s)
}

// Cursor is the pointer shape a host should show over the surface.
type Cursor string

const (
	CursorDefault    Cursor = "default"
	CursorPointer    Cursor = "pointer"
	CursorNotAllowed Cursor = "not-allowed"
	CursorGrab       Cursor = "grab"
	CursorGrabbing   Cursor = "grabbing"
)

type dragState struct {
	active  bool
	moved   bool
	index   int
	start   ring.Point
	pointer ring.Point
	pos     ring.Point
}

// Controller owns the state of one widget instance: the dot collection, the
// selection, the current mode and any hover or drag in progress.
//
// A Controller is not safe for concurrent use. Hosts deliver events from a
// single callback queue; the HTTP host serializes per widget.
type Controller struct {
	ctx      context.Context
	opts     Options
	circle   ring.Circle
	dots     []ring.Dot
	selected int
	action   Action
	cursor   Cursor

	hovering   bool
	hoverAngle float64
	tooltip    Tooltip

	drag          dragState
	suppressClick bool
	created       int

	handlers map[EventKind]Handler
}

// New builds a controller. Zero option fields take the variant's defaults.
func New(opts Options) (*Controller, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{
		ctx:  context.Background(),
		opts: opts,
		circle: ring.Circle{
			CenterX: opts.Width / 2,
			CenterY: opts.Height / 2,
			Radius:  opts.Radius,
		},
		selected: -1,
		action:   ActionAdd,
		handlers: defaultHandlers(),
	}
	c.cursor = c.modeCursor()
	return c, nil
}

// SetContext sets the context passed to observability hooks.
func (c *Controller) SetContext(ctx context.Context) {
	if ctx != nil {
		c.ctx = ctx
	}
}

// On registers h for kind, replacing any existing handler. A nil h removes it.
func (c *Controller) On(kind EventKind, h Handler) {
	if h == nil {
		delete(c.handlers, kind)
		return
	}
	c.handlers[kind] = h
}

// Handle dispatches ev to the handler registered for its kind and reports
// whether the widget needs a redraw. Unhandled kinds are ignored.
func (c *Controller) Handle(ev Event) bool {
	h, ok := c.handlers[ev.Kind]
	if !ok {
		return false
	}
	return h(c, ev)
}

// Frame runs once per display frame. While a drag is in progress it writes
// the latest pointer position into the dragged dot's draw position.
func (c *Controller) Frame() bool {
	if !c.drag.active || c.drag.pos == c.drag.pointer {
		return false
	}
	c.drag.pos = c.drag.pointer
	return true
}

// =============================================================================
// Event handlers
// =============================================================================

func (c *Controller) onDragOver(ev Event) bool {
	p := ev.Point()
	if !c.circle.Near(p, c.opts.NearTolerance) {
		c.clearHover()
		c.cursor = CursorNotAllowed
		return true
	}

	c.hovering = true
	c.hoverAngle = ring.ClosestValidPosition(c.circle.AngleOf(p), len(c.dots))
	c.cursor = CursorPointer
	c.tooltip = Tooltip{
		Visible: true,
		X:       p.X + 15,
		Y:       p.Y + 15,
		Text:    fmt.Sprintf("Position: %d°", ring.Degrees(c.hoverAngle)),
	}
	return true
}

func (c *Controller) onDragLeave(Event) bool {
	c.clearHover()
	c.cursor = c.modeCursor()
	return true
}

func (c *Controller) onDrop(ev Event) bool {
	c.cursor = c.modeCursor()
	c.tooltip = Tooltip{}
	if !c.hovering {
		return false
	}

	color := ""
	if ev.Payload != nil {
		color = ev.Payload.Color
	}
	if errors.ValidateColor(color) != nil {
		color = c.opts.DefaultColor
	}

	c.hovering = false
	c.insert(color)
	return true
}

func (c *Controller) onClick(ev Event) bool {
	if c.suppressClick {
		c.suppressClick = false
		return false
	}

	p := ev.Point()
	if !c.circle.Near(p, c.opts.NearTolerance) {
		return false
	}
	angle := c.circle.AngleOf(p)
	onCircle := c.circle.PointAt(angle)

	if c.opts.Variant == VariantToggle {
		if i, ok := ring.HitTest(onCircle, c.dots, c.circle, c.hitTolerance()); ok {
			c.toggleSelection(i)
			return true
		}
		if c.selected < 0 {
			return false
		}
		c.setSelected(-1)
		return true
	}

	switch c.action {
	case ActionRemove:
		i, ok := ring.HitTest(onCircle, c.dots, c.circle, c.opts.HitTolerance)
		if !ok {
			return false
		}
		c.remove(i)
	default:
		c.insert(c.opts.DefaultColor)
	}
	return true
}

func (c *Controller) onPress(ev Event) bool {
	if !c.draggable() {
		return false
	}
	p := ev.Point()
	i, ok := c.hitDot(p)
	if !ok {
		return false
	}
	pos := c.circle.PointAt(c.dots[i].Angle)
	c.drag = dragState{active: true, index: i, start: p, pointer: p, pos: pos}
	c.cursor = CursorGrabbing
	return true
}

func (c *Controller) onMove(ev Event) bool {
	p := ev.Point()
	if c.drag.active {
		c.drag.pointer = p
		if ring.Distance(c.drag.start, p) > dragStartDistance {
			c.drag.moved = true
		}
		c.cursor = CursorGrabbing
		return false
	}

	prev := c.cursor
	if _, ok := c.hitDot(p); ok && c.draggable() {
		c.cursor = CursorGrab
	} else {
		c.cursor = c.modeCursor()
	}
	return prev != c.cursor
}

func (c *Controller) onRelease(ev Event) bool {
	if !c.drag.active {
		return false
	}
	p := ev.Point()
	d := c.drag
	c.drag = dragState{}
	c.cursor = c.modeCursor()

	if !d.moved {
		return true
	}
	c.suppressClick = true

	if zone := c.opts.RemovalZone; zone != nil && !zone.Empty() && zone.Contains(p) {
		c.remove(d.index)
	}
	return true
}

// =============================================================================
// Operations
// =============================================================================

// SetAction switches the click mode.
func (c *Controller) SetAction(a Action) error {
	if _, err := ParseAction(string(a)); err != nil {
		return err
	}
	c.action = a
	c.clearHover()
	c.cursor = c.modeCursor()
	return nil
}

// Add appends a dot and re-spaces the ring. An invalid or empty color falls
// back to the next palette color.
func (c *Controller) Add(color string) {
	if errors.ValidateColor(color) != nil {
		color = c.nextColor()
	}
	c.insert(color)
}

// RemoveAt removes the dot at index i and re-spaces the rest.
func (c *Controller) RemoveAt(i int) error {
	if i < 0 || i >= len(c.dots) {
		return errors.New(errors.ErrCodeDotNotFound, "no dot at index %d (have %d)", i, len(c.dots))
	}
	c.remove(i)
	return nil
}

// RemoveSelected removes the dot chosen in the management panel selector.
// An empty value means nothing is chosen and is a no-op.
func (c *Controller) RemoveSelected(value string) error {
	if value == "" {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "selector value %q", value)
	}
	return c.RemoveAt(i)
}

// RemoveSelection removes the selected dot, if any.
func (c *Controller) RemoveSelection() bool {
	if c.selected < 0 {
		return false
	}
	c.remove(c.selected)
	return true
}

// RemoveAll clears the ring.
func (c *Controller) RemoveAll() {
	n := len(c.dots)
	c.dots = c.dots[:0]
	c.drag = dragState{}
	c.setSelected(-1)
	observability.Widget().OnCleared(c.ctx, n)
}

// Select marks the dot at index i as selected.
func (c *Controller) Select(i int) error {
	if i < 0 || i >= len(c.dots) {
		return errors.New(errors.ErrCodeDotNotFound, "no dot at index %d (have %d)", i, len(c.dots))
	}
	c.setSelected(i)
	return nil
}

// ClearSelection drops the selection.
func (c *Controller) ClearSelection() {
	c.setSelected(-1)
}

// =============================================================================
// Internals
// =============================================================================

// insert appends a dot and re-spaces the ring, so the new dot takes the
// last slot.
func (c *Controller) insert(color string) {
	c.dots = append(c.dots, ring.Dot{Color: color})
	c.created++
	ring.Redistribute(c.dots)
	c.setSelected(-1)
	observability.Widget().OnDotAdded(c.ctx, c.dots[len(c.dots)-1].Angle, len(c.dots))
}

// remove deletes dot i and re-spaces the ring. A drag of dot i ends; a drag
// of a later dot follows its dot to the shifted index.
func (c *Controller) remove(i int) {
	if c.drag.active {
		switch {
		case c.drag.index == i:
			c.drag = dragState{}
			c.cursor = c.modeCursor()
		case c.drag.index > i:
			c.drag.index--
		}
	}
	c.dots = append(c.dots[:i], c.dots[i+1:]...)
	ring.Redistribute(c.dots)
	c.setSelected(-1)
	observability.Widget().OnDotRemoved(c.ctx, i, len(c.dots))
}

func (c *Controller) toggleSelection(i int) {
	if c.selected == i {
		c.setSelected(-1)
		return
	}
	c.setSelected(i)
}

func (c *Controller) setSelected(i int) {
	if c.selected == i {
		return
	}
	c.selected = i
	observability.Widget().OnSelectionChanged(c.ctx, i)
}

func (c *Controller) clearHover() {
	c.hovering = false
	c.hoverAngle = 0
	c.tooltip = Tooltip{}
}

// modeCursor is the cursor shown when no drag or hover is in progress.
func (c *Controller) modeCursor() Cursor {
	switch {
	case c.opts.Variant == VariantToggle:
		return CursorDefault
	case c.action == ActionRemove:
		return CursorNotAllowed
	default:
		return CursorPointer
	}
}

func (c *Controller) draggable() bool {
	return c.opts.Variant == VariantToggle || c.action == ActionAdd
}

func (c *Controller) hitTolerance() float64 {
	return max(c.opts.HitTolerance, c.opts.DotRadius)
}

func (c *Controller) hitDot(p ring.Point) (int, bool) {
	return ring.HitTest(p, c.dots, c.circle, c.hitTolerance())
}

func (c *Controller) nextColor() string {
	return c.opts.Palette[c.created%len(c.opts.Palette)]
}
