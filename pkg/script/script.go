// Package script replays scenario files against a widget.
//
// A scenario is a TOML document with optional widget options and a list of
// steps. Every step goes through the controller's public API, so replaying
// a scenario is indistinguishable from a user performing the same gestures:
//
//	[widget]
//	variant = "managed"
//
//	[[step]]
//	op = "drop"
//	degrees = 130
//	color = "#36A2EB"
//
//	[[step]]
//	op = "mode"
//	mode = "remove"
//
//	[[step]]
//	op = "click"
//	degrees = 120
//
// Files ending in .yaml or .yml are read as YAML, with the steps under a
// "steps" key:
//
//	widget:
//	  variant: toggle
//	steps:
//	  - op: drop
//	    degrees: 90
//	  - op: select
//	    index: 0
package script

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/dotring/pkg/errors"
	"github.com/matzehuels/dotring/pkg/ring"
	"github.com/matzehuels/dotring/pkg/widget"
)

// Op names a step.
type Op string

const (
	OpDrop           Op = "drop"
	OpClick          Op = "click"
	OpRemove         Op = "remove"
	OpRemoveSelected Op = "remove_selected"
	OpRemoveAll      Op = "remove_all"
	OpMode           Op = "mode"
	OpSelect         Op = "select"
	OpDrag           Op = "drag"
)

// ValidOps is the set of supported step operations.
var ValidOps = map[Op]bool{
	OpDrop:           true,
	OpClick:          true,
	OpRemove:         true,
	OpRemoveSelected: true,
	OpRemoveAll:      true,
	OpMode:           true,
	OpSelect:         true,
	OpDrag:           true,
}

// Step is one gesture or panel action.
//
// Positions on the ring are given in degrees. A drag starts at dot Index
// (or From, if set) and ends at To; without To it ends in the middle of the
// removal zone.
type Step struct {
	Op      Op        `toml:"op" yaml:"op"`
	Degrees *float64  `toml:"degrees" yaml:"degrees"`
	Index   *int      `toml:"index" yaml:"index"`
	Color   string    `toml:"color" yaml:"color"`
	Mode    string    `toml:"mode" yaml:"mode"`
	From    []float64 `toml:"from" yaml:"from,flow"`
	To      []float64 `toml:"to" yaml:"to,flow"`
}

// Scenario is a parsed script.
type Scenario struct {
	Widget widget.Options `toml:"widget" yaml:"widget"`
	Steps  []Step         `toml:"step" yaml:"steps"`
}

// Load reads and parses a scenario file. The extension picks the decoder:
// .yaml and .yml are YAML, anything else TOML.
func Load(path string) (*Scenario, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "script %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read script %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	}
	return Parse(data)
}

// Parse decodes a TOML scenario and checks every step.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScript, err, "parse script")
	}
	return s.validate()
}

// ParseYAML decodes a YAML scenario and checks every step.
func ParseYAML(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScript, err, "parse script")
	}
	return s.validate()
}

func (s Scenario) validate() (*Scenario, error) {
	for i, st := range s.Steps {
		if err := st.Validate(); err != nil {
			return nil, errors.Wrap(codeOf(err), err, "step %d", i)
		}
	}
	return &s, nil
}

// Validate checks that the step names a known op and carries the fields the
// op needs.
func (s Step) Validate() error {
	if !ValidOps[s.Op] {
		return errors.New(errors.ErrCodeInvalidInput, "unknown op %q", s.Op)
	}
	switch s.Op {
	case OpDrop, OpClick:
		if s.Degrees == nil {
			return errors.New(errors.ErrCodeInvalidInput, "%s requires degrees", s.Op)
		}
	case OpRemove, OpSelect:
		if s.Index == nil {
			return errors.New(errors.ErrCodeInvalidInput, "%s requires index", s.Op)
		}
	case OpMode:
		if _, err := widget.ParseAction(s.Mode); err != nil {
			return err
		}
	case OpDrag:
		if s.Index == nil && s.From == nil {
			return errors.New(errors.ErrCodeInvalidInput, "drag requires index or from")
		}
		if err := checkPoint("from", s.From); err != nil {
			return err
		}
		if err := checkPoint("to", s.To); err != nil {
			return err
		}
	}
	return nil
}

func checkPoint(name string, p []float64) error {
	if p != nil && len(p) != 2 {
		return errors.New(errors.ErrCodeInvalidInput, "%s must be [x, y], got %d values", name, len(p))
	}
	return nil
}

// New builds a controller from the scenario's widget options.
func (s *Scenario) New() (*widget.Controller, error) {
	return widget.New(s.Widget)
}

// Run applies steps to c in order and stops at the first failing step.
func Run(c *widget.Controller, steps []Step) error {
	for i, st := range steps {
		if err := apply(c, st); err != nil {
			return errors.Wrap(codeOf(err), err, "step %d (%s)", i, st.Op)
		}
	}
	return nil
}

// codeOf keeps a step failure's code so callers can tell a bad script from a
// missing dot.
func codeOf(err error) errors.Code {
	if code := errors.GetCode(err); code != "" {
		return code
	}
	return errors.ErrCodeInternal
}

func apply(c *widget.Controller, st Step) error {
	if err := st.Validate(); err != nil {
		return err
	}
	switch st.Op {
	case OpDrop:
		p := pointAt(c, *st.Degrees)
		c.Handle(widget.Event{Kind: widget.EventDragOver, X: p.X, Y: p.Y})
		c.Handle(widget.Event{
			Kind:    widget.EventDrop,
			X:       p.X,
			Y:       p.Y,
			Payload: &widget.DragPayload{Color: st.Color},
		})
	case OpClick:
		p := pointAt(c, *st.Degrees)
		c.Handle(widget.Event{Kind: widget.EventClick, X: p.X, Y: p.Y})
	case OpRemove:
		return c.RemoveSelected(strconv.Itoa(*st.Index))
	case OpRemoveSelected:
		c.RemoveSelection()
	case OpRemoveAll:
		c.RemoveAll()
	case OpMode:
		a, _ := widget.ParseAction(st.Mode)
		return c.SetAction(a)
	case OpSelect:
		return c.Select(*st.Index)
	case OpDrag:
		return drag(c, st)
	}
	return nil
}

func drag(c *widget.Controller, st Step) error {
	var from ring.Point
	switch {
	case st.From != nil:
		from = ring.Point{X: st.From[0], Y: st.From[1]}
	case *st.Index < 0 || *st.Index >= c.Len():
		return errors.New(errors.ErrCodeDotNotFound, "no dot at index %d (have %d)", *st.Index, c.Len())
	default:
		from = c.DotPosition(*st.Index)
	}

	var to ring.Point
	switch zone := c.RemovalZone(); {
	case st.To != nil:
		to = ring.Point{X: st.To[0], Y: st.To[1]}
	case zone != nil && !zone.Empty():
		to = ring.Point{X: zone.X + zone.W/2, Y: zone.Y + zone.H/2}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "drag requires to when the widget has no removal zone")
	}

	c.Handle(widget.Event{Kind: widget.EventPress, X: from.X, Y: from.Y})
	c.Handle(widget.Event{Kind: widget.EventMove, X: to.X, Y: to.Y})
	c.Frame()
	c.Handle(widget.Event{Kind: widget.EventRelease, X: to.X, Y: to.Y})
	return nil
}

func pointAt(c *widget.Controller, degrees float64) ring.Point {
	return c.Circle().PointAt(ring.Radians(degrees))
}
