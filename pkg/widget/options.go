package widget

import (
	"github.com/matzehuels/dotring/pkg/errors"
	"github.com/matzehuels/dotring/pkg/ring"
)

// Variant selects the panel layout and interaction set of a widget.
type Variant string

const (
	// VariantManaged has a tools panel with an add/remove mode switch and a
	// management panel listing every dot.
	VariantManaged Variant = "managed"

	// VariantToggle selects dots by clicking them and removes dots that are
	// dragged into the removal zone.
	VariantToggle Variant = "toggle"
)

// ValidVariants is the set of supported variants.
var ValidVariants = map[Variant]bool{
	VariantManaged: true,
	VariantToggle:  true,
}

// ParseVariant converts a name to a Variant.
func ParseVariant(s string) (Variant, error) {
	v := Variant(s)
	if !ValidVariants[v] {
		return "", errors.New(errors.ErrCodeInvalidVariant, "unknown variant %q (must be 'managed' or 'toggle')", s)
	}
	return v, nil
}

// Drawing sizes shared by every variant.
const (
	DefaultColor      = "#ff0000"
	SelectedColor     = "#4338ca"
	SelectionRadius   = 12.0
	HighlightRadius   = 8.0
	dragStartDistance = 3.0
)

// DefaultPalette is used for dots created without an explicit color.
var DefaultPalette = []string{"#FF6384", "#36A2EB", "#FFCE56", "#4BC0C0", "#9966FF", "#FF9F40"}

// Rect is an axis-aligned rectangle in surface pixels.
type Rect struct {
	X float64 `json:"x" toml:"x" yaml:"x"`
	Y float64 `json:"y" toml:"y" yaml:"y"`
	W float64 `json:"width" toml:"width" yaml:"width"`
	H float64 `json:"height" toml:"height" yaml:"height"`
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p ring.Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Options parameterizes a widget. Zero fields take the variant's defaults.
type Options struct {
	Variant       Variant  `json:"variant,omitempty" toml:"variant" yaml:"variant"`
	Width         float64  `json:"width,omitempty" toml:"width" yaml:"width"`
	Height        float64  `json:"height,omitempty" toml:"height" yaml:"height"`
	Radius        float64  `json:"radius,omitempty" toml:"radius" yaml:"radius"`
	DotRadius     float64  `json:"dot_radius,omitempty" toml:"dot_radius" yaml:"dot_radius"`
	MarkerRadius  float64  `json:"marker_radius,omitempty" toml:"marker_radius" yaml:"marker_radius"`
	NearTolerance float64  `json:"near_tolerance,omitempty" toml:"near_tolerance" yaml:"near_tolerance"`
	HitTolerance  float64  `json:"hit_tolerance,omitempty" toml:"hit_tolerance" yaml:"hit_tolerance"`
	DefaultColor  string   `json:"default_color,omitempty" toml:"default_color" yaml:"default_color"`
	Palette       []string `json:"palette,omitempty" toml:"palette" yaml:"palette"`
	RemovalZone   *Rect    `json:"removal_zone,omitempty" toml:"removal_zone" yaml:"removal_zone"`
}

// WithDefaults returns a copy of o with unset fields filled in.
func (o Options) WithDefaults() Options {
	if o.Variant == "" {
		o.Variant = VariantManaged
	}

	switch o.Variant {
	case VariantToggle:
		if o.Width == 0 {
			o.Width = 800
		}
		if o.Height == 0 {
			o.Height = 500
		}
		if o.Radius == 0 {
			o.Radius = ring.CentimetersToPixels(5)
		}
		if o.DotRadius == 0 {
			o.DotRadius = 6
		}
		if o.MarkerRadius == 0 {
			o.MarkerRadius = 3
		}
		if o.RemovalZone == nil {
			o.RemovalZone = &Rect{X: o.Width - 220, Y: 20, W: 200, H: 80}
		}
	default:
		if o.Width == 0 {
			o.Width = 1000
		}
		if o.Height == 0 {
			o.Height = 390
		}
		if o.Radius == 0 {
			o.Radius = ring.DefaultRadius
		}
		if o.DotRadius == 0 {
			o.DotRadius = 4
		}
		if o.MarkerRadius == 0 {
			o.MarkerRadius = 1
		}
	}

	if o.NearTolerance == 0 {
		o.NearTolerance = ring.NearTolerance
	}
	if o.HitTolerance == 0 {
		o.HitTolerance = ring.HitTolerance
	}
	if o.DefaultColor == "" {
		o.DefaultColor = DefaultColor
	}
	if len(o.Palette) == 0 {
		o.Palette = DefaultPalette
	}
	return o
}

// Merge returns o with every field that is set in over replaced.
func (o Options) Merge(over Options) Options {
	if over.Variant != "" {
		o.Variant = over.Variant
	}
	setFloat := func(dst *float64, v float64) {
		if v != 0 {
			*dst = v
		}
	}
	setFloat(&o.Width, over.Width)
	setFloat(&o.Height, over.Height)
	setFloat(&o.Radius, over.Radius)
	setFloat(&o.DotRadius, over.DotRadius)
	setFloat(&o.MarkerRadius, over.MarkerRadius)
	setFloat(&o.NearTolerance, over.NearTolerance)
	setFloat(&o.HitTolerance, over.HitTolerance)
	if over.DefaultColor != "" {
		o.DefaultColor = over.DefaultColor
	}
	if len(over.Palette) > 0 {
		o.Palette = over.Palette
	}
	if over.RemovalZone != nil {
		o.RemovalZone = over.RemovalZone
	}
	return o
}

// Validate checks sizes, colors and the variant name.
func (o Options) Validate() error {
	if !ValidVariants[o.Variant] {
		return errors.New(errors.ErrCodeInvalidVariant, "unknown variant %q (must be 'managed' or 'toggle')", o.Variant)
	}
	dims := []struct {
		name string
		v    float64
	}{
		{"width", o.Width},
		{"height", o.Height},
		{"radius", o.Radius},
		{"dot_radius", o.DotRadius},
		{"marker_radius", o.MarkerRadius},
		{"near_tolerance", o.NearTolerance},
		{"hit_tolerance", o.HitTolerance},
	}
	for _, d := range dims {
		if err := errors.ValidateDimension(d.name, d.v); err != nil {
			return err
		}
	}
	if err := errors.ValidateColor(o.DefaultColor); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "default_color")
	}
	for i, c := range o.Palette {
		if err := errors.ValidateColor(c); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "palette[%d]", i)
		}
	}
	return nil
}
