package render

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"

	"github.com/matzehuels/dotring/pkg/errors"
)

// Black is the fallback for colors that cannot be parsed.
var Black = color.NRGBA{A: 0xff}

// ParseColor converts a CSS color string to an RGBA value.
func ParseColor(s string) (color.NRGBA, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(v, "#"):
		return parseHex(v)
	case strings.HasPrefix(v, "rgb"):
		return parseRGB(v)
	case strings.HasPrefix(v, "hsl"):
		return parseHSL(v)
	}
	if c, ok := colornames.Map[v]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}
	return color.NRGBA{}, errors.New(errors.ErrCodeInvalidInput, "invalid color: %q", s)
}

// MustColor is ParseColor with a fallback for unparseable input.
func MustColor(s string, fallback color.NRGBA) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		return fallback
	}
	return c
}

// Hex formats c as #rrggbb, dropping alpha.
func Hex(c color.NRGBA) string {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
}

func parseHex(s string) (color.NRGBA, error) {
	digits := s[1:]
	alpha := uint8(255)

	switch len(digits) {
	case 4:
		a, err := strconv.ParseUint(digits[3:], 16, 8)
		if err != nil {
			return color.NRGBA{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid color: %q", s)
		}
		alpha = uint8(a * 17)
		digits = digits[:3]
	case 8:
		a, err := strconv.ParseUint(digits[6:], 16, 8)
		if err != nil {
			return color.NRGBA{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid color: %q", s)
		}
		alpha = uint8(a)
		digits = digits[:6]
	case 3, 6:
	default:
		return color.NRGBA{}, errors.New(errors.ErrCodeInvalidInput, "invalid color: %q", s)
	}

	c, err := colorful.Hex("#" + digits)
	if err != nil {
		return color.NRGBA{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid color: %q", s)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

// funcArgs splits "name(a, b, c)" into its arguments.
func funcArgs(s string) ([]string, bool) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return nil, false
	}
	parts := strings.Split(s[open+1:len(s)-1], ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, len(parts) == 3 || len(parts) == 4
}

// component parses a number, treating a trailing % as a fraction of full.
func component(s string, full float64) (float64, error) {
	if p, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(p, 64)
		return v / 100 * full, err
	}
	return strconv.ParseFloat(s, 64)
}

func alphaOf(args []string) (uint8, error) {
	if len(args) < 4 {
		return 255, nil
	}
	a, err := component(args[3], 1)
	if err != nil {
		return 0, err
	}
	return uint8(clamp(a, 0, 1)*255 + 0.5), nil
}

func parseRGB(s string) (color.NRGBA, error) {
	args, ok := funcArgs(s)
	if !ok {
		return color.NRGBA{}, errors.New(errors.ErrCodeInvalidInput, "invalid color: %q", s)
	}
	var rgb [3]uint8
	for i := range rgb {
		v, err := component(args[i], 255)
		if err != nil {
			return color.NRGBA{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid color: %q", s)
		}
		rgb[i] = uint8(clamp(v, 0, 255) + 0.5)
	}
	a, err := alphaOf(args)
	if err != nil {
		return color.NRGBA{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid color: %q", s)
	}
	return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: a}, nil
}

func parseHSL(s string) (color.NRGBA, error) {
	args, ok := funcArgs(s)
	if !ok {
		return color.NRGBA{}, errors.New(errors.ErrCodeInvalidInput, "invalid color: %q", s)
	}
	h, err1 := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
	sat, err2 := component(args[1], 1)
	light, err3 := component(args[2], 1)
	a, err4 := alphaOf(args)
	for _, err := range []error{err1, err2, err3, err4} {
		if err != nil {
			return color.NRGBA{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid color: %q", s)
		}
	}
	r, g, b := colorful.Hsl(h, clamp(sat, 0, 1), clamp(light, 0, 1)).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
