package render

import (
	"fmt"
	"image/color"
	"strings"
	"testing"

	"github.com/matzehuels/dotring/pkg/ring"
	"github.com/matzehuels/dotring/pkg/widget"
)

// recorder logs every call as a line of text.
type recorder struct {
	ops []string
}

func (r *recorder) Clear(w, h float64) { r.ops = append(r.ops, fmt.Sprintf("clear %.0fx%.0f", w, h)) }
func (r *recorder) StrokeCircle(cx, cy, rad float64, s Stroke) {
	r.ops = append(r.ops, fmt.Sprintf("stroke-circle r=%g %s/%g", rad, s.Color, s.Width))
}
func (r *recorder) FillCircle(cx, cy, rad float64, c string) {
	r.ops = append(r.ops, fmt.Sprintf("fill-circle r=%g %s", rad, c))
}
func (r *recorder) Line(x1, y1, x2, y2 float64, s Stroke) { r.ops = append(r.ops, "line") }
func (r *recorder) FillRect(x, y, w, h float64, c string) {
	r.ops = append(r.ops, fmt.Sprintf("fill-rect %s", c))
}
func (r *recorder) StrokeRect(x, y, w, h float64, s Stroke) {
	r.ops = append(r.ops, fmt.Sprintf("stroke-rect %s", s.Color))
}
func (r *recorder) Text(x, y float64, text string, f Font) {
	r.ops = append(r.ops, fmt.Sprintf("text %q %g %s", text, f.Size, f.Color))
}

func (r *recorder) count(prefix string) int {
	n := 0
	for _, op := range r.ops {
		if strings.HasPrefix(op, prefix) {
			n++
		}
	}
	return n
}

func (r *recorder) has(op string) bool {
	for _, o := range r.ops {
		if o == op {
			return true
		}
	}
	return false
}

func newWidget(t *testing.T, opts widget.Options, dots int) *widget.Controller {
	t.Helper()
	c, err := widget.New(opts)
	if err != nil {
		t.Fatal(err)
	}
	for range dots {
		c.Add("")
	}
	return c
}

func TestDrawEmptyRing(t *testing.T) {
	c := newWidget(t, widget.Options{}, 0)
	var r recorder
	Draw(&r, c)

	want := []string{
		"clear 1000x390",
		fmt.Sprintf("stroke-circle r=%g #000/2", ring.DefaultRadius),
	}
	if len(r.ops) != len(want) {
		t.Fatalf("ops = %v, want %v", r.ops, want)
	}
	for i := range want {
		if r.ops[i] != want[i] {
			t.Errorf("ops[%d] = %q, want %q", i, r.ops[i], want[i])
		}
	}
}

func TestDrawDotsAndMarkers(t *testing.T) {
	c := newWidget(t, widget.Options{}, 3)
	_ = c.Select(1)

	var r recorder
	Draw(&r, c)

	if got := r.count("fill-circle r=1 " + MarkerColor); got != 4 {
		t.Errorf("markers = %d, want 4", got)
	}
	if !r.has(`text "#2" 12 #4338ca`) {
		t.Errorf("selected label missing: %v", r.ops)
	}
	if !r.has(`text "#1" 10 #666`) || !r.has(`text "#3" 10 #666`) {
		t.Errorf("unselected labels missing: %v", r.ops)
	}
	if got := r.count("stroke-circle r=12 #4338ca/2"); got != 1 {
		t.Errorf("selection rings = %d, want 1", got)
	}
	if got := r.count("fill-circle r=4 #4338ca"); got != 1 {
		t.Errorf("selected fills = %d, want 1", got)
	}

	_ = c.SetAction(widget.ActionRemove)
	r = recorder{}
	Draw(&r, c)
	if got := r.count("fill-circle r=1 "); got != 0 {
		t.Errorf("markers drawn in remove mode: %d", got)
	}
}

func TestDrawHoverAndTooltip(t *testing.T) {
	c := newWidget(t, widget.Options{}, 1)
	p := c.Circle().PointAt(ring.Radians(175))
	c.Handle(widget.Event{Kind: widget.EventDragOver, X: p.X, Y: p.Y})

	var r recorder
	Draw(&r, c)
	if !r.has("fill-circle r=8 " + HighlightColor) {
		t.Errorf("hover highlight missing: %v", r.ops)
	}
	if !r.has(`text "Position: 180°" 12 #111`) {
		t.Errorf("tooltip missing: %v", r.ops)
	}
}

func TestDrawRemovalZone(t *testing.T) {
	c := newWidget(t, widget.Options{Variant: widget.VariantToggle}, 2)
	var r recorder
	Draw(&r, c)
	if !r.has("fill-rect "+ZoneFill) || !r.has("stroke-rect "+ZoneBorder) {
		t.Errorf("removal zone missing: %v", r.ops)
	}
	if !r.has(`text "Removal Zone" 16 #333`) {
		t.Errorf("removal zone label missing: %v", r.ops)
	}

	managed := newWidget(t, widget.Options{}, 2)
	r = recorder{}
	Draw(&r, managed)
	if r.count("fill-rect") != 0 {
		t.Error("managed widget drew a removal zone")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#ff0000", color.NRGBA{255, 0, 0, 255}},
		{"#F00", color.NRGBA{255, 0, 0, 255}},
		{"#4338ca", color.NRGBA{0x43, 0x38, 0xca, 255}},
		{"#00ff0080", color.NRGBA{0, 255, 0, 128}},
		{"#0f08", color.NRGBA{0, 255, 0, 136}},
		{"rgb(100, 100, 100)", color.NRGBA{100, 100, 100, 255}},
		{"rgba(22, 17, 17, 0.5)", color.NRGBA{22, 17, 17, 128}},
		{"rgb(100%, 0%, 0%)", color.NRGBA{255, 0, 0, 255}},
		{"hsl(0, 100%, 50%)", color.NRGBA{255, 0, 0, 255}},
		{"hsla(120, 100%, 50%, 1)", color.NRGBA{0, 255, 0, 255}},
		{"white", color.NRGBA{255, 255, 255, 255}},
		{" Teal ", color.NRGBA{0, 128, 128, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if err != nil {
				t.Fatalf("ParseColor(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseColorInvalid(t *testing.T) {
	for _, in := range []string{"", "#12", "#zzzzzz", "rgb(1, 2)", "rgb(a, b, c)", "notacolor", "hsl(x, 1, 1)"} {
		if _, err := ParseColor(in); err == nil {
			t.Errorf("ParseColor(%q) succeeded, want error", in)
		}
	}
}

func TestHex(t *testing.T) {
	if got := Hex(color.NRGBA{0x43, 0x38, 0xca, 10}); got != "#4338ca" {
		t.Errorf("Hex() = %q, want #4338ca", got)
	}
	fallback := color.NRGBA{1, 2, 3, 255}
	if got := MustColor("bogus", fallback); got != fallback {
		t.Errorf("MustColor(bogus) = %v, want fallback", got)
	}
}
