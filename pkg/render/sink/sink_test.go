package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/dotring/pkg/errors"
	"github.com/matzehuels/dotring/pkg/observability"
	"github.com/matzehuels/dotring/pkg/ring"
	"github.com/matzehuels/dotring/pkg/widget"
)

func newWidget(t *testing.T, opts widget.Options, colors ...string) *widget.Controller {
	t.Helper()
	c, err := widget.New(opts)
	if err != nil {
		t.Fatal(err)
	}
	for _, col := range colors {
		c.Add(col)
	}
	return c
}

type renderRecorder struct {
	observability.NoopRenderHooks
	started, completed []string
}

func (r *renderRecorder) OnRenderStart(_ context.Context, format string, _ int) {
	r.started = append(r.started, format)
}

func (r *renderRecorder) OnRenderComplete(_ context.Context, format string, _ int, _ time.Duration, _ error) {
	r.completed = append(r.completed, format)
}

func TestRenderSVG(t *testing.T) {
	c := newWidget(t, widget.Options{}, "#ff0000", "#00ff00")
	_ = c.Select(0)
	out := string(RenderSVG(c, WithID(`w<1>`)))

	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg"`,
		`id="w&lt;1&gt;"`,
		`viewBox="0 0 1000.0 390.0" width="1000" height="390"`,
		`fill="none" stroke="#000" stroke-width="2"`,
		`fill="#4338ca"`,
		`fill="#00ff00"`,
		`>#1</text>`,
		`>#2</text>`,
		"</svg>\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderSVG() missing %q\nGot: %s", want, out)
		}
	}
	if strings.Count(out, "<svg") != 1 || strings.Count(out, "</svg>") != 1 {
		t.Errorf("RenderSVG() is not a single document:\n%s", out)
	}
}

func TestRenderSVGFragment(t *testing.T) {
	c := newWidget(t, widget.Options{})
	out := string(RenderSVG(c, WithFragment(), WithBackground("white")))
	if strings.Contains(out, "xmlns") {
		t.Error("fragment carries an xmlns attribute")
	}
	if !strings.Contains(out, `<rect x="0.00" y="0.00" width="1000.00" height="390.00" fill="white"/>`) {
		t.Errorf("background missing:\n%s", out)
	}
}

func TestRenderSVGEscapesColors(t *testing.T) {
	c := newWidget(t, widget.Options{Palette: []string{`rgb(1, 2, 3)`}}, "")
	out := string(RenderSVG(c))
	if !strings.Contains(out, `fill="rgb(1, 2, 3)"`) {
		t.Errorf("palette color not drawn:\n%s", out)
	}
}

func TestRenderPNG(t *testing.T) {
	c := newWidget(t, widget.Options{Variant: widget.VariantToggle}, "", "", "")
	data, err := RenderPNG(c, WithScale(1))
	if err != nil {
		t.Fatalf("RenderPNG() error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 500 {
		t.Errorf("bounds = %v, want 800x500", b)
	}

	// The ring passes through the top of the circle; the background does not.
	top := c.Circle().PointAt(ring.Radians(270))
	r, g, b, _ := img.At(int(top.X), int(top.Y)).RGBA()
	if r > 0x8000 || g > 0x8000 || b > 0x8000 {
		t.Errorf("ring pixel at %+v = (%d, %d, %d), want dark", top, r>>8, g>>8, b>>8)
	}
	r, g, b, _ = img.At(5, 495).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Errorf("corner pixel = (%d, %d, %d), want white", r>>8, g>>8, b>>8)
	}
}

func TestRenderPNGScale(t *testing.T) {
	c := newWidget(t, widget.Options{Width: 100, Height: 50, Radius: 20})
	data, err := RenderPNG(c)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 200 || cfg.Height != 100 {
		t.Errorf("default scale size = %dx%d, want 200x100", cfg.Width, cfg.Height)
	}

	if _, err := RenderPNG(c, WithScale(0)); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("RenderPNG(scale 0) error = %v, want INVALID_INPUT", err)
	}
}

func TestRenderJSON(t *testing.T) {
	c := newWidget(t, widget.Options{}, "#111111", "#222222", "#333333")
	p := c.Circle().PointAt(ring.Radians(50))
	c.Handle(widget.Event{Kind: widget.EventDragOver, X: p.X, Y: p.Y})

	data, err := RenderJSON(c, WithJSONID("abc"))
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}

	if snap.ID != "abc" || snap.Variant != widget.VariantManaged {
		t.Errorf("ID, Variant = %q, %q", snap.ID, snap.Variant)
	}
	if snap.Width != 1000 || snap.Height != 390 {
		t.Errorf("size = %vx%v, want 1000x390", snap.Width, snap.Height)
	}
	if len(snap.Dots) != 3 {
		t.Fatalf("Dots count = %d, want 3", len(snap.Dots))
	}
	wantDeg := []int{0, 120, 240}
	for i, d := range snap.Dots {
		if d.Degrees != wantDeg[i] || d.Index != i || d.Label != widget.Label(i) {
			t.Errorf("Dots[%d] = %+v", i, d)
		}
	}
	if snap.Selected != -1 {
		t.Errorf("Selected = %d, want -1", snap.Selected)
	}
	if snap.Hover == nil || snap.Hover.Degrees != 90 {
		t.Errorf("Hover = %+v, want 90°", snap.Hover)
	}
	if !snap.Tooltip.Visible || snap.Tooltip.Text != "Position: 90°" {
		t.Errorf("Tooltip = %+v", snap.Tooltip)
	}
	if snap.Panel.CountText != "Dots on circle: 3" {
		t.Errorf("Panel.CountText = %q", snap.Panel.CountText)
	}
}

func TestRenderJSONCompact(t *testing.T) {
	c := newWidget(t, widget.Options{})
	data, err := RenderJSON(c, WithJSONCompact())
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(data, []byte("\n")) {
		t.Error("compact JSON contains newlines")
	}
	if !bytes.Contains(data, []byte(`"dots":[]`)) {
		t.Errorf("empty ring should encode dots as []: %s", data)
	}
}

func TestRenderMarkup(t *testing.T) {
	c := newWidget(t, widget.Options{}, "", "")
	_ = c.SetAction(widget.ActionRemove)

	data, err := RenderMarkup(c, WithMarkupID("w1"))
	if err != nil {
		t.Fatalf("RenderMarkup() error: %v", err)
	}
	out := string(data)
	for _, want := range []string{
		`id="dotring-w1"`,
		`data-api="/api/widgets/w1"`,
		`<option value="remove" selected>Remove a dot</option>`,
		`Dots on circle: 2`,
		`<option value="1">Dot #2</option>`,
		`data-color="#FF6384"`,
		`<svg viewBox=`,
		`data-cursor="not-allowed"`,
		`fetch(api + path, init)`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderMarkup() missing %q", want)
		}
	}
	if strings.Contains(out, "<!doctype html>") {
		t.Error("fragment rendered as a full page")
	}
	if strings.Contains(out, `data-role="selector" hidden`) {
		t.Error("selector hidden in remove mode")
	}
}

func TestRenderMarkupToggle(t *testing.T) {
	c := newWidget(t, widget.Options{Variant: widget.VariantToggle})
	data, err := RenderMarkup(c, WithMarkupID("t"), WithBasePath("/w"), WithPage("Ring"))
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.HasPrefix(out, "<!doctype html>") || !strings.Contains(out, "<title>Ring</title>") {
		t.Errorf("page wrapper missing:\n%.200s", out)
	}
	if strings.Contains(out, `<select class="action-dropdown"`) || strings.Contains(out, `<select data-role="selector"`) {
		t.Error("toggle widget rendered managed-only controls")
	}
	if !strings.Contains(out, `data-role="panel" hidden`) {
		t.Error("panel visible on an empty ring")
	}
	if !strings.Contains(out, `data-api="/w/t"`) {
		t.Error("base path not applied")
	}
	if !strings.Contains(out, `Removal Zone`) {
		t.Error("removal zone missing from inline drawing")
	}
}

func TestRenderMarkupEscapesID(t *testing.T) {
	c := newWidget(t, widget.Options{})
	data, err := RenderMarkup(c, WithMarkupID(`"><script>x</script>`))
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(data, []byte("<script>x</script>")) {
		t.Error("widget id was not escaped")
	}
}

func TestRenderMarkupRequiresID(t *testing.T) {
	c := newWidget(t, widget.Options{})
	if _, err := RenderMarkup(c); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("RenderMarkup() without id error = %v", err)
	}
}

func TestRenderHooks(t *testing.T) {
	rec := &renderRecorder{}
	observability.SetRenderHooks(rec)
	t.Cleanup(observability.Reset)

	c := newWidget(t, widget.Options{}, "")
	RenderSVG(c)
	if _, err := RenderJSON(c); err != nil {
		t.Fatal(err)
	}
	if _, err := RenderPNG(c, WithScale(0.5)); err != nil {
		t.Fatal(err)
	}

	want := []string{"svg", "json", "png"}
	if strings.Join(rec.started, ",") != strings.Join(want, ",") {
		t.Errorf("started = %v, want %v", rec.started, want)
	}
	if strings.Join(rec.completed, ",") != strings.Join(want, ",") {
		t.Errorf("completed = %v, want %v", rec.completed, want)
	}
}
