package sink

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/matzehuels/dotring/pkg/fonts"
	"github.com/matzehuels/dotring/pkg/observability"
	"github.com/matzehuels/dotring/pkg/render"
	"github.com/matzehuels/dotring/pkg/widget"
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	ctx        context.Context
	id         string
	background string
	fragment   bool
}

// WithSVGContext sets the context passed to render hooks.
func WithSVGContext(ctx context.Context) SVGOption { return func(r *svgRenderer) { r.ctx = ctx } }

// WithID sets the id attribute of the root element.
func WithID(id string) SVGOption { return func(r *svgRenderer) { r.id = id } }

// WithBackground paints the canvas before drawing.
func WithBackground(c string) SVGOption { return func(r *svgRenderer) { r.background = c } }

// WithFragment omits the xmlns attribute for inline embedding in HTML.
func WithFragment() SVGOption { return func(r *svgRenderer) { r.fragment = true } }

// RenderSVG draws the widget as a standalone SVG document.
func RenderSVG(c *widget.Controller, opts ...SVGOption) []byte {
	r := svgRenderer{ctx: context.Background()}
	for _, opt := range opts {
		opt(&r)
	}

	start := time.Now()
	observability.Render().OnRenderStart(r.ctx, "svg", c.Len())

	s := &svgSurface{background: r.background, id: r.id, fragment: r.fragment}
	render.Draw(s, c)
	out := s.Bytes()

	observability.Render().OnRenderComplete(r.ctx, "svg", len(out), time.Since(start), nil)
	return out
}

// svgSurface implements render.Surface by writing SVG elements.
type svgSurface struct {
	buf        bytes.Buffer
	id         string
	background string
	fragment   bool
	open       bool
}

func (s *svgSurface) Clear(w, h float64) {
	s.buf.Reset()
	s.buf.WriteString("<svg")
	if !s.fragment {
		s.buf.WriteString(` xmlns="http://www.w3.org/2000/svg"`)
	}
	if s.id != "" {
		fmt.Fprintf(&s.buf, ` id="%s"`, escapeXML(s.id))
	}
	fmt.Fprintf(&s.buf, ` viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n", w, h, w, h)
	s.open = true
	if s.background != "" {
		s.FillRect(0, 0, w, h, s.background)
	}
}

func (s *svgSurface) StrokeCircle(cx, cy, r float64, st render.Stroke) {
	fmt.Fprintf(&s.buf, `  <circle cx="%.2f" cy="%.2f" r="%.2f" fill="none" stroke="%s" stroke-width="%g"/>`+"\n",
		cx, cy, r, escapeXML(st.Color), st.Width)
}

func (s *svgSurface) FillCircle(cx, cy, r float64, c string) {
	fmt.Fprintf(&s.buf, `  <circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>`+"\n", cx, cy, r, escapeXML(c))
}

func (s *svgSurface) Line(x1, y1, x2, y2 float64, st render.Stroke) {
	fmt.Fprintf(&s.buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%g"/>`+"\n",
		x1, y1, x2, y2, escapeXML(st.Color), st.Width)
}

func (s *svgSurface) FillRect(x, y, w, h float64, c string) {
	fmt.Fprintf(&s.buf, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`+"\n", x, y, w, h, escapeXML(c))
}

func (s *svgSurface) StrokeRect(x, y, w, h float64, st render.Stroke) {
	fmt.Fprintf(&s.buf, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="none" stroke="%s" stroke-width="%g"/>`+"\n",
		x, y, w, h, escapeXML(st.Color), st.Width)
}

func (s *svgSurface) Text(x, y float64, text string, f render.Font) {
	fmt.Fprintf(&s.buf, `  <text x="%.2f" y="%.2f" font-family="%s" font-size="%g" fill="%s" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
		x, y, fonts.FallbackFontFamily, f.Size, escapeXML(f.Color), escapeXML(text))
}

// Bytes closes the document and returns it.
func (s *svgSurface) Bytes() []byte {
	if s.open {
		s.buf.WriteString("</svg>\n")
		s.open = false
	}
	return s.buf.Bytes()
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
