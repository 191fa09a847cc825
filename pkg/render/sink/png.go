package sink

import (
	"bytes"
	"context"
	"image/color"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/matzehuels/dotring/pkg/errors"
	"github.com/matzehuels/dotring/pkg/fonts"
	"github.com/matzehuels/dotring/pkg/observability"
	"github.com/matzehuels/dotring/pkg/render"
	"github.com/matzehuels/dotring/pkg/widget"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	ctx        context.Context
	scale      float64
	background string
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// WithPNGBackground sets the canvas color (default white).
func WithPNGBackground(c string) PNGOption {
	return func(r *pngRenderer) { r.background = c }
}

// WithPNGContext sets the context passed to render hooks.
func WithPNGContext(ctx context.Context) PNGOption {
	return func(r *pngRenderer) { r.ctx = ctx }
}

// RenderPNG rasterizes the widget.
func RenderPNG(c *widget.Controller, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{ctx: context.Background(), scale: 2.0, background: "#ffffff"}
	for _, opt := range opts {
		opt(&r)
	}
	if err := errors.ValidateDimension("scale", r.scale); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Render().OnRenderStart(r.ctx, "png", c.Len())

	s := &pngSurface{scale: r.scale, background: render.MustColor(r.background, color.NRGBA{255, 255, 255, 255})}
	render.Draw(s, c)

	var buf bytes.Buffer
	err := s.dc.EncodePNG(&buf)
	if err != nil {
		err = errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	observability.Render().OnRenderComplete(r.ctx, "png", buf.Len(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// pngSurface implements render.Surface on a gg context.
type pngSurface struct {
	dc         *gg.Context
	scale      float64
	background color.NRGBA
	faces      map[float64]font.Face
}

func (s *pngSurface) Clear(w, h float64) {
	s.dc = gg.NewContext(int(w*s.scale+0.5), int(h*s.scale+0.5))
	s.dc.Scale(s.scale, s.scale)
	s.dc.SetColor(s.background)
	s.dc.Clear()
}

func (s *pngSurface) StrokeCircle(cx, cy, r float64, st render.Stroke) {
	s.dc.DrawCircle(cx, cy, r)
	s.stroke(st)
}

func (s *pngSurface) FillCircle(cx, cy, r float64, c string) {
	s.dc.DrawCircle(cx, cy, r)
	s.dc.SetColor(render.MustColor(c, render.Black))
	s.dc.Fill()
}

func (s *pngSurface) Line(x1, y1, x2, y2 float64, st render.Stroke) {
	s.dc.DrawLine(x1, y1, x2, y2)
	s.stroke(st)
}

func (s *pngSurface) FillRect(x, y, w, h float64, c string) {
	s.dc.DrawRectangle(x, y, w, h)
	s.dc.SetColor(render.MustColor(c, render.Black))
	s.dc.Fill()
}

func (s *pngSurface) StrokeRect(x, y, w, h float64, st render.Stroke) {
	s.dc.DrawRectangle(x, y, w, h)
	s.stroke(st)
}

func (s *pngSurface) Text(x, y float64, text string, f render.Font) {
	if face := s.face(f.Size); face != nil {
		s.dc.SetFontFace(face)
	}
	s.dc.SetColor(render.MustColor(f.Color, render.Black))
	s.dc.DrawStringAnchored(text, x, y, 0.5, 0.35)
}

func (s *pngSurface) stroke(st render.Stroke) {
	s.dc.SetColor(render.MustColor(st.Color, render.Black))
	s.dc.SetLineWidth(st.Width * s.scale)
	s.dc.Stroke()
}

// face returns a label face at size, or nil to keep gg's built-in face.
func (s *pngSurface) face(size float64) font.Face {
	if f, ok := s.faces[size]; ok {
		return f
	}
	f, err := fonts.Face(size)
	if err != nil {
		return nil
	}
	if s.faces == nil {
		s.faces = make(map[float64]font.Face)
	}
	s.faces[size] = f
	return f
}
