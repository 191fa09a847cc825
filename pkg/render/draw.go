package render

import (
	"github.com/matzehuels/dotring/pkg/widget"
)

// Paint colors used by Draw.
const (
	RingColor        = "#000"
	MarkerColor      = "rgba(100, 100, 100, 0.3)"
	HighlightColor   = "rgba(22, 17, 17, 0.5)"
	LabelColor       = "#666"
	ZoneFill         = "rgba(200, 200, 200, 0.5)"
	ZoneBorder       = "#ff4040"
	ZoneLabelColor   = "#333"
	TooltipColor     = "#111"
	SelectedOutline  = "#ffffff"
	UnselectedStroke = "#000"
)

// Draw repaints c onto s.
func Draw(s Surface, c *widget.Controller) {
	w, h := c.Size()
	s.Clear(w, h)

	if zone := c.RemovalZone(); zone != nil && !zone.Empty() {
		drawRemovalZone(s, *zone)
	}

	circle := c.Circle()
	s.StrokeCircle(circle.CenterX, circle.CenterY, circle.Radius, Stroke{Color: RingColor, Width: 2})

	markerRadius := c.Options().MarkerRadius
	for _, p := range c.PotentialPositions() {
		s.FillCircle(p.X, p.Y, markerRadius, MarkerColor)
	}

	dotRadius := c.DotRadius()
	selected := c.Selected()
	for i, d := range c.Dots() {
		p := c.DotPosition(i)
		if i == selected {
			s.FillCircle(p.X, p.Y, dotRadius, widget.SelectedColor)
			s.StrokeCircle(p.X, p.Y, dotRadius, Stroke{Color: SelectedOutline, Width: 2})
			s.StrokeCircle(p.X, p.Y, widget.SelectionRadius, Stroke{Color: widget.SelectedColor, Width: 2})
			s.Text(p.X, p.Y-20, widget.Label(i), Font{Size: 12, Color: widget.SelectedColor})
			continue
		}
		s.FillCircle(p.X, p.Y, dotRadius, d.Color)
		s.StrokeCircle(p.X, p.Y, dotRadius, Stroke{Color: UnselectedStroke, Width: 1})
		s.Text(p.X, p.Y-15, widget.Label(i), Font{Size: 10, Color: LabelColor})
	}

	if angle, ok := c.Hover(); ok {
		p := circle.PointAt(angle)
		s.FillCircle(p.X, p.Y, widget.HighlightRadius, HighlightColor)
	}

	if tip := c.Tooltip(); tip.Visible {
		s.Text(tip.X, tip.Y, tip.Text, Font{Size: 12, Color: TooltipColor})
	}
}

func drawRemovalZone(s Surface, z widget.Rect) {
	s.FillRect(z.X, z.Y, z.W, z.H, ZoneFill)
	s.StrokeRect(z.X, z.Y, z.W, z.H, Stroke{Color: ZoneBorder, Width: 2})
	s.Text(z.X+z.W/2, z.Y+z.H/2, "Removal Zone", Font{Size: 16, Color: ZoneLabelColor})
}
