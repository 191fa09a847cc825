package render

// Stroke describes an outline.
type Stroke struct {
	Color string
	Width float64
}

// Font describes label text. Text is centered on its anchor point both
// horizontally and vertically.
type Font struct {
	Size  float64
	Color string
}

// Surface is a 2D drawing target in pixel coordinates (y grows downward).
type Surface interface {
	// Clear resets the surface to an empty width x height canvas.
	Clear(width, height float64)
	StrokeCircle(cx, cy, r float64, s Stroke)
	FillCircle(cx, cy, r float64, color string)
	Line(x1, y1, x2, y2 float64, s Stroke)
	FillRect(x, y, w, h float64, color string)
	StrokeRect(x, y, w, h float64, s Stroke)
	Text(x, y float64, text string, f Font)
}
