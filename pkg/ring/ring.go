package ring

import (
	"math"
)

// Pixel constants for the default ring.
const (
	// PixelsPerInch is the CSS reference density.
	PixelsPerInch = 96.0

	// NearTolerance is how far (px) a pointer may sit from the circumference
	// and still count as on the circle.
	NearTolerance = 20.0

	// HitTolerance is the pick radius (px) around a placed dot.
	HitTolerance = 10.0
)

// DefaultRadius is a 4cm ring at 96 dpi.
var DefaultRadius = CentimetersToPixels(4)

// CentimetersToPixels converts a physical length to CSS pixels.
func CentimetersToPixels(cm float64) float64 {
	return cm / 2.54 * PixelsPerInch
}

// Point is a position in surface pixels (y grows downward).
type Point struct {
	X, Y float64
}

// Distance returns the Euclidean distance between p and q.
func Distance(p, q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Dot is a marker on the ring. Its identity is its index in the owning slice.
type Dot struct {
	Angle float64 `json:"angle"` // radians
	Color string  `json:"color"`
}

// Circle is the fixed ring geometry of a widget.
type Circle struct {
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
	Radius  float64 `json:"radius"`
}

// Center returns the circle's center point.
func (c Circle) Center() Point {
	return Point{X: c.CenterX, Y: c.CenterY}
}

// PointAt returns the position on the circumference at angle.
func (c Circle) PointAt(angle float64) Point {
	return Point{
		X: c.CenterX + c.Radius*math.Cos(angle),
		Y: c.CenterY + c.Radius*math.Sin(angle),
	}
}

// AngleOf returns the angle from the center to p, in (-π, π].
func (c Circle) AngleOf(p Point) float64 {
	return math.Atan2(p.Y-c.CenterY, p.X-c.CenterX)
}

// Near reports whether p lies within tolerance of the circumference.
func (c Circle) Near(p Point, tolerance float64) bool {
	return math.Abs(Distance(p, c.Center())-c.Radius) <= tolerance
}

// EquallySpaced returns n angles 2πi/n for i in [0, n), starting at 0.
// It returns an empty slice for n <= 0.
func EquallySpaced(n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	step := 2 * math.Pi / float64(n)
	angles := make([]float64, n)
	for i := range angles {
		angles[i] = float64(i) * step
	}
	return angles
}

// Redistribute re-spaces dots in place to EquallySpaced(len(dots)),
// keeping index order and colors.
func Redistribute(dots []Dot) {
	if len(dots) == 0 {
		return
	}
	for i, a := range EquallySpaced(len(dots)) {
		dots[i].Angle = a
	}
}

// NormalizeAngle maps a into [-π, π).
func NormalizeAngle(a float64) float64 {
	m := math.Mod(a+math.Pi, 2*math.Pi)
	if m < 0 {
		m += 2 * math.Pi
	}
	return m - math.Pi
}

// tieTolerance absorbs rounding in NormalizeAngle, so a candidate exactly
// halfway between two slots compares equal to both.
const tieTolerance = 1e-9

// ClosestValidPosition snaps candidate to the nearest slot of the layout a
// ring of count dots will have after one insertion. Ties resolve to the
// lowest slot index.
func ClosestValidPosition(candidate float64, count int) float64 {
	if count < 0 {
		count = 0
	}
	slots := EquallySpaced(count + 1)

	best := slots[0]
	bestDiff := math.Abs(NormalizeAngle(candidate - slots[0]))
	for _, s := range slots[1:] {
		if d := math.Abs(NormalizeAngle(candidate - s)); d < bestDiff-tieTolerance {
			best, bestDiff = s, d
		}
	}
	return best
}

// HitTest returns the index of the first dot whose position on c lies within
// tolerance of p.
func HitTest(p Point, dots []Dot, c Circle, tolerance float64) (int, bool) {
	for i, d := range dots {
		if Distance(p, c.PointAt(d.Angle)) <= tolerance {
			return i, true
		}
	}
	return -1, false
}

// Degrees converts an angle to whole degrees in [0, 360).
func Degrees(angle float64) int {
	d := int(math.Round(angle * 180 / math.Pi))
	return ((d % 360) + 360) % 360
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}
