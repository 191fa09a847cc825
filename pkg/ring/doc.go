// Package ring computes equally spaced dot layouts on a circle.
//
// # Overview
//
// A ring holds N dots at angles 2πi/N, starting at angle 0 (pointing right)
// and advancing clockwise in screen coordinates (y grows downward). Every
// insertion or deletion is followed by [Redistribute], so the set is always
// evenly spaced and no two dots share an angle.
//
// Pointer input is mapped onto the ring in two steps:
//
//  1. [Circle.Near] gates whether a point is close enough to the circumference
//     to count as a placement at all.
//  2. [ClosestValidPosition] snaps the raw pointer angle to the nearest slot of
//     the layout the ring will have after the insertion.
//
// Existing dots are picked with [HitTest], a linear scan over the on-circle
// positions. Rings hold a handful of dots, so no spatial index is kept.
//
// # Usage
//
//	c := ring.Circle{CenterX: 500, CenterY: 195, Radius: ring.DefaultRadius}
//	dots := []ring.Dot{}
//
//	p := ring.Point{X: 640, Y: 240}
//	if c.Near(p, ring.NearTolerance) {
//	    angle := ring.ClosestValidPosition(c.AngleOf(p), len(dots))
//	    dots = append(dots, ring.Dot{Angle: angle, Color: "#ff0000"})
//	    ring.Redistribute(dots)
//	}
//
// All functions are pure; the package holds no state.
package ring
