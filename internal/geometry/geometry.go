// Package geometry places targets on a ring around the canvas centre.
package geometry

import "math"

// Point is a position on the experiment canvas.
type Point struct {
	X float64
	Y float64
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns p multiplied by f.
func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Target is a circular click target.
type Target struct {
	Center Point
	Radius float64
	Marked bool
}

// Contains reports whether p lies strictly inside the target.
// A point exactly on the boundary is outside.
func (t Target) Contains(p Point) bool {
	return Dist(t.Center, p) < t.Radius
}

// Dist returns the Euclidean distance between a and b.
func Dist(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Ring places count targets evenly around center. Target i sits at angle
// i*2π/count, distance away from center. A count below one yields no targets.
func Ring(count int, radius, distance float64, center Point) []Target {
	if count <= 0 {
		return nil
	}
	step := 2 * math.Pi / float64(count)
	targets := make([]Target, 0, count)
	for i := 0; i < count; i++ {
		angle := step * float64(i)
		targets = append(targets, Target{
			Center: Point{
				X: center.X + distance*math.Cos(angle),
				Y: center.Y + distance*math.Sin(angle),
			},
			Radius: radius,
		})
	}
	return targets
}
