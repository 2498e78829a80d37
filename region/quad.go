package region

import (
	"errors"
	"fmt"
	"math"
)

// Point is a coordinate in source-image pixel space.
type Point struct {
	X, Y float64
}

// Quad is a closed four-point polygon. The order of the points is the edge
// order; the last point connects back to the first.
type Quad [4]Point

// ErrDegenerateRegion matches any *DegenerateRegionError.
var ErrDegenerateRegion = errors.New("degenerate region")

// DegenerateRegionError reports a quad with no usable area.
type DegenerateRegionError struct {
	Quad   Quad
	Reason string
}

func (e *DegenerateRegionError) Error() string {
	return fmt.Sprintf("degenerate region %v: %s", e.Quad, e.Reason)
}

func (e *DegenerateRegionError) Is(target error) bool {
	return target == ErrDegenerateRegion
}

// QuadFromRect builds the axis-aligned quad of a [x, y, w, h] box.
func QuadFromRect(x, y, w, h float64) Quad {
	return Quad{
		{X: x, Y: y},
		{X: x + w, Y: y},
		{X: x + w, Y: y + h},
		{X: x, Y: y + h},
	}
}

// Bounds returns the axis-aligned bounding box of the quad.
func (q Quad) Bounds() (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, p := range q {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return
}

// Area is the absolute shoelace area of the polygon.
func (q Quad) Area() float64 {
	var sum float64
	for i := range q {
		a, b := q[i], q[(i+1)%len(q)]
		sum += a.X*b.Y - b.X*a.Y
	}
	return math.Abs(sum) / 2
}

// Contains reports whether p lies inside the polygon under the nonzero
// winding rule. Points on an edge are inside.
func (q Quad) Contains(p Point) bool {
	winding := 0
	for i := range q {
		a, b := q[i], q[(i+1)%len(q)]
		if onSegment(a, b, p) {
			return true
		}
		if a.Y <= p.Y {
			if b.Y > p.Y && cross(a, b, p) > 0 {
				winding++
			}
		} else if b.Y <= p.Y && cross(a, b, p) < 0 {
			winding--
		}
	}
	return winding != 0
}

func onSegment(a, b, p Point) bool {
	const eps = 1e-9
	if math.Abs(cross(a, b, p)) > eps*math.Max(1, math.Hypot(b.X-a.X, b.Y-a.Y)) {
		return false
	}
	return p.X >= math.Min(a.X, b.X)-eps && p.X <= math.Max(a.X, b.X)+eps &&
		p.Y >= math.Min(a.Y, b.Y)-eps && p.Y <= math.Max(a.Y, b.Y)+eps
}

// cross is positive when p is left of the directed edge a->b.
func cross(a, b, p Point) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (p.X-a.X)*(b.Y-a.Y)
}
