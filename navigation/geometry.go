package navigation

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/paulmach/orb"
)

// coincidentEpsilon is the distance under which two points are treated as the same vertex
const coincidentEpsilon = 1e-6

// Point is a 2D position, either in region-local or world space
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance calculates Euclidean distance between two points
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Coincides reports whether two points are the same vertex within coincidentEpsilon
func (p Point) Coincides(other Point) bool {
	return p.Distance(other) < coincidentEpsilon
}

// Lerp returns the point at fraction t along p->other
func (p Point) Lerp(other Point, t float64) Point {
	return Point{
		X: p.X + (other.X-p.X)*t,
		Y: p.Y + (other.Y-p.Y)*t,
	}
}

func (p Point) orb() orb.Point {
	return orb.Point{p.X, p.Y}
}

func (p Point) vect() cp.Vector {
	return cp.Vector{X: p.X, Y: p.Y}
}

func pointFromOrb(p orb.Point) Point {
	return Point{X: p.X(), Y: p.Y()}
}

// Transform maps region-local coordinates to world coordinates:
// world = Offset + Rotate(local * Scale)
type Transform struct {
	Offset   Point   `json:"offset" yaml:"offset"`
	Scale    float64 `json:"scale" yaml:"scale"`
	Rotation float64 `json:"rotation" yaml:"rotation"` // radians, counter-clockwise
}

// IdentityTransform leaves coordinates unchanged
var IdentityTransform = Transform{Scale: 1}

func (t Transform) scale() float64 {
	if t.Scale == 0 {
		return 1
	}
	return t.Scale
}

// ToWorld converts a region-local point to world space
func (t Transform) ToWorld(p Point) Point {
	s := t.scale()
	sin, cos := math.Sincos(t.Rotation)
	x, y := p.X*s, p.Y*s
	return Point{
		X: t.Offset.X + x*cos - y*sin,
		Y: t.Offset.Y + x*sin + y*cos,
	}
}

// ToLocal converts a world point to region-local space
func (t Transform) ToLocal(p Point) Point {
	s := t.scale()
	sin, cos := math.Sincos(-t.Rotation)
	x, y := p.X-t.Offset.X, p.Y-t.Offset.Y
	return Point{
		X: (x*cos - y*sin) / s,
		Y: (x*sin + y*cos) / s,
	}
}

// LengthToLocal converts a world-space length (e.g. an obstacle radius) to local units
func (t Transform) LengthToLocal(l float64) float64 {
	return l / math.Abs(t.scale())
}

// LineSegment represents a line segment between two points
type LineSegment struct {
	P1, P2 Point
}

// DoSegmentsIntersect checks if two line segments intersect
func DoSegmentsIntersect(seg1, seg2 LineSegment) bool {
	p1, p2 := seg1.P1, seg1.P2
	p3, p4 := seg2.P1, seg2.P2

	// Segments sharing an endpoint meet at a vertex, which is not a crossing
	if (p1 == p3 && p2 == p4) || (p1 == p4 && p2 == p3) {
		return false
	}
	if p1 == p3 || p1 == p4 || p2 == p3 || p2 == p4 {
		return false
	}

	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	// Collinear cases
	if d1 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if d2 == 0 && onSegment(p3, p4, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, p4) {
		return true
	}

	return false
}

// direction calculates the cross product to determine orientation
func direction(p1, p2, p3 Point) float64 {
	return (p3.X-p1.X)*(p2.Y-p1.Y) - (p2.X-p1.X)*(p3.Y-p1.Y)
}

// onSegment checks if point q lies on segment pr
func onSegment(p, r, q Point) bool {
	return q.X <= math.Max(p.X, r.X) && q.X >= math.Min(p.X, r.X) &&
		q.Y <= math.Max(p.Y, r.Y) && q.Y >= math.Min(p.Y, r.Y)
}

// ringEdges calls fn for every closing edge of an open ring
func ringEdges(ring []Point, fn func(a, b Point)) {
	n := len(ring)
	if n < 2 {
		return
	}
	for i := 0; i < n; i++ {
		fn(ring[i], ring[(i+1)%n])
	}
}

// PathLength returns the cumulative Euclidean length of a polyline
func PathLength(points []Point) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += points[i-1].Distance(points[i])
	}
	return total
}
