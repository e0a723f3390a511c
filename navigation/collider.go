package navigation

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

const (
	// boundaryRing marks an edge owned by a surface boundary rather than a hole
	boundaryRing = -1
	// noRing skips nothing in insideExcept
	noRing = -2
)

// ringRef names the ring an edge belongs to
type ringRef struct {
	surface int
	hole    int
}

// collider is the collision geometry of a region: every ring edge as a static
// chipmunk segment, plus orb rings and a hole index for inside tests.
type collider struct {
	space      *cp.Space
	shapeOwner map[*cp.Shape]ringRef
	boundaries []orb.Ring
	holes      *SpatialIndex

	// hits is per-region scratch for OverlapCount, overwritten on every call
	hits []bool
}

func newCollider(surfaces []Surface) *collider {
	c := &collider{
		space:      cp.NewSpace(),
		shapeOwner: make(map[*cp.Shape]ringRef),
		boundaries: make([]orb.Ring, len(surfaces)),
		holes:      NewSpatialIndex(surfaces),
		hits:       make([]bool, len(surfaces)),
	}

	for si, s := range surfaces {
		ring := make(orb.Ring, 0, len(s.Boundary))
		for _, v := range s.Boundary {
			ring = append(ring, v.orb())
		}
		c.boundaries[si] = ring

		c.addRing(ringRef{surface: si, hole: boundaryRing}, s.Boundary)
		for hi, h := range s.Holes {
			c.addRing(ringRef{surface: si, hole: hi}, h.Ring)
		}
	}

	return c
}

func (c *collider) addRing(owner ringRef, ring []Point) {
	ringEdges(ring, func(a, b Point) {
		if a.Coincides(b) {
			return
		}
		shape := c.space.AddShape(cp.NewSegment(c.space.StaticBody, a.vect(), b.vect(), 0))
		c.shapeOwner[shape] = owner
	})
}

// insideSurface reports whether p is inside the boundary of surface si and outside its holes
func (c *collider) insideSurface(si int, p Point) bool {
	return c.insideExcept(ringRef{surface: si, hole: noRing}, p)
}

// insideExcept is insideSurface ignoring the ring named by skip. Skipping the
// boundary drops the boundary test; skipping a hole leaves that hole out.
func (c *collider) insideExcept(skip ringRef, p Point) bool {
	si := skip.surface
	if skip.hole != boundaryRing && !planar.RingContains(c.boundaries[si], p.orb()) {
		return false
	}
	if c.holes.Size() == 0 {
		return true
	}
	for _, h := range c.holes.HolesAt(p) {
		if h.Surface != si || h.Hole == skip.hole || len(h.Ring) < 3 {
			continue
		}
		if planar.RingContains(h.Ring, p.orb()) {
			return false
		}
	}
	return true
}

// overlapCount returns how many surfaces a circle of radius r centered at p overlaps.
// An edge within reach only counts when its nearest point is walkable with respect
// to every other ring of its surface, so edges buried in another hole are ignored.
func (c *collider) overlapCount(p Point, r float64) int {
	for i := range c.hits {
		c.hits[i] = false
	}

	at := p.vect()
	c.space.BBQuery(cp.NewBBForCircle(at, r), cp.SHAPE_FILTER_ALL, func(shape *cp.Shape, _ interface{}) {
		owner, ok := c.shapeOwner[shape]
		if !ok || c.hits[owner.surface] {
			return
		}
		info := shape.PointQuery(at)
		if info.Distance > r {
			return
		}
		if c.insideExcept(owner, Point{X: info.Point.X, Y: info.Point.Y}) {
			c.hits[owner.surface] = true
		}
	}, nil)

	count := 0
	for si := range c.hits {
		if c.hits[si] || c.insideSurface(si, p) {
			count++
		}
	}
	return count
}

// OverlapCount returns how many navigable surfaces a probe circle at p (local space) overlaps
func (r *Region) OverlapCount(p Point, radius float64) int {
	r.rebuild()
	return r.collider.overlapCount(p, radius)
}

// onSurface reports whether a probe at p overlaps exactly one surface
func (r *Region) onSurface(p Point) bool {
	return r.OverlapCount(p, r.probeRadius()) == 1
}

// surfaceAt returns the index of the single surface containing p, or -1
func (r *Region) surfaceAt(p Point) int {
	r.rebuild()
	found := -1
	for si := range r.Surfaces {
		if r.collider.insideSurface(si, p) {
			if found >= 0 {
				return -1
			}
			found = si
		}
	}
	return found
}

// IsSegmentClear reports whether the straight segment a->b (local space) stays on the region
func (r *Region) IsSegmentClear(a, b Point) bool {
	if r.Occlusion == OcclusionExact {
		return r.isSegmentClearExact(a, b)
	}
	return r.isSegmentClearSampled(a, b)
}

// isSegmentClearSampled sweeps the probe along a->b at a step of twice the probe radius.
// Samples sit at fixed fractions of the segment so the test is symmetric in a and b.
func (r *Region) isSegmentClearSampled(a, b Point) bool {
	radius := r.probeRadius()
	step := 2 * radius
	n := int(math.Ceil(a.Distance(b) / step))
	if n < 1 {
		n = 1
	}

	for i := 0; i <= n; i++ {
		if r.OverlapCount(a.Lerp(b, float64(i)/float64(n)), radius) != 1 {
			return false
		}
	}
	return true
}

// isSegmentClearExact checks a->b against every ring edge, then classifies its midpoint
func (r *Region) isSegmentClearExact(a, b Point) bool {
	seg := LineSegment{P1: a, P2: b}
	for _, s := range r.Surfaces {
		crossed := false
		check := func(p, q Point) {
			if !crossed && DoSegmentsIntersect(seg, LineSegment{P1: p, P2: q}) {
				crossed = true
			}
		}
		ringEdges(s.Boundary, check)
		for _, h := range s.Holes {
			ringEdges(h.Ring, check)
		}
		if crossed {
			return false
		}
	}
	return r.OverlapCount(a.Lerp(b, 0.5), coincidentEpsilon) == 1
}

// boundarySamplesPerEdge is the resolution of NearestBoundaryPoint's edge walk
const boundarySamplesPerEdge = 11

// NearestBoundaryPoint snaps p (local space) onto the region.
// A point already on the surface is returned unchanged.
func (r *Region) NearestBoundaryPoint(p Point) Point {
	if r.onSurface(p) {
		return p
	}

	best := p
	bestDist := math.Inf(1)
	visit := func(a, b Point) {
		for i := 0; i < boundarySamplesPerEdge; i++ {
			q := a.Lerp(b, float64(i)/float64(boundarySamplesPerEdge-1))
			if d := q.Distance(p); d < bestDist {
				bestDist = d
				best = q
			}
		}
	}

	for _, s := range r.Surfaces {
		ringEdges(s.Boundary, visit)
		for _, h := range s.Holes {
			ringEdges(h.Ring, visit)
		}
	}
	return best
}
