package navigation

import (
	"github.com/paulmach/orb/planar"
)

// RemoveContainedHoles drops static holes that lie entirely inside another static
// hole of the same surface. They add graph vertices without changing where an
// agent can walk.
func RemoveContainedHoles(surface Surface) Surface {
	if len(surface.Holes) <= 1 {
		return surface
	}

	contained := make([]bool, len(surface.Holes))
	for i := range surface.Holes {
		if contained[i] || surface.Holes[i].Kind != HoleStatic {
			continue
		}
		for j := range surface.Holes {
			if i == j || contained[j] || surface.Holes[j].Kind != HoleStatic {
				continue
			}
			if isRingContainedIn(surface.Holes[i].Ring, surface.Holes[j].Ring) {
				contained[i] = true
				break
			}
		}
	}

	out := Surface{Boundary: surface.Boundary}
	for i, h := range surface.Holes {
		if !contained[i] {
			out.Holes = append(out.Holes, h)
		}
	}
	return out
}

// isRingContainedIn checks if ring a is fully contained within ring b
func isRingContainedIn(a, b []Point) bool {
	if len(a) == 0 || len(b) < 3 {
		return false
	}

	inner, outer := closedRing(a), closedRing(b)

	// Quick bounding box check first
	ab, bb := inner.Bound(), outer.Bound()
	if !bb.Contains(ab.Min) || !bb.Contains(ab.Max) {
		return false
	}

	for _, v := range inner {
		if !planar.RingContains(outer, v) {
			return false
		}
	}
	return true
}
