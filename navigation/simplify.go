package navigation

import (
	"github.com/paulmach/orb/simplify"
)

// SimplifyRing reduces ring complexity with Douglas-Peucker.
// Rings that would drop below minVertices are returned unchanged.
func SimplifyRing(ring []Point, epsilon float64, minVertices int) []Point {
	if epsilon <= 0 || len(ring) <= minVertices {
		return ring
	}

	// Close the ring so the seam vertex takes part, then reopen it
	simplified := openRing(simplify.DouglasPeucker(epsilon).Ring(closedRing(ring)))
	if len(simplified) < minVertices {
		return ring
	}
	return simplified
}

// SimplifySurfaces simplifies boundaries and static holes of every surface
func SimplifySurfaces(surfaces []Surface, epsilon float64) []Surface {
	simplified := make([]Surface, len(surfaces))
	for i, s := range surfaces {
		out := Surface{Boundary: SimplifyRing(s.Boundary, epsilon, 3)}
		for _, h := range s.Holes {
			if h.Kind == HoleStatic {
				h.Ring = SimplifyRing(h.Ring, epsilon, 3)
			}
			out.Holes = append(out.Holes, h)
		}
		simplified[i] = out
	}
	return simplified
}
