package navigation

import (
	"fmt"
	"log"
	"math"
)

// Obstacle is the circular footprint of a character at the moment a query starts.
// Center and Radius are in world space.
type Obstacle struct {
	ID     string  `json:"id"`
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
	Moving bool    `json:"moving,omitempty"`
}

// EvasionPolicy decides which characters are routed around
type EvasionPolicy int

const (
	// EvadeIdle routes around stationary characters only
	EvadeIdle EvasionPolicy = iota
	// EvadeAll routes around every character regardless of motion
	EvadeAll
	// EvadeNone ignores characters
	EvadeNone
)

func (p EvasionPolicy) String() string {
	switch p {
	case EvadeIdle:
		return "idle"
	case EvadeAll:
		return "all"
	case EvadeNone:
		return "none"
	}
	return fmt.Sprintf("EvasionPolicy(%d)", int(p))
}

// ParseEvasionPolicy converts "idle", "all" or "none" into a policy; "" means idle
func ParseEvasionPolicy(s string) (EvasionPolicy, error) {
	switch s {
	case "", "idle":
		return EvadeIdle, nil
	case "all":
		return EvadeAll, nil
	case "none":
		return EvadeNone, nil
	}
	return EvadeIdle, fmt.Errorf("unknown evasion policy %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (p EvasionPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *EvasionPolicy) UnmarshalText(text []byte) error {
	parsed, err := ParseEvasionPolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ComputeDynamicHoles replaces the region's dynamic holes with diamond footprints of
// the obstacles that qualify under policy. The agent named excludeID is never
// evaded. Every footprint is measured against the static region before any is cut,
// so the result does not depend on obstacle order. Returns the number of holes cut.
func ComputeDynamicHoles(region *Region, obstacles []Obstacle, excludeID string, policy EvasionPolicy, logger *log.Logger) int {
	region.ResetDynamicHoles()

	if policy == EvadeNone || len(obstacles) == 0 {
		return 0
	}

	type footprint struct {
		surface int
		ring    []Point
	}
	var footprints []footprint
	for _, o := range obstacles {
		if excludeID != "" && o.ID == excludeID {
			continue
		}
		if o.Moving && policy != EvadeAll {
			continue
		}

		center := region.Transform.ToLocal(o.Center)
		radius := region.Transform.LengthToLocal(o.Radius)
		if radius <= 0 || !region.onSurface(center) {
			continue
		}
		surface := region.surfaceAt(center)
		if surface < 0 {
			continue
		}

		ring := diamondHole(region, center, radius)
		if len(ring) < 2 {
			if logger != nil {
				logger.Printf("   Discarded degenerate hole for obstacle %q (%d points)\n", o.ID, len(ring))
			}
			continue
		}
		footprints = append(footprints, footprint{surface: surface, ring: ring})
	}

	for _, f := range footprints {
		region.AddDynamicHole(f.surface, f.ring)
	}

	if logger != nil && len(footprints) > 0 {
		logger.Printf("   Dynamic holes: %d of %d obstacles\n", len(footprints), len(obstacles))
	}
	return len(footprints)
}

// diamondHole synthesizes up/right/down/left points around center, pulling any
// point that leaves the region back to where the region ends.
func diamondHole(region *Region, center Point, radius float64) []Point {
	candidates := []Point{
		{X: center.X, Y: center.Y + radius},
		{X: center.X + radius, Y: center.Y},
		{X: center.X, Y: center.Y - radius},
		{X: center.X - radius, Y: center.Y},
	}

	ring := make([]Point, 0, len(candidates))
	for _, p := range candidates {
		if !region.onSurface(p) {
			p = lineIntersect(region, center, p)
		}
		if p.Coincides(center) || containsPoint(ring, p) {
			continue
		}
		ring = append(ring, p)
	}
	return ring
}

// lineIntersect walks from inside toward outside and returns the last sample still
// on the region. Returns inside itself if the first step already leaves it.
func lineIntersect(region *Region, inside, outside Point) Point {
	step := 2 * region.probeRadius()
	n := int(math.Ceil(inside.Distance(outside) / step))
	if n < 1 {
		return inside
	}

	last := inside
	for i := 1; i <= n; i++ {
		p := inside.Lerp(outside, float64(i)/float64(n))
		if !region.onSurface(p) {
			return last
		}
		last = p
	}
	return last
}
