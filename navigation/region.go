package navigation

import (
	"fmt"

	"github.com/paulmach/orb"
)

// DefaultProbeRadius is the probe circle radius used by the sampled segment test, in local units
const DefaultProbeRadius = 0.05

// HoleKind records where a hole ring came from
type HoleKind int

const (
	// HoleStatic is a hole authored into the region (a wall, a table)
	HoleStatic HoleKind = iota
	// HoleDynamic is a footprint synthesized for an idle character during one query
	HoleDynamic
)

func (k HoleKind) String() string {
	switch k {
	case HoleStatic:
		return "static"
	case HoleDynamic:
		return "dynamic"
	}
	return fmt.Sprintf("HoleKind(%d)", int(k))
}

// Hole is a ring cut out of a surface
type Hole struct {
	Ring []Point  `json:"ring"`
	Kind HoleKind `json:"kind"`
}

// Surface is one walkable polygon: an outer boundary with holes.
// Rings are open; the last vertex connects back to the first.
type Surface struct {
	Boundary []Point `json:"boundary"`
	Holes    []Hole  `json:"holes,omitempty"`
}

// OcclusionMode selects how segment clearance is decided
type OcclusionMode int

const (
	// OcclusionSampled sweeps a probe circle along the segment
	OcclusionSampled OcclusionMode = iota
	// OcclusionExact tests the segment against every ring edge
	OcclusionExact
)

// Region is a navigable area made of one or more surfaces in a local frame.
// It keeps per-query working state (dynamic holes, collider, scratch buffers),
// so a Region must not be queried from two goroutines at once.
type Region struct {
	Name      string
	Surfaces  []Surface
	Transform Transform
	Depth     float64 // z of every waypoint produced in this region

	ProbeRadius float64
	Occlusion   OcclusionMode

	dirty      bool
	vertexData []Point
	collider   *collider
}

// NewRegion creates a region with a single surface
func NewRegion(name string, boundary []Point, holes ...[]Point) *Region {
	surface := Surface{Boundary: boundary}
	for _, ring := range holes {
		surface.Holes = append(surface.Holes, Hole{Ring: ring, Kind: HoleStatic})
	}
	return &Region{
		Name:      name,
		Surfaces:  []Surface{surface},
		Transform: IdentityTransform,
		dirty:     true,
	}
}

// SetSurfaces replaces the region geometry
func (r *Region) SetSurfaces(surfaces []Surface) {
	r.Surfaces = surfaces
	r.invalidate()
}

// Validate reports ErrDegenerateRegion if the region cannot be navigated
func (r *Region) Validate() error {
	if len(r.Surfaces) == 0 {
		return fmt.Errorf("region %q has no surfaces: %w", r.Name, ErrDegenerateRegion)
	}
	for i, s := range r.Surfaces {
		if len(s.Boundary) < 3 {
			return fmt.Errorf("region %q surface %d has %d boundary vertices: %w",
				r.Name, i, len(s.Boundary), ErrDegenerateRegion)
		}
	}
	return nil
}

func (r *Region) probeRadius() float64 {
	if r.ProbeRadius <= 0 {
		return DefaultProbeRadius
	}
	return r.ProbeRadius
}

func (r *Region) invalidate() {
	r.dirty = true
	r.vertexData = nil
	r.collider = nil
}

// rebuild refreshes the vertex cache and the collider after any ring change
func (r *Region) rebuild() {
	if !r.dirty && r.collider != nil {
		return
	}
	r.vertexData = flattenVertices(r.Surfaces)
	r.collider = newCollider(r.Surfaces)
	r.dirty = false
}

// VertexData returns every distinct ring vertex, boundaries before holes
func (r *Region) VertexData() []Point {
	r.rebuild()
	return r.vertexData
}

func flattenVertices(surfaces []Surface) []Point {
	var vertices []Point
	add := func(ring []Point) {
		for _, v := range ring {
			if !containsPoint(vertices, v) {
				vertices = append(vertices, v)
			}
		}
	}
	for _, s := range surfaces {
		add(s.Boundary)
	}
	for _, s := range surfaces {
		for _, h := range s.Holes {
			add(h.Ring)
		}
	}
	return vertices
}

func containsPoint(points []Point, p Point) bool {
	for _, q := range points {
		if q.Coincides(p) {
			return true
		}
	}
	return false
}

// AddDynamicHole cuts a temporary hole into the given surface
func (r *Region) AddDynamicHole(surface int, ring []Point) {
	r.Surfaces[surface].Holes = append(r.Surfaces[surface].Holes, Hole{Ring: ring, Kind: HoleDynamic})
	r.invalidate()
}

// ResetDynamicHoles drops every hole added by a previous query
func (r *Region) ResetDynamicHoles() {
	changed := false
	for i := range r.Surfaces {
		holes := r.Surfaces[i].Holes[:0]
		for _, h := range r.Surfaces[i].Holes {
			if h.Kind == HoleDynamic {
				changed = true
				continue
			}
			holes = append(holes, h)
		}
		r.Surfaces[i].Holes = holes
	}
	if changed {
		r.invalidate()
	}
}

// DynamicHoles returns the dynamic hole rings currently cut into the region
func (r *Region) DynamicHoles() [][]Point {
	var rings [][]Point
	for _, s := range r.Surfaces {
		for _, h := range s.Holes {
			if h.Kind == HoleDynamic {
				rings = append(rings, h.Ring)
			}
		}
	}
	return rings
}

// Bounds returns the local-space bounding box of all boundaries
func (r *Region) Bounds() orb.Bound {
	var mp orb.MultiPoint
	for _, s := range r.Surfaces {
		for _, v := range s.Boundary {
			mp = append(mp, v.orb())
		}
	}
	return mp.Bound()
}

// VertexCount returns the number of vertices over all rings
func (r *Region) VertexCount() int {
	n := 0
	for _, s := range r.Surfaces {
		n += len(s.Boundary)
		for _, h := range s.Holes {
			n += len(h.Ring)
		}
	}
	return n
}
