package navigation

import (
	"errors"
	"fmt"
	"log"
)

// EngineKind names a pathfinding backend
type EngineKind int

const (
	// EnginePolygon routes over a visibility graph of the region polygon
	EnginePolygon EngineKind = iota
	// EngineDirect always walks straight to the target
	EngineDirect
	// EngineNavMesh is the 3D navmesh backend, which this module does not provide
	EngineNavMesh
)

func (k EngineKind) String() string {
	switch k {
	case EnginePolygon:
		return "polygon"
	case EngineDirect:
		return "direct"
	case EngineNavMesh:
		return "navmesh"
	}
	return fmt.Sprintf("EngineKind(%d)", int(k))
}

// ParseEngineKind converts a config name into an EngineKind
func ParseEngineKind(s string) (EngineKind, error) {
	switch s {
	case "", "polygon":
		return EnginePolygon, nil
	case "direct":
		return EngineDirect, nil
	case "navmesh":
		return EngineNavMesh, nil
	}
	return EnginePolygon, fmt.Errorf("unknown engine %q", s)
}

// Query carries the per-call inputs besides the two endpoints
type Query struct {
	AgentID   string
	Evasion   EvasionPolicy
	Obstacles []Obstacle
}

// Route is the result of a path query. Waypoints are in world space, exclude the
// origin and end at the (possibly snapped) target.
type Route struct {
	Waypoints []Point
	Depth     float64
	// Direct is set when the fast path applied and no graph was built
	Direct bool
	// Fallback is set when no graph route existed and the route is a straight line
	Fallback bool
	// Reason explains a fallback
	Reason error
}

// Length returns the length of the route starting from origin
func (r *Route) Length(origin Point) float64 {
	return PathLength(append([]Point{origin}, r.Waypoints...))
}

// Engine computes routes across one region
type Engine interface {
	Kind() EngineKind
	ComputePath(origin, target Point, q Query) (*Route, error)
}

// Options tunes an engine
type Options struct {
	MaxGraphNodes int
	// MaxPathNodes bounds path reconstruction; zero means the graph size
	MaxPathNodes int
	// Logger receives progress lines; nil keeps the engine silent
	Logger *log.Logger
}

// NewEngine returns the engine of the given kind bound to region
func NewEngine(kind EngineKind, region *Region, opts Options) (Engine, error) {
	switch kind {
	case EnginePolygon:
		return NewPolygonEngine(region, opts), nil
	case EngineDirect:
		return &DirectEngine{region: region}, nil
	}
	return nil, fmt.Errorf("%s: %w", kind, ErrUnsupportedEngine)
}

// DirectEngine walks straight to the target
type DirectEngine struct {
	region *Region
}

func (e *DirectEngine) Kind() EngineKind { return EngineDirect }

func (e *DirectEngine) ComputePath(_, target Point, _ Query) (*Route, error) {
	depth := 0.0
	if e.region != nil {
		depth = e.region.Depth
	}
	return &Route{Waypoints: []Point{target}, Depth: depth, Direct: true}, nil
}

// PolygonEngine routes across a region with a visibility graph and Dijkstra
type PolygonEngine struct {
	region *Region
	opts   Options
}

// NewPolygonEngine creates a visibility graph engine for region
func NewPolygonEngine(region *Region, opts Options) *PolygonEngine {
	if opts.MaxGraphNodes <= 0 {
		opts.MaxGraphNodes = DefaultMaxGraphNodes
	}
	return &PolygonEngine{region: region, opts: opts}
}

func (e *PolygonEngine) Kind() EngineKind { return EnginePolygon }

// Region returns the region the engine routes across
func (e *PolygonEngine) Region() *Region { return e.region }

func (e *PolygonEngine) logf(format string, args ...interface{}) {
	if e.opts.Logger != nil {
		e.opts.Logger.Printf(format, args...)
	}
}

// ComputePath returns the route from origin to target (world space).
// The only error is ErrPathNotFound for a region that cannot be navigated;
// an unreachable target yields a straight-line Route with Fallback set.
func (e *PolygonEngine) ComputePath(origin, target Point, q Query) (*Route, error) {
	region := e.region
	if err := region.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPathNotFound, err)
	}

	region.ResetDynamicHoles()
	t := region.Transform
	localOrigin := t.ToLocal(origin)
	localTarget := t.ToLocal(target)

	if region.IsSegmentClear(localOrigin, localTarget) {
		return &Route{Waypoints: []Point{target}, Depth: region.Depth, Direct: true}, nil
	}

	ComputeDynamicHoles(region, q.Obstacles, q.AgentID, q.Evasion, e.opts.Logger)

	start := region.NearestBoundaryPoint(localOrigin)
	end := region.NearestBoundaryPoint(localTarget)

	graph, err := BuildVisibilityGraph(region, start, end, e.opts.MaxGraphNodes, e.opts.Logger)
	if err != nil {
		e.logf("⚠️  %v, walking straight to target\n", err)
		return e.fallback(target, err), nil
	}

	indices, err := ShortestPath(graph, OriginIndex, TargetIndex, e.opts.MaxPathNodes)
	if err != nil {
		e.logf("⚠️  %v, walking straight to target\n", err)
		return e.fallback(target, err), nil
	}

	// origin and target can snap onto the same boundary point
	waypoints := make([]Point, 0, len(indices))
	for _, idx := range indices {
		p := t.ToWorld(graph.Nodes[idx])
		if n := len(waypoints); n > 0 && waypoints[n-1].Coincides(p) {
			continue
		}
		waypoints = append(waypoints, p)
	}
	if len(waypoints) > 1 && waypoints[0].Coincides(origin) {
		waypoints = waypoints[1:]
	}

	e.logf("   Path found with %d waypoints\n", len(waypoints))
	return &Route{Waypoints: waypoints, Depth: region.Depth}, nil
}

func (e *PolygonEngine) fallback(target Point, reason error) *Route {
	if !errors.Is(reason, ErrPathNotFound) && !errors.Is(reason, ErrGraphTooLarge) {
		reason = fmt.Errorf("%w: %w", ErrPathNotFound, reason)
	}
	return &Route{
		Waypoints: []Point{target},
		Depth:     e.region.Depth,
		Fallback:  true,
		Reason:    reason,
	}
}
