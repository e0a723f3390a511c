package navigation

import "errors"

var (
	// ErrPathNotFound is returned when no route can be produced; callers fall back to direct movement
	ErrPathNotFound = errors.New("path not found")
	// ErrDegenerateRegion marks a region with no surfaces or a boundary under 3 vertices
	ErrDegenerateRegion = errors.New("degenerate navigable region")
	// ErrGraphTooLarge marks a visibility graph over the MaxGraphNodes safety limit
	ErrGraphTooLarge = errors.New("visibility graph too large")
	// ErrUnsupportedEngine is returned by NewEngine for engine kinds that are not built
	ErrUnsupportedEngine = errors.New("unsupported navigation engine")

	errEmptyRing = errors.New("empty ring")
)
