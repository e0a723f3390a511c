package navigation

import (
	"math"
	"testing"
)

// squareWithHole is the 10x10 square with a 2x2 hole in the middle
func squareWithHole() *Region {
	return NewRegion("square",
		[]Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}},
		[]Point{{4, 4}, {6, 4}, {6, 6}, {4, 6}},
	)
}

func emptySquare() *Region {
	return NewRegion("empty", []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}})
}

func assertNear(t *testing.T, what string, got, want Point, tol float64) {
	t.Helper()
	if math.Abs(got.X-want.X) > tol || math.Abs(got.Y-want.Y) > tol {
		t.Fatalf("%s: expected %+v, got %+v", what, want, got)
	}
}
