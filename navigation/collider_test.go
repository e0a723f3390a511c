package navigation

import (
	"testing"
)

func TestOverlapCount(t *testing.T) {
	region := squareWithHole()
	r := DefaultProbeRadius

	for _, tc := range []struct {
		name string
		p    Point
		want int
	}{
		{"inside", Point{2, 2}, 1},
		{"hole-center", Point{5, 5}, 0},
		{"hole-edge", Point{5, 4}, 1},
		{"outside", Point{-1, 5}, 0},
		{"boundary-edge", Point{10, 5}, 1},
		{"just-outside-within-probe", Point{10.02, 5}, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := region.OverlapCount(tc.p, r); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestOverlapCountAmbiguousSurfaces(t *testing.T) {
	region := NewRegion("overlap", []Point{{0, 0}, {6, 0}, {6, 6}, {0, 6}})
	region.SetSurfaces(append(region.Surfaces, Surface{
		Boundary: []Point{{4, 0}, {10, 0}, {10, 6}, {4, 6}},
	}))

	if got := region.OverlapCount(Point{5, 3}, DefaultProbeRadius); got != 2 {
		t.Fatalf("expected 2 overlapping surfaces, got %d", got)
	}
	if region.IsSegmentClear(Point{1, 3}, Point{9, 3}) {
		t.Fatalf("segment through the overlap should not be clear")
	}
	if !region.IsSegmentClear(Point{1, 1}, Point{3, 1}) {
		t.Fatalf("segment inside one surface should be clear")
	}
}

func TestIsSegmentClear(t *testing.T) {
	for _, mode := range []OcclusionMode{OcclusionSampled, OcclusionExact} {
		region := squareWithHole()
		region.Occlusion = mode

		for _, tc := range []struct {
			name string
			a, b Point
			want bool
		}{
			{"open-floor", Point{1, 1}, Point{9, 1}, true},
			{"through-hole", Point{1, 1}, Point{9, 9}, false},
			{"along-hole-edge", Point{4, 4}, Point{6, 4}, true},
			{"hole-diagonal", Point{4, 4}, Point{6, 6}, false},
			{"to-hole-corner", Point{1, 1}, Point{6, 4}, true},
			{"leaves-region", Point{1, 1}, Point{12, 1}, false},
		} {
			if got := region.IsSegmentClear(tc.a, tc.b); got != tc.want {
				t.Fatalf("mode %d %s: expected %v, got %v", mode, tc.name, tc.want, got)
			}
		}
	}
}

func TestIsSegmentClearSymmetric(t *testing.T) {
	region := squareWithHole()
	vertices := append([]Point{{1, 1}, {9, 9}}, region.VertexData()...)

	for i := range vertices {
		for j := range vertices {
			if i == j {
				continue
			}
			ab := region.IsSegmentClear(vertices[i], vertices[j])
			ba := region.IsSegmentClear(vertices[j], vertices[i])
			if ab != ba {
				t.Fatalf("asymmetric clearance %+v<->%+v: %v vs %v", vertices[i], vertices[j], ab, ba)
			}
		}
	}
}

func TestConcaveBoundaryBlocksShortcut(t *testing.T) {
	// U shape: the notch between the arms is outside the region
	region := NewRegion("u", []Point{{0, 0}, {9, 0}, {9, 9}, {6, 9}, {6, 3}, {3, 3}, {3, 9}, {0, 9}})

	if region.IsSegmentClear(Point{1, 8}, Point{8, 8}) {
		t.Fatalf("segment across the notch should be blocked")
	}
	if !region.IsSegmentClear(Point{1, 1}, Point{8, 1}) {
		t.Fatalf("segment along the base should be clear")
	}
}

func TestDynamicHoleOverlappingStaticHole(t *testing.T) {
	region := squareWithHole()
	// the diamond reaches into the static hole across its (6,4) corner
	guard := []Obstacle{{ID: "guard", Center: Point{6.5, 3.5}, Radius: 1.2}}
	if added := ComputeDynamicHoles(region, guard, "", EvadeIdle, nil); added != 1 {
		t.Fatalf("expected 1 hole, got %d", added)
	}

	// on the diamond's upper left edge, but inside the static hole
	if got := region.OverlapCount(Point{5.935, 4.135}, DefaultProbeRadius); got != 0 {
		t.Fatalf("diamond edge inside the static hole should not count, overlaps %d", got)
	}
	// the same edge outside the static hole is still walkable
	if got := region.OverlapCount(Point{7, 4.2}, DefaultProbeRadius); got != 1 {
		t.Fatalf("diamond edge on open floor should count, overlaps %d", got)
	}

	// up, right, down, left
	diamond := region.DynamicHoles()[0]
	for _, mode := range []OcclusionMode{OcclusionSampled, OcclusionExact} {
		region.Occlusion = mode
		if region.IsSegmentClear(diamond[3], diamond[0]) {
			t.Fatalf("mode %d: leg along the diamond edge crosses the static hole", mode)
		}
		if !region.IsSegmentClear(diamond[2], diamond[1]) {
			t.Fatalf("mode %d: leg along the open diamond edge should be clear", mode)
		}
	}
}

func TestNearestBoundaryPoint(t *testing.T) {
	region := squareWithHole()

	on := Point{2, 3}
	if got := region.NearestBoundaryPoint(on); got != on {
		t.Fatalf("point on surface should be unchanged, got %+v", got)
	}

	assertNear(t, "left of region", region.NearestBoundaryPoint(Point{-3, 5}), Point{0, 5}, 1e-9)
	assertNear(t, "in hole", region.NearestBoundaryPoint(Point{5, 4.3}), Point{5, 4}, 1e-9)
	assertNear(t, "beyond corner", region.NearestBoundaryPoint(Point{12, 13}), Point{10, 10}, 1e-9)
}

func TestVertexDataCacheInvalidation(t *testing.T) {
	region := emptySquare()
	if got := len(region.VertexData()); got != 4 {
		t.Fatalf("expected 4 vertices, got %d", got)
	}

	region.AddDynamicHole(0, []Point{{4, 4}, {5, 4}, {5, 5}})
	if got := len(region.VertexData()); got != 7 {
		t.Fatalf("expected 7 vertices after adding a hole, got %d", got)
	}
	if got := region.OverlapCount(Point{4.7, 4.3}, 0.01); got != 0 {
		t.Fatalf("collider was not rebuilt: point inside new hole overlaps %d surfaces", got)
	}

	region.ResetDynamicHoles()
	if got := len(region.VertexData()); got != 4 {
		t.Fatalf("expected 4 vertices after reset, got %d", got)
	}
}

func TestValidate(t *testing.T) {
	if err := squareWithHole().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := NewRegion("line", []Point{{0, 0}, {1, 1}}).Validate(); err == nil {
		t.Fatalf("expected degenerate region error")
	}
	if err := (&Region{Name: "nothing"}).Validate(); err == nil {
		t.Fatalf("expected error for region without surfaces")
	}
}
