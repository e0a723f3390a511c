package navigation

import (
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// bboxPadding keeps bounding boxes of flat rings (a two-point hole) non-empty
const bboxPadding = 1e-9

// HoleEntry wraps a hole ring for R-tree storage
type HoleEntry struct {
	Surface int
	Hole    int
	Ring    orb.Ring
	BBox    rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (h *HoleEntry) Bounds() rtreego.Rect {
	return h.BBox
}

// SpatialIndex answers "which holes could contain this point" queries
type SpatialIndex struct {
	tree *rtreego.Rtree
}

// NewSpatialIndex indexes every hole ring of every surface
func NewSpatialIndex(surfaces []Surface) *SpatialIndex {
	tree := rtreego.NewTree(2, 2, 8)

	for si, surface := range surfaces {
		for hi, hole := range surface.Holes {
			ring := make(orb.Ring, 0, len(hole.Ring))
			for _, v := range hole.Ring {
				ring = append(ring, v.orb())
			}
			bbox, err := calculateBoundingBox(ring)
			if err != nil {
				continue
			}
			tree.Insert(&HoleEntry{
				Surface: si,
				Hole:    hi,
				Ring:    ring,
				BBox:    bbox,
			})
		}
	}

	return &SpatialIndex{tree: tree}
}

// HolesAt returns the holes whose bounding box contains p
func (si *SpatialIndex) HolesAt(p Point) []*HoleEntry {
	results := si.tree.SearchIntersect(rtreego.Point{p.X, p.Y}.ToRect(bboxPadding))
	holes := make([]*HoleEntry, 0, len(results))
	for _, item := range results {
		holes = append(holes, item.(*HoleEntry))
	}
	return holes
}

// Size returns the number of indexed holes
func (si *SpatialIndex) Size() int {
	return si.tree.Size()
}

// calculateBoundingBox computes the axis-aligned bounding box for a ring
func calculateBoundingBox(ring orb.Ring) (rtreego.Rect, error) {
	if len(ring) == 0 {
		return rtreego.Rect{}, errEmptyRing
	}

	b := ring.Bound().Pad(bboxPadding)
	return rtreego.NewRect(
		rtreego.Point{b.Min.X(), b.Min.Y()},
		[]float64{b.Max.X() - b.Min.X(), b.Max.Y() - b.Min.Y()},
	)
}
