package mediancut

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/setanarut/crossstitch/colorspace"
)

// Block is a set of L*a*b* points together with the box that exactly bounds
// them.
type Block struct {
	points []colorspace.Point
	lo, hi colorspace.Point
}

// NewBlock takes ownership of points, which must be non-empty.
func NewBlock(points []colorspace.Point) *Block {
	b := &Block{points: points}
	b.lo, b.hi = colorspace.Bounds(points)
	return b
}

func (b *Block) Points() []colorspace.Point { return b.points }

func (b *Block) Len() int { return len(b.points) }

func (b *Block) Bounds() (lo, hi colorspace.Point) { return b.lo, b.hi }

// LongestAxis returns the dimension with the widest extent. Ties go to the
// lower dimension.
func (b *Block) LongestAxis() int {
	axis := 0
	for i := 1; i < 3; i++ {
		if b.side(i) > b.side(axis) {
			axis = i
		}
	}
	return axis
}

func (b *Block) LongestSide() float64 {
	return b.side(b.LongestAxis())
}

func (b *Block) side(axis int) float64 {
	return b.hi[axis] - b.lo[axis]
}

func (b *Block) splittable() bool {
	return len(b.points) > 1
}

// Split sorts the points along the longest axis and cuts at the median index.
// The lower child gets len/2 points, the upper child the rest. The receiver
// should be discarded afterwards since both children share its storage.
func (b *Block) Split() (lower, upper *Block) {
	if !b.splittable() {
		panic(fmt.Sprintf("mediancut: split of a %d-point block", len(b.points)))
	}
	axis := b.LongestAxis()
	slices.SortStableFunc(b.points, func(p, q colorspace.Point) int {
		return cmp.Compare(p[axis], q[axis])
	})
	mid := len(b.points) / 2
	return NewBlock(b.points[:mid:mid]), NewBlock(b.points[mid:])
}

// Contains reports whether p lies in the block's closed bounding box. Boxes of
// sibling blocks can overlap, so several blocks may contain the same point.
func (b *Block) Contains(p colorspace.Point) bool {
	return colorspace.Within(p, b.lo, b.hi)
}

func (b *Block) Centroid() colorspace.Point {
	return colorspace.Centroid(b.points)
}

func (b *Block) String() string {
	return fmt.Sprintf("Block(%d points, %v to %v)", len(b.points), b.lo, b.hi)
}
