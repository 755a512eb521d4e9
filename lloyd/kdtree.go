package lloyd

import (
	"math"

	"github.com/setanarut/crossstitch/colorspace"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// region is a center tagged with its position in the region list.
type region struct {
	colorspace.Point
	index int
}

func (r region) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return r.Point[d] - c.(region).Point[d]
}

func (r region) Dims() int { return 3 }

func (r region) Distance(c kdtree.Comparable) float64 {
	return r.DistanceSquared(c.(region).Point)
}

type regions []region

func (p regions) Index(i int) kdtree.Comparable         { return p[i] }
func (p regions) Len() int                              { return len(p) }
func (p regions) Pivot(d kdtree.Dim) int                { return plane{regions: p, Dim: d}.Pivot() }
func (p regions) Slice(start, end int) kdtree.Interface { return p[start:end] }

type plane struct {
	kdtree.Dim
	regions
}

func (p plane) Less(i, j int) bool { return p.regions[i].Point[p.Dim] < p.regions[j].Point[p.Dim] }
func (p plane) Pivot() int         { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.regions = p.regions[start:end]
	return p
}
func (p plane) Swap(i, j int) { p.regions[i], p.regions[j] = p.regions[j], p.regions[i] }

// nearestKeeper holds a single best candidate. Among equidistant candidates
// the lowest region index wins, whatever order the tree visits them in.
type nearestKeeper struct {
	kdtree.Heap
}

func newNearestKeeper() *nearestKeeper {
	return &nearestKeeper{kdtree.Heap{{Dist: math.Inf(1)}}}
}

func (k *nearestKeeper) Keep(c kdtree.ComparableDist) {
	best := k.Heap[0]
	if c.Dist < best.Dist ||
		c.Dist == best.Dist && (best.Comparable == nil || c.Comparable.(region).index < best.Comparable.(region).index) {
		k.Heap[0] = c
	}
}

// KDTree is a 3-d tree over region centers for nearest-region queries.
type KDTree struct {
	tree *kdtree.Tree
}

// NewKDTree builds a balanced tree. points is not modified.
func NewKDTree(points []colorspace.Point) *KDTree {
	items := make(regions, len(points))
	for i, p := range points {
		items[i] = region{p, i}
	}
	return &KDTree{tree: kdtree.New(items, false)}
}

func (t *KDTree) Len() int { return t.tree.Len() }

// Nearest returns the index of the point closest to q, or -1 for an empty
// tree. Equidistant points resolve to the lowest index, which matches a
// linear scan.
func (t *KDTree) Nearest(q colorspace.Point) int {
	k := newNearestKeeper()
	t.tree.NearestSet(k, region{Point: q, index: -1})
	if k.Len() == 0 || k.Heap[0].Comparable == nil {
		return -1
	}
	return k.Heap[0].Comparable.(region).index
}
