package colorspace

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DistanceSquared is the squared Euclidean distance between p and q.
func (p Point) DistanceSquared(q Point) float64 {
	d0 := p[0] - q[0]
	d1 := p[1] - q[1]
	d2 := p[2] - q[2]
	return d0*d0 + d1*d1 + d2*d2
}

// Nearest returns the index of the candidate closest to p. The first
// candidate reaching the minimum wins. It returns -1 for an empty slice.
func Nearest(p Point, candidates []Point) int {
	best := -1
	bestDist := math.Inf(1)
	for i, c := range candidates {
		if d := p.DistanceSquared(c); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// Centroid returns the per-dimension mean. points must be non-empty.
func Centroid(points []Point) Point {
	sum := make([]float64, 3)
	for _, p := range points {
		floats.Add(sum, p[:])
	}
	floats.Scale(1/float64(len(points)), sum)
	return Point{sum[0], sum[1], sum[2]}
}

// Bounds returns the per-dimension minimum and maximum. points must be
// non-empty.
func Bounds(points []Point) (lo, hi Point) {
	col := make([]float64, len(points))
	for axis := range 3 {
		for i, p := range points {
			col[i] = p[axis]
		}
		lo[axis] = floats.Min(col)
		hi[axis] = floats.Max(col)
	}
	return lo, hi
}

// Within reports whether p lies inside the closed box [lo, hi].
func Within(p, lo, hi Point) bool {
	for i := range 3 {
		if p[i] < lo[i] || p[i] > hi[i] {
			return false
		}
	}
	return true
}
