package lloyd

import (
	"math/rand/v2"
	"strings"

	"github.com/setanarut/crossstitch/colorspace"
)

// Seeding picks the initial region centers.
type Seeding int

const (
	// Random draws each coordinate uniformly from the observed range of that
	// dimension.
	Random Seeding = iota
	// Forgy samples distinct image points.
	Forgy
)

func (s Seeding) String() string {
	switch s {
	case Forgy:
		return "forgy"
	default:
		return "random"
	}
}

// Valid reports whether s is one of the declared seedings.
func (s Seeding) Valid() bool { return s >= Random && s <= Forgy }

// ParseSeeding maps a name to a Seeding. An empty name selects Random. An
// unknown name also yields Random, with ok set to false.
func ParseSeeding(name string) (s Seeding, ok bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "random":
		return Random, true
	case "forgy":
		return Forgy, true
	default:
		return Random, false
	}
}

// Seed returns k initial centers for points. Forgy never returns more centers
// than there are points.
func Seed(points []colorspace.Point, k int, s Seeding, r *rand.Rand) []colorspace.Point {
	switch s {
	case Forgy:
		return forgy(points, k, r)
	default:
		return randomInRange(points, k, r)
	}
}

func forgy(points []colorspace.Point, k int, r *rand.Rand) []colorspace.Point {
	k = min(k, len(points))
	seeds := make([]colorspace.Point, k)
	for i, idx := range r.Perm(len(points))[:k] {
		seeds[i] = points[idx]
	}
	return seeds
}

func randomInRange(points []colorspace.Point, k int, r *rand.Rand) []colorspace.Point {
	lo, hi := colorspace.Bounds(points)
	seeds := make([]colorspace.Point, k)
	for i := range seeds {
		for d := range 3 {
			seeds[i][d] = min(hi[d], lo[d]+r.Float64()*(hi[d]-lo[d]))
		}
	}
	return seeds
}
