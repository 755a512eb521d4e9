// Package lloyd clusters L*a*b* points with Lloyd's relaxation: seed a set of
// region centers, assign every point to its nearest center, move each center
// to the mean of its points and repeat until the assignment stops changing.
package lloyd

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"slices"
	"sync"

	"github.com/muesli/clusters"
	"github.com/setanarut/crossstitch/colorspace"
	"github.com/setanarut/crossstitch/palette"
)

const DefaultMaxIterations = 1000

var (
	ErrInvalidColorCount = errors.New("lloyd: color count must be positive")
	ErrNoPoints          = errors.New("lloyd: no points")
	ErrEmptyPalette      = errors.New("lloyd: empty palette")
)

type Config struct {
	Colors  int
	Seeding Seeding
	// KDTree answers nearest-region queries with a k-d tree instead of a
	// linear scan. Results are identical either way.
	KDTree bool
	// MaxIterations caps the relaxation loop. Zero means
	// DefaultMaxIterations.
	MaxIterations int
	// Workers is the number of goroutines used for assignment. Zero means
	// runtime.NumCPU().
	Workers int
	// Rand drives seeding. Nil means a randomly seeded source.
	Rand   *rand.Rand
	Logger *slog.Logger
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

func (c Config) rand() *rand.Rand {
	if c.Rand == nil {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return c.Rand
}

func (c Config) maxIterations() int {
	if c.MaxIterations <= 0 {
		return DefaultMaxIterations
	}
	return c.MaxIterations
}

func (c Config) workers() int {
	if c.Workers <= 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}

// observation lets muesli/clusters handle colorspace points.
type observation colorspace.Point

func (o observation) Coordinates() clusters.Coordinates {
	return clusters.Coordinates{o[0], o[1], o[2]}
}

func (o observation) Distance(c clusters.Coordinates) float64 {
	return colorspace.Point(o).DistanceSquared(colorspace.Point{c[0], c[1], c[2]})
}

type Result struct {
	// Regions are the final centers. Assignments index into it.
	Regions     []colorspace.Point
	Assignments []int
	// Colors[i] is the palette entry for Regions[i]. Only set by Quantize.
	Colors     []palette.Entry
	Iterations int
	// Converged is false when MaxIterations was reached first.
	Converged bool
}

// Cluster runs the relaxation loop to a fixed point or to the iteration cap.
func Cluster(points []colorspace.Point, cfg Config) (*Result, error) {
	if cfg.Colors <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidColorCount, cfg.Colors)
	}
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	log := cfg.logger()

	log.Info("lloyd: seeding regions", "points", len(points), "colors", cfg.Colors, "seeding", cfg.Seeding)
	regions := Seed(points, cfg.Colors, cfg.Seeding, cfg.rand())
	assignments := Assign(points, regions, cfg)

	res := &Result{}
	limit := cfg.maxIterations()
	for res.Iterations = 1; ; res.Iterations++ {
		if res.Iterations > limit {
			res.Iterations = limit
			log.Warn("lloyd: iteration cap reached, keeping current regions", "iterations", limit)
			break
		}
		log.Debug("lloyd: iteration", "n", res.Iterations, "regions", len(regions))

		var next []int
		regions, next = Relax(points, assignments, cfg)
		if slices.Equal(next, assignments) {
			res.Converged = true
			break
		}
		assignments = next
	}
	log.Info("lloyd: done", "iterations", res.Iterations, "regions", len(regions), "converged", res.Converged)

	res.Regions = regions
	res.Assignments = assignments
	return res, nil
}

// Quantize clusters points and maps every region center to its nearest
// palette entry.
func Quantize(points []colorspace.Point, pal palette.Palette, cfg Config) (*Result, error) {
	if len(pal) == 0 {
		return nil, ErrEmptyPalette
	}
	res, err := Cluster(points, cfg)
	if err != nil {
		return nil, err
	}
	log := cfg.logger()
	res.Colors = make([]palette.Entry, len(res.Regions))
	for i, r := range res.Regions {
		mean := colorspace.FromLab(r)
		res.Colors[i] = pal.Nearest(mean.Lab())
		log.Debug("lloyd: region", "index", i, "mean", mean.RGB(), "entry", res.Colors[i])
	}
	return res, nil
}

// Relax performs one iteration: it moves every populated region to the mean
// of its points, drops the empty ones and reassigns all points against the
// new region list. Region order follows ascending old index.
func Relax(points []colorspace.Point, assignments []int, cfg Config) (regions []colorspace.Point, next []int) {
	regions = Recenter(points, assignments)
	return regions, Assign(points, regions, cfg)
}

// Recenter returns the centroid of each region referenced by assignments, in
// ascending region order.
func Recenter(points []colorspace.Point, assignments []int) []colorspace.Point {
	n := 0
	for _, a := range assignments {
		n = max(n, a+1)
	}
	cl := make(clusters.Clusters, n)
	for i, a := range assignments {
		cl[a].Append(observation(points[i]))
	}

	populated := slices.DeleteFunc(cl, func(c clusters.Cluster) bool {
		return len(c.Observations) == 0
	})
	populated.Recenter()

	regions := make([]colorspace.Point, len(populated))
	for i, c := range populated {
		regions[i] = colorspace.Point{c.Center[0], c.Center[1], c.Center[2]}
	}
	return regions
}

// Assign maps every point to the index of its nearest region.
func Assign(points []colorspace.Point, regions []colorspace.Point, cfg Config) []int {
	var nearest func(colorspace.Point) int
	if cfg.KDTree {
		nearest = NewKDTree(regions).Nearest
	} else {
		nearest = linear(regions)
	}

	out := make([]int, len(points))
	workers := max(1, min(cfg.workers(), len(points)))
	chunk := (len(points) + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < len(points); start += chunk {
		end := min(start+chunk, len(points))
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := start; i < end; i++ {
				out[i] = nearest(points[i])
			}
		}()
	}
	wg.Wait()
	return out
}

func linear(regions []colorspace.Point) func(colorspace.Point) int {
	cl := make(clusters.Clusters, len(regions))
	for i, r := range regions {
		cl[i].Center = observation(r).Coordinates()
	}
	return func(p colorspace.Point) int {
		if len(cl) == 0 {
			return -1
		}
		return cl.Nearest(observation(p))
	}
}
