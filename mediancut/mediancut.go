// Package mediancut reduces a set of L*a*b* points to a fixed number of
// population-balanced blocks by repeatedly halving one block along its
// longest side.
package mediancut

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/setanarut/crossstitch/colorspace"
	"github.com/setanarut/crossstitch/palette"
)

var (
	ErrInvalidColorCount = errors.New("mediancut: color count must be positive")
	ErrNoPoints          = errors.New("mediancut: no points")
	ErrEmptyPalette      = errors.New("mediancut: empty palette")
)

// Strategy decides which block is split next.
type Strategy int

const (
	// Size splits the block with the longest bounding-box side.
	Size Strategy = iota
	// Population splits the block holding the most points.
	Population
	// Hybrid ranks by population while there are at most Colors/2 blocks,
	// then by size.
	Hybrid
)

func (s Strategy) String() string {
	switch s {
	case Population:
		return "population"
	case Hybrid:
		return "hybrid"
	default:
		return "size"
	}
}

// Valid reports whether s is one of the declared strategies.
func (s Strategy) Valid() bool { return s >= Size && s <= Hybrid }

// ParseStrategy maps a name to a Strategy. An empty name selects Size. An
// unknown name also yields Size, with ok set to false.
func ParseStrategy(name string) (s Strategy, ok bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "size":
		return Size, true
	case "population":
		return Population, true
	case "hybrid":
		return Hybrid, true
	default:
		return Size, false
	}
}

func (s Strategy) priority(blocks, colors int) func(*Block) float64 {
	pop := func(b *Block) float64 { return float64(b.Len()) }
	switch s {
	case Population:
		return pop
	case Hybrid:
		if blocks <= colors/2 {
			return pop
		}
	}
	return (*Block).LongestSide
}

type Config struct {
	Colors   int
	Strategy Strategy
	Logger   *slog.Logger
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

// Partition splits points into cfg.Colors blocks. It stops early once every
// block holds a single point. The input slice is not modified.
func Partition(points []colorspace.Point, cfg Config) ([]*Block, error) {
	if cfg.Colors <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidColorCount, cfg.Colors)
	}
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	log := cfg.logger()

	blocks := []*Block{NewBlock(slices.Clone(points))}
	for len(blocks) < cfg.Colors {
		prio := cfg.Strategy.priority(len(blocks), cfg.Colors)
		slices.SortStableFunc(blocks, func(a, b *Block) int {
			return cmp.Compare(prio(b), prio(a))
		})
		i := slices.IndexFunc(blocks, (*Block).splittable)
		if i < 0 {
			log.Debug("median cut: no block left to split", "blocks", len(blocks), "colors", cfg.Colors)
			break
		}
		lower, upper := blocks[i].Split()
		next := make([]*Block, 0, len(blocks)+1)
		next = append(next, lower, upper)
		next = append(next, blocks[:i]...)
		next = append(next, blocks[i+1:]...)
		blocks = next
	}
	return blocks, nil
}

// Result is the outcome of Quantize.
type Result struct {
	Blocks []*Block
	// Colors[i] is the palette entry chosen for Blocks[i].
	Colors []palette.Entry
	// Assignments[j] is the index of the block that colors point j.
	Assignments []int
	// Ambiguous counts points whose value lies inside more than one block's
	// bounding box.
	Ambiguous int
}

// Quantize partitions points, maps each block's centroid to its nearest
// palette entry and assigns every point to the first block, in final block
// order, whose bounding box contains it.
func Quantize(points []colorspace.Point, pal palette.Palette, cfg Config) (*Result, error) {
	if len(pal) == 0 {
		return nil, ErrEmptyPalette
	}
	log := cfg.logger()

	log.Info("median cut: partitioning", "points", len(points), "colors", cfg.Colors, "strategy", cfg.Strategy)
	blocks, err := Partition(points, cfg)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Blocks:      blocks,
		Colors:      make([]palette.Entry, len(blocks)),
		Assignments: make([]int, len(points)),
	}
	for i, b := range blocks {
		mean := colorspace.FromLab(b.Centroid())
		res.Colors[i] = pal.Nearest(mean.Lab())
		log.Debug("median cut: block", "index", i, "block", b, "mean", mean.RGB(), "entry", res.Colors[i])
	}

	for j, p := range points {
		res.Assignments[j] = -1
		matches := 0
		for i, b := range blocks {
			if !b.Contains(p) {
				continue
			}
			if matches == 0 {
				res.Assignments[j] = i
			}
			matches++
		}
		if matches > 1 {
			res.Ambiguous++
		}
	}
	if res.Ambiguous > 0 {
		log.Debug("median cut: points inside overlapping blocks", "count", res.Ambiguous)
	}
	return res, nil
}
