package crossstitch

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/setanarut/crossstitch/lloyd"
	"github.com/setanarut/crossstitch/mediancut"
)

// Algorithm selects the palette reduction method.
type Algorithm int

const (
	MedianCut Algorithm = iota
	Lloyd
)

func (a Algorithm) String() string {
	switch a {
	case Lloyd:
		return "lloyds"
	default:
		return "median_cut"
	}
}

// ParseAlgorithm accepts "median_cut" (also "mediancut", "median-cut") and
// "lloyds" (also "lloyd").
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_") {
	case "", "median_cut", "mediancut":
		return MedianCut, nil
	case "lloyds", "lloyd":
		return Lloyd, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

type Options struct {
	// Number of colors to reduce the image to. Must be positive.
	Colors int
	// Median cut or Lloyd's relaxation.
	Algorithm Algorithm
	// Which block median cut splits next. Ignored by Lloyd.
	Division mediancut.Strategy
	// How Lloyd's initial regions are chosen. Ignored by median cut.
	Seeding lloyd.Seeding
	// Use a k-d tree for Lloyd's nearest-region queries.
	KDTree bool
	// Cap on Lloyd iterations; zero means lloyd.DefaultMaxIterations.
	MaxIterations int
	// Goroutines for Lloyd's assignment step; zero means one per CPU.
	Workers int
	// Source for seeding. Nil picks a random seed.
	Rand *rand.Rand
	// Nil discards all log output.
	Logger *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		Colors:    16,
		Algorithm: MedianCut,
		Division:  mediancut.Size,
		Seeding:   lloyd.Random,
	}
}

// SetStrategy interprets name as the strategy of the selected algorithm. An
// unknown name keeps the algorithm's default and logs a warning.
func (o *Options) SetStrategy(name string) {
	log := o.logger()
	switch o.Algorithm {
	case Lloyd:
		s, ok := lloyd.ParseSeeding(name)
		if !ok {
			log.Warn("lloyd: unknown seeding strategy, falling back to random seeds", "strategy", name)
		}
		o.Seeding = s
	default:
		s, ok := mediancut.ParseStrategy(name)
		if !ok {
			log.Warn("median cut: unknown division strategy, falling back to size-based cuts", "strategy", name)
		}
		o.Division = s
	}
}

// checkStrategy replaces an out-of-range strategy value with the algorithm's
// default, warning like SetStrategy does.
func (o *Options) checkStrategy(log *slog.Logger) {
	switch o.Algorithm {
	case Lloyd:
		if !o.Seeding.Valid() {
			log.Warn("lloyd: unknown seeding strategy, falling back to random seeds", "strategy", int(o.Seeding))
			o.Seeding = lloyd.Random
		}
	default:
		if !o.Division.Valid() {
			log.Warn("median cut: unknown division strategy, falling back to size-based cuts", "strategy", int(o.Division))
			o.Division = mediancut.Size
		}
	}
}

// Strategy returns the name of the strategy in effect for the algorithm.
func (o Options) Strategy() string {
	if o.Algorithm == Lloyd {
		return o.Seeding.String()
	}
	return o.Division.String()
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}
