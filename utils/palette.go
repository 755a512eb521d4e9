package utils

import (
	"cmp"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/setanarut/crossstitch/colorspace"
	"github.com/setanarut/crossstitch/palette"
)

type PaletteMethod int

const (
	PaletteMethodDominantColor PaletteMethod = iota
	PaletteMethodKMeans
)

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodKMeans:
		return "kmeans"
	default:
		return "dominantcolor"
	}
}

// ParsePaletteMethod accepts the names printed by String.
func ParsePaletteMethod(name string) (PaletteMethod, error) {
	switch name {
	case "", "dominantcolor", "dominant":
		return PaletteMethodDominantColor, nil
	case "kmeans":
		return PaletteMethodKMeans, nil
	}
	return 0, fmt.Errorf("unknown palette method %q", name)
}

// candidate is a color proposed for an extracted palette, weighted by how
// much of the image it covers.
type candidate struct {
	rgb    colorspace.RGB
	weight float64
}

// SortByBrightness orders entries from darkest to brightest by relative
// luminance. Equal luminance keeps the input order.
func SortByBrightness(p palette.Palette) {
	slices.SortStableFunc(p, func(a, b palette.Entry) int {
		return cmp.Compare(luminance(a.Colorful()), luminance(b.Colorful()))
	})
}

func luminance(c colorful.Color) float64 {
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// ExtractPalette derives a k-entry palette from img itself. Entries are
// labelled P01, P02 and so on. A k-means run that yields nothing falls back
// to dominant colors.
func ExtractPalette(img image.Image, k int, method PaletteMethod, log *slog.Logger) palette.Palette {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	switch method {
	case PaletteMethodKMeans:
		p := ExtractKMeansPalette(img, k)
		if len(p) != 0 {
			return p
		}
		log.Warn("palette: kmeans returned empty palette, falling back to dominantcolor")
		return ExtractDominantPalette(img, k)
	default:
		return ExtractDominantPalette(img, k)
	}
}

func ExtractDominantPalette(img image.Image, k int) palette.Palette {
	if k <= 0 {
		return nil
	}
	found := dominantcolor.FindWeight(img, max(24, k*8))
	if len(found) == 0 {
		found = append(found, dominantcolor.Color{
			RGBA:   color.RGBA{R: 128, G: 128, B: 128, A: 255},
			Weight: 1.0,
		})
	}
	cands := make([]candidate, len(found))
	for i, c := range found {
		cands[i] = candidate{rgb: colorspace.RGBFromColor(c.RGBA), weight: c.Weight}
	}
	return selectDiverse(cands, k)
}

// labScale brings L*a*b* coordinates near the unit cube that kmeans seeds
// its centers in. The scale is uniform, so distances keep their order.
const labScale = 100

// ExtractKMeansPalette clusters the image's opaque pixels in L*a*b* and
// offers the cluster means, weighted by cluster size, to selectDiverse.
func ExtractKMeansPalette(img image.Image, k int) palette.Palette {
	if k <= 0 {
		return nil
	}
	b := img.Bounds()
	if b.Empty() {
		return nil
	}

	// Sample a sparse grid from large images.
	const maxSamples = 12000
	step := 1
	if n := b.Dx() * b.Dy(); n > maxSamples {
		step = int(math.Sqrt(float64(n)/maxSamples)) + 1
	}
	cache := colorspace.NewCache()
	var dataset clusters.Observations
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			c := img.At(x, y)
			if _, _, _, a := c.RGBA(); a == 0 {
				continue
			}
			lab := cache.Pixel(colorspace.RGBFromColor(c)).Lab()
			dataset = append(dataset, clusters.Coordinates{lab[0] / labScale, lab[1] / labScale, lab[2] / labScale})
		}
	}
	if len(dataset) == 0 {
		return nil
	}

	cc, err := kmeans.New().Partition(dataset, min(max(k*4, k+2), len(dataset)))
	if err != nil {
		return nil
	}
	cands := make([]candidate, 0, len(cc))
	for _, c := range cc {
		if len(c.Observations) == 0 {
			continue
		}
		mean := colorspace.FromLab(colorspace.Point{c.Center[0] * labScale, c.Center[1] * labScale, c.Center[2] * labScale})
		// Means of in-gamut colors can land just outside the RGB cube.
		rgb := colorspace.RGBFromColor(mean.RGB().Color())
		cands = append(cands, candidate{rgb: rgb, weight: float64(len(c.Observations))})
	}
	return selectDiverse(cands, k)
}

// selectDiverse picks up to k candidates. The heaviest comes first; after
// that each round takes the candidate farthest from its nearest pick, with
// the distance scaled up for heavier candidates. Picks are labelled P01, P02
// and so on.
func selectDiverse(cands []candidate, k int) palette.Palette {
	k = min(k, len(cands))
	if k <= 0 {
		return nil
	}
	maxW := 0.0
	heaviest := 0
	for i, c := range cands {
		if c.weight > cands[heaviest].weight {
			heaviest = i
		}
		maxW = max(maxW, c.weight)
	}
	if maxW <= 0 {
		maxW = 1
	}

	picked := palette.Palette{palette.NewEntry("", cands[heaviest].rgb)}
	taken := make([]bool, len(cands))
	taken[heaviest] = true
	for len(picked) < k {
		best, bestScore := -1, -1.0
		for i, c := range cands {
			if taken[i] {
				continue
			}
			lab := colorspace.ToLab(c.rgb)
			d := math.Sqrt(lab.DistanceSquared(picked.Nearest(lab).Lab()))
			score := d * (0.55 + 0.45*math.Sqrt(max(c.weight, 0)/maxW))
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		taken[best] = true
		picked = append(picked, palette.NewEntry("", cands[best].rgb))
	}

	for i := range picked {
		picked[i] = palette.NewEntry(fmt.Sprintf("P%02d", i+1), picked[i].RGB)
	}
	return picked
}

// SavePalette writes the palette as a strip of tileSize squares.
func SavePalette(p palette.Palette, tileSize int, filename string) error {
	if len(p) == 0 {
		return errors.New("empty palette")
	}
	if tileSize <= 0 {
		tileSize = 64
	}
	img := image.NewNRGBA(image.Rect(0, 0, tileSize*len(p), tileSize))
	for i, e := range p {
		c := e.Color()
		for y := range tileSize {
			for x := i * tileSize; x < (i+1)*tileSize; x++ {
				img.SetNRGBA(x, y, c)
			}
		}
	}
	return SaveImage(img, filename)
}
