// Package crossstitch turns an image into a cross-stitch pattern: every pixel
// is mapped to one thread color out of a reference palette, using at most a
// requested number of distinct colors.
//
// Two reduction methods are available. Median cut splits the image's L*a*b*
// colors into population-balanced boxes; Lloyd's relaxation iterates region
// centers to a fixed point. Either way each group's mean color is matched to
// the nearest palette entry.
package crossstitch

import (
	"fmt"
	"image"
	"image/color"

	"github.com/setanarut/crossstitch/colorspace"
	"github.com/setanarut/crossstitch/lloyd"
	"github.com/setanarut/crossstitch/mediancut"
	"github.com/setanarut/crossstitch/palette"
)

// Image is a row-major grid of 8-bit RGB pixels.
type Image struct {
	W, H   int
	Pixels []colorspace.RGB // len = W*H
}

// ImageFromStd copies img into an Image, dropping alpha.
func ImageFromStd(img image.Image) Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := Image{W: w, H: h, Pixels: make([]colorspace.RGB, w*h)}
	for y := range h {
		for x := range w {
			out.Pixels[y*w+x] = colorspace.RGBFromColor(img.At(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}
	return out
}

// Result is a quantized image: every pixel refers to one entry of Palette.
type Result struct {
	W, H int
	// Palette holds the distinct entries in use, in order of first
	// appearance.
	Palette palette.Palette
	// Indices[y*W+x] indexes Palette.
	Indices []int
}

func (r *Result) At(x, y int) palette.Entry {
	return r.Palette[r.Indices[y*r.W+x]]
}

// Counts returns how many pixels use each Palette entry.
func (r *Result) Counts() []int {
	counts := make([]int, len(r.Palette))
	for _, i := range r.Indices {
		counts[i]++
	}
	return counts
}

// Image renders the result at one pixel per stitch. It is an *image.Paletted
// when the palette fits in 256 colors and an *image.NRGBA otherwise.
func (r *Result) Image() image.Image {
	rect := image.Rect(0, 0, r.W, r.H)
	if len(r.Palette) <= 256 {
		img := image.NewPaletted(rect, r.Palette.Colors())
		for i, idx := range r.Indices {
			img.Pix[i] = uint8(idx)
		}
		return img
	}
	img := image.NewNRGBA(rect)
	colors := r.Palette.Colors()
	for i, idx := range r.Indices {
		img.SetNRGBA(i%r.W, i/r.W, colors[idx].(color.NRGBA))
	}
	return img
}

// Quantize maps every pixel of img to an entry of pal using the method and
// color count in opt.
func Quantize(img Image, pal palette.Palette, opt Options) (*Result, error) {
	if opt.Colors <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidColorCount, opt.Colors)
	}
	if img.W <= 0 || img.H <= 0 || len(img.Pixels) == 0 {
		return nil, ErrEmptyImage
	}
	if len(img.Pixels) != img.W*img.H {
		return nil, fmt.Errorf("%w: %d pixels for %dx%d", ErrPixelCount, len(img.Pixels), img.W, img.H)
	}
	if len(pal) == 0 {
		return nil, ErrEmptyPalette
	}
	log := opt.logger()
	opt.checkStrategy(log)

	cache := colorspace.NewCache()
	points := make([]colorspace.Point, len(img.Pixels))
	for i, c := range img.Pixels {
		points[i] = cache.Pixel(c).Lab()
	}
	log.Info("enumerated pixels", "pixels", len(points), "distinct", cache.Len())
	log.Info("quantizing", "algorithm", opt.Algorithm, "strategy", opt.Strategy(), "colors", opt.Colors)

	var (
		colors      []palette.Entry
		assignments []int
	)
	switch opt.Algorithm {
	case MedianCut:
		res, err := mediancut.Quantize(points, pal, mediancut.Config{
			Colors:   opt.Colors,
			Strategy: opt.Division,
			Logger:   log,
		})
		if err != nil {
			return nil, err
		}
		colors, assignments = res.Colors, res.Assignments
	case Lloyd:
		res, err := lloyd.Quantize(points, pal, lloyd.Config{
			Colors:        opt.Colors,
			Seeding:       opt.Seeding,
			KDTree:        opt.KDTree,
			MaxIterations: opt.MaxIterations,
			Workers:       opt.Workers,
			Rand:          opt.Rand,
			Logger:        log,
		})
		if err != nil {
			return nil, err
		}
		colors, assignments = res.Colors, res.Assignments
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, int(opt.Algorithm))
	}

	out := &Result{W: img.W, H: img.H, Indices: make([]int, len(assignments))}
	seen := make(map[palette.Entry]int)
	for i, a := range assignments {
		e := colors[a]
		idx, ok := seen[e]
		if !ok {
			idx = len(out.Palette)
			seen[e] = idx
			out.Palette = append(out.Palette, e)
		}
		out.Indices[i] = idx
	}
	log.Info("flossed image", "threads", len(out.Palette))
	return out, nil
}
