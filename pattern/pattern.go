// Package pattern draws the stitch chart for a quantized image: every stitch
// becomes a square cell separated from its neighbours by grid lines.
package pattern

import (
	"cmp"
	"image"
	"image/color"
	"image/draw"
	"slices"

	"github.com/setanarut/crossstitch"
	"github.com/setanarut/crossstitch/palette"
)

type Options struct {
	// Cell is the side of one stitch in output pixels, grid line included.
	Cell int
	Grid color.Color
}

func DefaultOptions() Options {
	return Options{Cell: 4, Grid: color.Black}
}

// Render magnifies src by opt.Cell and draws a one pixel grid line along the
// right and bottom edge of every cell. The image's own right and bottom
// borders get no line, except that the corner pixel of each cell on those
// borders stays grid colored; the last stitch is drawn in full.
func Render(src image.Image, opt Options) *image.RGBA {
	if opt.Cell < 2 {
		opt.Cell = DefaultOptions().Cell
	}
	if opt.Grid == nil {
		opt.Grid = DefaultOptions().Grid
	}
	b := src.Bounds()
	nx, ny := b.Dx(), b.Dy()
	c := opt.Cell
	last := c - 1
	out := image.NewRGBA(image.Rect(0, 0, nx*c, ny*c))
	grid := image.NewUniform(opt.Grid)

	for j := range nx {
		for k := range ny {
			cell := image.Rect(j*c, k*c, (j+1)*c, (k+1)*c)
			draw.Draw(out, cell, image.NewUniform(src.At(b.Min.X+j, b.Min.Y+k)), image.Point{}, draw.Src)

			lastCol, lastRow := j == nx-1, k == ny-1
			if !lastCol {
				draw.Draw(out, image.Rect(cell.Min.X+last, cell.Min.Y, cell.Max.X, cell.Max.Y), grid, image.Point{}, draw.Src)
			}
			if !lastRow {
				draw.Draw(out, image.Rect(cell.Min.X, cell.Min.Y+last, cell.Max.X, cell.Max.Y), grid, image.Point{}, draw.Src)
			}
			if (lastCol || lastRow) && !(lastCol && lastRow) {
				out.Set(cell.Min.X+last, cell.Min.Y+last, opt.Grid)
			}
		}
	}
	return out
}

// Stitch is one legend row.
type Stitch struct {
	Entry palette.Entry
	Count int
}

// Legend lists the threads used by res, most used first. Equal counts keep
// palette order.
func Legend(res *crossstitch.Result) []Stitch {
	counts := res.Counts()
	out := make([]Stitch, len(res.Palette))
	for i, e := range res.Palette {
		out[i] = Stitch{Entry: e, Count: counts[i]}
	}
	slices.SortStableFunc(out, func(a, b Stitch) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return out
}
