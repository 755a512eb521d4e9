// Package palette holds the reference set of thread colors a pattern is
// allowed to use.
package palette

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/setanarut/crossstitch/colorspace"
)

// Entry is one reference color, typically a thread from a manufacturer's
// table. Entries are values and are never mutated after NewEntry.
type Entry struct {
	Label string
	RGB   colorspace.RGB
	lab   colorspace.Point
}

func NewEntry(label string, rgb colorspace.RGB) Entry {
	return Entry{Label: label, RGB: rgb, lab: colorspace.ToLab(rgb)}
}

// FromColorful converts a go-colorful color, clamping it into gamut first.
func FromColorful(label string, c colorful.Color) Entry {
	r, g, b := c.Clamped().RGB255()
	return NewEntry(label, colorspace.RGB{int(r), int(g), int(b)})
}

func (e Entry) Lab() colorspace.Point { return e.lab }

func (e Entry) Color() color.NRGBA { return e.RGB.Color() }

func (e Entry) Colorful() colorful.Color {
	c, _ := colorful.MakeColor(e.Color())
	return c
}

// Hex returns the "#rrggbb" form of the entry.
func (e Entry) Hex() string { return e.Colorful().Hex() }

func (e Entry) String() string {
	if e.Label == "" {
		return e.Hex()
	}
	return e.Label + " " + e.Hex()
}

type Palette []Entry

// NearestIndex returns the index of the entry closest to p in L*a*b*, or -1
// for an empty palette. Ties go to the earlier entry.
func (p Palette) NearestIndex(pt colorspace.Point) int {
	return colorspace.Nearest(pt, p.Points())
}

// Nearest returns the entry closest to pt. The palette must not be empty.
func (p Palette) Nearest(pt colorspace.Point) Entry {
	return p[p.NearestIndex(pt)]
}

// Points returns the L*a*b* coordinates of every entry, in order.
func (p Palette) Points() []colorspace.Point {
	out := make([]colorspace.Point, len(p))
	for i, e := range p {
		out[i] = e.lab
	}
	return out
}

// Colors returns the palette as a color.Palette for image.Paletted.
func (p Palette) Colors() color.Palette {
	out := make(color.Palette, len(p))
	for i, e := range p {
		out[i] = e.Color()
	}
	return out
}
