// Package colorspace converts 8-bit sRGB triples to CIE L*a*b* points and
// back, and provides the small amount of point geometry the quantizers share.
package colorspace

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/mat"
)

// RGB is an integer sRGB triple. Values produced by ToRGB are not clamped and
// may fall outside [0,255] for out-of-gamut points.
type RGB [3]int

// Point is a color in L*a*b* space: L in [0,100], a and b roughly [-128,128].
type Point [3]float64

const (
	gammaThreshold  = 0.04045
	linearThreshold = 0.0031308
	labEpsilon      = 0.008856
	labKappa        = 7.787
	labOffset       = 16.0 / 116.0
)

// D65 reference white on the 0-100 scale.
var white = [3]float64{95.047, 100.0, 108.883}

var rgbToXYZ = mat.NewDense(3, 3, []float64{
	0.4124, 0.3576, 0.1805,
	0.2126, 0.7152, 0.0722,
	0.0193, 0.1192, 0.9505,
})

// forward and inverse are row-major copies of rgbToXYZ and its inverse.
var forward, inverse [3][3]float64

func init() {
	var inv mat.Dense
	if err := inv.Inverse(rgbToXYZ); err != nil {
		panic(fmt.Sprintf("colorspace: invert sRGB matrix: %v", err))
	}
	for i := range 3 {
		for j := range 3 {
			forward[i][j] = rgbToXYZ.At(i, j)
			inverse[i][j] = inv.At(i, j)
		}
	}
}

func mul(m *[3][3]float64, v [3]float64) [3]float64 {
	var out [3]float64
	for i := range 3 {
		out[i] = m[i][0]*v[0] + m[i][1]*v[1] + m[i][2]*v[2]
	}
	return out
}

func expand(v float64) float64 {
	if v > gammaThreshold {
		return math.Pow((v+0.055)/1.055, 2.4)
	}
	return v / 12.92
}

func compress(v float64) float64 {
	if v > linearThreshold {
		return 1.055*math.Pow(v, 1/2.4) - 0.055
	}
	return 12.92 * v
}

func labF(t float64) float64 {
	if t > labEpsilon {
		return math.Cbrt(t)
	}
	return labKappa*t + labOffset
}

func labFInv(t float64) float64 {
	if t3 := t * t * t; t3 > labEpsilon {
		return t3
	}
	return (t - labOffset) / labKappa
}

// ToLab converts an sRGB triple to L*a*b*.
func ToLab(c RGB) Point {
	var lin [3]float64
	for i, v := range c {
		lin[i] = expand(float64(v)/255) * 100
	}
	xyz := mul(&forward, lin)
	fx := labF(xyz[0] / white[0])
	fy := labF(xyz[1] / white[1])
	fz := labF(xyz[2] / white[2])
	return Point{116*fy - 16, 500 * (fx - fy), 200 * (fy - fz)}
}

// ToRGB is the inverse of ToLab. Each channel is rounded half up; nothing is
// clamped.
func ToRGB(p Point) RGB {
	fy := (p[0] + 16) / 116
	fx := p[1]/500 + fy
	fz := fy - p[2]/200
	xyz := [3]float64{
		white[0] * labFInv(fx),
		white[1] * labFInv(fy),
		white[2] * labFInv(fz),
	}
	lin := mul(&inverse, xyz)
	var out RGB
	for i, v := range lin {
		out[i] = int(math.Floor(compress(v/100)*255 + 0.5))
	}
	return out
}

// RGBFromColor returns the straight (non-premultiplied) 8-bit channels of c
// and ignores alpha.
func RGBFromColor(c color.Color) RGB {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{int(n.R), int(n.G), int(n.B)}
}

// Color clamps the triple into an opaque color.NRGBA.
func (c RGB) Color() color.NRGBA {
	return color.NRGBA{
		R: uint8(max(0, min(255, c[0]))),
		G: uint8(max(0, min(255, c[1]))),
		B: uint8(max(0, min(255, c[2]))),
		A: 255,
	}
}

func (c RGB) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c[0], c[1], c[2])
}

// Pixel holds both representations of one color. It is immutable once built.
type Pixel struct {
	rgb RGB
	lab Point
}

func FromRGB(c RGB) Pixel {
	return Pixel{rgb: c, lab: ToLab(c)}
}

func FromLab(p Point) Pixel {
	return Pixel{rgb: ToRGB(p), lab: p}
}

func (p Pixel) RGB() RGB   { return p.rgb }
func (p Pixel) Lab() Point { return p.lab }

// Cache memoizes FromRGB per distinct RGB value. Images usually repeat colors
// heavily, so the quantizers convert through a Cache. Not safe for concurrent
// use.
type Cache struct {
	m map[RGB]Pixel
}

func NewCache() *Cache {
	return &Cache{m: make(map[RGB]Pixel)}
}

// Pixel returns the converted pixel for rgb, converting it on first use.
func (c *Cache) Pixel(rgb RGB) Pixel {
	if p, ok := c.m[rgb]; ok {
		return p
	}
	p := FromRGB(rgb)
	c.m[rgb] = p
	return p
}

// Lab is shorthand for c.Pixel(rgb).Lab().
func (c *Cache) Lab(rgb RGB) Point { return c.Pixel(rgb).Lab() }

// Len reports how many distinct colors have been converted.
func (c *Cache) Len() int { return len(c.m) }
