package colorspace

import (
	"image/color"
	"math"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	step := 3
	if testing.Short() {
		step = 15
	}
	check := func(c RGB) {
		if got := ToRGB(ToLab(c)); got != c {
			t.Fatalf("ToRGB(ToLab(%v)) = %v", c, got)
		}
	}
	for r := 0; r <= 255; r += step {
		for g := 0; g <= 255; g += step {
			for b := 0; b <= 255; b += step {
				check(RGB{r, g, b})
			}
		}
	}
	// Channel extremes and the gamma knee are always covered.
	for _, v := range []int{0, 1, 10, 11, 254, 255} {
		for _, w := range []int{0, 128, 255} {
			check(RGB{v, w, v})
			check(RGB{w, v, v})
			check(RGB{v, v, w})
		}
	}
}

func TestToLabKnownValues(t *testing.T) {
	tests := []struct {
		in   RGB
		want Point
	}{
		{RGB{0, 0, 0}, Point{0, 0, 0}},
		{RGB{255, 255, 255}, Point{100, 0.005, -0.01}},
		{RGB{255, 0, 0}, Point{53.23, 80.11, 67.22}},
		{RGB{0, 0, 255}, Point{32.30, 79.20, -107.86}},
	}
	for _, tt := range tests {
		got := ToLab(tt.in)
		for i := range 3 {
			if math.Abs(got[i]-tt.want[i]) > 0.05 {
				t.Errorf("ToLab(%v) = %v, want ~%v", tt.in, got, tt.want)
				break
			}
		}
	}
}

func TestToRGBDoesNotClamp(t *testing.T) {
	got := ToRGB(Point{50, 120, -120})
	inRange := true
	for _, v := range got {
		if v < 0 || v > 255 {
			inRange = false
		}
	}
	if inRange {
		t.Errorf("ToRGB(out of gamut) = %v, expected at least one channel outside [0,255]", got)
	}
	if c := got.Color(); c.A != 255 {
		t.Errorf("Color().A = %d, want 255", c.A)
	}
}

func TestPixel(t *testing.T) {
	c := RGB{12, 200, 77}
	p := FromRGB(c)
	if p.RGB() != c {
		t.Errorf("FromRGB(%v).RGB() = %v", c, p.RGB())
	}
	if p.Lab() != ToLab(c) {
		t.Errorf("FromRGB(%v).Lab() = %v, want %v", c, p.Lab(), ToLab(c))
	}
	q := FromLab(p.Lab())
	if q.RGB() != c {
		t.Errorf("FromLab(...).RGB() = %v, want %v", q.RGB(), c)
	}
}

func TestCache(t *testing.T) {
	c := NewCache()
	a := c.Lab(RGB{1, 2, 3})
	b := c.Lab(RGB{1, 2, 3})
	c.Lab(RGB{3, 2, 1})
	if a != b {
		t.Errorf("cached Lab differs: %v vs %v", a, b)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	px := c.Pixel(RGB{3, 2, 1})
	if px.RGB() != (RGB{3, 2, 1}) || px.Lab() != ToLab(RGB{3, 2, 1}) {
		t.Errorf("Pixel() = %v / %v", px.RGB(), px.Lab())
	}
	if c.Len() != 2 {
		t.Errorf("Len() after cached Pixel() = %d, want 2", c.Len())
	}
}

func TestRGBFromColor(t *testing.T) {
	tests := []struct {
		in   color.Color
		want RGB
	}{
		{color.NRGBA{R: 10, G: 20, B: 30, A: 255}, RGB{10, 20, 30}},
		{color.NRGBA{R: 200, G: 100, B: 50, A: 128}, RGB{200, 100, 50}},
		{color.RGBA{R: 64, A: 128}, RGB{127, 0, 0}},
		{color.RGBA64{R: 0xffff, G: 0x8000, B: 0, A: 0xffff}, RGB{255, 128, 0}},
		{color.RGBA{}, RGB{0, 0, 0}},
	}
	for _, tt := range tests {
		if got := RGBFromColor(tt.in); got != tt.want {
			t.Errorf("RGBFromColor(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNearest(t *testing.T) {
	candidates := []Point{{10, 0, 0}, {0, 0, 0}, {20, 0, 0}, {0, 0, 0}}
	tests := []struct {
		p    Point
		want int
	}{
		{Point{1, 0, 0}, 1},
		{Point{9, 0, 0}, 0},
		{Point{15, 0, 0}, 0}, // equidistant to 0 and 2
		{Point{100, 0, 0}, 2},
	}
	for _, tt := range tests {
		got := Nearest(tt.p, candidates)
		if got != tt.want {
			t.Errorf("Nearest(%v) = %d, want %d", tt.p, got, tt.want)
		}
		d := tt.p.DistanceSquared(candidates[got])
		for i, c := range candidates {
			if tt.p.DistanceSquared(c) < d {
				t.Errorf("Nearest(%v) = %d, but %d is closer", tt.p, got, i)
			}
		}
	}
	if got := Nearest(Point{}, nil); got != -1 {
		t.Errorf("Nearest(empty) = %d, want -1", got)
	}
}

func TestCentroidAndBounds(t *testing.T) {
	pts := []Point{{0, -2, 4}, {2, 2, 0}, {4, 0, 2}}
	if got := Centroid(pts); got != (Point{2, 0, 2}) {
		t.Errorf("Centroid() = %v", got)
	}
	lo, hi := Bounds(pts)
	if lo != (Point{0, -2, 0}) || hi != (Point{4, 2, 4}) {
		t.Errorf("Bounds() = %v, %v", lo, hi)
	}
	if !Within(Point{4, -2, 0}, lo, hi) {
		t.Error("Within() should include the box corners")
	}
	if Within(Point{4.01, 0, 0}, lo, hi) {
		t.Error("Within() should exclude points past the box")
	}
}
