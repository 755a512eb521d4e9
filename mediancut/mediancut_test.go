package mediancut

import (
	"bytes"
	"cmp"
	"errors"
	"log/slog"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/setanarut/crossstitch/colorspace"
	"github.com/setanarut/crossstitch/palette"
)

func randomPoints(r *rand.Rand, n int) []colorspace.Point {
	pts := make([]colorspace.Point, n)
	for i := range pts {
		pts[i] = colorspace.ToLab(colorspace.RGB{r.IntN(256), r.IntN(256), r.IntN(256)})
	}
	return pts
}

func comparePoints(p, q colorspace.Point) int {
	for i := range 3 {
		if c := cmp.Compare(p[i], q[i]); c != 0 {
			return c
		}
	}
	return 0
}

func TestSplit(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for _, n := range []int{2, 3, 7, 10, 101} {
		b := NewBlock(randomPoints(r, n))
		plo, phi := b.Bounds()
		axis := b.LongestAxis()
		lower, upper := b.Split()

		if d := upper.Len() - lower.Len(); d < 0 || d > 1 {
			t.Errorf("n=%d: split sizes %d/%d", n, lower.Len(), upper.Len())
		}
		if lower.Len()+upper.Len() != n {
			t.Errorf("n=%d: split lost points", n)
		}
		_, lhi := lower.Bounds()
		ulo, _ := upper.Bounds()
		if lhi[axis] > ulo[axis] {
			t.Errorf("n=%d: lower child extends past upper child on axis %d", n, axis)
		}
		for i := range 3 {
			llo, lhi := lower.Bounds()
			ulo, uhi := upper.Bounds()
			if min(llo[i], ulo[i]) != plo[i] || max(lhi[i], uhi[i]) != phi[i] {
				t.Errorf("n=%d: children do not cover parent on axis %d", n, i)
			}
		}
	}
}

func TestSplitSinglePointPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Split() of a single point did not panic")
		}
	}()
	NewBlock([]colorspace.Point{{1, 2, 3}}).Split()
}

func TestLongestAxis(t *testing.T) {
	b := NewBlock([]colorspace.Point{{0, 0, 0}, {1, 5, 5}})
	if got := b.LongestAxis(); got != 1 {
		t.Errorf("LongestAxis() = %d, want 1 (first of the tied axes)", got)
	}
	if got := b.LongestSide(); got != 5 {
		t.Errorf("LongestSide() = %v, want 5", got)
	}
}

func TestPartition(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	pts := randomPoints(r, 500)
	orig := slices.Clone(pts)
	for _, s := range []Strategy{Size, Population, Hybrid} {
		for _, k := range []int{1, 2, 5, 16, 64} {
			blocks, err := Partition(pts, Config{Colors: k, Strategy: s})
			if err != nil {
				t.Fatalf("Partition(%v, %d) error = %v", s, k, err)
			}
			if len(blocks) != k {
				t.Errorf("Partition(%v, %d) made %d blocks", s, k, len(blocks))
			}
			var all []colorspace.Point
			for _, b := range blocks {
				lo, hi := colorspace.Bounds(b.Points())
				blo, bhi := b.Bounds()
				if lo != blo || hi != bhi {
					t.Errorf("block %v has stale bounds", b)
				}
				all = append(all, b.Points()...)
			}
			want := slices.Clone(orig)
			slices.SortFunc(want, comparePoints)
			slices.SortFunc(all, comparePoints)
			if !slices.Equal(all, want) {
				t.Errorf("Partition(%v, %d) did not conserve points", s, k)
			}
		}
	}
	if !slices.Equal(pts, orig) {
		t.Error("Partition modified its input")
	}
}

func TestPartitionMoreColorsThanPoints(t *testing.T) {
	pts := []colorspace.Point{{1, 0, 0}, {2, 0, 0}, {2, 0, 0}}
	blocks, err := Partition(pts, Config{Colors: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 3 {
		t.Errorf("Partition() made %d blocks, want 3", len(blocks))
	}
}

func TestPartitionErrors(t *testing.T) {
	pts := []colorspace.Point{{1, 0, 0}}
	for _, k := range []int{0, -3} {
		if _, err := Partition(pts, Config{Colors: k}); !errors.Is(err, ErrInvalidColorCount) {
			t.Errorf("Partition(k=%d) error = %v, want ErrInvalidColorCount", k, err)
		}
	}
	if _, err := Partition(nil, Config{Colors: 2}); !errors.Is(err, ErrNoPoints) {
		t.Errorf("Partition(nil) error = %v, want ErrNoPoints", err)
	}
	if _, err := Quantize(pts, nil, Config{Colors: 2}); !errors.Is(err, ErrEmptyPalette) {
		t.Errorf("Quantize(nil palette) error = %v, want ErrEmptyPalette", err)
	}
}

func TestPriority(t *testing.T) {
	big := NewBlock([]colorspace.Point{{0, 0, 0}, {1, 0, 0}, {1, 0, 0}, {0, 0, 0}})
	wide := NewBlock([]colorspace.Point{{0, 0, 0}, {50, 0, 0}})

	tests := []struct {
		s      Strategy
		blocks int
		want   *Block
	}{
		{Size, 2, wide},
		{Population, 2, big},
		{Hybrid, 2, big},  // 2 <= 8/2
		{Hybrid, 4, big},  // 4 <= 8/2
		{Hybrid, 5, wide}, // past half
	}
	for _, tt := range tests {
		prio := tt.s.priority(tt.blocks, 8)
		got := big
		if prio(wide) > prio(big) {
			got = wide
		}
		if got != tt.want {
			t.Errorf("%v with %d blocks picked %v", tt.s, tt.blocks, got)
		}
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in     string
		want   Strategy
		wantOK bool
	}{
		{"", Size, true},
		{"size", Size, true},
		{"Population", Population, true},
		{"hybrid", Hybrid, true},
		{"bogus", Size, false},
	}
	for _, tt := range tests {
		got, ok := ParseStrategy(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseStrategy(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
		if tt.wantOK && tt.in != "" {
			if back, _ := ParseStrategy(got.String()); back != got {
				t.Errorf("ParseStrategy(%v.String()) = %v", got, back)
			}
		}
	}
}

func grays() palette.Palette {
	return palette.Palette{
		palette.NewEntry("310", colorspace.RGB{0, 0, 0}),
		palette.NewEntry("414", colorspace.RGB{128, 128, 128}),
		palette.NewEntry("B5200", colorspace.RGB{255, 255, 255}),
		palette.NewEntry("321", colorspace.RGB{199, 43, 59}),
	}
}

func TestQuantizeBlackAndWhite(t *testing.T) {
	rgbs := []colorspace.RGB{{0, 0, 0}, {255, 255, 255}, {10, 10, 10}, {245, 245, 245}}
	pts := make([]colorspace.Point, len(rgbs))
	for i, c := range rgbs {
		pts[i] = colorspace.ToLab(c)
	}

	res, err := Quantize(pts, grays(), Config{Colors: 2, Strategy: Size})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(res.Blocks))
	}
	for _, b := range res.Blocks {
		if b.Len() != 2 {
			t.Errorf("block %v has %d points, want 2", b, b.Len())
		}
	}
	want := []string{"310", "B5200", "310", "B5200"}
	for j, a := range res.Assignments {
		if got := res.Colors[a].Label; got != want[j] {
			t.Errorf("pixel %d mapped to %s, want %s", j, got, want[j])
		}
	}
	if res.Ambiguous != 0 {
		t.Errorf("Ambiguous = %d, want 0", res.Ambiguous)
	}
}

func TestQuantizeOverlapPicksFirstBlock(t *testing.T) {
	// The split along L leaves the lower box spanning a in [-5,5] up to L=50,
	// which swallows the upper block's {50,0,0}.
	pts := []colorspace.Point{{10, -5, 0}, {50, 5, 0}, {50, 0, 0}, {90, 0, 0}}
	res, err := Quantize(pts, grays(), Config{Colors: 2})
	if err != nil {
		t.Fatal(err)
	}
	for j, p := range pts {
		a := res.Assignments[j]
		if a < 0 || !res.Blocks[a].Contains(p) {
			t.Fatalf("point %v assigned to block %d which does not contain it", p, a)
		}
		for i := range a {
			if res.Blocks[i].Contains(p) {
				t.Errorf("point %v assigned to block %d, but earlier block %d contains it", p, a, i)
			}
		}
	}
	if res.Ambiguous == 0 {
		t.Error("Ambiguous = 0, want the shared L=50 points counted")
	}
}

func TestQuantizeLogs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	pts := []colorspace.Point{{10, 0, 0}, {90, 0, 0}}
	if _, err := Quantize(pts, grays(), Config{Colors: 2, Logger: log}); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("median cut: partitioning")) {
		t.Errorf("log output missing partition stage:\n%s", buf.String())
	}
	// Block means go back through the exact Lab to RGB inverse.
	if !bytes.Contains(buf.Bytes(), []byte("mean=")) {
		t.Errorf("log output missing block means:\n%s", buf.String())
	}
}

func BenchmarkQuantize(b *testing.B) {
	r := rand.New(rand.NewPCG(5, 6))
	pts := randomPoints(r, 100*100)
	pal := grays()
	for b.Loop() {
		if _, err := Quantize(pts, pal, Config{Colors: 16}); err != nil {
			b.Fatal(err)
		}
	}
}
