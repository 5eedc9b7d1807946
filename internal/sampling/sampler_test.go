package sampling

import (
	"errors"
	"image"
	stdcolor "image/color"
	"testing"

	"github.com/maax3v3/cubemosaic/internal/color"
	"github.com/maax3v3/cubemosaic/internal/imaging"
)

func fill(img *image.RGBA, r image.Rectangle, c stdcolor.RGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func TestSpans_PartitionWhenLarger(t *testing.T) {
	for _, tc := range []struct{ length, n int }{{10, 3}, {24, 24}, {100, 96}, {1000, 24}, {97, 96}} {
		ss := spans(tc.length, tc.n)
		owner := make([]int, tc.length)
		for i, s := range ss {
			if s.hi <= s.lo {
				t.Fatalf("length=%d n=%d: empty span %d", tc.length, tc.n, i)
			}
			for p := s.lo; p < s.hi; p++ {
				owner[p]++
			}
		}
		for p, n := range owner {
			if n != 1 {
				t.Fatalf("length=%d n=%d: pixel %d owned by %d cells", tc.length, tc.n, p, n)
			}
		}
	}
}

func TestSpans_UpsampleCoversEveryPixel(t *testing.T) {
	for _, tc := range []struct{ length, n int }{{1, 24}, {5, 24}, {23, 24}, {50, 96}} {
		ss := spans(tc.length, tc.n)
		seen := make([]bool, tc.length)
		for i, s := range ss {
			if s.hi-s.lo != 1 {
				t.Fatalf("length=%d n=%d: span %d has width %d, want 1", tc.length, tc.n, i, s.hi-s.lo)
			}
			if s.lo < 0 || s.lo >= tc.length {
				t.Fatalf("length=%d n=%d: span %d out of range", tc.length, tc.n, i)
			}
			seen[s.lo] = true
		}
		for p, ok := range seen {
			if !ok {
				t.Fatalf("length=%d n=%d: pixel %d not assigned to any cell", tc.length, tc.n, p)
			}
		}
	}
}

func TestSample_SolidColor(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 50, 40))
	fill(img, img.Bounds(), stdcolor.RGBA{10, 200, 30, 255})

	g, err := Sample(img, 24, 24)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if g.Cols != 24 || g.Rows != 24 || len(g.Cells) != 24*24 {
		t.Fatalf("unexpected grid shape %dx%d (%d cells)", g.Cols, g.Rows, len(g.Cells))
	}
	for i, c := range g.Cells {
		if c != (color.RGB{R: 10, G: 200, B: 30}) {
			t.Fatalf("cell %d: got %+v", i, c)
		}
	}
}

func TestSample_MeanOfCell(t *testing.T) {
	// 4x2 image into 2x1 cells: left cell mixes black and white, right is red.
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	fill(img, image.Rect(0, 0, 1, 2), stdcolor.RGBA{0, 0, 0, 255})
	fill(img, image.Rect(1, 0, 2, 2), stdcolor.RGBA{255, 255, 255, 255})
	fill(img, image.Rect(2, 0, 4, 2), stdcolor.RGBA{255, 0, 0, 255})

	g, err := Sample(img, 2, 1)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if got := g.At(0, 0); got != (color.RGB{R: 128, G: 128, B: 128}) {
		t.Errorf("left cell: got %+v, want {128,128,128}", got)
	}
	if got := g.At(1, 0); got != (color.RGB{R: 255}) {
		t.Errorf("right cell: got %+v, want {255,0,0}", got)
	}
}

func TestSample_QuadrantsStretch(t *testing.T) {
	// Non-square source is stretched onto a square grid.
	img := image.NewRGBA(image.Rect(0, 0, 300, 90))
	fill(img, image.Rect(0, 0, 150, 45), stdcolor.RGBA{255, 0, 0, 255})
	fill(img, image.Rect(150, 0, 300, 45), stdcolor.RGBA{0, 255, 0, 255})
	fill(img, image.Rect(0, 45, 150, 90), stdcolor.RGBA{0, 0, 255, 255})
	fill(img, image.Rect(150, 45, 300, 90), stdcolor.RGBA{255, 255, 0, 255})

	g, err := Sample(img, 24, 24)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	checks := []struct {
		col, row int
		want     color.RGB
	}{
		{0, 0, color.RGB{R: 255}},
		{23, 0, color.RGB{G: 255}},
		{0, 23, color.RGB{B: 255}},
		{23, 23, color.RGB{R: 255, G: 255}},
		{11, 11, color.RGB{R: 255}},
		{12, 12, color.RGB{R: 255, G: 255}},
	}
	for _, c := range checks {
		if got := g.At(c.col, c.row); got != c.want {
			t.Errorf("cell (%d,%d): got %+v, want %+v", c.col, c.row, got, c.want)
		}
	}
}

func TestSample_SmallerThanGrid(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, stdcolor.RGBA{255, 0, 0, 255})
	img.SetRGBA(1, 0, stdcolor.RGBA{0, 0, 255, 255})

	g, err := Sample(img, 24, 24)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	for row := 0; row < 24; row++ {
		for col := 0; col < 24; col++ {
			want := color.RGB{R: 255}
			if col >= 12 {
				want = color.RGB{B: 255}
			}
			if got := g.At(col, row); got != want {
				t.Fatalf("cell (%d,%d): got %+v, want %+v", col, row, got, want)
			}
		}
	}
}

func TestSample_NonZeroOrigin(t *testing.T) {
	base := image.NewRGBA(image.Rect(0, 0, 20, 20))
	fill(base, base.Bounds(), stdcolor.RGBA{0, 0, 0, 255})
	fill(base, image.Rect(10, 10, 20, 20), stdcolor.RGBA{255, 255, 255, 255})
	sub := base.SubImage(image.Rect(10, 10, 20, 20))

	g, err := Sample(sub, 3, 3)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	for i, c := range g.Cells {
		if c != (color.RGB{R: 255, G: 255, B: 255}) {
			t.Fatalf("cell %d: got %+v, want white", i, c)
		}
	}
}

func TestSample_IgnoresAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 6, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			img.SetNRGBA(x, y, stdcolor.NRGBA{255, 213, 0, 0})
		}
	}
	g, err := Sample(img, 3, 3)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	for i, c := range g.Cells {
		if c != (color.RGB{R: 255, G: 213}) {
			t.Fatalf("cell %d: got %+v, want {255,213,0}", i, c)
		}
	}
}

func TestSample_Deterministic(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 97, 61))
	for y := 0; y < 61; y++ {
		for x := 0; x < 97; x++ {
			img.SetRGBA(x, y, stdcolor.RGBA{uint8(x * 7), uint8(y * 11), uint8(x*y + 3), 255})
		}
	}
	a, err := Sample(img, 48, 30)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		b, err := Sample(img, 48, 30)
		if err != nil {
			t.Fatal(err)
		}
		for j := range a.Cells {
			if a.Cells[j] != b.Cells[j] {
				t.Fatalf("run %d: cell %d differs", i, j)
			}
		}
	}
}

func TestSample_Errors(t *testing.T) {
	if _, err := Sample(nil, 3, 3); err == nil {
		t.Error("expected error for nil image")
	}
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	if _, err := Sample(img, 0, 3); err == nil {
		t.Error("expected error for zero columns")
	}
	empty := image.NewRGBA(image.Rect(0, 0, 0, 0))
	if _, err := Sample(empty, 3, 3); !errors.Is(err, imaging.ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}
