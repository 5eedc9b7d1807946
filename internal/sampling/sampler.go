// Package sampling reduces a source image to a grid of mean colors.
//
// The whole image is stretched onto the grid: no cropping or letterboxing
// happens, so a source whose aspect ratio differs from the grid's is
// distorted rather than trimmed.
package sampling

import (
	"fmt"
	"image"

	"github.com/maax3v3/cubemosaic/internal/color"
	"github.com/maax3v3/cubemosaic/internal/imaging"
	"github.com/maax3v3/cubemosaic/internal/parallel"
)

// Grid holds one raw color per cell.
type Grid struct {
	Cols, Rows int
	Cells      []color.RGB // row-major: index = row*Cols + col
}

// At returns the sampled color of the cell at (col, row).
func (g *Grid) At(col, row int) color.RGB {
	return g.Cells[row*g.Cols+col]
}

// span is a half-open pixel range [lo, hi) along one axis.
type span struct {
	lo, hi int
}

// spans divides length pixels into n contiguous ranges. Range i starts at
// floor(i*length/n); when the source is shorter than n the range collapses
// to that single pixel, which is a deterministic nearest-neighbor pick.
func spans(length, n int) []span {
	out := make([]span, n)
	for i := 0; i < n; i++ {
		lo := i * length / n
		hi := (i + 1) * length / n
		if hi <= lo {
			hi = lo + 1
		}
		out[i] = span{lo: lo, hi: hi}
	}
	return out
}

// Sample partitions img into rows×cols rectangular cells and returns the
// arithmetic mean color of each cell. Alpha is ignored.
//
// Errors are plain: a nil image, a non-positive grid, or imaging.ErrEmpty
// for zero-area bounds. Callers classify them; mosaic.Assemble checks its
// inputs first and reports failures as mosaic.ErrInvalidImage or
// mosaic.ErrInvalidSettings.
func Sample(img image.Image, cols, rows int) (*Grid, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("grid must have positive size, got %dx%d", cols, rows)
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, imaging.ErrEmpty
	}
	w, h := bounds.Dx(), bounds.Dy()

	buf := flatten(img)
	xs := spans(w, cols)
	ys := spans(h, rows)

	g := &Grid{
		Cols:  cols,
		Rows:  rows,
		Cells: make([]color.RGB, cols*rows),
	}
	parallel.Rows(rows, func(sr, er int) {
		for r := sr; r < er; r++ {
			ySpan := ys[r]
			for c := 0; c < cols; c++ {
				xSpan := xs[c]
				var sum color.Sum
				for y := ySpan.lo; y < ySpan.hi; y++ {
					off := y * w
					for x := xSpan.lo; x < xSpan.hi; x++ {
						sum.Add(buf[off+x])
					}
				}
				g.Cells[r*cols+c] = sum.Mean()
			}
		}
	})
	return g, nil
}

// flatten copies the image into a row-major RGB buffer anchored at the
// bounds' origin, avoiding repeated interface dispatch in the mean loops.
func flatten(img image.Image) []color.RGB {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	buf := make([]color.RGB, w*h)

	switch src := img.(type) {
	case *image.NRGBA:
		parallel.Rows(h, func(sy, ey int) {
			for y := sy; y < ey; y++ {
				for x := 0; x < w; x++ {
					i := src.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
					buf[y*w+x] = color.RGB{R: src.Pix[i], G: src.Pix[i+1], B: src.Pix[i+2]}
				}
			}
		})
	default:
		parallel.Rows(h, func(sy, ey int) {
			for y := sy; y < ey; y++ {
				for x := 0; x < w; x++ {
					buf[y*w+x] = color.FromStdColor(img.At(bounds.Min.X+x, bounds.Min.Y+y))
				}
			}
		})
	}
	return buf
}
