// Package guide lays a mosaic out as a paginated physical assembly guide.
package guide

import (
	"fmt"
	"image"

	"github.com/maax3v3/cubemosaic/internal/mosaic"
)

// Layout is the arrangement of cube cards on one page.
type Layout struct {
	Columns int `yaml:"columns"`
	Rows    int `yaml:"rows"`
}

// DefaultLayout fits twelve cubes on a printed page at a legible size.
var DefaultLayout = Layout{Columns: 4, Rows: 3}

// Capacity returns the number of cubes per page.
func (l Layout) Capacity() int {
	return l.Columns * l.Rows
}

// Validate rejects layouts without room for a cube.
func (l Layout) Validate() error {
	if l.Columns <= 0 || l.Rows <= 0 {
		return fmt.Errorf("page layout must be at least 1x1, got %dx%d", l.Columns, l.Rows)
	}
	return nil
}

// Placement is one cube positioned on a page.
type Placement struct {
	// Index is the cube's 1-based position in assembly order.
	Index int
	Cube  mosaic.Cube
	// Slot is the card position on the page, in columns and rows.
	Slot image.Point
}

// Page is one printed page of cube cards.
type Page struct {
	Number int // 1-based
	Cubes  []Placement
}

// PageCount returns ceil(total/capacity) for m under l.
func PageCount(m *mosaic.Mosaic, l Layout) int {
	c := l.Capacity()
	if c <= 0 {
		return 0
	}
	return (m.Dimensions().Total + c - 1) / c
}

// Paginate assigns cubes to pages in row-major grid order, so reading the
// pages in sequence walks the mosaic left to right, top to bottom.
func Paginate(m *mosaic.Mosaic, l Layout) ([]Page, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: mosaic is nil", mosaic.ErrInvalidDocument)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}

	capacity := l.Capacity()
	cubes := m.Cubes()
	pages := make([]Page, 0, PageCount(m, l))
	for i, cube := range cubes {
		slot := i % capacity
		if slot == 0 {
			pages = append(pages, Page{
				Number: len(pages) + 1,
				Cubes:  make([]Placement, 0, capacity),
			})
		}
		page := &pages[len(pages)-1]
		page.Cubes = append(page.Cubes, Placement{
			Index: i + 1,
			Cube:  cube,
			Slot:  image.Point{X: slot % l.Columns, Y: slot / l.Columns},
		})
	}
	return pages, nil
}
