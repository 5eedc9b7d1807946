// Package mosaic assembles the cube mosaic data model from a source image.
//
// A Mosaic is a grid of DisplayHeight×DisplayWidth faces, each one of the
// six palette colors. The cube at (cx, cy) owns the 3×3 block of faces
// starting at row cy*3, column cx*3; those blocks partition the grid.
package mosaic

import (
	"fmt"

	"github.com/maax3v3/cubemosaic/internal/aggregation"
	"github.com/maax3v3/cubemosaic/internal/palette"
)

// Mosaic is immutable once built. All accessors return copies.
type Mosaic struct {
	settings Settings
	dims     Dimensions
	faces    []palette.Color // row-major: index = row*DisplayWidth + col
	counts   palette.Counts
}

// Cube is the 3×3 face layout of one physical cube and its grid position.
type Cube struct {
	X, Y  int
	Faces [FacesPerSide][FacesPerSide]palette.Color // [row][col]
}

// build wraps a face grid and checks every data model invariant.
func build(s Settings, faces []palette.Color) (*Mosaic, error) {
	dims := DimensionsFor(s)
	if len(faces) != dims.DisplayWidth*dims.DisplayHeight {
		return nil, fmt.Errorf("%w: %d faces for a %dx%d grid",
			ErrInternalInvariant, len(faces), dims.DisplayWidth, dims.DisplayHeight)
	}
	for i, c := range faces {
		if !c.Valid() {
			return nil, fmt.Errorf("%w: face %d holds non-palette value %d", ErrInternalInvariant, i, uint8(c))
		}
	}
	counts := aggregation.Tally(faces)
	if counts.Total() != dims.TotalFaces {
		return nil, fmt.Errorf("%w: color counts sum to %d, want %d",
			ErrInternalInvariant, counts.Total(), dims.TotalFaces)
	}
	return &Mosaic{
		settings: s,
		dims:     dims,
		faces:    faces,
		counts:   counts,
	}, nil
}

// Settings returns the size in cubes.
func (m *Mosaic) Settings() Settings {
	return m.settings
}

// Dimensions returns the derived size metadata.
func (m *Mosaic) Dimensions() Dimensions {
	return m.dims
}

// At returns the face color at display row, col.
func (m *Mosaic) At(row, col int) palette.Color {
	return m.faces[row*m.dims.DisplayWidth+col]
}

// Rows returns a copy of the face grid as a slice of rows.
func (m *Mosaic) Rows() [][]palette.Color {
	rows := make([][]palette.Color, m.dims.DisplayHeight)
	for r := range rows {
		start := r * m.dims.DisplayWidth
		rows[r] = append([]palette.Color(nil), m.faces[start:start+m.dims.DisplayWidth]...)
	}
	return rows
}

// ColorCount returns how many faces need each palette color.
func (m *Mosaic) ColorCount() palette.Counts {
	return m.counts
}

// Cube returns the faces owned by the cube at grid position (cx, cy).
func (m *Mosaic) Cube(cx, cy int) Cube {
	cube := Cube{X: cx, Y: cy}
	for r := 0; r < FacesPerSide; r++ {
		for c := 0; c < FacesPerSide; c++ {
			cube.Faces[r][c] = m.At(cy*FacesPerSide+r, cx*FacesPerSide+c)
		}
	}
	return cube
}

// Cubes returns every cube in row-major order: (0,0), (1,0), ... (W-1,H-1).
func (m *Mosaic) Cubes() []Cube {
	cubes := make([]Cube, 0, m.dims.Total)
	for cy := 0; cy < m.settings.Height; cy++ {
		for cx := 0; cx < m.settings.Width; cx++ {
			cubes = append(cubes, m.Cube(cx, cy))
		}
	}
	return cubes
}

// DominantColor returns the most frequent face color of the cube at (cx, cy).
func (m *Mosaic) DominantColor(cx, cy int) palette.Color {
	return m.Cube(cx, cy).Dominant()
}

// List returns the cube's faces in row-major order.
func (c Cube) List() []palette.Color {
	out := make([]palette.Color, 0, FacesPerCube)
	for _, row := range c.Faces {
		out = append(out, row[:]...)
	}
	return out
}

// Dominant returns the cube's most frequent face color.
func (c Cube) Dominant() palette.Color {
	return aggregation.Dominant(c.List())
}
