package mosaic

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/maax3v3/cubemosaic/internal/palette"
)

// Document is the interchange form of a Mosaic.
type Document struct {
	Grid       [][]string     `json:"grid"`
	Dimensions Dimensions     `json:"dimensions"`
	ColorCount map[string]int `json:"colorCount"`

	// DetailedGrid repeats the faces cube by cube, indexed [cy][cx].
	// Older clients build per-cube views from it; it is optional on input.
	DetailedGrid [][]CubeDocument `json:"detailed_grid,omitempty"`
}

// CubeDocument is one cube of DetailedGrid.
type CubeDocument struct {
	Faces    [FacesPerSide][FacesPerSide]FaceDocument `json:"faces"`
	Position Position                                 `json:"position"`
}

// FaceDocument names one face color.
type FaceDocument struct {
	Color string `json:"color"`
	Name  string `json:"name"`
}

// Position is a cube's column and row in the cube grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Document returns the interchange form. The grid is row-major hex values.
func (m *Mosaic) Document() Document {
	grid := make([][]string, m.dims.DisplayHeight)
	for r := range grid {
		row := make([]string, m.dims.DisplayWidth)
		for c := range row {
			row[c] = m.At(r, c).Hex()
		}
		grid[r] = row
	}
	return Document{
		Grid:         grid,
		Dimensions:   m.dims,
		ColorCount:   m.counts.Map(),
		DetailedGrid: m.detailedGrid(),
	}
}

func (m *Mosaic) detailedGrid() [][]CubeDocument {
	out := make([][]CubeDocument, m.settings.Height)
	for cy := range out {
		row := make([]CubeDocument, m.settings.Width)
		for cx := range row {
			cube := m.Cube(cx, cy)
			row[cx].Position = Position{X: cx, Y: cy}
			for r := 0; r < FacesPerSide; r++ {
				for c := 0; c < FacesPerSide; c++ {
					face := cube.Faces[r][c]
					row[cx].Faces[r][c] = FaceDocument{Color: face.Hex(), Name: face.String()}
				}
			}
		}
		out[cy] = row
	}
	return out
}

// Encode writes the document as JSON.
func (m *Mosaic) Encode(w io.Writer) error {
	if err := json.NewEncoder(w).Encode(m.Document()); err != nil {
		return fmt.Errorf("encoding mosaic document: %w", err)
	}
	return nil
}

// ReadDocument decodes a JSON document. Structure is not validated here;
// see FromDocument.
func ReadDocument(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return doc, nil
}

// FromDocument rebuilds a Mosaic from its interchange form and the settings
// it was produced with, rejecting any document that breaks the data model's
// invariants.
func FromDocument(doc Document, s Settings) (*Mosaic, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	want := DimensionsFor(s)

	if err := checkDimensions(doc.Dimensions, want); err != nil {
		return nil, err
	}
	if len(doc.Grid) != want.DisplayHeight {
		return nil, fmt.Errorf("%w: grid has %d rows, want %d", ErrInvalidDocument, len(doc.Grid), want.DisplayHeight)
	}

	faces := make([]palette.Color, 0, want.DisplayWidth*want.DisplayHeight)
	for r, row := range doc.Grid {
		if len(row) != want.DisplayWidth {
			return nil, fmt.Errorf("%w: grid row %d has %d cells, want %d", ErrInvalidDocument, r, len(row), want.DisplayWidth)
		}
		for c, hex := range row {
			pc, err := palette.FromHex(hex)
			if err != nil {
				return nil, fmt.Errorf("%w: cell (%d,%d): %v", ErrInvalidDocument, r, c, err)
			}
			faces = append(faces, pc)
		}
	}

	m, err := build(s, faces)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if err := checkColorCount(doc.ColorCount, m.counts); err != nil {
		return nil, err
	}
	if doc.DetailedGrid != nil {
		if err := checkDetailedGrid(doc.DetailedGrid, m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func checkDimensions(got, want Dimensions) error {
	// Width and Height are optional in documents; the rest are mandatory.
	if (got.Width != 0 && got.Width != want.Width) || (got.Height != 0 && got.Height != want.Height) {
		return fmt.Errorf("%w: dimensions are %dx%d cubes, settings say %dx%d",
			ErrInvalidDocument, got.Width, got.Height, want.Width, want.Height)
	}
	if got.Total != want.Total ||
		got.DisplayWidth != want.DisplayWidth ||
		got.DisplayHeight != want.DisplayHeight ||
		got.TotalFaces != want.TotalFaces ||
		(got.PixelResolution != "" && got.PixelResolution != want.PixelResolution) {
		return fmt.Errorf("%w: dimensions %+v do not match settings (want %+v)", ErrInvalidDocument, got, want)
	}
	return nil
}

func checkColorCount(doc map[string]int, counts palette.Counts) error {
	var seen palette.Counts
	for hex, n := range doc {
		c, err := palette.FromHex(hex)
		if err != nil {
			return fmt.Errorf("%w: colorCount: %v", ErrInvalidDocument, err)
		}
		seen[c] += n
	}
	if seen != counts {
		return fmt.Errorf("%w: colorCount %v does not match grid %v", ErrInvalidDocument, doc, counts.Map())
	}
	return nil
}

// checkDetailedGrid requires every cube entry to agree with the flat grid.
func checkDetailedGrid(detailed [][]CubeDocument, m *Mosaic) error {
	if len(detailed) != m.settings.Height {
		return fmt.Errorf("%w: detailed_grid has %d rows, want %d", ErrInvalidDocument, len(detailed), m.settings.Height)
	}
	for cy, row := range detailed {
		if len(row) != m.settings.Width {
			return fmt.Errorf("%w: detailed_grid row %d has %d cubes, want %d", ErrInvalidDocument, cy, len(row), m.settings.Width)
		}
		for cx, cd := range row {
			if cd.Position != (Position{X: cx, Y: cy}) {
				return fmt.Errorf("%w: detailed_grid cube (%d,%d) claims position (%d,%d)",
					ErrInvalidDocument, cx, cy, cd.Position.X, cd.Position.Y)
			}
			cube := m.Cube(cx, cy)
			for r := 0; r < FacesPerSide; r++ {
				for c := 0; c < FacesPerSide; c++ {
					pc, err := palette.FromHex(cd.Faces[r][c].Color)
					if err != nil || pc != cube.Faces[r][c] {
						return fmt.Errorf("%w: detailed_grid cube (%d,%d) face (%d,%d) disagrees with grid",
							ErrInvalidDocument, cx, cy, r, c)
					}
				}
			}
		}
	}
	return nil
}
