package mosaic

import "fmt"

const (
	// MinCubes and MaxCubes bound the mosaic size along each axis.
	MinCubes = 8
	MaxCubes = 32
	// FacesPerSide is the edge length of one cube's face grid.
	FacesPerSide = 3
	// FacesPerCube is the number of faces one cube contributes.
	FacesPerCube = FacesPerSide * FacesPerSide
)

// Settings is the requested mosaic size in cubes.
type Settings struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Validate checks both axes lie in [MinCubes, MaxCubes].
func (s Settings) Validate() error {
	if s.Width < MinCubes || s.Width > MaxCubes {
		return fmt.Errorf("%w: width %d outside [%d, %d]", ErrInvalidSettings, s.Width, MinCubes, MaxCubes)
	}
	if s.Height < MinCubes || s.Height > MaxCubes {
		return fmt.Errorf("%w: height %d outside [%d, %d]", ErrInvalidSettings, s.Height, MinCubes, MaxCubes)
	}
	return nil
}

// Dimensions is the derived size metadata of a mosaic.
type Dimensions struct {
	Width         int `json:"width"`
	Height        int `json:"height"`
	Total         int `json:"total"`
	DisplayWidth  int `json:"display_width"`
	DisplayHeight int `json:"display_height"`
	TotalFaces    int `json:"total_faces"`

	// PixelResolution is the sampled grid size, "WxH" in faces.
	PixelResolution string `json:"pixel_resolution,omitempty"`
}

// DimensionsFor computes the dimensions of a mosaic with the given settings.
func DimensionsFor(s Settings) Dimensions {
	total := s.Width * s.Height
	return Dimensions{
		Width:         s.Width,
		Height:        s.Height,
		Total:         total,
		DisplayWidth:  s.Width * FacesPerSide,
		DisplayHeight: s.Height * FacesPerSide,
		TotalFaces:    total * FacesPerCube,

		PixelResolution: fmt.Sprintf("%dx%d", s.Width*FacesPerSide, s.Height*FacesPerSide),
	}
}
