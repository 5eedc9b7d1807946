package color

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB represents an opaque color with 8-bit components.
type RGB struct {
	R, G, B uint8
}

// FromStdColor converts a standard library color to RGB. Alpha is ignored:
// the channels are read non-premultiplied, so a translucent pixel keeps the
// color it would have if it were opaque.
func FromStdColor(c color.Color) RGB {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{R: n.R, G: n.G, B: n.B}
}

// ToStdColor converts RGB to an opaque standard library color.
func (c RGB) ToStdColor() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// Hex returns the color as an uppercase "#RRGGBB" string.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Colorful converts c to a go-colorful color for perceptual computations.
func (c RGB) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// ParseHex parses a hex color string like "#000", "#000000", "FF00FF".
func ParseHex(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) != 4 && len(s) != 7 {
		return RGB{}, fmt.Errorf("invalid hex color %q: must be 3 or 6 hex digits", s)
	}
	for _, r := range s[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return RGB{}, fmt.Errorf("invalid hex color %q: non-hex digit %q", s, r)
		}
	}
	c, err := colorful.Hex(strings.ToLower(s))
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// DistanceSq computes the squared Euclidean distance in RGB space.
// Integer arithmetic keeps comparisons exact.
func DistanceSq(a, b RGB) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

// Sum accumulates channel totals for computing an arithmetic mean.
type Sum struct {
	R, G, B uint64
	N       uint64
}

// Add accumulates one color.
func (s *Sum) Add(c RGB) {
	s.R += uint64(c.R)
	s.G += uint64(c.G)
	s.B += uint64(c.B)
	s.N++
}

// Mean returns the per-channel mean rounded half up. An empty Sum yields black.
func (s Sum) Mean() RGB {
	if s.N == 0 {
		return RGB{}
	}
	half := s.N / 2
	return RGB{
		R: uint8((s.R + half) / s.N),
		G: uint8((s.G + half) / s.N),
		B: uint8((s.B + half) / s.N),
	}
}

// IsLight returns true if the color is perceptually light (luminance > 0.5).
func (c RGB) IsLight() bool {
	r, g, b := c.Colorful().LinearRgb()
	luminance := 0.2126*r + 0.7152*g + 0.0722*b
	return luminance > 0.5
}
