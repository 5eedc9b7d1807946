// Package quantize maps raw colors onto the fixed cube palette.
package quantize

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/maax3v3/cubemosaic/internal/color"
	"github.com/maax3v3/cubemosaic/internal/palette"
	"github.com/maax3v3/cubemosaic/internal/parallel"
)

// Metric selects the distance used to pick the nearest palette color.
type Metric int

const (
	// MetricRGB is squared Euclidean distance in RGB space.
	MetricRGB Metric = iota
	// MetricLab is CIE76 distance in CIELAB space.
	MetricLab
)

func (m Metric) String() string {
	switch m {
	case MetricLab:
		return "lab"
	default:
		return "rgb"
	}
}

// ParseMetric parses "rgb" or "lab". The empty string selects MetricRGB.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rgb":
		return MetricRGB, nil
	case "lab":
		return MetricLab, nil
	default:
		return MetricRGB, fmt.Errorf("unknown metric %q (supported: rgb, lab)", s)
	}
}

var labPalette [palette.Size]colorful.Color

func init() {
	for _, c := range palette.All {
		labPalette[c] = c.RGB().Colorful()
	}
}

// Nearest returns the palette color closest to c by squared RGB distance.
// Equidistant candidates resolve to the one earliest in palette order.
func Nearest(c color.RGB) palette.Color {
	best := palette.All[0]
	bestDist := color.DistanceSq(c, best.RGB())
	for _, p := range palette.All[1:] {
		if d := color.DistanceSq(c, p.RGB()); d < bestDist {
			best = p
			bestDist = d
		}
	}
	return best
}

// NearestLab is Nearest under CIELAB distance, with the same tie-break.
func NearestLab(c color.RGB) palette.Color {
	src := c.Colorful()
	best := palette.All[0]
	bestDist := src.DistanceLab(labPalette[best])
	for _, p := range palette.All[1:] {
		if d := src.DistanceLab(labPalette[p]); d < bestDist {
			best = p
			bestDist = d
		}
	}
	return best
}

// Quantizer maps colors with a configurable metric. The zero value uses
// MetricRGB.
type Quantizer struct {
	Metric Metric
}

// Color quantizes a single color.
func (q Quantizer) Color(c color.RGB) palette.Color {
	if q.Metric == MetricLab {
		return NearestLab(c)
	}
	return Nearest(c)
}

// Grid quantizes a row-major grid of width×height raw colors. Cells are
// independent, so rows are processed in parallel bands.
func (q Quantizer) Grid(cells []color.RGB, width, height int) ([]palette.Color, error) {
	if width <= 0 || height <= 0 || len(cells) != width*height {
		return nil, fmt.Errorf("grid of %d cells does not match %dx%d", len(cells), width, height)
	}
	out := make([]palette.Color, len(cells))
	parallel.Rows(height, func(sy, ey int) {
		for i := sy * width; i < ey*width; i++ {
			out[i] = q.Color(cells[i])
		}
	})
	return out, nil
}
