package mosaic

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/maax3v3/cubemosaic/internal/enhance"
	"github.com/maax3v3/cubemosaic/internal/imaging"
	"github.com/maax3v3/cubemosaic/internal/quantize"
	"github.com/maax3v3/cubemosaic/internal/sampling"
)

// Options tunes assembly. The zero value gives the standard behavior.
type Options struct {
	Metric quantize.Metric
	// Enhance boosts contrast, saturation and sharpness before sampling.
	Enhance bool
	// MaxPixels caps decoded image size in AssembleBytes. Zero means
	// imaging.MaxPixels.
	MaxPixels int
}

// Assemble converts img into a Mosaic of s.Width×s.Height cubes. Settings
// and image are validated before any sampling happens.
func Assemble(img image.Image, s Settings, opts Options) (*Mosaic, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("%w: input image is nil", ErrInvalidImage)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImage, imaging.ErrEmpty)
	}

	start := time.Now()
	dims := DimensionsFor(s)
	if opts.Enhance {
		img = enhance.Apply(img)
	}

	raw, err := sampling.Sample(img, dims.DisplayWidth, dims.DisplayHeight)
	if err != nil {
		return nil, fmt.Errorf("%w: sampling: %w", ErrInvalidImage, err)
	}

	q := quantize.Quantizer{Metric: opts.Metric}
	faces, err := q.Grid(raw.Cells, raw.Cols, raw.Rows)
	if err != nil {
		return nil, fmt.Errorf("%w: quantizing: %v", ErrInternalInvariant, err)
	}

	m, err := build(s, faces)
	if err != nil {
		return nil, err
	}

	slog.Debug("Mosaic assembled",
		"width", s.Width,
		"height", s.Height,
		"source", img.Bounds().Size().String(),
		"metric", opts.Metric.String(),
		"enhance", opts.Enhance,
		"elapsed", time.Since(start))
	return m, nil
}

// AssembleBytes decodes image bytes and assembles them. Settings are checked
// before the image is decoded.
func AssembleBytes(data []byte, s Settings, opts Options) (*Mosaic, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	img, format, err := imaging.DecodeLimit(data, opts.MaxPixels)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	slog.Debug("Image decoded", "format", format, "size", img.Bounds().Size().String())
	return Assemble(img, s, opts)
}
