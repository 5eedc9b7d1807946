// Package cubemosaic converts images into Rubik's cube mosaics.
//
// A mosaic is a grid of cubes, each showing a 3x3 patch of the six
// standard face colors. The package samples an image onto that grid, snaps
// every face to the nearest cube color, and produces a printable guide
// telling the builder how to set up each cube.
//
// Usage as a library:
//
//	img, _ := cubemosaic.LoadImage("photo.jpg")
//	m, _ := cubemosaic.Convert(img, cubemosaic.DefaultSettings(), cubemosaic.Options{})
//	f, _ := os.Create("guide.pdf")
//	cubemosaic.WriteGuide(f, m)
//
// Or use the file-based convenience:
//
//	err := cubemosaic.ConvertFile("photo.jpg", "mosaic.json", cubemosaic.DefaultSettings(), cubemosaic.Options{})
package cubemosaic

import (
	"image"
	stdcolor "image/color"
	"io"

	"github.com/maax3v3/cubemosaic/internal/guide"
	"github.com/maax3v3/cubemosaic/internal/imaging"
	"github.com/maax3v3/cubemosaic/internal/mosaic"
	"github.com/maax3v3/cubemosaic/internal/palette"
	"github.com/maax3v3/cubemosaic/internal/pipeline"
	"github.com/maax3v3/cubemosaic/internal/quantize"
	"github.com/maax3v3/cubemosaic/internal/renderer"
)

type (
	// Settings is the requested mosaic size in cubes, 8 to 32 per axis.
	Settings = mosaic.Settings
	// Mosaic is an immutable conversion result.
	Mosaic = mosaic.Mosaic
	// Cube is one cube's 3x3 face patch and grid position.
	Cube = mosaic.Cube
	// Dimensions is the size metadata derived from Settings.
	Dimensions = mosaic.Dimensions
	// Document is the JSON interchange form of a Mosaic.
	Document = mosaic.Document
	// Color is one of the six face colors.
	Color = palette.Color
	// Metric selects the color distance used for quantization.
	Metric = quantize.Metric
	// Page is one page of the assembly guide.
	Page = guide.Page
)

// Face colors in canonical order.
const (
	White  = palette.White
	Yellow = palette.Yellow
	Orange = palette.Orange
	Red    = palette.Red
	Green  = palette.Green
	Blue   = palette.Blue
)

const (
	MetricRGB = quantize.MetricRGB // Squared Euclidean RGB distance. Default.
	MetricLab = quantize.MetricLab // CIE76 distance in CIELAB.
)

// Errors returned by conversion and document decoding. Test with errors.Is.
var (
	ErrInvalidImage      = mosaic.ErrInvalidImage
	ErrInvalidSettings   = mosaic.ErrInvalidSettings
	ErrInvalidDocument   = mosaic.ErrInvalidDocument
	ErrInternalInvariant = mosaic.ErrInternalInvariant
)

// Options configures conversion and preview rendering.
type Options struct {
	// Metric selects the color distance. Default: MetricRGB.
	Metric Metric

	// Enhance boosts contrast, saturation and sharpness before sampling.
	Enhance bool

	// Font is the font renderer used to draw labels on previews.
	// If nil, a built-in bitmap font is used.
	Font FontRenderer
}

// FontRenderer is the interface for drawing text onto images.
// Implement this to provide a custom font (e.g., TTF rendering).
type FontRenderer interface {
	// DrawString draws text centered at (cx, cy) on the image with the
	// specified color and approximate height in pixels.
	DrawString(img *image.RGBA, text string, cx, cy int, col stdcolor.Color, size int)

	// MeasureString returns the approximate width and height of the text
	// at the given font size.
	MeasureString(text string, size int) (width, height int)
}

func (o Options) assembly() mosaic.Options {
	return mosaic.Options{Metric: o.Metric, Enhance: o.Enhance}
}

// DefaultSettings returns a 16x16 cube mosaic.
func DefaultSettings() Settings {
	return Settings{Width: 16, Height: 16}
}

// Palette returns the six face colors in canonical order.
func Palette() [palette.Size]Color {
	return palette.All
}

// LoadImage reads an image from disk. Supports JPEG, PNG, GIF, BMP and WEBP.
func LoadImage(path string) (image.Image, error) {
	return imaging.Load(path)
}

// SavePNG writes an image to disk as PNG.
func SavePNG(path string, img image.Image) error {
	return imaging.SavePNG(path, img)
}

// Convert builds the mosaic for img. Settings are validated before the
// image is inspected.
func Convert(img image.Image, s Settings, opts Options) (*Mosaic, error) {
	return mosaic.Assemble(img, s, opts.assembly())
}

// ConvertBytes decodes encoded image data and builds its mosaic.
func ConvertBytes(data []byte, s Settings, opts Options) (*Mosaic, error) {
	return mosaic.AssembleBytes(data, s, opts.assembly())
}

// ConvertFile is a convenience that loads an image from inPath, converts it,
// and saves the mosaic document as JSON to outPath.
func ConvertFile(inPath, outPath string, s Settings, opts Options) error {
	_, err := pipeline.Run(pipeline.Config{
		InPath:   inPath,
		Settings: s,
		Metric:   opts.Metric,
		Enhance:  opts.Enhance,
		OutPath:  outPath,
	}, resolveFont(opts.Font))
	return err
}

// DecodeDocument reads a JSON document and rebuilds its Mosaic, checking it
// against s.
func DecodeDocument(r io.Reader, s Settings) (*Mosaic, error) {
	doc, err := mosaic.ReadDocument(r)
	if err != nil {
		return nil, err
	}
	return mosaic.FromDocument(doc, s)
}

// Paginate splits m into guide pages of twelve cubes in row-major order.
func Paginate(m *Mosaic) ([]Page, error) {
	return guide.Paginate(m, guide.DefaultLayout)
}

// WriteGuide writes the printable PDF assembly guide for m.
func WriteGuide(w io.Writer, m *Mosaic) error {
	return guide.WritePDF(w, m, guide.DefaultOptions())
}

// Preview renders m face by face with cube separators and a color legend.
func Preview(m *Mosaic, opts Options) *image.RGBA {
	return renderer.RenderMosaic(m, resolveFont(opts.Font), renderer.DefaultConfig())
}

// resolveFont returns a renderer.FontRenderer, using the built-in bitmap font
// if the user did not provide one.
func resolveFont(f FontRenderer) renderer.FontRenderer {
	if f != nil {
		return &fontAdapter{f}
	}
	return renderer.NewBitmapFont()
}

// fontAdapter adapts the public FontRenderer interface to the internal one.
type fontAdapter struct {
	f FontRenderer
}

func (a *fontAdapter) DrawString(img *image.RGBA, text string, cx, cy int, col stdcolor.Color, size int) {
	a.f.DrawString(img, text, cx, cy, col, size)
}

func (a *fontAdapter) MeasureString(text string, size int) (int, int) {
	return a.f.MeasureString(text, size)
}
