// Package pipeline runs the file-based conversion steps used by the CLI.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/maax3v3/cubemosaic/internal/guide"
	"github.com/maax3v3/cubemosaic/internal/imaging"
	"github.com/maax3v3/cubemosaic/internal/mosaic"
	"github.com/maax3v3/cubemosaic/internal/quantize"
	"github.com/maax3v3/cubemosaic/internal/renderer"
)

// Config describes one conversion run. Only InPath and Settings are
// required; every empty output path is skipped.
type Config struct {
	InPath   string
	Settings mosaic.Settings
	Metric   quantize.Metric
	Enhance  bool

	OutPath  string // mosaic document (JSON)
	PDFPath  string // printable guide
	PNGPath  string // preview image
	PagesDir string // one PNG per guide page

	Guide    guide.Options
	Renderer renderer.Config
}

// Run loads the input image, assembles the mosaic and writes every
// requested output.
func Run(cfg Config, font renderer.FontRenderer) (*mosaic.Mosaic, error) {
	// Settings are rejected before the image is touched.
	if err := cfg.Settings.Validate(); err != nil {
		return nil, err
	}

	slog.Info("Loading image", "path", cfg.InPath)
	img, err := imaging.Load(cfg.InPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading image: %w", err)
		}
		return nil, fmt.Errorf("%w: loading image: %w", mosaic.ErrInvalidImage, err)
	}
	slog.Info("Image loaded", "width", img.Bounds().Dx(), "height", img.Bounds().Dy())

	m, err := mosaic.Assemble(img, cfg.Settings, mosaic.Options{Metric: cfg.Metric, Enhance: cfg.Enhance})
	if err != nil {
		return nil, err
	}
	dims := m.Dimensions()
	slog.Info("Mosaic assembled",
		"cubes", dims.Total,
		"faces", dims.TotalFaces,
		"metric", cfg.Metric.String(),
		"enhance", cfg.Enhance)

	if cfg.OutPath != "" {
		if err := WriteDocument(m, cfg.OutPath); err != nil {
			return nil, err
		}
	}
	if err := WriteOutputs(m, cfg, font); err != nil {
		return nil, err
	}

	slog.Info("Done")
	return m, nil
}

// WriteOutputs writes the guide, preview and page images requested by cfg
// for an already assembled mosaic.
func WriteOutputs(m *mosaic.Mosaic, cfg Config, font renderer.FontRenderer) error {
	if cfg.Renderer == (renderer.Config{}) {
		cfg.Renderer = renderer.DefaultConfig()
	}
	if cfg.PDFPath != "" {
		if err := WriteGuide(m, cfg.PDFPath, cfg.Guide); err != nil {
			return err
		}
	}
	if cfg.PNGPath != "" {
		if err := WritePreview(m, cfg.PNGPath, font, cfg.Renderer); err != nil {
			return err
		}
	}
	if cfg.PagesDir != "" {
		if _, err := WritePages(m, cfg.PagesDir, font, cfg.Renderer); err != nil {
			return err
		}
	}
	return nil
}

// LoadDocument reads a mosaic document from path and rebuilds the mosaic
// against s. Zero settings take the size recorded in the document.
func LoadDocument(path string, s mosaic.Settings) (*mosaic.Mosaic, error) {
	f, err := os.Open(imaging.ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("opening mosaic document: %w", err)
	}
	defer f.Close()

	doc, err := mosaic.ReadDocument(f)
	if err != nil {
		return nil, err
	}
	if s == (mosaic.Settings{}) {
		s = mosaic.Settings{Width: doc.Dimensions.Width, Height: doc.Dimensions.Height}
	}
	return mosaic.FromDocument(doc, s)
}

// WriteDocument saves m as its JSON document.
func WriteDocument(m *mosaic.Mosaic, path string) error {
	slog.Info("Saving mosaic document", "path", path)
	return writeFile(path, m.Encode)
}

// WriteGuide saves the printable PDF guide for m.
func WriteGuide(m *mosaic.Mosaic, path string, opts guide.Options) error {
	slog.Info("Saving guide", "path", path, "pages", guide.PageCount(m, layoutOrDefault(opts.Layout)))
	return writeFile(path, func(w io.Writer) error {
		return guide.WritePDF(w, m, opts)
	})
}

// WritePreview saves a PNG preview of m.
func WritePreview(m *mosaic.Mosaic, path string, font renderer.FontRenderer, cfg renderer.Config) error {
	slog.Info("Saving preview", "path", path)
	if err := imaging.SavePNG(path, renderer.RenderMosaic(m, font, cfg)); err != nil {
		return fmt.Errorf("saving preview: %w", err)
	}
	return nil
}

// WritePages renders each guide page as page-NNN.png in dir and returns the
// written paths in page order.
func WritePages(m *mosaic.Mosaic, dir string, font renderer.FontRenderer, cfg renderer.Config) ([]string, error) {
	dir = imaging.ExpandPath(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating pages directory: %w", err)
	}

	pages, err := guide.Paginate(m, layoutOrDefault(cfg.Layout))
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(pages))
	for _, page := range pages {
		path := filepath.Join(dir, fmt.Sprintf("page-%03d.png", page.Number))
		if err := imaging.SavePNG(path, renderer.RenderPage(page, font, cfg)); err != nil {
			return nil, fmt.Errorf("saving page %d: %w", page.Number, err)
		}
		paths = append(paths, path)
	}
	slog.Info("Guide pages saved", "dir", dir, "pages", len(paths))
	return paths, nil
}

func layoutOrDefault(l guide.Layout) guide.Layout {
	if l.Validate() != nil {
		return guide.DefaultLayout
	}
	return l
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(imaging.ExpandPath(path))
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
