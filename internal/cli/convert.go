package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maax3v3/cubemosaic/internal/pipeline"
	"github.com/maax3v3/cubemosaic/internal/quantize"
	"github.com/maax3v3/cubemosaic/internal/renderer"
)

func newConvertCmd(root *rootOptions) *cobra.Command {
	var (
		size     sizeFlags
		inPath   string
		outPath  string
		pdfPath  string
		pngPath  string
		pagesDir string
		metric   string
		enhance  bool
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert an image into a cube mosaic",
		Long: `Samples the image onto a grid of faces, snaps every face to the nearest
cube color and writes the resulting mosaic document.

Without --out the document is printed to stdout.`,
		Example: `  # 16x16 cube mosaic with a printable guide
  cubemosaic convert --in photo.jpg --out mosaic.json --pdf guide.pdf

  # Flat, low-contrast photo
  cubemosaic convert --in foggy.jpg --enhance --png preview.png

  # Wide banner, preview only
  cubemosaic convert --in banner.png --width 32 --height 8 --png preview.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outPath != "" {
				if ext := strings.ToLower(filepath.Ext(outPath)); ext != ".json" {
					return fmt.Errorf("--out must be a .json file, got %q", ext)
				}
			}
			if pngPath != "" {
				if ext := strings.ToLower(filepath.Ext(pngPath)); ext != ".png" {
					return fmt.Errorf("--png must be a .png file, got %q", ext)
				}
			}

			cfg := root.cfg
			m := cfg.QuantizeMetric()
			if cmd.Flags().Changed("metric") {
				var err error
				if m, err = quantize.ParseMetric(metric); err != nil {
					return fmt.Errorf("--metric: %w", err)
				}
			}

			if !cmd.Flags().Changed("enhance") {
				enhance = cfg.Enhance
			}

			rcfg := renderer.DefaultConfig()
			rcfg.Layout = cfg.Guide.Layout
			result, err := pipeline.Run(pipeline.Config{
				InPath:   inPath,
				Settings: size.settings(cmd, cfg.Mosaic),
				Metric:   m,
				Enhance:  enhance,
				OutPath:  outPath,
				PDFPath:  pdfPath,
				PNGPath:  pngPath,
				PagesDir: pagesDir,
				Guide:    cfg.GuideOptions(),
				Renderer: rcfg,
			}, renderer.NewBitmapFont())
			if err != nil {
				return err
			}

			if outPath == "" {
				return result.Encode(cmd.OutOrStdout())
			}
			return nil
		},
	}

	size.register(cmd, "")
	cmd.Flags().StringVar(&inPath, "in", "", "Path to input image (required, supports JPEG, PNG, GIF, BMP, WEBP)")
	cmd.Flags().StringVar(&outPath, "out", "", "Path to the mosaic document (.json); stdout when empty")
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "Also write the printable guide to this PDF")
	cmd.Flags().StringVar(&pngPath, "png", "", "Also write a preview image to this PNG")
	cmd.Flags().StringVar(&pagesDir, "pages-dir", "", "Also render each guide page as a PNG into this directory")
	cmd.Flags().StringVar(&metric, "metric", "rgb", "Color distance: rgb or lab")
	cmd.Flags().BoolVar(&enhance, "enhance", false, "Boost contrast, saturation and sharpness before sampling")
	_ = cmd.MarkFlagRequired("in")

	return cmd
}
