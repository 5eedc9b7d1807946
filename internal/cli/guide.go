package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/maax3v3/cubemosaic/internal/mosaic"
	"github.com/maax3v3/cubemosaic/internal/pipeline"
	"github.com/maax3v3/cubemosaic/internal/renderer"
)

func newGuideCmd(root *rootOptions) *cobra.Command {
	var (
		size       sizeFlags
		mosaicPath string
		outPath    string
		pagesDir   string
	)

	cmd := &cobra.Command{
		Use:   "guide",
		Short: "Build the assembly guide for a mosaic document",
		Example: `  cubemosaic guide --mosaic mosaic.json --out guide.pdf
  cubemosaic guide --mosaic mosaic.json --pages-dir pages/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outPath == "" && pagesDir == "" {
				return errors.New("one of --out or --pages-dir is required")
			}

			m, err := pipeline.LoadDocument(mosaicPath, size.settings(cmd, mosaic.Settings{}))
			if err != nil {
				return err
			}

			rcfg := renderer.DefaultConfig()
			rcfg.Layout = root.cfg.Guide.Layout
			return pipeline.WriteOutputs(m, pipeline.Config{
				PDFPath:  outPath,
				PagesDir: pagesDir,
				Guide:    root.cfg.GuideOptions(),
				Renderer: rcfg,
			}, renderer.NewBitmapFont())
		},
	}

	size.register(cmd, "; defaults to the document's size")
	cmd.Flags().StringVar(&mosaicPath, "mosaic", "", "Path to a mosaic document (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "Path to the PDF guide")
	cmd.Flags().StringVar(&pagesDir, "pages-dir", "", "Render each guide page as a PNG into this directory")
	_ = cmd.MarkFlagRequired("mosaic")

	return cmd
}

func newPreviewCmd(root *rootOptions) *cobra.Command {
	var (
		size       sizeFlags
		mosaicPath string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:     "preview",
		Short:   "Render a mosaic document as a PNG",
		Example: `  cubemosaic preview --mosaic mosaic.json --out preview.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := pipeline.LoadDocument(mosaicPath, size.settings(cmd, mosaic.Settings{}))
			if err != nil {
				return err
			}
			return pipeline.WritePreview(m, outPath, renderer.NewBitmapFont(), renderer.DefaultConfig())
		},
	}

	size.register(cmd, "; defaults to the document's size")
	cmd.Flags().StringVar(&mosaicPath, "mosaic", "", "Path to a mosaic document (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "Path to the preview PNG (required)")
	_ = cmd.MarkFlagRequired("mosaic")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}
