// Package cli defines the cubemosaic command tree.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/maax3v3/cubemosaic/internal/config"
	"github.com/maax3v3/cubemosaic/internal/mosaic"
)

// rootOptions is shared by every subcommand. cfg is populated before any
// subcommand runs.
type rootOptions struct {
	configPath string
	envFile    string
	logLevel   string
	logFormat  string

	cfg config.Config
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "cubemosaic",
		Short: "Turn photos into Rubik's cube mosaics with printable assembly guides",
		Long: `Cubemosaic converts an image into a grid of cubes, each showing a 3x3
patch of the six standard face colors.

It writes the mosaic as JSON, renders previews, and produces a paginated
PDF guide telling you how to turn every cube.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Path to a .env file (ignored if missing)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log format: text or json")

	cmd.AddCommand(
		newConvertCmd(opts),
		newGuideCmd(opts),
		newPreviewCmd(opts),
		newServeCmd(opts),
	)

	return cmd
}

func (o *rootOptions) load(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(o.envFile); err != nil {
		return err
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cfg.Log.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	o.cfg = cfg
	return nil
}

// sizeFlags binds --width and --height. Unset flags fall back to def.
type sizeFlags struct {
	width, height int
}

func (f *sizeFlags) register(cmd *cobra.Command, what string) {
	cmd.Flags().IntVar(&f.width, "width", 0, "Mosaic width in cubes (8-32)"+what)
	cmd.Flags().IntVar(&f.height, "height", 0, "Mosaic height in cubes (8-32)"+what)
}

func (f *sizeFlags) settings(cmd *cobra.Command, def mosaic.Settings) mosaic.Settings {
	s := def
	if cmd.Flags().Changed("width") {
		s.Width = f.width
	}
	if cmd.Flags().Changed("height") {
		s.Height = f.height
	}
	return s
}
