package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/maax3v3/cubemosaic/internal/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Serves the mosaic API:

  POST /api/generate-mosaic   multipart image upload, returns the mosaic JSON
  POST /api/generate-pdf      mosaic JSON in, PDF guide out
  POST /api/preview           mosaic JSON in, PNG preview out
  GET  /api/health`,
		Example: `  # Listen on the configured address (default :8080)
  cubemosaic serve

  # Custom address
  cubemosaic serve --addr 127.0.0.1:3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg
			if addr != "" {
				cfg.Server.Addr = addr
			}
			srv := server.New(cfg).HTTPServer()

			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Cubemosaic API available", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Address to listen on (overrides config and environment)")

	return cmd
}
