package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/pallet-manifest/internal/server"
)

// serveAddr overrides server.addr.
var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the importer over HTTP",
	Long: `The serve command starts an HTTP server with the same operations as the
CLI: upload a manifest to POST /api/import, then read /api/items,
/api/summary, /api/errors, /api/pallets and /api/report, change
/api/settings, and download /api/export/items.csv, /api/export/report.xlsx
or /api/export/items.xml.

The server stops on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		addr := appConfig.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		srv := server.New(a.importer, server.Options{
			MaxUploadMB:    appConfig.Server.MaxUploadMB,
			FileNameFormat: appConfig.Export.FileNameFormat,
		}, logger)

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start(addr)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default is server.addr)")
}
