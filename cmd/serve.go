package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lcastro-fr/arg-invoice-parser/api"
	"github.com/lcastro-fr/arg-invoice-parser/internal/config"
	"github.com/lcastro-fr/arg-invoice-parser/internal/logger"
	"github.com/lcastro-fr/arg-invoice-parser/internal/pipeline"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the invoice parsing HTTP service",
	Long: `Start an HTTP server exposing the extraction pipeline.

Endpoints:
  POST /invoice/parse - multipart upload ("file" field) with an optional
                        "own_cuit" form value, returns the extracted record
  GET  /health        - liveness probe`,
	Example: `  # Listen on the default address
  invoice-parser serve

  # Custom listen address
  invoice-parser serve --addr :9090`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "Listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	addr, _ := cmd.Flags().GetString("addr")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Engines are request-independent and shared; only the CUIT exclusion
	// varies per request.
	collab, err := newCollaborators(ctx, cfg)
	if err != nil {
		return err
	}

	factory := func(ownCUIT string) *pipeline.Pipeline {
		if ownCUIT == "" {
			ownCUIT = cfg.OwnCUIT
		}
		return assemblePipeline(collab, ownCUIT)
	}

	handler := api.NewHandler(factory)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("HTTP server failed: %w", err)
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Shutting down HTTP server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info().Msg("HTTP server stopped")
	return nil
}
