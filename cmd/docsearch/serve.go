package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docsearch/internal/api"
	"github.com/dgallion1/docsearch/internal/widget"
	"github.com/spf13/cobra"
)

var (
	serveAddr  string
	serveIndex string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search page backed by a built index",
	Long: `Starts the HTTP server, then loads the index once from a file path or
URL. If loading fails the server keeps running and every query returns no
results.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default :$PORT)")
	serveCmd.Flags().StringVar(&serveIndex, "index", "", "index file path or URL (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveIndex != "" {
		cfg.IndexURL = serveIndex
	}
	addr := serveAddr
	if addr == "" {
		addr = ":" + cfg.Port
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl := widget.NewController(log, cfg.ResultLimit)
	defer ctrl.Close()

	srv := api.NewServer(ctrl, log, cfg)
	httpServer := &http.Server{
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	// The page is served while the index loads, as the browser would show
	// the input before the fetch completes.
	go func() {
		client := &http.Client{Timeout: 30 * time.Second}
		ctrl.Load(ctx, widget.NewFetcher(cfg.IndexURL, client))
	}()

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting docsearch", "addr", ln.Addr().String(), "index", cfg.IndexURL)
	if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
