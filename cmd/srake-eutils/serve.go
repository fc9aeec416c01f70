package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nishad/srake-eutils/internal/api"
	"github.com/nishad/srake-eutils/internal/store"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve FASTA and run lookups over HTTP",
	Long: `Start an HTTP gateway in front of the two lookups.

Endpoints:
  GET /api/v1/fasta/{accession}           FASTA record as text/plain
  GET /api/v1/runs?term=...&filter=...    runs as JSON (add save=true to cache them)
  GET /api/v1/health`,
	Example: `  srake-eutils serve
  srake-eutils serve --port 3000 --enable-cors
  srake-eutils serve --no-cache`,
	RunE: runServe,
}

var (
	serveHost       string
	servePort       int
	serveEnableCORS bool
	serveNoCache    bool
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default from config)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default from config)")
	serveCmd.Flags().BoolVar(&serveEnableCORS, "enable-cors", false, "Enable CORS for web access")
	serveCmd.Flags().BoolVar(&serveNoCache, "no-cache", false, "Do not open the local run cache")
}

func runServe(cmd *cobra.Command, args []string) error {
	serverCfg := &api.Config{
		Host:       cfg.Server.Host,
		Port:       cfg.Server.Port,
		EnableCORS: cfg.Server.EnableCORS || serveEnableCORS,
	}
	if serveHost != "" {
		serverCfg.Host = serveHost
	}
	if servePort != 0 {
		serverCfg.Port = servePort
	}

	var runStore *store.Store
	if !serveNoCache {
		var err error
		runStore, err = openStore()
		if err != nil {
			return fmt.Errorf("failed to open run cache: %w", err)
		}
		defer runStore.Close()
		printDebug("Run cache: %s", runStore.Path())
	}

	server := api.NewServer(serverCfg, newClient(os.Stderr), runStore)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		printSuccess("Gateway ready at http://%s", server.Addr())
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-sigChan:
	case err := <-serverErr:
		log.Printf("Server error: %v", err)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	printSuccess("Gateway stopped")
	return nil
}
