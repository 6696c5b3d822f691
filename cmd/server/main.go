/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the PDA engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, flags)
  2. Initialize logger
  3. Initialize SQLite tariff store
  4. Seed built-in tariff profiles missing from the store
  5. Configure HTTP router
  6. Load the tariff directory (changed documents replace stored
     profiles) and start the reloader if an interval is set
  7. Start server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/pda.db"

  # Run with in-memory database and extra tariffs, re-read every minute
  ./server -db=":memory:" -tariff-dir=./tariffs -tariff-reload=1m

  # JSON logs to a rotated file
  PDA_LOG_FORMAT=json PDA_LOG_OUTPUT=file ./server

SEE ALSO:
  - config/config.go: All settings
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/pda-engine/api"
	"github.com/warp/pda-engine/config"
	"github.com/warp/pda-engine/disbursement"
	"github.com/warp/pda-engine/logging"
	"github.com/warp/pda-engine/ports"
	"github.com/warp/pda-engine/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "pda-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := seedTariffs(ctx, store); err != nil {
		return err
	}

	// Initialize handler and router
	handler := api.NewHandler(store, cfg.DefaultTariff, logger)
	router := api.NewRouter(handler, cfg.CORSOrigins)

	// Tariff directory: loaded once, then re-read if an interval is set
	if cfg.TariffDir != "" {
		reloader := api.NewTariffReloader(handler, cfg.TariffDir, cfg.ReloadInterval)
		saved, err := reloader.Reload(ctx)
		if err != nil {
			return fmt.Errorf("failed to load tariff directory: %w", err)
		}
		logger.Info("tariff directory loaded", "dir", cfg.TariffDir, "saved", len(saved))
		reloader.Start()
		defer reloader.Stop()
	}
	if _, err := store.Get(ctx, cfg.DefaultTariff); err != nil {
		return fmt.Errorf("default tariff %q: %w", cfg.DefaultTariff, err)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", server.Addr, "db", cfg.DBPath, "default_tariff", cfg.DefaultTariff)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-quit:
		logger.Info("shutting down server", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// seedTariffs saves the built-in profiles the store does not have yet.
func seedTariffs(ctx context.Context, store disbursement.TariffStore) error {
	for _, p := range ports.List() {
		_, err := store.Get(ctx, p.ID)
		if err == nil {
			continue // revised through the API, keep it
		}
		if !disbursement.IsNotFound(err) {
			return err
		}
		if err := store.Save(ctx, p); err != nil {
			return fmt.Errorf("failed to seed tariff %s: %w", p.ID, err)
		}
	}
	return nil
}
