/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the WorkT payroll server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and configuration
  2. Build the zap logger
  3. Open the SQLite store (migrations run on open)
  4. Wire aggregator, summary service and API handler
  5. Start server with graceful shutdown

CONFIGURATION:
  See config/config.go. Every key can be set in config.yaml or as a
  WORKT_* environment variable, e.g.:
    WORKT_HTTP_PORT=3000
    WORKT_DATABASE_PATH=./data/worktime.db   (":memory:" for a throwaway db)
    WORKT_LOGGING_LEVEL=debug

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/bzrenis/workt-sub001/api"
	"github.com/bzrenis/workt-sub001/config"
	"github.com/bzrenis/workt-sub001/monthly"
	"github.com/bzrenis/workt-sub001/store/sqlite"
	"github.com/bzrenis/workt-sub001/summary"
	"github.com/bzrenis/workt-sub001/tax"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	// Initialize store
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	aggregator := monthly.NewAggregator(
		monthly.StoredProvider{},
		logger.Named("aggregator"),
		monthly.WithConcurrency(cfg.Engine.BreakdownConcurrency),
	)
	svc := summary.NewService(store, aggregator, tax.Default, logger.Named("summary"))
	handler := api.NewHandler(store, svc, logger.Named("api"))

	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Metrics:        cfg.Metrics.Enabled,
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", server.Addr),
			zap.String("database", cfg.Database.Path),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}
