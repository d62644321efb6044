// Package cli provides common CLI initialization utilities shared by
// cmd/salonbooks and cmd/salonbooks-worker.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"salonbooks/internal/config"
	"salonbooks/internal/storage"
)

// SetupLogger installs a text slog logger as the process default.
func SetupLogger() *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env for local development. Missing files are fine; in
// production everything comes from the real environment.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig reads the environment config, exiting the process
// when validation fails. Both binaries refuse to start half-configured.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitArchive opens and migrates the SQLite archive, exiting on failure.
func InitArchive(logger *slog.Logger, dbPath string) *storage.ArchiveRepository {
	archive, err := storage.NewArchiveRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize archive repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return archive
}

// GracefulShutdown returns a context cancelled on SIGINT/SIGTERM and a
// channel closed once the cleanup callback has run.
func GracefulShutdown(logger *slog.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("Shutdown signal received", "signal", sig.String())

		deadline, cancelDeadline := context.WithTimeout(context.Background(), timeout)
		defer cancelDeadline()

		if cleanup != nil {
			cleanup()
		}
		cancel()

		select {
		case <-deadline.Done():
			logger.Warn("Shutdown timeout reached")
		case <-time.After(2 * time.Second):
			logger.Info("Shutdown complete")
		}
	}()

	return ctx, done
}

// WaitForShutdown blocks until shutdown has fully completed.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
