package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salonbooks/internal/amqp"
	"salonbooks/internal/backend"
	"salonbooks/internal/cli"
	apphttp "salonbooks/internal/http"
	applog "salonbooks/internal/log"
	"salonbooks/internal/render"
	"salonbooks/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()

	st, cleanup, err := backend.NewRecordStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize record store", "error", err, "backend", cfg.StoreBackend)
		os.Exit(1)
	}
	defer func() {
		if err := cleanup(); err != nil {
			logger.Error("Record store cleanup failed", "error", err)
		}
	}()

	session, err := services.NewSession(ctx, st)
	if err != nil {
		logger.Error("Failed to load session", "error", err)
		os.Exit(1)
	}
	logger.Info("Session loaded",
		"income_records", len(session.Ledger.Income()),
		"expense_records", len(session.Ledger.Expenses()),
		"customers", session.Directory.Size())

	// AMQP is optional; without it appends are simply not archived.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	svc := services.NewBookkeeping(session, amqpClient)

	var renderer render.Renderer
	switch cfg.PDFRenderer {
	case "chrome":
		renderer = render.NewChromePDF()
	default:
		renderer = render.HTMLPassthrough{}
	}

	httpLogger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)
	srv := apphttp.NewServer(":"+cfg.Port, svc, renderer, httpLogger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting salonbooks server",
		"port", cfg.Port,
		"backend", cfg.StoreBackend,
		"renderer", cfg.PDFRenderer)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
