package main

import (
	"context"
	"errors"
	"os"
	"time"

	"salonbooks/internal/amqp"
	"salonbooks/internal/cli"
	"salonbooks/internal/store"
	gsheet "salonbooks/internal/store/google"
	"salonbooks/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting salonbooks-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the archive worker")
		os.Exit(1)
	}

	archive := cli.InitArchive(logger, cfg.ArchiveDBPath)
	defer archive.Close()

	// A record store reader is optional; without one the worker archives
	// live events but cannot backfill history.
	var reader store.RowReader
	if cfg.StoreBackend == "sheets" && cfg.GoogleSpreadsheetID != "" {
		sheetsClient, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		reader = sheetsClient
		logger.Info("Google Sheets reader initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("No record store reader configured, backfill disabled")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		logger.Info("Stopping archive worker")
	})

	archiveWorker := worker.NewArchiveWorker(archive, reader)

	if cfg.BackfillOnStart {
		backfillCtx, cancel := context.WithTimeout(ctx, cfg.ConsumeTimeout)
		if err := archiveWorker.BackfillIfEmpty(backfillCtx); err != nil {
			logger.Error("Archive backfill failed", "error", err)
			// Live consumption still works; history catches up on a later run
		}
		cancel()
	}

	logger.Info("Consuming archive messages", "queue", cfg.AMQPQueue)
	err = amqpClient.ConsumeRecordAppended(ctx, func(msg *amqp.RecordAppendedMessage) error {
		handleCtx, cancel := context.WithTimeout(context.Background(), cfg.ConsumeTimeout)
		defer cancel()
		return archiveWorker.HandleMessage(handleCtx, msg)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption stopped", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
