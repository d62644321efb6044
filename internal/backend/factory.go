// Package backend selects and constructs the record store adapter.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"salonbooks/internal/config"
	"salonbooks/internal/store"
	gsheet "salonbooks/internal/store/google"
	"salonbooks/internal/store/memory"
)

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// NewRecordStore builds the record store named by the configuration.
// The memory backend is self-contained and used for local development.
func NewRecordStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.RecordStore, CleanupFunc, error) {
	switch cfg.StoreBackend {
	case "sheets":
		cli, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize sheets backend: %w", err)
		}
		logger.Info("Initialized Google Sheets record store", "spreadsheet_id", cfg.GoogleSpreadsheetID)
		return cli, func() error { return nil }, nil
	case "memory":
		st := memory.New()
		logger.Info("Initialized in-memory record store")
		return st, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend: %s", cfg.StoreBackend)
	}
}
