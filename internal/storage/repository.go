// Package storage is the local SQLite archive of store rows. The archive is
// strictly downstream of the record store: the worker mirrors confirmed
// appends into it for offline reporting and backup, and nothing in the
// request path reads from it.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"salonbooks/internal/core"

	_ "modernc.org/sqlite"
)

type ArchiveRepository struct {
	db *sql.DB
}

func NewArchiveRepository(dbPath string) (*ArchiveRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &ArchiveRepository{db: db}, nil
}

func (r *ArchiveRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ArchiveIncome mirrors one income row. A repeated idempotency token is a
// redelivery and archives as a no-op.
func (r *ArchiveRepository) ArchiveIncome(ctx context.Context, rec core.IncomeRecord, token string) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO income (date, client, service, amount_paise, notes, token)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Date.String(), rec.Client, rec.Service, rec.Amount.Paise, rec.Notes, token)
	if err != nil {
		return fmt.Errorf("archive income: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		slog.DebugContext(ctx, "Income row already archived", "token", token)
		return nil
	}
	slog.InfoContext(ctx, "Income row archived",
		"client", rec.Client,
		"service", rec.Service,
		"amount_paise", rec.Amount.Paise)
	return nil
}

// ArchiveExpense mirrors one expense row.
func (r *ArchiveRepository) ArchiveExpense(ctx context.Context, rec core.ExpenseRecord, token string) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO expenses (date, category, amount_paise, notes, token)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.Date.String(), rec.Category, rec.Amount.Paise, rec.Notes, token)
	if err != nil {
		return fmt.Errorf("archive expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		slog.DebugContext(ctx, "Expense row already archived", "token", token)
		return nil
	}
	slog.InfoContext(ctx, "Expense row archived",
		"category", rec.Category,
		"amount_paise", rec.Amount.Paise)
	return nil
}

// ArchiveCustomer mirrors one customer row, keyed by code.
func (r *ArchiveRepository) ArchiveCustomer(ctx context.Context, c core.Customer) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO customers (code, name) VALUES (?, ?)`,
		c.Code, c.Name)
	if err != nil {
		return fmt.Errorf("archive customer: %w", err)
	}
	return nil
}

// Counts returns the number of archived rows per table.
func (r *ArchiveRepository) Counts(ctx context.Context) (income, expenses, customers int64, err error) {
	if err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM income`).Scan(&income); err != nil {
		return 0, 0, 0, fmt.Errorf("count income: %w", err)
	}
	if err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses`).Scan(&expenses); err != nil {
		return 0, 0, 0, fmt.Errorf("count expenses: %w", err)
	}
	if err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&customers); err != nil {
		return 0, 0, 0, fmt.Errorf("count customers: %w", err)
	}
	return income, expenses, customers, nil
}

// Summary recomputes totals over the archived rows.
func (r *ArchiveRepository) Summary(ctx context.Context) (core.Summary, error) {
	var incomePaise, expensePaise int64
	if err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount_paise), 0) FROM income`).Scan(&incomePaise); err != nil {
		return core.Summary{}, fmt.Errorf("sum income: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount_paise), 0) FROM expenses`).Scan(&expensePaise); err != nil {
		return core.Summary{}, fmt.Errorf("sum expenses: %w", err)
	}
	return core.Summary{
		TotalIncome:  core.Money{Paise: incomePaise},
		TotalExpense: core.Money{Paise: expensePaise},
		NetProfit:    core.Money{Paise: incomePaise - expensePaise},
	}, nil
}
