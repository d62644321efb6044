// Package worker mirrors confirmed record-store appends into the local
// SQLite archive.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"salonbooks/internal/amqp"
	"salonbooks/internal/core"
	"salonbooks/internal/storage"
	"salonbooks/internal/store"
)

// ArchiveWorker consumes append events and writes archive rows. Redelivered
// messages are deduplicated by their idempotency token inside the archive.
type ArchiveWorker struct {
	archive *storage.ArchiveRepository
	reader  store.RowReader
}

// NewArchiveWorker binds the archive repository and an optional row reader
// used for the startup backfill. reader may be nil when the record store is
// unreachable from the worker.
func NewArchiveWorker(archive *storage.ArchiveRepository, reader store.RowReader) *ArchiveWorker {
	return &ArchiveWorker{archive: archive, reader: reader}
}

// HandleMessage archives a single appended row.
func (w *ArchiveWorker) HandleMessage(ctx context.Context, msg *amqp.RecordAppendedMessage) error {
	switch msg.Kind {
	case amqp.KindIncome:
		rec := core.IncomeFromRow(core.IncomeSchema.Index(), msg.Fields)
		return w.archive.ArchiveIncome(ctx, rec, msg.Token)
	case amqp.KindExpense:
		rec := core.ExpenseFromRow(core.ExpenseSchema.Index(), msg.Fields)
		return w.archive.ArchiveExpense(ctx, rec, msg.Token)
	case amqp.KindCustomer:
		c := core.CustomerFromRow(core.CustomerSchema.Index(), msg.Fields)
		return w.archive.ArchiveCustomer(ctx, c)
	default:
		// Unknown kinds are dropped, not requeued
		slog.WarnContext(ctx, "Dropping archive message of unknown kind", "kind", msg.Kind)
		return nil
	}
}

// BackfillIfEmpty seeds an empty archive from the record store so a worker
// deployed after the fact still ends up with the full history. Rows that
// fail header validation fail the whole backfill; the archive must not
// silently hold a misaligned copy.
func (w *ArchiveWorker) BackfillIfEmpty(ctx context.Context) error {
	if w.reader == nil {
		slog.InfoContext(ctx, "No record store reader configured, skipping backfill")
		return nil
	}
	income, expenses, customers, err := w.archive.Counts(ctx)
	if err != nil {
		return fmt.Errorf("count archive rows: %w", err)
	}
	if income+expenses+customers > 0 {
		slog.InfoContext(ctx, "Archive already populated, skipping backfill",
			"income", income, "expenses", expenses, "customers", customers)
		return nil
	}

	var (
		incomeRows   [][]string
		expenseRows  [][]string
		customerRows [][]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		incomeRows, err = w.reader.ReadAllRows(gctx, core.IncomeSheet)
		return err
	})
	g.Go(func() (err error) {
		expenseRows, err = w.reader.ReadAllRows(gctx, core.ExpensesSheet)
		return err
	})
	g.Go(func() (err error) {
		customerRows, err = w.reader.ReadAllRows(gctx, core.CustomersSheet)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("read record store: %w", err)
	}

	if err := w.backfillIncome(ctx, incomeRows); err != nil {
		return err
	}
	if err := w.backfillExpenses(ctx, expenseRows); err != nil {
		return err
	}
	if err := w.backfillCustomers(ctx, customerRows); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Archive backfill complete",
		"income_rows", len(incomeRows)-1,
		"expense_rows", len(expenseRows)-1,
		"customer_rows", len(customerRows)-1)
	return nil
}

func (w *ArchiveWorker) backfillIncome(ctx context.Context, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	idx, err := core.IncomeSchema.MapHeader(rows[0])
	if err != nil {
		return err
	}
	for _, row := range rows[1:] {
		if err := w.archive.ArchiveIncome(ctx, core.IncomeFromRow(idx, row), ""); err != nil {
			return err
		}
	}
	return nil
}

func (w *ArchiveWorker) backfillExpenses(ctx context.Context, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	idx, err := core.ExpenseSchema.MapHeader(rows[0])
	if err != nil {
		return err
	}
	for _, row := range rows[1:] {
		if err := w.archive.ArchiveExpense(ctx, core.ExpenseFromRow(idx, row), ""); err != nil {
			return err
		}
	}
	return nil
}

func (w *ArchiveWorker) backfillCustomers(ctx context.Context, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	idx, err := core.CustomerSchema.MapHeader(rows[0])
	if err != nil {
		return err
	}
	for _, row := range rows[1:] {
		if err := w.archive.ArchiveCustomer(ctx, core.CustomerFromRow(idx, row)); err != nil {
			return err
		}
	}
	return nil
}
