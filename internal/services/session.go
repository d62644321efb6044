// Package services wires the ledger, customer directory and invoice
// generator into one operator session and orchestrates their writes.
package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"salonbooks/internal/core"
	"salonbooks/internal/customers"
	"salonbooks/internal/invoice"
	"salonbooks/internal/ledger"
	"salonbooks/internal/store"
)

// Session owns the in-memory state for one operator: the loaded ledger, the
// customer directory, and the invoice generator writing through both.
type Session struct {
	Ledger    *ledger.Ledger
	Directory *customers.Directory
	Generator *invoice.Generator
}

// NewSession ensures the three worksheets exist, then loads ledger and
// directory concurrently. A read failure of any sheet fails the session;
// the caller must not continue on silently empty data.
func NewSession(ctx context.Context, st store.RecordStore) (*Session, error) {
	for _, schema := range []core.Schema{core.IncomeSchema, core.ExpenseSchema, core.CustomerSchema} {
		if err := st.EnsureWorksheet(ctx, schema.Sheet, schema.Columns); err != nil {
			return nil, fmt.Errorf("ensure worksheet %s: %w", schema.Sheet, err)
		}
	}

	l := ledger.New(st)
	d := customers.New(st)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return l.Load(gctx) })
	g.Go(func() error { return d.Load(gctx) })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	gen, err := invoice.NewGenerator(l, d)
	if err != nil {
		return nil, err
	}

	return &Session{Ledger: l, Directory: d, Generator: gen}, nil
}

// Reload refreshes ledger and directory from the record store.
func (s *Session) Reload(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.Ledger.Load(gctx) })
	g.Go(func() error { return s.Directory.Load(gctx) })
	if err := g.Wait(); err != nil {
		return fmt.Errorf("reload session: %w", err)
	}
	return nil
}
