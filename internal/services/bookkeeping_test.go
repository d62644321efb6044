package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"salonbooks/internal/core"
	"salonbooks/internal/store/memory"
)

func newBookkeeping(t *testing.T) (*Bookkeeping, *memory.Store) {
	t.Helper()
	st := memory.New()
	session, err := NewSession(context.Background(), st)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return NewBookkeeping(session, nil), st
}

func TestNewSessionBootstrapsWorksheets(t *testing.T) {
	st := memory.New()
	session, err := NewSession(context.Background(), st)
	if err != nil {
		t.Fatalf("new session on empty store: %v", err)
	}
	// Only headers exist; the session starts empty.
	if len(session.Ledger.Income()) != 0 || session.Directory.Size() != 0 {
		t.Fatalf("fresh session must be empty")
	}
	for _, sheet := range []string{core.IncomeSheet, core.ExpensesSheet, core.CustomersSheet} {
		if st.RowCount(sheet) != 1 {
			t.Fatalf("worksheet %s missing its header row", sheet)
		}
	}
}

func TestNewSessionFailsOnUnreadableStore(t *testing.T) {
	st := memory.New()
	st.FailRead = true
	if _, err := NewSession(context.Background(), st); err == nil {
		t.Fatalf("expected load failure")
	}
}

func TestAddIncomeAndSummary(t *testing.T) {
	b, _ := newBookkeeping(t)
	ctx := context.Background()

	err := b.AddIncome(ctx, core.IncomeRecord{
		Date:    core.NewDate(2025, 3, 1),
		Client:  "Riya",
		Service: "Haircut",
		Amount:  core.Money{Paise: 150000},
	}, "tok-1")
	if err != nil {
		t.Fatalf("add income: %v", err)
	}
	err = b.AddExpense(ctx, core.ExpenseRecord{
		Date:     core.NewDate(2025, 3, 2),
		Category: "Supplies",
		Amount:   core.Money{Paise: 30000},
	}, "tok-2")
	if err != nil {
		t.Fatalf("add expense: %v", err)
	}

	sum := b.Summary()
	if sum.TotalIncome.Paise != 150000 || sum.TotalExpense.Paise != 30000 || sum.NetProfit.Paise != 120000 {
		t.Fatalf("summary: %+v", sum)
	}
}

func TestGenerateInvoiceRegistersNewCustomer(t *testing.T) {
	b, _ := newBookkeeping(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

	out, err := b.GenerateInvoice(ctx, core.NewDate(2025, 3, 14), "Riya", "Haircut",
		core.Money{Paise: 150000}, "", now, "tok-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !out.Saved || out.Customer.Code != "CUST-0001" {
		t.Fatalf("outcome: %+v", out)
	}

	sum := b.Summary()
	if sum.TotalIncome.Paise != 150000 {
		t.Fatalf("invoice income must join the ledger: %+v", sum)
	}
}

func TestGenerateInvoiceStoreFailure(t *testing.T) {
	b, st := newBookkeeping(t)
	st.FailAppend = true

	out, err := b.GenerateInvoice(context.Background(), core.NewDate(2025, 3, 14), "Riya",
		"Haircut", core.Money{Paise: 100}, "", time.Now(), "tok-1")
	if err == nil {
		t.Fatalf("expected store failure")
	}
	if out.Saved {
		t.Fatalf("failed persistence must not report saved")
	}
}

func TestRecordAccessorsReturnCopies(t *testing.T) {
	b, _ := newBookkeeping(t)
	ctx := context.Background()

	if err := b.AddIncome(ctx, core.IncomeRecord{
		Date:    core.NewDate(2025, 3, 1),
		Client:  "Riya",
		Service: "Haircut",
		Amount:  core.Money{Paise: 100},
	}, ""); err != nil {
		t.Fatalf("add income: %v", err)
	}

	records := b.IncomeRecords()
	records[0].Client = "mutated"
	if b.IncomeRecords()[0].Client != "Riya" {
		t.Fatalf("accessor must return a copy")
	}
}

func TestReload(t *testing.T) {
	b, st := newBookkeeping(t)
	ctx := context.Background()

	// A row written behind the session's back appears after reload.
	if err := st.AppendRow(ctx, core.IncomeSheet, []string{"2025-03-01", "Riya", "Haircut", "500.00", ""}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if b.Summary().TotalIncome.Paise != 0 {
		t.Fatalf("summary must come from the in-memory set")
	}
	if err := b.Reload(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if b.Summary().TotalIncome.Paise != 50000 {
		t.Fatalf("reload must pick up new rows")
	}
}

func TestSuggestionsGoThroughDirectory(t *testing.T) {
	b, _ := newBookkeeping(t)
	ctx := context.Background()

	if _, err := b.GenerateInvoice(ctx, core.NewDate(2025, 3, 14), "Riya", "Haircut",
		core.Money{Paise: 100}, "", time.Now(), ""); err != nil {
		t.Fatalf("generate: %v", err)
	}

	if got := b.Suggestions("ri"); len(got) != 1 || got[0].Name != "Riya" {
		t.Fatalf("suggestions: %+v", got)
	}
	if got := b.Suggestions(""); got != nil {
		t.Fatalf("blank partial must return nil, got %+v", got)
	}
}

func TestSchemaErrorSurfacesFromSession(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	// Pre-create Income with a wrong header before the session bootstraps.
	if err := st.EnsureWorksheet(ctx, core.IncomeSheet, []string{"Date", "Customer", "Service", "Amount", "Notes"}); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	_, err := NewSession(ctx, st)
	var se *core.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}
