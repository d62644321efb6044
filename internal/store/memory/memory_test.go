package memory

import (
	"context"
	"testing"

	"salonbooks/internal/store"
)

func TestEnsureWorksheetIsIdempotent(t *testing.T) {
	st := New()
	ctx := context.Background()
	header := []string{"Date", "Client"}

	if err := st.EnsureWorksheet(ctx, "Income", header); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := st.AppendRow(ctx, "Income", []string{"2025-03-01", "Riya"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	// A second ensure must not wipe existing rows.
	if err := st.EnsureWorksheet(ctx, "Income", header); err != nil {
		t.Fatalf("re-ensure: %v", err)
	}
	if st.RowCount("Income") != 2 {
		t.Fatalf("re-ensure must keep rows, got %d", st.RowCount("Income"))
	}
}

func TestReadAllRowsReturnsCopies(t *testing.T) {
	st := New()
	ctx := context.Background()
	if err := st.EnsureWorksheet(ctx, "Income", []string{"Date"}); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := st.AppendRow(ctx, "Income", []string{"2025-03-01"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	rows, err := st.ReadAllRows(ctx, "Income")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	rows[1][0] = "mutated"

	again, err := st.ReadAllRows(ctx, "Income")
	if err != nil {
		t.Fatalf("read again: %v", err)
	}
	if again[1][0] != "2025-03-01" {
		t.Fatalf("caller mutation must not leak into the store")
	}
}

func TestMissingWorksheetErrors(t *testing.T) {
	st := New()
	ctx := context.Background()

	_, err := st.ReadAllRows(ctx, "Nope")
	if !store.IsReadError(err) {
		t.Fatalf("expected read error, got %v", err)
	}
	if err := st.AppendRow(ctx, "Nope", []string{"x"}); !store.IsWriteError(err) {
		t.Fatalf("expected write error, got %v", err)
	}
}

func TestFailureHooks(t *testing.T) {
	st := New()
	ctx := context.Background()
	if err := st.EnsureWorksheet(ctx, "Income", []string{"Date"}); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	st.FailRead = true
	if _, err := st.ReadAllRows(ctx, "Income"); !store.IsReadError(err) {
		t.Fatalf("expected read error, got %v", err)
	}
	st.FailRead = false

	st.FailAppend = true
	if err := st.AppendRow(ctx, "Income", []string{"x"}); !store.IsWriteError(err) {
		t.Fatalf("expected write error, got %v", err)
	}
}
