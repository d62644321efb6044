package customers

import (
	"context"
	"testing"

	"salonbooks/internal/core"
	"salonbooks/internal/store"
	"salonbooks/internal/store/memory"
)

func newDirectory(t *testing.T) (*Directory, *memory.Store) {
	t.Helper()
	st := memory.New()
	ctx := context.Background()
	if err := st.EnsureWorksheet(ctx, core.CustomersSheet, core.CustomerSchema.Columns); err != nil {
		t.Fatalf("ensure worksheet: %v", err)
	}
	d := New(st)
	if err := d.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	return d, st
}

func TestRegisterIfNewAssignsSequentialCodes(t *testing.T) {
	d, st := newDirectory(t)
	ctx := context.Background()

	c1, err := d.RegisterIfNew(ctx, "Riya")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if c1.Code != "CUST-0001" {
		t.Fatalf("first code: expected CUST-0001, got %s", c1.Code)
	}

	c2, err := d.RegisterIfNew(ctx, "Anu")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if c2.Code != "CUST-0002" {
		t.Fatalf("second code: expected CUST-0002, got %s", c2.Code)
	}

	// Re-registering an existing name returns the same customer, no write.
	before := st.RowCount(core.CustomersSheet)
	again, err := d.RegisterIfNew(ctx, "Riya")
	if err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if again != c1 {
		t.Fatalf("re-register must return existing customer: %+v", again)
	}
	if st.RowCount(core.CustomersSheet) != before {
		t.Fatalf("re-register must not write to the store")
	}
}

func TestRegisterIfNewExactMatchOnly(t *testing.T) {
	d, _ := newDirectory(t)
	ctx := context.Background()

	if _, err := d.RegisterIfNew(ctx, "Jane Doe"); err != nil {
		t.Fatalf("register: %v", err)
	}
	// Trailing space is a different name under the exact-match rule.
	c, err := d.RegisterIfNew(ctx, "Jane Doe ")
	if err != nil {
		t.Fatalf("register near-duplicate: %v", err)
	}
	if c.Code != "CUST-0002" {
		t.Fatalf("near-duplicate must get its own code, got %s", c.Code)
	}
	// Case differs, also distinct.
	c, err = d.RegisterIfNew(ctx, "jane doe")
	if err != nil {
		t.Fatalf("register case variant: %v", err)
	}
	if c.Code != "CUST-0003" {
		t.Fatalf("case variant must get its own code, got %s", c.Code)
	}
}

func TestRegisterIfNewFailedWriteLeavesDirectoryUnchanged(t *testing.T) {
	d, st := newDirectory(t)
	ctx := context.Background()

	st.FailAppend = true
	_, err := d.RegisterIfNew(ctx, "Riya")
	if !store.IsWriteError(err) {
		t.Fatalf("expected write error, got %v", err)
	}
	if d.Size() != 0 {
		t.Fatalf("failed write must not grow the directory")
	}

	// The same code is reissued once the store recovers.
	st.FailAppend = false
	c, err := d.RegisterIfNew(ctx, "Riya")
	if err != nil {
		t.Fatalf("register after recovery: %v", err)
	}
	if c.Code != "CUST-0001" {
		t.Fatalf("expected CUST-0001 after recovery, got %s", c.Code)
	}
}

func TestRegisterIfNewRejectsBlankName(t *testing.T) {
	d, _ := newDirectory(t)
	if _, err := d.RegisterIfNew(context.Background(), "   "); err != core.ErrEmptyClient {
		t.Fatalf("expected ErrEmptyClient, got %v", err)
	}
}

func TestFindSuggestions(t *testing.T) {
	d, _ := newDirectory(t)
	ctx := context.Background()
	for _, name := range []string{"Riya Sharma", "Anu Riyal", "Meera"} {
		if _, err := d.RegisterIfNew(ctx, name); err != nil {
			t.Fatalf("register: %v", err)
		}
	}

	cases := []struct {
		partial string
		want    []string
	}{
		{"riya", []string{"Riya Sharma", "Anu Riyal"}},
		{"RIYA", []string{"Riya Sharma", "Anu Riyal"}},
		{"meera", []string{"Meera"}},
		{"xyz", nil},
		{"", nil},
		{"  ", nil},
	}
	for _, tc := range cases {
		got := d.FindSuggestions(tc.partial)
		if len(got) != len(tc.want) {
			t.Fatalf("%q: expected %d matches, got %d", tc.partial, len(tc.want), len(got))
		}
		for i, name := range tc.want {
			if got[i].Name != name {
				t.Fatalf("%q: match %d expected %q, got %q", tc.partial, i, name, got[i].Name)
			}
		}
	}
}

func TestLoadSkipsBlankRows(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	if err := st.EnsureWorksheet(ctx, core.CustomersSheet, core.CustomerSchema.Columns); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := st.AppendRow(ctx, core.CustomersSheet, []string{"CUST-0001", "Riya"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := st.AppendRow(ctx, core.CustomersSheet, []string{"", ""}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	d := New(st)
	if err := d.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if d.Size() != 1 {
		t.Fatalf("expected 1 customer, got %d", d.Size())
	}
}
