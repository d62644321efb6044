// Package ledger holds the in-memory income and expense records for one
// operator session, with totals derived by full recomputation. The ledger is
// owned explicitly by the session that loaded it; there is no ambient global.
package ledger

import (
	"context"
	"fmt"

	"salonbooks/internal/core"
	"salonbooks/internal/store"
)

// Ledger is the loaded record set plus the store used for appends. Appends
// are write-then-confirm: the store write must succeed before the record
// joins the in-memory set.
type Ledger struct {
	st store.RecordStore

	income   []core.IncomeRecord
	expenses []core.ExpenseRecord
}

// New creates an empty ledger bound to a record store.
func New(st store.RecordStore) *Ledger {
	return &Ledger{st: st}
}

// Load reads the Income and Expenses worksheets and replaces the in-memory
// record set. The header row of each sheet is validated against its schema;
// a mismatch fails the whole load with a SchemaError. Data rows are mapped
// leniently: short rows pad with empty fields, extra columns are ignored,
// and unparseable amounts coerce to 0 rather than dropping the row.
func (l *Ledger) Load(ctx context.Context) error {
	income, err := loadRecords(ctx, l.st, core.IncomeSchema, core.IncomeFromRow)
	if err != nil {
		return err
	}
	expenses, err := loadRecords(ctx, l.st, core.ExpenseSchema, core.ExpenseFromRow)
	if err != nil {
		return err
	}
	l.income = income
	l.expenses = expenses
	return nil
}

func loadRecords[T any](ctx context.Context, rd store.RowReader, schema core.Schema, fromRow func(core.FieldIndex, []string) T) ([]T, error) {
	rows, err := rd.ReadAllRows(ctx, schema.Sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &core.SchemaError{Sheet: schema.Sheet, Expected: schema.Columns, Got: nil}
	}
	idx, err := schema.MapHeader(rows[0])
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if empty(row) {
			continue
		}
		out = append(out, fromRow(idx, row))
	}
	return out, nil
}

func empty(row []string) bool {
	for _, f := range row {
		if f != "" {
			return false
		}
	}
	return true
}

// Income returns the loaded income records in store order.
func (l *Ledger) Income() []core.IncomeRecord {
	return l.income
}

// Expenses returns the loaded expense records in store order.
func (l *Ledger) Expenses() []core.ExpenseRecord {
	return l.expenses
}

// TotalIncome recomputes the income sum over the full record set.
func (l *Ledger) TotalIncome() core.Money {
	var sum core.Money
	for _, r := range l.income {
		sum = sum.Add(r.Amount)
	}
	return sum
}

// TotalExpense recomputes the expense sum over the full record set.
func (l *Ledger) TotalExpense() core.Money {
	var sum core.Money
	for _, r := range l.expenses {
		sum = sum.Add(r.Amount)
	}
	return sum
}

// NetProfit is TotalIncome minus TotalExpense.
func (l *Ledger) NetProfit() core.Money {
	return l.TotalIncome().Sub(l.TotalExpense())
}

// Summary returns all three totals at once.
func (l *Ledger) Summary() core.Summary {
	return core.Summary{
		TotalIncome:  l.TotalIncome(),
		TotalExpense: l.TotalExpense(),
		NetProfit:    l.NetProfit(),
	}
}

// AppendIncome validates the record, appends it to the store, and only then
// adds it to the in-memory set. A store failure leaves the ledger unchanged.
func (l *Ledger) AppendIncome(ctx context.Context, r core.IncomeRecord) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if err := l.st.AppendRow(ctx, core.IncomeSheet, r.Row()); err != nil {
		return fmt.Errorf("append income: %w", err)
	}
	l.income = append(l.income, r)
	return nil
}

// AppendExpense validates the record, appends it to the store, and only then
// adds it to the in-memory set.
func (l *Ledger) AppendExpense(ctx context.Context, r core.ExpenseRecord) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if err := l.st.AppendRow(ctx, core.ExpensesSheet, r.Row()); err != nil {
		return fmt.Errorf("append expense: %w", err)
	}
	l.expenses = append(l.expenses, r)
	return nil
}
