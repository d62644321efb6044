package core

import (
	"fmt"
	"strings"
)

// Worksheet names in the record store.
const (
	IncomeSheet    = "Income"
	ExpensesSheet  = "Expenses"
	CustomersSheet = "Customers"
)

// Schema is the ordered column layout of one worksheet. Rows read from the
// store are mapped by column name, validated once against the header row.
type Schema struct {
	Sheet   string
	Columns []string
}

var (
	IncomeSchema   = Schema{Sheet: IncomeSheet, Columns: []string{"Date", "Client", "Service", "Amount", "Notes"}}
	ExpenseSchema  = Schema{Sheet: ExpensesSheet, Columns: []string{"Date", "Category", "Amount", "Notes"}}
	CustomerSchema = Schema{Sheet: CustomersSheet, Columns: []string{"Customer Code", "Client Name"}}
)

// SchemaError reports a header row that does not match the expected layout.
// Loading fails fast on this instead of silently misaligning columns.
type SchemaError struct {
	Sheet    string
	Expected []string
	Got      []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("sheet %s: header mismatch: expected %v, got %v", e.Sheet, e.Expected, e.Got)
}

// FieldIndex maps column names to positions for one validated worksheet.
type FieldIndex map[string]int

// MapHeader validates the header row against the schema and returns the
// name-to-index mapping. Comparison is whitespace-trimmed, case-insensitive;
// extra trailing columns are tolerated, missing or reordered ones are not.
func (s Schema) MapHeader(header []string) (FieldIndex, error) {
	if len(header) < len(s.Columns) {
		return nil, &SchemaError{Sheet: s.Sheet, Expected: s.Columns, Got: header}
	}
	idx := make(FieldIndex, len(s.Columns))
	for i, want := range s.Columns {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return nil, &SchemaError{Sheet: s.Sheet, Expected: s.Columns, Got: header}
		}
		idx[want] = i
	}
	return idx, nil
}

// Index returns the identity mapping for rows already known to be in schema
// column order, such as rows the application itself produced.
func (s Schema) Index() FieldIndex {
	idx := make(FieldIndex, len(s.Columns))
	for i, name := range s.Columns {
		idx[name] = i
	}
	return idx
}

// Field returns the trimmed value of the named column, or "" when the row is
// shorter than the header. Row mapping is lenient: missing trailing fields
// default to empty, extra fields are ignored.
func (idx FieldIndex) Field(row []string, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// IncomeFromRow maps a raw store row onto an IncomeRecord. Unparseable dates
// stay zero and unparseable amounts coerce to 0; the row is never dropped.
func IncomeFromRow(idx FieldIndex, row []string) IncomeRecord {
	d, _ := ParseDate(idx.Field(row, "Date"))
	return IncomeRecord{
		Date:    d,
		Client:  idx.Field(row, "Client"),
		Service: idx.Field(row, "Service"),
		Amount:  Money{Paise: CoercePaise(idx.Field(row, "Amount"))},
		Notes:   idx.Field(row, "Notes"),
	}
}

// ExpenseFromRow maps a raw store row onto an ExpenseRecord.
func ExpenseFromRow(idx FieldIndex, row []string) ExpenseRecord {
	d, _ := ParseDate(idx.Field(row, "Date"))
	return ExpenseRecord{
		Date:     d,
		Category: idx.Field(row, "Category"),
		Amount:   Money{Paise: CoercePaise(idx.Field(row, "Amount"))},
		Notes:    idx.Field(row, "Notes"),
	}
}

// CustomerFromRow maps a raw store row onto a Customer.
func CustomerFromRow(idx FieldIndex, row []string) Customer {
	return Customer{
		Code: idx.Field(row, "Customer Code"),
		Name: idx.Field(row, "Client Name"),
	}
}

// Row returns the record as store fields in schema column order.
func (r IncomeRecord) Row() []string {
	return []string{r.Date.String(), r.Client, r.Service, r.Amount.Plain(), r.Notes}
}

// Row returns the record as store fields in schema column order.
func (r ExpenseRecord) Row() []string {
	return []string{r.Date.String(), r.Category, r.Amount.Plain(), r.Notes}
}

// Row returns the customer as store fields in schema column order.
func (c Customer) Row() []string {
	return []string{c.Code, c.Name}
}
