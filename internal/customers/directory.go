// Package customers keeps the deduplicated client registry with sequential
// code assignment.
package customers

import (
	"context"
	"fmt"
	"strings"

	"salonbooks/internal/core"
	"salonbooks/internal/store"
)

// Directory is the in-memory customer list backed by the Customers worksheet.
// Codes are derived from the directory size at insertion time, which is only
// consistent while insertions are serialized; a second concurrent operator
// can observe the same size and mint a duplicate code. Single-operator
// deployments are the assumed model.
type Directory struct {
	st        store.RecordStore
	customers []core.Customer
}

// New creates an empty directory bound to a record store.
func New(st store.RecordStore) *Directory {
	return &Directory{st: st}
}

// Load reads the Customers worksheet and replaces the in-memory list.
func (d *Directory) Load(ctx context.Context) error {
	rows, err := d.st.ReadAllRows(ctx, core.CustomersSheet)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return &core.SchemaError{Sheet: core.CustomersSheet, Expected: core.CustomerSchema.Columns, Got: nil}
	}
	idx, err := core.CustomerSchema.MapHeader(rows[0])
	if err != nil {
		return err
	}
	list := make([]core.Customer, 0, len(rows)-1)
	for _, row := range rows[1:] {
		c := core.CustomerFromRow(idx, row)
		if c.Code == "" && c.Name == "" {
			continue
		}
		list = append(list, c)
	}
	d.customers = list
	return nil
}

// All returns the directory in insertion order.
func (d *Directory) All() []core.Customer {
	return d.customers
}

// Size returns the number of registered customers.
func (d *Directory) Size() int {
	return len(d.customers)
}

// FindSuggestions returns customers whose name contains the partial name,
// case-insensitively, in directory insertion order. Recomputed on each call.
func (d *Directory) FindSuggestions(partial string) []core.Customer {
	partial = strings.ToLower(strings.TrimSpace(partial))
	if partial == "" {
		return nil
	}
	var out []core.Customer
	for _, c := range d.customers {
		if strings.Contains(strings.ToLower(c.Name), partial) {
			out = append(out, c)
		}
	}
	return out
}

// RegisterIfNew returns the existing customer on a case-sensitive exact name
// match, performing no write. Otherwise it mints the next CUST-NNNN code from
// the current directory size, appends the customer to the store, and adds it
// to the in-memory list only after the write is confirmed.
//
// Near-duplicate names ("Jane Doe " vs "Jane Doe") register as distinct
// customers on purpose; exact match is the documented dedup rule.
func (d *Directory) RegisterIfNew(ctx context.Context, name string) (core.Customer, error) {
	if strings.TrimSpace(name) == "" {
		return core.Customer{}, core.ErrEmptyClient
	}
	for _, c := range d.customers {
		if c.Name == name {
			return c, nil
		}
	}
	c := core.Customer{
		Code: fmt.Sprintf("CUST-%04d", len(d.customers)+1),
		Name: name,
	}
	if err := d.st.AppendRow(ctx, core.CustomersSheet, c.Row()); err != nil {
		return core.Customer{}, fmt.Errorf("register customer: %w", err)
	}
	d.customers = append(d.customers, c)
	return c, nil
}
