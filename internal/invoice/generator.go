// Package invoice turns a (client, service, amount, date, notes) tuple into
// an invoice document backed by a freshly appended income record.
package invoice

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"salonbooks/internal/core"
	"salonbooks/internal/customers"
	"salonbooks/internal/ledger"
)

//go:embed invoice.html
var templateFS embed.FS

// RenderError reports that document rendering failed after the underlying
// income record was already persisted. The caller must surface that the data
// is saved and only the document needs regenerating.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render invoice document: %v", e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Outcome is the result of Generate. Saved reports whether the income record
// and customer registration landed; it is true even when rendering failed.
type Outcome struct {
	Invoice  core.Invoice
	Customer core.Customer
	HTML     []byte
	Saved    bool
}

// Generator creates invoices against a ledger and customer directory.
type Generator struct {
	ledger *ledger.Ledger
	dir    *customers.Directory
	tmpl   *template.Template
}

// NewGenerator parses the embedded document template and binds the ledger
// and directory the generator writes through.
func NewGenerator(l *ledger.Ledger, d *customers.Directory) (*Generator, error) {
	tmpl, err := template.ParseFS(templateFS, "invoice.html")
	if err != nil {
		return nil, fmt.Errorf("parse invoice template: %w", err)
	}
	return &Generator{ledger: l, dir: d, tmpl: tmpl}, nil
}

// InvoiceID derives the document id from the generation time with second
// resolution. Two invoices generated within the same second share an id;
// the id is a document label, not a storage key.
func InvoiceID(now time.Time) string {
	return "INV-" + now.Format("20060102150405")
}

// Generate registers the client if new, appends the income record, then
// renders the document. The first two steps are persistence side effects;
// rendering is pure. Generation is not transactional across persistence and
// rendering: a *RenderError return means the record is already saved
// (Outcome.Saved is true) and only the document must be regenerated.
func (g *Generator) Generate(ctx context.Context, date core.Date, client, service string, amount core.Money, notes string, now time.Time) (Outcome, error) {
	rec := core.IncomeRecord{Date: date, Client: client, Service: service, Amount: amount, Notes: notes}
	if err := rec.Validate(); err != nil {
		return Outcome{}, err
	}

	cust, err := g.dir.RegisterIfNew(ctx, client)
	if err != nil {
		return Outcome{}, err
	}
	if err := g.ledger.AppendIncome(ctx, rec); err != nil {
		return Outcome{}, err
	}

	inv := core.Invoice{
		ID:      InvoiceID(now),
		Date:    date,
		Client:  client,
		Service: service,
		Amount:  amount,
		Notes:   notes,
	}
	out := Outcome{Invoice: inv, Customer: cust, Saved: true}

	html, err := g.RenderDocument(inv)
	if err != nil {
		return out, &RenderError{Err: err}
	}
	out.HTML = html
	return out, nil
}

// RenderDocument renders the invoice HTML with no side effects. Safe to call
// again after a render failure without re-appending the record.
func (g *Generator) RenderDocument(inv core.Invoice) ([]byte, error) {
	notes := inv.Notes
	if notes == "" {
		notes = "N/A"
	}
	data := struct {
		ID      string
		Date    string
		Client  string
		Service string
		Amount  string
		Notes   string
	}{
		ID:      inv.ID,
		Date:    inv.Date.String(),
		Client:  inv.Client,
		Service: inv.Service,
		Amount:  inv.Amount.Display(),
		Notes:   notes,
	}
	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
