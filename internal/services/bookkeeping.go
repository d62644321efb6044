package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"salonbooks/internal/amqp"
	"salonbooks/internal/core"
	"salonbooks/internal/invoice"
)

// Bookkeeping serializes the operator's mutating actions over one session
// and publishes confirmed appends to the archive queue. The mutex serializes
// insertions within this process, which is what keeps size-derived customer
// codes consistent; concurrent operators in separate processes remain
// outside the deployment model.
type Bookkeeping struct {
	mu         sync.Mutex
	session    *Session
	amqpClient *amqp.Client
}

// NewBookkeeping creates the service. amqpClient may be nil; archiving is
// then skipped and appends still succeed.
func NewBookkeeping(session *Session, amqpClient *amqp.Client) *Bookkeeping {
	return &Bookkeeping{session: session, amqpClient: amqpClient}
}

func (b *Bookkeeping) Session() *Session { return b.session }

// AddIncome appends one income record. The store write is confirmed before
// success is reported; the archive publish afterwards is best-effort.
func (b *Bookkeeping) AddIncome(ctx context.Context, rec core.IncomeRecord, token string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.session.Ledger.AppendIncome(ctx, rec); err != nil {
		return err
	}
	b.publish(ctx, amqp.KindIncome, rec.Row(), token)
	return nil
}

// AddExpense appends one expense record.
func (b *Bookkeeping) AddExpense(ctx context.Context, rec core.ExpenseRecord, token string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.session.Ledger.AppendExpense(ctx, rec); err != nil {
		return err
	}
	b.publish(ctx, amqp.KindExpense, rec.Row(), token)
	return nil
}

// GenerateInvoice runs the invoice workflow. A *invoice.RenderError return
// means the income record and any new customer are persisted and only the
// document needs regenerating; the Outcome reports Saved accordingly.
func (b *Bookkeeping) GenerateInvoice(ctx context.Context, date core.Date, client, service string, amount core.Money, notes string, now time.Time, token string) (invoice.Outcome, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sizeBefore := b.session.Directory.Size()
	out, err := b.session.Generator.Generate(ctx, date, client, service, amount, notes, now)
	if !out.Saved {
		return out, err
	}

	if b.session.Directory.Size() > sizeBefore {
		b.publish(ctx, amqp.KindCustomer, out.Customer.Row(), "")
	}
	rec := core.IncomeRecord{Date: date, Client: client, Service: service, Amount: amount, Notes: notes}
	b.publish(ctx, amqp.KindIncome, rec.Row(), token)
	return out, err
}

// RenderInvoiceDocument re-renders an invoice document with no persistence
// side effects. Used when the document was never produced or has expired.
func (b *Bookkeeping) RenderInvoiceDocument(inv core.Invoice) ([]byte, error) {
	return b.session.Generator.RenderDocument(inv)
}

// IncomeRecords returns a copy of the income records in store order.
func (b *Bookkeeping) IncomeRecords() []core.IncomeRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]core.IncomeRecord(nil), b.session.Ledger.Income()...)
}

// ExpenseRecords returns a copy of the expense records in store order.
func (b *Bookkeeping) ExpenseRecords() []core.ExpenseRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]core.ExpenseRecord(nil), b.session.Ledger.Expenses()...)
}

// Reload refreshes the session from the record store.
func (b *Bookkeeping) Reload(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session.Reload(ctx)
}

// Summary returns the session totals.
func (b *Bookkeeping) Summary() core.Summary {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session.Ledger.Summary()
}

// Suggestions returns autocomplete candidates for a partial client name.
func (b *Bookkeeping) Suggestions(partial string) []core.Customer {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session.Directory.FindSuggestions(partial)
}

func (b *Bookkeeping) publish(ctx context.Context, kind string, fields []string, token string) {
	if b.amqpClient == nil {
		return
	}
	if err := b.amqpClient.PublishRecordAppended(ctx, kind, fields, token); err != nil {
		// The store write already succeeded; archiving catches up via backfill
		slog.ErrorContext(ctx, "Failed to publish archive message", "kind", kind, "error", err)
	}
}
