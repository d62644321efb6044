package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// Date is a calendar date with day resolution. The time portion is
	// always midnight UTC.
	Date struct {
		time.Time
	}

	// Money is an amount in paise (hundredths of a rupee).
	Money struct {
		Paise int64
	}

	// IncomeRecord is one row of the income ledger. Immutable once appended.
	IncomeRecord struct {
		Date    Date
		Client  string
		Service string
		Amount  Money
		Notes   string
	}

	// ExpenseRecord is one row of the expense ledger. Immutable once appended.
	ExpenseRecord struct {
		Date     Date
		Category string
		Amount   Money
		Notes    string
	}

	// Customer is an entry in the customer directory. Code is assigned at
	// registration time and never changes.
	Customer struct {
		Code string
		Name string
	}

	// Invoice is a document view over a newly created income record. It is
	// not persisted on its own; only the underlying IncomeRecord is.
	Invoice struct {
		ID      string
		Date    Date
		Client  string
		Service string
		Amount  Money
		Notes   string
	}
)

var (
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("amount cannot be negative")
	ErrEmptyClient    = errors.New("empty client name")
	ErrEmptyCategory  = errors.New("empty expense category")
	ErrEmptyService   = errors.New("empty service")
)

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time.Time to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses an ISO date (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String formats the date as ISO 2006-01-02. Zero dates format as "".
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Paise < 0 {
		return ErrNegativeAmount
	}
	return nil
}

func (r IncomeRecord) Validate() error {
	if err := r.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.Client) == "" {
		return ErrEmptyClient
	}
	if strings.TrimSpace(r.Service) == "" {
		return ErrEmptyService
	}
	return r.Amount.Validate()
}

func (r ExpenseRecord) Validate() error {
	if err := r.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	return r.Amount.Validate()
}
