// Package store defines the outbound ports for the tabular record store.
//
// The store is append-only: rows are read in full and appended one at a
// time, never updated or deleted. Adapters exist for Google Sheets and for
// an in-memory store used in tests and local development.
package store

import (
	"context"
	"errors"
	"fmt"
)

// Ports for outbound adapters.
type (
	// RowReader returns every row of a worksheet, header included as row 0.
	RowReader interface {
		ReadAllRows(ctx context.Context, sheet string) ([][]string, error)
	}

	// RowAppender appends a single row to a worksheet.
	RowAppender interface {
		AppendRow(ctx context.Context, sheet string, fields []string) error
	}

	// WorksheetEnsurer creates a worksheet with the given header if it does
	// not exist yet. Idempotent.
	WorksheetEnsurer interface {
		EnsureWorksheet(ctx context.Context, sheet string, header []string) error
	}

	// RecordStore is the full collaborator contract.
	RecordStore interface {
		RowReader
		RowAppender
		WorksheetEnsurer
	}
)

// ReadError wraps a failure to read a worksheet. Callers must not substitute
// empty data for a failed read.
type ReadError struct {
	Sheet string
	Err   error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read sheet %s: %v", e.Sheet, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError wraps a failed append. Appends are not idempotent, so a blind
// retry after an ambiguous failure can double-append; callers decide.
type WriteError struct {
	Sheet string
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("append to sheet %s: %v", e.Sheet, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// IsReadError reports whether err is or wraps a store read failure.
func IsReadError(err error) bool {
	var re *ReadError
	return errors.As(err, &re)
}

// IsWriteError reports whether err is or wraps a store write failure.
func IsWriteError(err error) bool {
	var we *WriteError
	return errors.As(err, &we)
}
