package memory

import (
	"context"
	"fmt"
	"sync"

	"salonbooks/internal/store"
)

// Store is an in-memory record store used in tests and local development.
// Worksheets keep insertion order; row 0 is the header.
type Store struct {
	mu     sync.Mutex
	sheets map[string][][]string

	// FailAppend, when set, makes every AppendRow return a WriteError.
	// Lets tests exercise the write-then-confirm contract.
	FailAppend bool
	// FailRead, when set, makes every ReadAllRows return a ReadError.
	FailRead bool
}

var _ store.RecordStore = (*Store)(nil)

func New() *Store {
	return &Store{sheets: make(map[string][][]string)}
}

// EnsureWorksheet creates the sheet with its header row if absent.
func (s *Store) EnsureWorksheet(_ context.Context, sheet string, header []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sheets[sheet]; ok {
		return nil
	}
	s.sheets[sheet] = [][]string{append([]string(nil), header...)}
	return nil
}

// ReadAllRows returns a copy of every row, header included.
func (s *Store) ReadAllRows(_ context.Context, sheet string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailRead {
		return nil, &store.ReadError{Sheet: sheet, Err: fmt.Errorf("memory store: read disabled")}
	}
	rows, ok := s.sheets[sheet]
	if !ok {
		return nil, &store.ReadError{Sheet: sheet, Err: fmt.Errorf("worksheet not found")}
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

// AppendRow appends one row to the sheet.
func (s *Store) AppendRow(_ context.Context, sheet string, fields []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAppend {
		return &store.WriteError{Sheet: sheet, Err: fmt.Errorf("memory store: append disabled")}
	}
	if _, ok := s.sheets[sheet]; !ok {
		return &store.WriteError{Sheet: sheet, Err: fmt.Errorf("worksheet not found")}
	}
	s.sheets[sheet] = append(s.sheets[sheet], append([]string(nil), fields...))
	return nil
}

// RowCount returns the number of rows in a sheet, header included.
func (s *Store) RowCount(sheet string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sheets[sheet])
}
