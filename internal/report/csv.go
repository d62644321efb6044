// Package report serializes ledger contents to CSV for download.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"salonbooks/internal/core"
)

// ExportIncomeCSV writes a header row followed by one row per record, fields
// in schema order, amounts as plain decimals. Output is deterministic for a
// given record order.
func ExportIncomeCSV(records []core.IncomeRecord) ([]byte, error) {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, r.Row())
	}
	return export(core.IncomeSchema, rows)
}

// ExportExpenseCSV is the expense counterpart of ExportIncomeCSV.
func ExportExpenseCSV(records []core.ExpenseRecord) ([]byte, error) {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, r.Row())
	}
	return export(core.ExpenseSchema, rows)
}

func export(schema core.Schema, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(schema.Columns); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseIncomeCSV parses bytes produced by ExportIncomeCSV back into records.
// Used by tests and by the archive worker's backfill import.
func ParseIncomeCSV(data []byte) ([]core.IncomeRecord, error) {
	idx, rows, err := parse(core.IncomeSchema, data)
	if err != nil {
		return nil, err
	}
	out := make([]core.IncomeRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.IncomeFromRow(idx, row))
	}
	return out, nil
}

// ParseExpenseCSV is the expense counterpart of ParseIncomeCSV.
func ParseExpenseCSV(data []byte) ([]core.ExpenseRecord, error) {
	idx, rows, err := parse(core.ExpenseSchema, data)
	if err != nil {
		return nil, err
	}
	out := make([]core.ExpenseRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.ExpenseFromRow(idx, row))
	}
	return out, nil
}

func parse(schema core.Schema, data []byte) (core.FieldIndex, [][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, &core.SchemaError{Sheet: schema.Sheet, Expected: schema.Columns, Got: nil}
	}
	idx, err := schema.MapHeader(rows[0])
	if err != nil {
		return nil, nil, err
	}
	return idx, rows[1:], nil
}
