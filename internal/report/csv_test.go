package report

import (
	"bytes"
	"strings"
	"testing"

	"salonbooks/internal/core"
)

func sampleIncome() []core.IncomeRecord {
	return []core.IncomeRecord{
		{
			Date:    core.NewDate(2025, 3, 1),
			Client:  "Riya",
			Service: "Haircut",
			Amount:  core.Money{Paise: 50000},
		},
		{
			Date:    core.NewDate(2025, 3, 2),
			Client:  "Anu, Jr.",
			Service: "Coloring",
			Amount:  core.Money{Paise: 100000},
			Notes:   "with \"highlights\"",
		},
	}
}

func TestExportIncomeCSV(t *testing.T) {
	data, err := ExportIncomeCSV(sampleIncome())
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "Date,Client,Service,Amount,Notes" {
		t.Fatalf("header: %q", lines[0])
	}
	if lines[1] != "2025-03-01,Riya,Haircut,500.00," {
		t.Fatalf("row 1: %q", lines[1])
	}
	// Commas and quotes in fields must be escaped, not split.
	if !strings.Contains(lines[2], `"Anu, Jr."`) {
		t.Fatalf("row 2 quoting: %q", lines[2])
	}
}

func TestExportIsDeterministic(t *testing.T) {
	records := sampleIncome()
	first, err := ExportIncomeCSV(records)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	second, err := ExportIncomeCSV(records)
	if err != nil {
		t.Fatalf("export again: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("same records must export identical bytes")
	}
}

func TestIncomeCSVRoundTrip(t *testing.T) {
	records := sampleIncome()
	data, err := ExportIncomeCSV(records)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	parsed, err := ParseIncomeCSV(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(parsed) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(parsed))
	}
	for i := range records {
		if parsed[i] != records[i] {
			t.Fatalf("record %d mismatch: %+v vs %+v", i, parsed[i], records[i])
		}
	}
}

func TestExportExpenseCSVEmpty(t *testing.T) {
	data, err := ExportExpenseCSV(nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if strings.TrimRight(string(data), "\n") != "Date,Category,Amount,Notes" {
		t.Fatalf("empty export must still carry the header: %q", data)
	}
}

func TestParseRejectsBadHeader(t *testing.T) {
	_, err := ParseIncomeCSV([]byte("Date,Customer,Service,Amount,Notes\n"))
	if err == nil {
		t.Fatalf("expected header error")
	}
}
