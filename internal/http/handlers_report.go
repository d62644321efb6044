package http

import (
	"net/http"
	"strconv"

	applog "salonbooks/internal/log"
	"salonbooks/internal/report"
)

type reportRow struct {
	Date   string
	Label  string
	Detail string
	Amount string
	Notes  string
}

type reportView struct {
	Summary  summaryView
	Income   []reportRow
	Expenses []reportRow
}

// handleReport serves the report fragment: both record tables plus totals.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	data := reportView{Summary: s.summaryView(r)}
	for _, rec := range s.svc.IncomeRecords() {
		data.Income = append(data.Income, reportRow{
			Date:   rec.Date.String(),
			Label:  rec.Client,
			Detail: rec.Service,
			Amount: "₹" + rec.Amount.Display(),
			Notes:  rec.Notes,
		})
	}
	for _, rec := range s.svc.ExpenseRecords() {
		data.Expenses = append(data.Expenses, reportRow{
			Date:   rec.Date.String(),
			Label:  rec.Category,
			Amount: "₹" + rec.Amount.Display(),
			Notes:  rec.Notes,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "report.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to render report",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpRender)
	}
}

func (s *Server) handleIncomeCSV(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	data, err := report.ExportIncomeCSV(s.svc.IncomeRecords())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to export income CSV",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpExport)
		http.Error(w, "Export failed", http.StatusInternalServerError)
		return
	}
	serveCSV(w, "income.csv", data)
}

func (s *Server) handleExpensesCSV(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	data, err := report.ExportExpenseCSV(s.svc.ExpenseRecords())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to export expense CSV",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpExport)
		http.Error(w, "Export failed", http.StatusInternalServerError)
		return
	}
	serveCSV(w, "expenses.csv", data)
}

func serveCSV(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
