package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	applog "salonbooks/internal/log"
)

type summaryView struct {
	TotalIncome  string
	TotalExpense string
	NetProfit    string
	Loss         bool
}

type indexView struct {
	Summary      summaryView
	Today        string
	IncomeToken  string
	ExpenseToken string
	InvoiceToken string
}

func (s *Server) summaryView(r *http.Request) summaryView {
	sum := s.getSummary(r.Context())
	return summaryView{
		TotalIncome:  "₹" + sum.TotalIncome.Display(),
		TotalExpense: "₹" + sum.TotalExpense.Display(),
		NetProfit:    "₹" + sum.NetProfit.Display(),
		Loss:         sum.NetProfit.Paise < 0,
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !requireGet(w, r) {
		return
	}

	// Fresh idempotency tokens per page load; each form carries its own.
	data := indexView{
		Summary:      s.summaryView(r),
		Today:        time.Now().Format("2006-01-02"),
		IncomeToken:  uuid.NewString(),
		ExpenseToken: uuid.NewString(),
		InvoiceToken: uuid.NewString(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to render index",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpRender)
	}
}

// handleSummary serves the dashboard totals fragment. The page re-fetches it
// on the summary:refresh trigger.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "summary.html", s.summaryView(r)); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to render summary",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpRender)
	}
}
