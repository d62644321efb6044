package http

import (
	"net/http"
	"strings"
	"sync/atomic"

	"salonbooks/internal/core"
	applog "salonbooks/internal/log"
)

func (s *Server) handleAddIncome(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		s.logger.ErrorContext(r.Context(), "Parse form error", applog.FieldError, err, applog.FieldPath, r.URL.Path)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	token := strings.TrimSpace(r.Form.Get("token"))
	if s.seenToken(token) {
		ConflictError("This entry was already submitted").Write(w)
		return
	}

	date, err := parseEntryDate(r)
	if err != nil {
		UnprocessableEntityError("Invalid date").Write(w)
		return
	}

	client := sanitizeInput(r.Form.Get("client"))
	service := sanitizeInput(r.Form.Get("service"))
	notes := sanitizeInput(r.Form.Get("notes"))
	amountStr := strings.TrimSpace(r.Form.Get("amount"))

	paise, err := core.ParseDecimalToPaise(amountStr)
	if err != nil {
		UnprocessableEntityError("Invalid amount").Write(w)
		return
	}

	rec := core.IncomeRecord{
		Date:    date,
		Client:  client,
		Service: service,
		Amount:  core.Money{Paise: paise},
		Notes:   notes,
	}
	if err := rec.Validate(); err != nil {
		UnprocessableEntityError("Invalid data: " + err.Error()).Write(w)
		return
	}

	if err := s.svc.AddIncome(r.Context(), rec, token); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to save income entry",
			applog.FieldError, err,
			applog.FieldClient, rec.Client,
			applog.FieldService, rec.Service,
			applog.FieldAmount, rec.Amount.Paise,
			applog.FieldOperation, applog.OpAppend)
		InternalServerError("Error saving entry").Write(w)
		return
	}

	s.markTokenUsed(token)
	atomic.AddInt64(&s.metrics.totalEntries, 1)
	s.invalidateSummary()

	s.logger.InfoContext(r.Context(), "Income entry created",
		applog.FieldClient, rec.Client,
		applog.FieldService, rec.Service,
		applog.FieldAmount, rec.Amount.Paise,
		applog.FieldOperation, applog.OpAppend)

	NewHTMXResponse().
		TriggerEntryCreated("income").
		TriggerFormReset().
		TriggerSummaryRefresh().
		TriggerSuccessNotification("Income recorded: " + rec.Client + ", " + formatRupees(rec.Amount.Paise)).
		Write(w)
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		s.logger.ErrorContext(r.Context(), "Parse form error", applog.FieldError, err, applog.FieldPath, r.URL.Path)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	token := strings.TrimSpace(r.Form.Get("token"))
	if s.seenToken(token) {
		ConflictError("This entry was already submitted").Write(w)
		return
	}

	date, err := parseEntryDate(r)
	if err != nil {
		UnprocessableEntityError("Invalid date").Write(w)
		return
	}

	category := sanitizeInput(r.Form.Get("category"))
	notes := sanitizeInput(r.Form.Get("notes"))
	amountStr := strings.TrimSpace(r.Form.Get("amount"))

	paise, err := core.ParseDecimalToPaise(amountStr)
	if err != nil {
		UnprocessableEntityError("Invalid amount").Write(w)
		return
	}

	rec := core.ExpenseRecord{
		Date:     date,
		Category: category,
		Amount:   core.Money{Paise: paise},
		Notes:    notes,
	}
	if err := rec.Validate(); err != nil {
		UnprocessableEntityError("Invalid data: " + err.Error()).Write(w)
		return
	}

	if err := s.svc.AddExpense(r.Context(), rec, token); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to save expense entry",
			applog.FieldError, err,
			applog.FieldCategory, rec.Category,
			applog.FieldAmount, rec.Amount.Paise,
			applog.FieldOperation, applog.OpAppend)
		InternalServerError("Error saving entry").Write(w)
		return
	}

	s.markTokenUsed(token)
	atomic.AddInt64(&s.metrics.totalEntries, 1)
	s.invalidateSummary()

	s.logger.InfoContext(r.Context(), "Expense entry created",
		applog.FieldCategory, rec.Category,
		applog.FieldAmount, rec.Amount.Paise,
		applog.FieldOperation, applog.OpAppend)

	NewHTMXResponse().
		TriggerEntryCreated("expense").
		TriggerFormReset().
		TriggerSummaryRefresh().
		TriggerSuccessNotification("Expense recorded: " + rec.Category + ", " + formatRupees(rec.Amount.Paise)).
		Write(w)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	// htmx sends the triggering input's value under its field name.
	partial := sanitizeInput(r.URL.Query().Get("client"))
	if partial == "" {
		partial = sanitizeInput(r.URL.Query().Get("q"))
	}
	matches := s.svc.Suggestions(partial)

	var sb strings.Builder
	sb.WriteString(`<ul class="suggestions">`)
	for _, c := range matches {
		sb.WriteString(`<li data-code="`)
		sb.WriteString(htmlEscape(c.Code))
		sb.WriteString(`">`)
		sb.WriteString(htmlEscape(c.Name))
		sb.WriteString(`</li>`)
	}
	sb.WriteString(`</ul>`)

	NewHTMXResponse().BodyHTML(sb.String()).Write(w)
}
