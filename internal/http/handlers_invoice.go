package http

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"salonbooks/internal/core"
	"salonbooks/internal/invoice"
	applog "salonbooks/internal/log"
)

func (s *Server) handleGenerateInvoice(w http.ResponseWriter, r *http.Request) {
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
		ConflictError("This invoice was already submitted").Write(w)
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

	out, err := s.svc.GenerateInvoice(r.Context(), date, client, service,
		core.Money{Paise: paise}, notes, time.Now(), token)

	var renderErr *invoice.RenderError
	switch {
	case err == nil:
		// fall through to the success fragment below
	case errors.As(err, &renderErr):
		// The income record and customer registration are saved; only the
		// document is missing. Keep the invoice data so the download link can
		// re-render it, and consume the token since the append landed.
		s.markTokenUsed(token)
		s.invoiceCache.Set(out.Invoice.ID, out.Invoice)
		s.invalidateSummary()
		s.logger.ErrorContext(r.Context(), "Invoice document render failed after save",
			applog.FieldError, err,
			applog.FieldInvoiceID, out.Invoice.ID,
			applog.FieldClient, client,
			applog.FieldOperation, applog.OpGenerate)
		NewHTMXResponse().
			Status(http.StatusOK).
			TriggerSummaryRefresh().
			TriggerWarningNotification("Record saved, but the invoice document could not be generated. Use the download link to retry.").
			BodyHTML(`<div class="warning">Income record saved; do not re-submit the entry. `+
				`<a href="/invoices/download?id=`+htmlEscape(out.Invoice.ID)+`">Retry the document download</a>.</div>`).
			Write(w)
		return
	default:
		s.logger.ErrorContext(r.Context(), "Failed to generate invoice",
			applog.FieldError, err,
			applog.FieldClient, client,
			applog.FieldOperation, applog.OpGenerate)
		if isValidationError(err) {
			UnprocessableEntityError("Invalid data: " + err.Error()).Write(w)
		} else {
			InternalServerError("Error saving invoice").Write(w)
		}
		return
	}

	s.markTokenUsed(token)
	s.docCache.Set(out.Invoice.ID, out.HTML)
	s.invoiceCache.Set(out.Invoice.ID, out.Invoice)
	atomic.AddInt64(&s.metrics.totalInvoices, 1)
	s.invalidateSummary()

	s.logger.InfoContext(r.Context(), "Invoice generated",
		applog.FieldInvoiceID, out.Invoice.ID,
		applog.FieldClient, out.Invoice.Client,
		applog.FieldCustomer, out.Customer.Code,
		applog.FieldAmount, out.Invoice.Amount.Paise,
		applog.FieldOperation, applog.OpGenerate)

	var sb strings.Builder
	sb.WriteString(`<div class="invoice-result">`)
	sb.WriteString(`<p>Invoice <strong>` + htmlEscape(out.Invoice.ID) + `</strong> for ` +
		htmlEscape(out.Customer.Name) + ` (` + htmlEscape(out.Customer.Code) + `)</p>`)
	sb.WriteString(`<a class="button" href="/invoices/download?id=` + htmlEscape(out.Invoice.ID) + `">Download</a>`)
	sb.WriteString(`</div>`)

	NewHTMXResponse().
		TriggerInvoiceCreated(out.Invoice.ID).
		TriggerFormReset().
		TriggerSummaryRefresh().
		TriggerSuccessNotification("Invoice " + out.Invoice.ID + " generated for " + out.Customer.Name).
		BodyHTML(sb.String()).
		Write(w)
}

// handleInvoiceDownload serves the rendered document for a recently generated
// invoice. The HTML is held in an in-memory cache; on a miss the document is
// re-rendered from the cached invoice data, which covers both eviction and a
// render failure at generation time. Invoices are views over income records,
// not stored documents, so once both caches expire the operator regenerates
// from the form.
func (s *Server) handleInvoiceDownload(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	id := sanitizeInput(r.URL.Query().Get("id"))
	html, ok := s.docCache.Get(id)
	if !ok {
		inv, known := s.invoiceCache.Get(id)
		if !known {
			http.Error(w, "Invoice document expired; generate it again", http.StatusNotFound)
			return
		}
		rendered, err := s.svc.RenderInvoiceDocument(inv)
		if err != nil {
			s.logger.ErrorContext(r.Context(), "Failed to re-render invoice document",
				applog.FieldError, err,
				applog.FieldInvoiceID, id,
				applog.FieldOperation, applog.OpRender)
			http.Error(w, "Rendering failed", http.StatusInternalServerError)
			return
		}
		s.docCache.Set(id, rendered)
		html = rendered
	}

	data, err := s.renderer.RenderToBytes(r.Context(), html)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to render invoice download",
			applog.FieldError, err,
			applog.FieldInvoiceID, id,
			applog.FieldOperation, applog.OpRender)
		http.Error(w, "Rendering failed", http.StatusInternalServerError)
		return
	}

	if bytes.HasPrefix(data, []byte("%PDF")) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="`+id+`.pdf"`)
	} else {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+id+`.html"`)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func isValidationError(err error) bool {
	for _, target := range []error{
		core.ErrInvalidDate,
		core.ErrInvalidAmount,
		core.ErrNegativeAmount,
		core.ErrEmptyClient,
		core.ErrEmptyCategory,
		core.ErrEmptyService,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
