package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"salonbooks/internal/render"
	"salonbooks/internal/services"
	"salonbooks/internal/store/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, _ := newTestServerWithStore(t)
	return s
}

func newTestServerWithStore(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	st := memory.New()
	session, err := services.NewSession(context.Background(), st)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	svc := services.NewBookkeeping(session, nil)
	s := NewServer(":0", svc, render.HTMLPassthrough{}, nil)
	t.Cleanup(func() { s.Shutdown(context.Background()) })
	return s, st
}

func doGet(s *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func doPost(s *Server, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func TestIndexPage(t *testing.T) {
	s := newTestServer(t)

	rec := doGet(s, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("index status: %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"SalonBooks", "/entries/income", "/entries/expense", "/invoices", `name="token"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("index missing %q", want)
		}
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("security headers not applied")
	}

	if rec := doGet(s, "/nope"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown path status: %d", rec.Code)
	}
}

func TestAddIncomeUpdatesSummary(t *testing.T) {
	s := newTestServer(t)

	rec := doPost(s, "/entries/income", url.Values{
		"date":    {"2025-03-01"},
		"client":  {"Riya"},
		"service": {"Haircut"},
		"amount":  {"1500"},
		"token":   {"tok-income-1"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("add income status: %d body: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Header().Get("HX-Trigger"), "entry:created") {
		t.Fatalf("missing entry:created trigger: %s", rec.Header().Get("HX-Trigger"))
	}

	rec = doPost(s, "/entries/expense", url.Values{
		"date":     {"2025-03-02"},
		"category": {"Supplies"},
		"amount":   {"300"},
		"token":    {"tok-expense-1"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("add expense status: %d", rec.Code)
	}

	rec = doGet(s, "/ui/summary")
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status: %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"₹1,500.00", "₹300.00", "₹1,200.00"} {
		if !strings.Contains(body, want) {
			t.Fatalf("summary missing %q:\n%s", want, body)
		}
	}
}

func TestTokenReplayRejected(t *testing.T) {
	s := newTestServer(t)

	form := url.Values{
		"date":    {"2025-03-01"},
		"client":  {"Riya"},
		"service": {"Haircut"},
		"amount":  {"500"},
		"token":   {"tok-1"},
	}
	if rec := doPost(s, "/entries/income", form); rec.Code != http.StatusOK {
		t.Fatalf("first submit status: %d", rec.Code)
	}
	rec := doPost(s, "/entries/income", form)
	if rec.Code != http.StatusConflict {
		t.Fatalf("replay status: expected 409, got %d", rec.Code)
	}
	if len(s.svc.IncomeRecords()) != 1 {
		t.Fatalf("replay must not double-append")
	}
}

func TestRetryAfterFailedWriteSucceeds(t *testing.T) {
	s, st := newTestServerWithStore(t)

	form := url.Values{
		"date":    {"2025-03-01"},
		"client":  {"Riya"},
		"service": {"Haircut"},
		"amount":  {"500"},
		"token":   {"tok-retry-1"},
	}

	st.FailAppend = true
	if rec := doPost(s, "/entries/income", form); rec.Code != http.StatusInternalServerError {
		t.Fatalf("failed write status: %d", rec.Code)
	}
	if len(s.svc.IncomeRecords()) != 0 {
		t.Fatalf("failed write must not persist")
	}

	// The same form, token included, must go through once the store recovers.
	st.FailAppend = false
	rec := doPost(s, "/entries/income", form)
	if rec.Code != http.StatusOK {
		t.Fatalf("retry status: expected 200, got %d body: %s", rec.Code, rec.Body.String())
	}
	if len(s.svc.IncomeRecords()) != 1 {
		t.Fatalf("retry must persist exactly once, got %d", len(s.svc.IncomeRecords()))
	}

	// Only now is the token consumed.
	if rec := doPost(s, "/entries/income", form); rec.Code != http.StatusConflict {
		t.Fatalf("replay after success: expected 409, got %d", rec.Code)
	}
}

func TestRetryAfterValidationFailureSucceeds(t *testing.T) {
	s := newTestServer(t)

	form := url.Values{
		"date":    {"2025-03-01"},
		"client":  {"Riya"},
		"service": {"Haircut"},
		"amount":  {"abc"},
		"token":   {"tok-retry-2"},
	}
	if rec := doPost(s, "/entries/income", form); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid amount status: %d", rec.Code)
	}

	form.Set("amount", "500")
	if rec := doPost(s, "/entries/income", form); rec.Code != http.StatusOK {
		t.Fatalf("corrected resubmit status: %d body: %s", rec.Code, rec.Body.String())
	}
	if len(s.svc.IncomeRecords()) != 1 {
		t.Fatalf("corrected resubmit must persist")
	}
}

func TestAddIncomeValidation(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name string
		form url.Values
	}{
		{"bad amount", url.Values{"date": {"2025-03-01"}, "client": {"Riya"}, "service": {"Cut"}, "amount": {"abc"}}},
		{"negative amount", url.Values{"date": {"2025-03-01"}, "client": {"Riya"}, "service": {"Cut"}, "amount": {"-5"}}},
		{"bad date", url.Values{"date": {"01/03/2025"}, "client": {"Riya"}, "service": {"Cut"}, "amount": {"5"}}},
		{"blank client", url.Values{"date": {"2025-03-01"}, "client": {"  "}, "service": {"Cut"}, "amount": {"5"}}},
	}
	for _, tc := range cases {
		rec := doPost(s, "/entries/income", tc.form)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("%s: expected 422, got %d", tc.name, rec.Code)
		}
	}
	if len(s.svc.IncomeRecords()) != 0 {
		t.Fatalf("rejected submissions must not append")
	}
}

func TestSuggestions(t *testing.T) {
	s := newTestServer(t)

	rec := doPost(s, "/invoices", url.Values{
		"date":    {"2025-03-01"},
		"client":  {"Riya Sharma"},
		"service": {"Haircut"},
		"amount":  {"500"},
		"token":   {"tok-inv-0"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("invoice status: %d body: %s", rec.Code, rec.Body.String())
	}

	rec = doGet(s, "/customers/suggest?client=riya")
	if rec.Code != http.StatusOK {
		t.Fatalf("suggest status: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Riya Sharma") {
		t.Fatalf("suggestion missing: %s", rec.Body.String())
	}

	rec = doGet(s, "/customers/suggest?client=zzz")
	if strings.Contains(rec.Body.String(), "<li") {
		t.Fatalf("no matches expected: %s", rec.Body.String())
	}
}

func TestCSVDownloads(t *testing.T) {
	s := newTestServer(t)

	if rec := doPost(s, "/entries/income", url.Values{
		"date": {"2025-03-01"}, "client": {"Riya"}, "service": {"Haircut"}, "amount": {"500"},
	}); rec.Code != http.StatusOK {
		t.Fatalf("seed income: %d", rec.Code)
	}

	rec := doGet(s, "/report/income.csv")
	if rec.Code != http.StatusOK {
		t.Fatalf("income.csv status: %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("income.csv content type: %s", ct)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "Date,Client,Service,Amount,Notes") {
		t.Fatalf("income.csv header: %s", body)
	}
	if !strings.Contains(body, "2025-03-01,Riya,Haircut,500.00,") {
		t.Fatalf("income.csv row missing: %s", body)
	}

	rec = doGet(s, "/report/expenses.csv")
	if !strings.HasPrefix(rec.Body.String(), "Date,Category,Amount,Notes") {
		t.Fatalf("expenses.csv header: %s", rec.Body.String())
	}
}

func TestInvoiceFlow(t *testing.T) {
	s := newTestServer(t)

	rec := doPost(s, "/invoices", url.Values{
		"date":    {"2025-03-14"},
		"client":  {"Riya"},
		"service": {"Haircut"},
		"amount":  {"1500"},
		"token":   {"tok-inv-1"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("invoice status: %d body: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "INV-") || !strings.Contains(body, "CUST-0001") {
		t.Fatalf("invoice fragment: %s", body)
	}

	// Pull the download link out of the fragment.
	start := strings.Index(body, "/invoices/download?id=")
	if start < 0 {
		t.Fatalf("no download link: %s", body)
	}
	link := body[start:]
	link = link[:strings.IndexByte(link, '"')]

	rec = doGet(s, link)
	if rec.Code != http.StatusOK {
		t.Fatalf("download status: %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("passthrough renderer must serve html, got %s", ct)
	}
	if !strings.Contains(rec.Body.String(), "1,500.00") {
		t.Fatalf("document amount missing: %s", rec.Body.String())
	}

	if rec := doGet(s, "/invoices/download?id=INV-unknown"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown invoice download: %d", rec.Code)
	}

	// The confirmed submission consumed the token; a replay is rejected.
	rec = doPost(s, "/invoices", url.Values{
		"date":    {"2025-03-14"},
		"client":  {"Riya"},
		"service": {"Haircut"},
		"amount":  {"1500"},
		"token":   {"tok-inv-1"},
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("invoice replay: expected 409, got %d", rec.Code)
	}
	if len(s.svc.IncomeRecords()) != 1 {
		t.Fatalf("invoice replay must not double-append")
	}
}

func TestInvoiceDownloadRerendersEvictedDocument(t *testing.T) {
	s := newTestServer(t)

	rec := doPost(s, "/invoices", url.Values{
		"date":    {"2025-03-14"},
		"client":  {"Riya"},
		"service": {"Haircut"},
		"amount":  {"1500"},
		"token":   {"tok-inv-2"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("invoice status: %d", rec.Code)
	}
	body := rec.Body.String()
	start := strings.Index(body, "/invoices/download?id=")
	if start < 0 {
		t.Fatalf("no download link: %s", body)
	}
	link := body[start:]
	link = link[:strings.IndexByte(link, '"')]
	id := strings.TrimPrefix(link, "/invoices/download?id=")

	// Drop the rendered HTML; the download must rebuild it from the invoice.
	s.docCache.Delete(id)

	rec = doGet(s, link)
	if rec.Code != http.StatusOK {
		t.Fatalf("re-rendered download status: %d body: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "1,500.00") {
		t.Fatalf("re-rendered document amount missing: %s", rec.Body.String())
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	if rec := doGet(s, "/healthz"); rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rec.Code)
	}
	if rec := doGet(s, "/readyz"); rec.Code != http.StatusOK {
		t.Fatalf("readyz: %d", rec.Code)
	}

	rec := doGet(s, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: %d", rec.Code)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("metrics payload: %v", err)
	}
	if _, ok := payload["total_requests"]; !ok {
		t.Fatalf("metrics missing total_requests: %v", payload)
	}
}

func TestMethodEnforcement(t *testing.T) {
	s := newTestServer(t)

	if rec := doGet(s, "/entries/income"); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET on POST route: %d", rec.Code)
	}
	if rec := doPost(s, "/ui/summary", url.Values{}); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST on GET route: %d", rec.Code)
	}
}
