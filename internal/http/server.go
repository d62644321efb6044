// Package http serves the four operator views (dashboard, add entry, report,
// generate invoice) and the CSV/PDF downloads on top of one bookkeeping
// session.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"salonbooks/internal/cache"
	"salonbooks/internal/core"
	applog "salonbooks/internal/log"
	"salonbooks/internal/middleware/ratelimit"
	"salonbooks/internal/middleware/security"
	"salonbooks/internal/middleware/trace"
	"salonbooks/internal/render"
	"salonbooks/internal/services"
	appweb "salonbooks/web"
)

type appMetrics struct {
	startedAt     time.Time
	totalEntries  int64
	totalInvoices int64
	cacheHits     int64
	cacheMisses   int64
}

type Server struct {
	http.Server
	templates *template.Template
	svc       *services.Bookkeeping
	renderer  render.Renderer
	logger    *applog.Logger

	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	traceMW     *trace.Middleware

	// summaryCache holds the dashboard totals; invalidated on every append.
	summaryCache *cache.LRUCache[core.Summary]
	// docCache holds rendered invoice HTML keyed by invoice id so the PDF
	// download and the re-render path do not re-append the record.
	docCache *cache.LRUCache[[]byte]
	// invoiceCache holds the invoice data behind each document so a download
	// can re-render after the HTML was never produced or already evicted.
	invoiceCache *cache.LRUCache[core.Invoice]
	// tokenCache remembers idempotency tokens whose append was confirmed; a
	// replayed form submission is rejected instead of double-appending.
	tokenCache *cache.LRUCache[struct{}]

	cacheManager *cache.Manager
	metrics      appMetrics
	shutdownOnce sync.Once
}

const summaryKey = "summary"

// NewServer configures routes, middleware and templates, returning a
// ready-to-run http.Server.
func NewServer(addr string, svc *services.Bookkeeping, renderer render.Renderer, logger *applog.Logger) *Server {
	mux := http.NewServeMux()

	if logger == nil {
		logger = applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)
	}

	s := &Server{
		svc:          svc,
		renderer:     renderer,
		logger:       logger,
		rateLimiter:  ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:     security.NewDetector(),
		summaryCache: cache.NewLRUCache[core.Summary](4, 5*time.Minute),
		docCache:     cache.NewLRUCache[[]byte](50, 30*time.Minute),
		invoiceCache: cache.NewLRUCache[core.Invoice](50, 30*time.Minute),
		tokenCache:   cache.NewLRUCache[struct{}](500, 15*time.Minute),
		cacheManager: cache.NewManager(),
		metrics:      appMetrics{startedAt: time.Now()},
	}
	s.traceMW = trace.NewMiddleware(s.detector.ExtractClientIP)

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.docCache)
	s.cacheManager.Register(s.invoiceCache)
	s.cacheManager.Register(s.tokenCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	mux.HandleFunc("/entries/income", s.handleAddIncome)
	mux.HandleFunc("/entries/expense", s.handleAddExpense)
	mux.HandleFunc("/customers/suggest", s.handleSuggestions)

	mux.HandleFunc("/ui/summary", s.handleSummary)
	mux.HandleFunc("/ui/report", s.handleReport)
	mux.HandleFunc("/report/income.csv", s.handleIncomeCSV)
	mux.HandleFunc("/report/expenses.csv", s.handleExpensesCSV)

	mux.HandleFunc("/invoices", s.handleGenerateInvoice)
	mux.HandleFunc("/invoices/download", s.handleInvoiceDownload)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limited := s.rateLimiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited)(mux)
	s.Server = http.Server{
		Addr:         addr,
		Handler:      s.traceMW.Middleware(headers.Middleware(s.detectionMiddleware(limited))),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// detectionMiddleware logs suspicious requests. Detection is advisory; the
// request still proceeds and the rate limiter remains the enforcement point.
func (s *Server) detectionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			s.logger.WarnContext(r.Context(), "Suspicious request detected",
				applog.FieldClientIP, s.detector.ExtractClientIP(r),
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path,
				applog.FieldUserAgent, r.Header.Get("User-Agent"))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	w.Header().Set("Retry-After", "60")
	http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
}

// Shutdown stops the cleanup goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) getSummary(ctx context.Context) core.Summary {
	if sum, ok := s.summaryCache.Get(summaryKey); ok {
		atomic.AddInt64(&s.metrics.cacheHits, 1)
		return sum
	}
	atomic.AddInt64(&s.metrics.cacheMisses, 1)
	sum := s.svc.Summary()
	s.summaryCache.Set(summaryKey, sum)
	s.logger.DebugContext(ctx, "Summary cached",
		"total_income_paise", sum.TotalIncome.Paise,
		"total_expense_paise", sum.TotalExpense.Paise)
	return sum
}

func (s *Server) invalidateSummary() {
	s.summaryCache.Delete(summaryKey)
}

// seenToken reports whether the token already produced a confirmed append.
// Blank tokens are never deduplicated. Checking does not consume the token:
// a submission that fails validation or the store write may be retried with
// the same form, so only markTokenUsed on the success path records it.
func (s *Server) seenToken(token string) bool {
	if token == "" {
		return false
	}
	_, ok := s.tokenCache.Get(token)
	return ok
}

// markTokenUsed records the token after its append was confirmed.
func (s *Server) markTokenUsed(token string) {
	if token == "" {
		return
	}
	s.tokenCache.Set(token, struct{}{})
}
