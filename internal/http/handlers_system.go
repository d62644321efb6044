package http

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	applog "salonbooks/internal/log"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports whether the session behind the service is usable.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.svc == nil || s.svc.Session() == nil {
		http.Error(w, "session not loaded", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.traceMW.GetMetrics()
	rateMetrics := s.rateLimiter.GetMetrics()
	secMetrics := s.detector.GetMetrics()

	payload := map[string]interface{}{
		"uptime_seconds":      int64(time.Since(s.metrics.startedAt).Seconds()),
		"total_entries":       atomic.LoadInt64(&s.metrics.totalEntries),
		"total_invoices":      atomic.LoadInt64(&s.metrics.totalInvoices),
		"summary_cache_hits":  atomic.LoadInt64(&s.metrics.cacheHits),
		"summary_cache_miss":  atomic.LoadInt64(&s.metrics.cacheMisses),
		"doc_cache_size":      s.docCache.Size(),
		"token_cache_size":    s.tokenCache.Size(),
		"total_requests":      traceMetrics.TotalRequests,
		"avg_response_us":     traceMetrics.AverageResponseTime,
		"ratelimit_clients":   rateMetrics.ClientCount,
		"suspicious_requests": secMetrics.SuspiciousRequests,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to encode metrics", applog.FieldError, err)
	}
}
