// Package http exposes the ledger as a JSON API: expense CRUD with
// filtering and pagination, category and card lifecycle, receipt upload and
// the report endpoints.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"despesas/internal/cache"
	applog "despesas/internal/log"
	"despesas/internal/middleware/ratelimit"
	"despesas/internal/middleware/security"
	"despesas/internal/middleware/trace"
	"despesas/internal/receipts"
	"despesas/internal/report"
	"despesas/internal/services"
)

// Options configures the server beyond its service dependencies.
type Options struct {
	Addr string

	// UploadsDir, when set, is served statically under /uploads/ for the
	// disk receipts backend.
	UploadsDir string

	// CacheTTL bounds how stale a cached report may be.
	CacheTTL time.Duration
}

type Server struct {
	http.Server

	expenses   *services.ExpenseService
	categories *services.CategoryService
	cards      *services.CardService
	reports    *services.ReportService
	files      receipts.Store

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	cacheManager    *cache.Manager
	monthlyCache    *cache.LRUCache[report.MonthlySummary]
	annualCache     *cache.LRUCache[report.AnnualSummary]
	evolutionCache  *cache.LRUCache[[]report.MonthSpend]
	comparisonCache *cache.LRUCache[report.MonthlyComparison]

	ready        func(context.Context) error
	shutdownOnce sync.Once
}

// NewServer wires routes, middleware and the report caches. ready is the
// readiness probe (usually the database ping); nil means always ready.
func NewServer(
	opts Options,
	expenses *services.ExpenseService,
	categories *services.CategoryService,
	cards *services.CardService,
	reports *services.ReportService,
	files receipts.Store,
	ready func(context.Context) error,
) *Server {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	detector := security.NewDetector()

	s := &Server{
		expenses:   expenses,
		categories: categories,
		cards:      cards,
		reports:    reports,
		files:      files,

		limiter:  ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector: detector,
		tracer:   trace.NewMiddleware(detector.ExtractClientIP),

		cacheManager:    cache.NewManager(),
		monthlyCache:    cache.NewLRUCache[report.MonthlySummary](100, ttl),
		annualCache:     cache.NewLRUCache[report.AnnualSummary](20, ttl),
		evolutionCache:  cache.NewLRUCache[[]report.MonthSpend](20, ttl),
		comparisonCache: cache.NewLRUCache[report.MonthlyComparison](100, ttl),

		ready: ready,
	}

	s.cacheManager.Register(s.monthlyCache)
	s.cacheManager.Register(s.annualCache)
	s.cacheManager.Register(s.evolutionCache)
	s.cacheManager.Register(s.comparisonCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	s.Server = http.Server{
		Addr:         opts.Addr,
		Handler:      s.routes(opts),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) routes(opts Options) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/despesas", s.handleListExpenses)
	mux.HandleFunc("POST /api/despesas", s.handleCreateExpense)
	mux.HandleFunc("GET /api/despesas/{id}", s.handleGetExpense)
	mux.HandleFunc("PUT /api/despesas/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/despesas/{id}", s.handleDeleteExpense)
	mux.HandleFunc("POST /api/despesas/{id}/comprovante", s.handleUploadReceipt)
	mux.HandleFunc("DELETE /api/despesas/{id}/comprovante", s.handleRemoveReceipt)

	mux.HandleFunc("GET /api/categorias", s.handleListCategories)
	mux.HandleFunc("POST /api/categorias", s.handleCreateCategory)
	mux.HandleFunc("GET /api/categorias/{id}", s.handleGetCategory)
	mux.HandleFunc("PUT /api/categorias/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /api/categorias/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /api/cartoes", s.handleListCards)
	mux.HandleFunc("POST /api/cartoes", s.handleCreateCard)
	mux.HandleFunc("GET /api/cartoes/{id}", s.handleGetCard)
	mux.HandleFunc("PUT /api/cartoes/{id}", s.handleUpdateCard)
	mux.HandleFunc("DELETE /api/cartoes/{id}", s.handleDeleteCard)

	mux.HandleFunc("GET /api/relatorios/mensal/{ano}/{mes}", s.handleMonthlySummary)
	mux.HandleFunc("GET /api/relatorios/anual/{ano}", s.handleAnnualSummary)
	mux.HandleFunc("GET /api/relatorios/comparativo/{ano}/{mes}", s.handleMonthlyComparison)
	mux.HandleFunc("GET /api/relatorios/evolucao/{ano}", s.handleAnnualEvolution)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	if opts.UploadsDir != "" {
		fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(opts.UploadsDir)))
		cached := security.StaticAssetMiddleware(3600)(fileServer)
		mux.Handle("GET /uploads/", cached)
	}

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limited := s.limiter.Middleware(s.detector.ExtractClientIP, nil)

	return headers.Middleware(s.tracer.Middleware(s.flagSuspicious(limited(mux))))
}

// flagSuspicious logs requests matching known probe patterns. They are not
// blocked; the counter feeds /metrics.
func (s *Server) flagSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			slog.WarnContext(r.Context(), "Suspicious request",
				applog.FieldMethod, r.Method, applog.FieldPath, r.URL.Path,
				applog.FieldClientIP, s.detector.ExtractClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops the HTTP server and the background cache and rate limiter
// goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleMetrics exposes operational counters in Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.tracer.GetMetrics()
	limiterMetrics := s.limiter.GetMetrics()
	detectionMetrics := s.detector.GetMetrics()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n", traceMetrics.TotalRequests)
	fmt.Fprintf(w, "# TYPE http_last_response_time_ms gauge\n")
	fmt.Fprintf(w, "http_last_response_time_ms %d\n", traceMetrics.LastResponseTime)
	fmt.Fprintf(w, "# TYPE ratelimit_rejected_total counter\n")
	fmt.Fprintf(w, "ratelimit_rejected_total %d\n", limiterMetrics.Rejected)
	fmt.Fprintf(w, "# TYPE ratelimit_clients gauge\n")
	fmt.Fprintf(w, "ratelimit_clients %d\n", limiterMetrics.ClientCount)
	fmt.Fprintf(w, "# TYPE suspicious_requests_total counter\n")
	fmt.Fprintf(w, "suspicious_requests_total %d\n", detectionMetrics.SuspiciousRequests)
	fmt.Fprintf(w, "# TYPE report_cache_entries gauge\n")
	fmt.Fprintf(w, "report_cache_entries %d\n",
		s.monthlyCache.Size()+s.annualCache.Size()+s.evolutionCache.Size()+s.comparisonCache.Size())
}

func periodKey(year, month int) string {
	return strconv.Itoa(year) + "-" + strconv.Itoa(month)
}

func yearKey(year int) string {
	return strconv.Itoa(year)
}

// invalidateReports drops every cached report a write to the given dates can
// affect: the month itself, the comparison that uses it as previous month,
// and the year-level series.
func (s *Server) invalidateReports(dates ...time.Time) {
	for _, d := range dates {
		if d.IsZero() {
			continue
		}
		d = d.UTC()
		year, month := d.Year(), int(d.Month())

		s.monthlyCache.Delete(periodKey(year, month))

		// The month's own comparison plus the next month's, which uses
		// this month as its previous period.
		s.comparisonCache.DeletePrefix(yearKey(year) + "-")
		next := d.AddDate(0, 1, 0)
		s.comparisonCache.Delete(periodKey(next.Year(), int(next.Month())))

		s.annualCache.Delete(yearKey(year))
		s.evolutionCache.Delete(yearKey(year))
	}
}
