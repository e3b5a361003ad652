package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"finpulse/internal/cache"
	"finpulse/internal/core"
	"finpulse/internal/mlservice"
	"finpulse/internal/services"
)

type Server struct {
	http.Server

	budgets   *services.BudgetService
	goals     *services.GoalService
	analytics *services.AnalyticsService
	predictor *mlservice.Client

	rateLimiter *rateLimiter

	// Analytics responses are cached; every ledger write purges them.
	categoriesCache *cache.LRUCache[[]core.CategoryAnalysis]
	seriesCache     *cache.LRUCache[[]core.TimeSeriesPoint]
	insightsCache   *cache.LRUCache[insightsResponse]
	cacheManager    *cache.Manager

	shutdownOnce sync.Once
}

// Options tunes the server's response caches and rate limiting. Zero values
// fall back to sensible defaults.
type Options struct {
	CacheSize          int
	CacheTTL           time.Duration
	RateLimitPerMinute int
}

// NewServer configures routes and caches, returning a ready-to-run server.
// predictor may be nil when no prediction service is configured.
func NewServer(addr string, budgets *services.BudgetService, goals *services.GoalService, analytics *services.AnalyticsService, predictor *mlservice.Client, opts Options) *Server {
	if opts.CacheSize < 1 {
		opts.CacheSize = 100
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 2 * time.Minute
	}

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		budgets:         budgets,
		goals:           goals,
		analytics:       analytics,
		predictor:       predictor,
		rateLimiter:     newRateLimiter(opts.RateLimitPerMinute),
		categoriesCache: cache.NewLRUCache[[]core.CategoryAnalysis](opts.CacheSize, opts.CacheTTL),
		seriesCache:     cache.NewLRUCache[[]core.TimeSeriesPoint](opts.CacheSize, opts.CacheTTL),
		insightsCache:   cache.NewLRUCache[insightsResponse](opts.CacheSize, opts.CacheTTL),
		cacheManager:    cache.NewManager(),
	}

	s.cacheManager.Register(s.categoriesCache)
	s.cacheManager.Register(s.seriesCache)
	s.cacheManager.Register(s.insightsCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/api/budgets/status", s.withMiddleware(s.handleBudgetStatus))
	mux.HandleFunc("/api/goals/progress", s.withMiddleware(s.handleGoalProgress))
	mux.HandleFunc("/api/analytics/categories", s.withMiddleware(s.handleCategoryAnalytics))
	mux.HandleFunc("/api/analytics/timeseries", s.withMiddleware(s.handleTimeSeries))
	mux.HandleFunc("/api/insights", s.withMiddleware(s.handleInsights))
	mux.HandleFunc("/api/predictions/categories", s.withMiddleware(s.handleCategoryForecast))
	mux.HandleFunc("/api/health-score", s.withMiddleware(s.handleHealthScore))

	mux.HandleFunc("/api/transactions", s.withMiddleware(s.handleCreateTransaction))
	mux.HandleFunc("/api/budgets", s.withMiddleware(s.handleCreateBudget))
	mux.HandleFunc("/api/goals", s.withMiddleware(s.handleCreateGoal))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// invalidateAnalytics drops every cached analytics response. Called after
// any ledger write.
func (s *Server) invalidateAnalytics() {
	s.categoriesCache.Purge()
	s.seriesCache.Purge()
	s.insightsCache.Purge()
}

// withMiddleware adds security headers, rate limiting, and request logging
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		// Rate limiting applies to writes only
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
