// Package http exposes the JSON API: expense submission and review for
// employees and approvers, plus the anomaly dashboard endpoints.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"claimdesk/internal/core"
)

// ExpenseService is the business surface the handlers call into.
type ExpenseService interface {
	SubmitExpense(ctx context.Context, e core.ExpenseRecord) (string, error)
	ListExpenses(ctx context.Context, orgID string, status core.Status) ([]core.ExpenseRecord, error)
	GetExpense(ctx context.Context, orgID, id string) (core.ExpenseRecord, error)
	ApproveExpense(ctx context.Context, orgID, id string) error
	RejectExpense(ctx context.Context, orgID, id string) error
}

type Server struct {
	http.Server
	expenses ExpenseService

	// Anomaly reports are recomputed per org on a TTL and invalidated by
	// any write in that org.
	reportCache *gocache.Cache

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// rateLimiter keeps one token bucket per client IP.
type rateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	lastSeen map[string]time.Time
}

func newRateLimiter(perMinute int) *rateLimiter {
	return &rateLimiter{
		clients:  make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    perMinute,
	}
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.clients[clientIP]
	if !ok {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
		rl.clients[clientIP] = limiter
	}
	rl.lastSeen[clientIP] = time.Now()

	// Drop buckets idle for more than ten minutes so the map stays small.
	if len(rl.clients) > 1000 {
		cutoff := time.Now().Add(-10 * time.Minute)
		for ip, seen := range rl.lastSeen {
			if seen.Before(cutoff) {
				delete(rl.clients, ip)
				delete(rl.lastSeen, ip)
			}
		}
	}

	return limiter.Allow()
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, expenses ExpenseService, cacheTTL time.Duration, requestsPerMinute int) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		expenses:    expenses,
		reportCache: gocache.New(cacheTTL, 2*cacheTTL),
		rateLimiter: newRateLimiter(requestsPerMinute),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/expenses", s.withMiddleware(s.handleCreateExpense))
	mux.HandleFunc("GET /api/expenses", s.withMiddleware(s.handleListExpenses))
	mux.HandleFunc("GET /api/expenses/{id}", s.withMiddleware(s.handleGetExpense))
	mux.HandleFunc("POST /api/expenses/{id}/approve", s.withMiddleware(s.handleApproveExpense))
	mux.HandleFunc("POST /api/expenses/{id}/reject", s.withMiddleware(s.handleRejectExpense))

	mux.HandleFunc("GET /api/anomalies", s.withMiddleware(s.handleAnomalyReport))
	mux.HandleFunc("GET /api/anomalies/export", s.withMiddleware(s.handleAnomalyExport))

	return s
}

// Shutdown stops the HTTP server; safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// withMiddleware adds request logging, security headers, rate limiting and
// the tenant check shared by every API handler.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}
		if i := strings.IndexByte(clientIP, ','); i >= 0 {
			clientIP = strings.TrimSpace(clientIP[:i])
		}

		requestID := newRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if orgID(r) == "" {
			writeError(w, r, http.StatusBadRequest, "missing "+orgHeader+" header")
			return
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

type requestIDKey struct{}

// responseWriter captures the status code for the completion log line.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
