// Package http exposes the JSON API: auth, transactions, analytics and
// budgets.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/cors"

	"fintrack/internal/auth"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

type Server struct {
	http.Server

	authService        *services.AuthService
	transactionService *services.TransactionService
	analyticsService   *services.AnalyticsService
	budgetService      *services.BudgetService
	tokens             *auth.TokenManager

	rateLimiter *rateLimiter
	logger      *log.Logger

	shutdownOnce sync.Once
}

// Simple in-memory rate limiter
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

// startCleanup runs periodic cleanup to remove stale client entries
func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// stop gracefully shuts down the rate limiter cleanup goroutine
func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset counter if more than 1 minute has passed
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Allow up to 60 requests per minute
	client.requests++
	client.lastRequest = now

	return client.requests <= 60
}

// NewServer configures routes and middleware, returning a
// ready-to-run server.
func NewServer(addr, clientURL string,
	authService *services.AuthService,
	transactionService *services.TransactionService,
	analyticsService *services.AnalyticsService,
	budgetService *services.BudgetService,
	tokens *auth.TokenManager,
	logger *log.Logger,
) *Server {
	mux := http.NewServeMux()

	s := &Server{
		authService:        authService,
		transactionService: transactionService,
		analyticsService:   analyticsService,
		budgetService:      budgetService,
		tokens:             tokens,
		rateLimiter:        newRateLimiter(),
		logger:             logger.WithComponent(log.ComponentHTTP),
	}

	mux.HandleFunc("GET /{$}", s.wrap(s.handleIndex))
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/auth/register", s.wrap(s.handleRegister))
	mux.HandleFunc("POST /api/auth/login", s.wrap(s.handleLogin))
	mux.HandleFunc("POST /api/auth/forgot-password", s.wrap(s.handleForgotPassword))
	mux.HandleFunc("POST /api/auth/reset-password", s.wrap(s.handleResetPassword))

	mux.HandleFunc("GET /api/transactions", s.wrap(s.requireAuth(s.handleListTransactions)))
	mux.HandleFunc("POST /api/transactions", s.wrap(s.requireAuth(s.handleCreateTransaction)))
	mux.HandleFunc("PUT /api/transactions/{id}", s.wrap(s.requireAuth(s.handleUpdateTransaction)))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.wrap(s.requireAuth(s.handleDeleteTransaction)))

	mux.HandleFunc("GET /api/analytics/category-totals", s.wrap(s.requireAuth(s.handleCategoryTotals)))
	mux.HandleFunc("GET /api/analytics/monthly-summary", s.wrap(s.requireAuth(s.handleMonthlySummary)))

	mux.HandleFunc("GET /api/budgets", s.wrap(s.requireAuth(s.handleListBudgets)))
	mux.HandleFunc("POST /api/budgets", s.wrap(s.requireAuth(s.handleUpsertBudget)))
	mux.HandleFunc("GET /api/budgets/report", s.wrap(s.requireAuth(s.handleBudgetReport)))
	mux.HandleFunc("PUT /api/budgets/{id}", s.wrap(s.requireAuth(s.handleUpdateBudget)))
	mux.HandleFunc("DELETE /api/budgets/{id}", s.wrap(s.requireAuth(s.handleDeleteBudget)))

	// The dashboard runs on its own origin and sends the Authorization
	// header, so CORS must allow it explicitly.
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{clientURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(mux)

	s.Server = http.Server{
		Addr:    addr,
		Handler: corsHandler,
	}

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// wrap adds security headers, rate limiting, and request logging.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		s.logger.InfoContext(ctx, "Request started",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP,
			log.FieldUserAgent, r.Header.Get("User-Agent"))

		// Rate-limit mutating requests only
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// Capture status code for the completion log
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		s.logger.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, duration.Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

type requestIDKey struct{}

// extractClientIP resolves the caller address, honoring proxy headers.
func extractClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

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
		// Fallback to timestamp if random fails
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

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Fintrack API is running",
		"routes": []string{
			"POST /api/auth/register",
			"POST /api/auth/login",
			"GET /api/transactions",
			"POST /api/transactions",
			"DELETE /api/transactions/{id}",
			"GET /api/analytics/category-totals",
			"GET /api/analytics/monthly-summary",
			"GET /api/budgets",
			"GET /api/budgets/report",
		},
	})
}
