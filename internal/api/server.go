// Package api exposes the HTTP interface for the backend service: the
// public extension endpoints and the admin product surface.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lvndry/clausea-backend/internal/catalog"
	"github.com/lvndry/clausea-backend/internal/dashboard"
	"github.com/lvndry/clausea-backend/internal/email"
	"github.com/lvndry/clausea-backend/internal/metrics"
)

// Pinger verifies a downstream dependency is reachable, used by /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server wires HTTP handlers to the catalog service, store and notifier.
type Server struct {
	router   chi.Router
	store    catalog.Store
	service  *catalog.Service
	flow     *dashboard.Flow
	notifier email.Notifier
	readyDB  Pinger
	logger   *zap.Logger
}

// Options carries the Server dependencies.
type Options struct {
	Store    catalog.Store
	Service  *catalog.Service
	Flow     *dashboard.Flow
	Notifier email.Notifier
	ReadyDB  Pinger
	Timeout  time.Duration
	Logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	s := &Server{
		store:    opts.Store,
		service:  opts.Service,
		flow:     opts.Flow,
		notifier: opts.Notifier,
		readyDB:  opts.ReadyDB,
		logger:   opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(metrics.Middleware)
	r.Use(timeoutMiddleware(opts.Timeout))
	r.Use(corsMiddleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/extension", func(r chi.Router) {
		r.Get("/check", s.extensionCheck)
		r.Get("/domains", s.extensionDomains)
		r.Post("/request-support", s.extensionRequestSupport)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.listProducts)
			r.Post("/", s.createProduct)
			r.Put("/{product_id}", s.updateProduct)
			r.Delete("/{product_id}", s.deleteProduct)
			r.Get("/{slug}/documents", s.listProductDocuments)
		})
		r.Get("/documents", s.listDocuments)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(s.logger, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if s.readyDB != nil {
		if err := s.readyDB.Ping(r.Context()); err != nil {
			s.logger.Warn("readiness ping failed", zap.Error(err))
			writeError(s.logger, w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	writeJSON(s.logger, w, http.StatusOK, map[string]string{"status": "ready"})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("error", rec))
				writeError(s.logger, w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

// corsMiddleware keeps the extension endpoints callable from any origin;
// the popup runs on arbitrary sites.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

func writeJSON(logger *zap.Logger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("write JSON failed", zap.Error(err))
	}
}

func writeError(logger *zap.Logger, w http.ResponseWriter, status int, msg string) {
	writeJSON(logger, w, status, map[string]string{"error": msg})
}
