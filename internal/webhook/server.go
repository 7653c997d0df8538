// Package webhook exposes the HTTP ingress the CRM backend pushes into:
// notifications, group registration, topic management, and receipts. It
// runs alongside the bot's own update loop and shares only the outbound
// send capability with it.
package webhook

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/leadana/crmbot/core/logger"
	"github.com/leadana/crmbot/internal/notify"
	"github.com/leadana/crmbot/internal/topics"
)

// Options configures the webhook server.
type Options struct {
	Listen string
	Port   int

	Notifier   *notify.Notifier
	Discoverer *topics.Discoverer
	Registry   *topics.Registry
}

// Server is the webhook ingress HTTP server.
type Server struct {
	notifier   *notify.Notifier
	discoverer *topics.Discoverer
	registry   *topics.Registry

	srv *http.Server
}

// New builds the server and its route table.
func New(opts Options) *Server {
	s := &Server{
		notifier:   opts.Notifier,
		discoverer: opts.Discoverer,
		registry:   opts.Registry,
	}

	addr := fmt.Sprintf("%s:%d", opts.Listen, opts.Port)
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the route table. Exposed separately for httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /webhook/notify", s.handleNotify)
	mux.HandleFunc("POST /webhook/notify-with-buttons", s.handleNotifyWithButtons)
	mux.HandleFunc("POST /webhook/bulk-notify", s.handleBulkNotify)
	mux.HandleFunc("POST /webhook/raw", s.handleRaw)

	mux.HandleFunc("POST /api/groups/register", s.handleGroupRegister)
	mux.HandleFunc("GET /api/groups/{id}/metadata", s.handleGroupMetadata)
	mux.HandleFunc("GET /api/groups/{id}/basic", s.handleGroupBasic)
	mux.HandleFunc("GET /api/groups/{id}/topics", s.handleGroupTopics)
	mux.HandleFunc("POST /api/groups/{id}/topics/names", s.handleTopicNames)

	mux.HandleFunc("POST /api/receipts", s.handleReceipt)

	return s.withRequestLog(mux)
}

// Start blocks serving HTTP until shutdown.
func (s *Server) Start() error {
	logger.Info(context.Background(), "web", "listen",
		slog.String("listen", s.srv.Addr),
	)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("webhook: serve: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// withRequestLog tags each request with a generated ID for log correlation
// and emits one summary line per request.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rid := uuid.NewString()

		ctx := logger.WithRID(r.Context(), rid)
		ctx = logger.WithLogger(ctx, logger.Component("web"))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		logger.Info(ctx, "web", "request.handled",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("http_code", rec.status),
			slog.String("rid", rid),
			slog.Int64("duration_ms", logger.RoundMS(time.Since(start)).Milliseconds()),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, envelope{
		"status":  "healthy",
		"service": "crmbot webhook",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, envelope{
		"status":  "healthy",
		"message": "bot and webhook server are running",
	})
}
