// Package server exposes mailbox browsing, message classification and the
// suppression list over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emurenMRz/bounceview/bounce"
	"github.com/emurenMRz/bounceview/internal/mailbox"
	"github.com/emurenMRz/bounceview/internal/metrics"
	"github.com/emurenMRz/bounceview/internal/suppress"
)

// DefaultMaxMessageSize caps the body of a parse request.
const DefaultMaxMessageSize = 25 << 20

// Options wires the server's dependencies. Handler and Mailboxes are
// required; a nil Suppressions disables the suppression routes and
// recording.
type Options struct {
	Handler        *bounce.Handler
	Mailboxes      *mailbox.Store
	Suppressions   *suppress.Store
	Registry       *prometheus.Registry
	Logger         *slog.Logger
	MaxMessageSize int64
}

// Server serves the HTTP API.
type Server struct {
	handler   *bounce.Handler
	mailboxes *mailbox.Store
	store     *suppress.Store
	metrics   *metrics.Recorder
	gatherer  prometheus.Gatherer
	logger    *slog.Logger
	maxSize   int64
}

// New builds a Server. Metrics are registered on opts.Registry, a fresh
// registry when nil.
func New(opts Options) *Server {
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	maxSize := opts.MaxMessageSize
	if maxSize <= 0 {
		maxSize = DefaultMaxMessageSize
	}
	return &Server{
		handler:   opts.Handler,
		mailboxes: opts.Mailboxes,
		store:     opts.Suppressions,
		metrics:   metrics.New(reg),
		gatherer:  reg,
		logger:    logger.With("component", "server"),
		maxSize:   maxSize,
	}
}

// Routes returns the router with every endpoint registered.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/mailboxes", s.handleMailboxes).Methods("GET")
	api.HandleFunc("/mailboxes/", s.handleMailboxes).Methods("GET")
	api.HandleFunc("/mailboxes/{name}/emails", s.handleEmails).Methods("GET")
	api.HandleFunc("/mailboxes/{name}/emails/{id:[0-9]+}", s.handleEmail).Methods("GET")
	api.HandleFunc("/mailboxes/{name}/emails/{id:[0-9]+}/analysis", s.handleAnalysis).Methods("GET")
	api.HandleFunc("/parse", s.handleParse).Methods("POST")

	if s.store != nil {
		sup := api.PathPrefix("/suppressions").Subrouter()
		sup.HandleFunc("", s.handleListSuppressions).Methods("GET")
		sup.HandleFunc("/{recipient}", s.handleGetSuppression).Methods("GET")
		sup.HandleFunc("/{recipient}", s.handleDeleteSuppression).Methods("DELETE")
	}

	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods("GET")
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"took", time.Since(start),
		)
	})
}
