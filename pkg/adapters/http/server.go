// Package http hosts registered pages on a chi router.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/pageflow/internal/logging"
	"github.com/aretw0/pageflow/pkg/domain"
	"github.com/aretw0/pageflow/pkg/results"
)

// Engine defines the interface for the pageflow invocation core.
type Engine interface {
	Routes() []*domain.ActionDescriptor
	Invoke(ctx context.Context, action domain.ActionContext) error
}

// Server exposes one route per registered page.
type Server struct {
	engine      Engine
	logger      *slog.Logger
	metrics     http.Handler
	metricsPath string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for invocation failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics serves h at path.
func WithMetrics(path string, h http.Handler) Option {
	return func(s *Server) {
		s.metricsPath = path
		s.metrics = h
	}
}

// NewServer creates a server for engine.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{engine: engine, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router. Pages registered afterwards are not served.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if s.metrics != nil && s.metricsPath != "" {
		r.Handle(s.metricsPath, s.metrics)
	}

	for _, desc := range s.engine.Routes() {
		r.HandleFunc(desc.RouteTemplate, s.pageHandler(desc))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusNotFound, "no page matches "+r.URL.Path)
	})
	return r
}

func (s *Server) pageHandler(desc *domain.ActionDescriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		err := s.engine.Invoke(r.Context(), domain.ActionContext{
			ActionDescriptor: desc,
			Request:          r,
			Response:         ww,
			RouteData:        routeData(r),
			InvocationID:     middleware.GetReqID(r.Context()),
		})
		if err == nil {
			return
		}

		s.logger.ErrorContext(r.Context(), "Page invocation failed",
			"page", desc.DisplayName,
			"request_id", middleware.GetReqID(r.Context()),
			"err", err,
		)
		if ww.Status() == 0 && ww.BytesWritten() == 0 {
			writeProblem(ww, r, http.StatusInternalServerError, "")
		}
	}
}

func routeData(r *http.Request) domain.RouteData {
	data := domain.RouteData{}
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return data
	}
	for i, key := range rctx.URLParams.Keys {
		if key == "*" || i >= len(rctx.URLParams.Values) {
			continue
		}
		data[key] = rctx.URLParams.Values[i]
	}
	return data
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	body, _ := json.Marshal(results.Problem{
		Title:        http.StatusText(status),
		Status:       status,
		Detail:       detail,
		Instance:     r.URL.Path,
		InvocationID: middleware.GetReqID(r.Context()),
	})
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// Serve listens on addr until ctx is done, then shuts down gracefully,
// waiting up to shutdownTimeout for outstanding requests.
func (s *Server) Serve(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("Starting pageflow server", "addr", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", shutdownTimeout, err)
		}
		s.logger.Info("Pageflow server stopped gracefully")
		return nil
	}
}
