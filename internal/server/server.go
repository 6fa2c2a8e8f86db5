// Package server exposes extraction over HTTP: an upload page, a preview
// page, a CSV download and a JSON records endpoint.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/KaramelBytes/edamaster-cli/internal/batch"
	"github.com/KaramelBytes/edamaster-cli/internal/logging"
	"github.com/KaramelBytes/edamaster-cli/internal/metrics"
	"github.com/KaramelBytes/edamaster-cli/internal/parser"
	"github.com/KaramelBytes/edamaster-cli/internal/table"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures a Server.
type Options struct {
	// MaxUploadMB caps the size of one multipart request.
	MaxUploadMB int
	// Suffix is stripped from file names to form participant ids.
	Suffix string
	// Parse controls delimiter and sheet selection for uploads.
	Parse parser.Options
	// PreviewRows is how many records the preview page shows.
	PreviewRows int
	// RequestTimeout bounds one request; zero means 60s.
	RequestTimeout time.Duration
}

// Server is the HTTP surface.
type Server struct {
	opts      Options
	extractor *metrics.Extractor
	router    *chi.Mux
	registry  *prometheus.Registry
	inst      *instruments
	pages     *template.Template
	logger    *slog.Logger
}

// New builds a Server with its routes.
func New(opts Options) *Server {
	if opts.MaxUploadMB <= 0 {
		opts.MaxUploadMB = 32
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	reg := prometheus.NewRegistry()
	s := &Server{
		opts:      opts,
		extractor: metrics.NewExtractor(metrics.WithSuffix(opts.Suffix)),
		router:    chi.NewRouter(),
		registry:  reg,
		inst:      newInstruments(reg),
		pages:     template.Must(template.ParseFS(templateFS, "templates/*.html")),
		logger:    logging.Component("server"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.opts.RequestTimeout))
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Post("/preview", s.handlePreview)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/extract", s.handleExtract)
		r.Post("/records", s.handleRecords)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

// run extracts every uploaded file in form order.
func (s *Server) run(r *http.Request, endpoint string, inputs []batch.Input) *batch.Session {
	opt := s.opts.Parse
	parse := func(name string, rd io.Reader) ([]table.Row, error) {
		return parser.Parse(name, rd, opt)
	}
	runner := batch.NewRunner(parse, s.extractor, batch.WithLogger(s.requestLog(r)))
	session := runner.Run(inputs)
	s.inst.observe(endpoint, session)
	return session
}

func (s *Server) requestLog(r *http.Request) *slog.Logger {
	return logging.WithFields(r.Context(), "component", "server")
}

// requestLogger logs one line per request through slog.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.requestLog(r).Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"elapsed", time.Since(start),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
