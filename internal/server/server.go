// Package server exposes workbook conversion over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ukaji3/xlread-go/pkg/xlread"
)

// envelopeAllowance is the body room granted above the payload limit for the
// JSON envelope around the data field.
const envelopeAllowance = 4 << 10

// Options configures a Server.
type Options struct {
	// MaxConcurrent caps in-flight requests and running conversions; extra requests get 429.
	// A conversion keeps its slot after its request times out, until it settles.
	MaxConcurrent int
	// RequestTimeout bounds how long a request waits for its conversion.
	RequestTimeout time.Duration
	// MaxPayloadBytes mirrors the reader limit and bounds the request body. Zero disables it.
	MaxPayloadBytes int64
}

// Server is the HTTP front end for a Reader.
type Server struct {
	reader *xlread.Reader
	opts   Options
	log    *slog.Logger
	limit  *conversionLimiter
	router *chi.Mux
	server *http.Server
}

// New creates a Server converting with reader.
func New(reader *xlread.Reader, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	s := &Server{
		reader: reader,
		opts:   opts,
		log:    logger,
		limit:  newConversionLimiter(opts.MaxConcurrent),
		router: chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Throttle(s.opts.MaxConcurrent))
		r.Post("/workbooks", s.handleReadWorkbook)
	})
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.log.Info("server starting", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server, then waits for conversions that
// outlived their requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return err
		}
	}
	if active := s.limit.Active(); active > 0 {
		s.log.Info("waiting for conversions to finish", "active", active)
	}
	return s.limit.WaitForDrain(ctx)
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}
