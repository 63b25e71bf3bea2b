// Package server exposes an orbit model over a small read-only HTTP API:
// classification of parameters and pixels, viewport inspection, grid sweeps,
// Prometheus metrics and a health probe.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/agbru/orbitcalc/internal/logging"
	"github.com/agbru/orbitcalc/internal/orbit"
)

const tracerName = "github.com/agbru/orbitcalc/internal/server"

// Default server settings.
const (
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 2 * time.Minute
	DefaultIdleTimeout     = time.Minute
	DefaultShutdownTimeout = 10 * time.Second
	DefaultTraceLimit      = 256
)

// Config holds the listening address and the defaults applied to requests
// that omit a parameter.
type Config struct {
	Addr string
	// MaxIterations is the test depth used when a request has no n.
	MaxIterations int
	// Width and Height describe the canvas /pixel coordinates refer to.
	Width, Height int
	// Workers bounds the concurrency of a sweep request.
	Workers int
	// TraceLimit caps the number of orbit points returned by /pixel.
	TraceLimit int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the configuration used for unset fields.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		MaxIterations:   orbit.DefaultMaxIterations,
		Width:           orbit.DefaultWidth,
		Height:          orbit.DefaultHeight,
		Workers:         runtime.NumCPU(),
		TraceLimit:      DefaultTraceLimit,
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		IdleTimeout:     DefaultIdleTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.Width <= 0 || c.Height <= 0 {
		c.Width, c.Height = d.Width, d.Height
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.TraceLimit <= 0 {
		c.TraceLimit = d.TraceLimit
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = d.IdleTimeout
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	return c
}

// Server serves an orbit model over HTTP.
type Server struct {
	model    *orbit.Model
	cfg      Config
	logger   logging.Logger
	metrics  *Metrics
	security SecurityConfig
	started  time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics collectors, e.g. to share them with the code
// that fitted the model's viewport.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithSecurityConfig replaces DefaultSecurityConfig.
func WithSecurityConfig(c SecurityConfig) Option {
	return func(s *Server) { s.security = c }
}

// NewServer builds a server for model. The model's viewport may be fitted
// before or after the server starts; endpoints that need it answer 409
// until then.
func NewServer(model *orbit.Model, cfg Config, opts ...Option) *Server {
	s := &Server{
		model:    model,
		cfg:      cfg.withDefaults(),
		logger:   logging.NewNopLogger(),
		security: DefaultSecurityConfig(),
		started:  time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	return s
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/classify", s.route(s.handleClassify))
	mux.HandleFunc("/pixel", s.route(s.handlePixel))
	mux.HandleFunc("/viewport", s.route(s.handleViewport))
	mux.HandleFunc("/sweep", s.route(s.handleSweep))
	mux.HandleFunc("/metrics", s.route(s.handleMetrics))
	mux.HandleFunc("/health", s.route(s.handleHealth))
	return mux
}

// route applies security, method filtering and metrics to h.
func (s *Server) route(h http.HandlerFunc) http.HandlerFunc {
	return SecurityMiddleware(s.security, s.metricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
		if !s.security.allowsMethod(r.Method) {
			s.methodNotAllowed(w, r)
			return
		}
		h(w, r)
	}))
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware tracks in-flight requests, latency and error statuses.
func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.metrics.IncrementActiveRequests()
		defer s.metrics.DecrementActiveRequests()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next(rec, r)
		s.metrics.ObserveRequest(rec.status, time.Since(start))
	}
}

// Start listens on the configured address and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully,
// letting in-flight requests finish within the shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("server listening", logging.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("server shutdown failed", err)
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
