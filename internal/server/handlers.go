package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/agbru/orbitcalc/internal/errors"
	"github.com/agbru/orbitcalc/internal/logging"
	"github.com/agbru/orbitcalc/internal/metrics"
	"github.com/agbru/orbitcalc/internal/orbit"
	"github.com/agbru/orbitcalc/internal/orchestration"
	"github.com/agbru/orbitcalc/internal/sysmon"
)

// handleClassify serves GET /classify?re=&im=&n=.
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	q := r.URL.Query()
	re, err := floatParam(q, "re", true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	im, err := floatParam(q, "im", false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	n, err := s.iterationsParam(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c := complex(re, im)

	_, span := otel.Tracer(tracerName).Start(r.Context(), "server.classify",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.Float64("orbit.re", re),
			attribute.Float64("orbit.im", im),
			attribute.Int("orbit.max_iterations", n),
		))
	defer span.End()

	start := time.Now()
	res, err := s.model.Classify(c, n)
	s.metrics.ObserveClassifyDuration(time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.writeError(w, r, apperrors.ClassificationError{Point: c, Cause: err})
		return
	}
	s.metrics.ObserveClassification(c, res)
	span.SetAttributes(attribute.String("orbit.kind", res.Kind.String()))

	s.writeJSON(w, http.StatusOK, newClassificationResponse(c, res, n))
}

// handlePixel serves GET /pixel?x=&y=&n=.
func (s *Server) handlePixel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	q := r.URL.Query()
	x, err := floatParam(q, "x", true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	y, err := floatParam(q, "y", true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	n, err := s.iterationsParam(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	_, span := otel.Tracer(tracerName).Start(r.Context(), "server.pixel",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.Float64("pixel.x", x),
			attribute.Float64("pixel.y", y),
			attribute.Int("orbit.max_iterations", n),
		))
	defer span.End()

	start := time.Now()
	t, err := s.model.Trace(x, y, s.cfg.Width, s.cfg.Height, n)
	s.metrics.ObserveClassifyDuration(time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.writeError(w, r, err)
		return
	}
	s.metrics.ObserveClassification(t.Point, t.Classification)
	span.SetAttributes(attribute.String("orbit.kind", t.Classification.Kind.String()))

	s.writeJSON(w, http.StatusOK, newTraceResponse(x, y, t, n, s.cfg.TraceLimit))
}

// handleViewport serves GET /viewport.
func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	v, ok := s.model.Viewport()
	if !ok {
		s.writeError(w, r, orbit.ErrNoViewport)
		return
	}
	s.writeJSON(w, http.StatusOK, newViewportResponse(v, s.cfg.Width, s.cfg.Height))
}

// handleSweep serves GET /sweep?w=&h=&n=.
func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	q := r.URL.Query()
	gw, err := intParam(q, "w", 16)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	gh, err := intParam(q, "h", 16)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	n, err := s.iterationsParam(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if limit := s.security.MaxSweepCells; limit > 0 {
		if cells := orchestration.GridCells(gw, gh); cells > limit {
			s.writeError(w, r, apperrors.LimitError{Name: "sweep cells", Requested: cells, Limit: limit})
			return
		}
	}

	res, err := orchestration.Sweep(r.Context(), s.model, orchestration.SweepOptions{
		GridW:         gw,
		GridH:         gh,
		MaxIterations: n,
		Workers:       s.cfg.Workers,
		Observer:      s.metrics,
	}, orchestration.NullProgressReporter{}, io.Discard)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.ObserveSweep(res.Duration)
	s.logger.Debug("sweep served",
		logging.Int("points", res.Points),
		logging.Duration("elapsed", res.Duration))

	s.writeJSON(w, http.StatusOK, newSweepResponse(res))
}

// handleMetrics serves GET /metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	s.metrics.WritePrometheus(w, r)
}

// handleHealth serves GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	_, fitted := s.model.Viewport()
	var sys *sysmon.Stats
	if stats, err := sysmon.Sample(r.Context()); err == nil {
		sys = &stats
	} else {
		s.logger.Debug("system statistics unavailable", logging.Err(err))
	}
	mem := metrics.NewMemoryCollector().Snapshot()
	s.writeJSON(w, http.StatusOK, newHealthResponse(fitted, s.started, mem, sys))
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("method not allowed",
		logging.String("method", r.Method),
		logging.String("path", r.URL.Path))
	w.Header().Set("Allow", http.MethodGet)
	s.writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
		Error:  fmt.Sprintf("method %s not allowed", r.Method),
		Status: http.StatusMethodNotAllowed,
	})
}

// statusFor maps an error to an HTTP status.
func statusFor(err error) int {
	var ve apperrors.ValidationError
	var le apperrors.LimitError
	switch {
	case errors.As(err, &ve), errors.As(err, &le), errors.Is(err, orbit.ErrInvalidMaxIterations):
		return http.StatusBadRequest
	case errors.Is(err, orbit.ErrNoViewport):
		return http.StatusConflict
	case apperrors.IsContextError(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", err,
			logging.String("path", r.URL.Path),
			logging.Int("status", status))
	} else {
		s.logger.Debug("request rejected",
			logging.String("path", r.URL.Path),
			logging.Int("status", status),
			logging.Err(err))
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error(), Status: status})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil && s.logger != nil {
		s.logger.Error("failed to encode response", err)
	}
}

// iterationsParam reads n, falling back to the configured test depth.
func (s *Server) iterationsParam(q url.Values) (int, error) {
	n, err := intParam(q, "n", s.cfg.MaxIterations)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, apperrors.ValidationError{Field: "n", Message: "must be positive"}
	}
	if limit := s.security.MaxIterations; limit > 0 && n > limit {
		return 0, apperrors.LimitError{Name: "n", Requested: n, Limit: limit}
	}
	return n, nil
}

func floatParam(q url.Values, name string, required bool) (float64, error) {
	raw := q.Get(name)
	if raw == "" {
		if required {
			return 0, apperrors.ValidationError{Field: name, Message: "is required"}
		}
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !isFinite(v) {
		return 0, apperrors.ValidationError{Field: name, Message: fmt.Sprintf("invalid number %q", raw)}
	}
	return v, nil
}

func intParam(q url.Values, name string, def int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.ValidationError{Field: name, Message: fmt.Sprintf("invalid integer %q", raw)}
	}
	return v, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
