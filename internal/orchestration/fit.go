package orchestration

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/agbru/orbitcalc/internal/errors"
	"github.com/agbru/orbitcalc/internal/logging"
	"github.com/agbru/orbitcalc/internal/orbit"
)

// FitViewport fits and stores the model's viewport. Failures are returned
// as apperrors.FittingError so callers can map them to an exit code;
// the underlying orbit.ErrFittingFailed stays reachable with errors.Is.
func FitViewport(ctx context.Context, model *orbit.Model, opts orbit.FitOptions, logger logging.Logger) (orbit.Viewport, error) {
	if err := ctx.Err(); err != nil {
		return orbit.Viewport{}, err
	}
	_, span := otel.Tracer(tracerName).Start(ctx, "orchestration.FitViewport", trace.WithAttributes(
		attribute.Float64("fit.scan_domain", opts.ScanDomain),
		attribute.Float64("fit.scan_step", opts.ScanStep),
		attribute.Int("fit.depth_threshold", opts.DepthThreshold),
		attribute.String("fit.bounds", opts.Bounds.String()),
	))
	defer span.End()

	start := time.Now()
	v, err := model.FitViewport(opts)
	elapsed := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("viewport fitting failed", err, logging.Duration("elapsed", elapsed))
		return orbit.Viewport{}, apperrors.FittingError{Cause: err}
	}

	span.SetAttributes(attribute.String("fit.viewport", v.String()))
	logger.Debug("viewport fitted",
		logging.String("viewport", v.String()),
		logging.Complex("center", v.Center()),
		logging.Duration("elapsed", elapsed),
	)
	return v, nil
}
