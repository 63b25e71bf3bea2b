package orchestration

import (
	"context"
	"io"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/orbitcalc/internal/errors"
	"github.com/agbru/orbitcalc/internal/orbit"
	"github.com/agbru/orbitcalc/internal/progress"
)

// ProgressBufferMultiplier sizes the progress channel relative to the number
// of workers so that a slow display rarely causes dropped updates.
const ProgressBufferMultiplier = 5

const tracerName = "github.com/agbru/orbitcalc/internal/orchestration"

// MaxSweepCells caps the number of lattice cells a single sweep may classify.
const MaxSweepCells = 4_000_000

// GridCells returns w*h, saturating at math.MaxInt when the product does
// not fit an int. Non-positive sizes yield 0.
func GridCells(w, h int) int {
	if w <= 0 || h <= 0 {
		return 0
	}
	if w > math.MaxInt/h {
		return math.MaxInt
	}
	return w * h
}

// SweepOptions configures a lattice sweep.
type SweepOptions struct {
	// GridW and GridH give the lattice resolution. Each cell is classified at
	// its centre.
	GridW, GridH int
	// MaxIterations is the classification depth per point.
	MaxIterations int
	// Workers bounds the number of rows classified concurrently. Values below
	// 1 use runtime.NumCPU.
	Workers int
	// Observer, when set, sees every classified point.
	Observer ClassificationObserver
	// ProgressObservers receive the sweep's progress alongside the reporter.
	ProgressObservers []progress.Observer
}

func (o SweepOptions) validate() error {
	switch {
	case o.GridW <= 0:
		return apperrors.ValidationError{Field: "grid width", Message: "must be positive"}
	case o.GridH <= 0:
		return apperrors.ValidationError{Field: "grid height", Message: "must be positive"}
	case o.MaxIterations <= 0:
		return apperrors.ValidationError{Field: "max iterations", Message: "must be positive"}
	case GridCells(o.GridW, o.GridH) > MaxSweepCells:
		return apperrors.LimitError{Name: "sweep cells", Requested: GridCells(o.GridW, o.GridH), Limit: MaxSweepCells}
	}
	return nil
}

// SweepResult aggregates the classification of every lattice cell.
type SweepResult struct {
	// Counts is the number of cells per kind.
	Counts map[orbit.Kind]int
	// Periods counts cyclic cells by period.
	Periods map[int]int
	// Points is the number of cells classified.
	Points int
	// Duration is the wall-clock time of the sweep.
	Duration time.Duration
	// Grid[row][col] is the kind of each cell. Row 0 lies along Y.Min and
	// column 0 along X.Min.
	Grid [][]orbit.Kind
	// Viewport is the region that was swept.
	Viewport orbit.Viewport
}

// Dominant returns the most frequent kind. Ties go to the kind listed first
// in orbit.Kinds. ok is false for an empty result.
func (r SweepResult) Dominant() (kind orbit.Kind, ok bool) {
	best := -1
	for _, k := range orbit.Kinds {
		if n := r.Counts[k]; n > best && n > 0 {
			kind, best, ok = k, n, true
		}
	}
	return kind, ok
}

// Fraction returns the share of cells of kind k, or 0 for an empty result.
func (r SweepResult) Fraction(k orbit.Kind) float64 {
	if r.Points == 0 {
		return 0
	}
	return float64(r.Counts[k]) / float64(r.Points)
}

// Sweep classifies the centre of every cell of a GridW × GridH lattice laid
// over the model's fitted viewport. Rows are distributed over a bounded
// worker pool. Progress is published on a buffered channel consumed by
// reporter, which writes to out.
//
// Returns orbit.ErrNoViewport if the model has not been fitted, and the
// context's error if it is cancelled before every row is done.
func Sweep(ctx context.Context, model *orbit.Model, opts SweepOptions, reporter ProgressReporter, out io.Writer) (SweepResult, error) {
	if err := opts.validate(); err != nil {
		return SweepResult{}, err
	}
	v, ok := model.Viewport()
	if !ok {
		return SweepResult{}, orbit.ErrNoViewport
	}
	if reporter == nil {
		reporter = NullProgressReporter{}
	}
	workers := opts.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "orchestration.Sweep", trace.WithAttributes(
		attribute.Int("sweep.grid_w", opts.GridW),
		attribute.Int("sweep.grid_h", opts.GridH),
		attribute.Int("sweep.max_iterations", opts.MaxIterations),
	))
	defer span.End()

	start := time.Now()
	progressChan := make(chan progress.Update, workers*ProgressBufferMultiplier)
	subject := progress.NewSubject()
	subject.Register(progress.NewChannelObserver(progressChan))
	for _, o := range opts.ProgressObservers {
		subject.Register(o)
	}
	report := subject.Freeze(0)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go reporter.DisplayProgress(&displayWg, progressChan, 1, out)

	rows := make([][]orbit.Classification, opts.GridH)
	var rowsDone atomic.Int64
	var reportMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for row := 0; row < opts.GridH && gctx.Err() == nil; row++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cells, err := sweepRow(model, v, row, opts)
			if err != nil {
				return err
			}
			rows[row] = cells

			// Serialized so observers see a non-decreasing fraction.
			reportMu.Lock()
			report(float64(rowsDone.Add(1)) / float64(opts.GridH))
			reportMu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	close(progressChan)
	displayWg.Wait()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return SweepResult{}, err
	}

	result := aggregate(rows)
	result.Duration = time.Since(start)
	result.Viewport = v
	span.SetAttributes(attribute.Int("sweep.points", result.Points))
	return result, nil
}

func sweepRow(model *orbit.Model, v orbit.Viewport, row int, opts SweepOptions) ([]orbit.Classification, error) {
	cells := make([]orbit.Classification, opts.GridW)
	py := float64(row) + 0.5
	for col := range cells {
		c := v.PointAt(float64(col)+0.5, py, opts.GridW, opts.GridH)
		res, err := model.Classify(c, opts.MaxIterations)
		if err != nil {
			return nil, apperrors.ClassificationError{Point: c, Cause: err}
		}
		cells[col] = res
		if opts.Observer != nil {
			opts.Observer.ObserveClassification(c, res)
		}
	}
	return cells, nil
}

func aggregate(rows [][]orbit.Classification) SweepResult {
	result := SweepResult{
		Counts:  make(map[orbit.Kind]int, len(orbit.Kinds)),
		Periods: make(map[int]int),
		Grid:    make([][]orbit.Kind, len(rows)),
	}
	for i, cells := range rows {
		kinds := make([]orbit.Kind, len(cells))
		for j, res := range cells {
			kinds[j] = res.Kind
			result.Counts[res.Kind]++
			if res.HasPeriod() {
				result.Periods[res.Period]++
			}
		}
		result.Grid[i] = kinds
		result.Points += len(cells)
	}
	return result
}
