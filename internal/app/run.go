package app

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/agbru/orbitcalc/internal/cli"
	apperrors "github.com/agbru/orbitcalc/internal/errors"
	"github.com/agbru/orbitcalc/internal/format"
	"github.com/agbru/orbitcalc/internal/logging"
	"github.com/agbru/orbitcalc/internal/metrics"
	"github.com/agbru/orbitcalc/internal/orbit"
	"github.com/agbru/orbitcalc/internal/orchestration"
	"github.com/agbru/orbitcalc/internal/progress"
	"github.com/agbru/orbitcalc/internal/server"
	"github.com/agbru/orbitcalc/internal/ui"
)

// withLifecycle bounds ctx by the configured timeout and cancels it on
// SIGINT or SIGTERM.
func (a *Application) withLifecycle(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	return ctx, func() {
		stopSignals()
		cancelTimeout()
	}
}

// printHeader announces the configuration unless running quietly.
func (a *Application) printHeader(out io.Writer, mode string) {
	if a.Config.Quiet {
		return
	}
	cli.PrintExecutionConfig(a.Config, out)
	cli.PrintExecutionMode(mode, out)
}

// fit fits the model's viewport for the pixel, sweep, REPL and serve modes.
func (a *Application) fit(ctx context.Context, model *orbit.Model) (orbit.Viewport, time.Duration, error) {
	start := time.Now()
	v, err := orchestration.FitViewport(ctx, model, a.Config.ToFitOptions(), a.Logger)
	return v, time.Since(start), err
}

// runClassify classifies the single parameter given by -re and -im.
func (a *Application) runClassify(ctx context.Context, out io.Writer, model *orbit.Model) int {
	ctx, cancel := a.withLifecycle(ctx)
	defer cancel()

	c := a.Config.Point()
	a.printHeader(out, fmt.Sprintf("single parameter %s", format.FormatComplex(c, -1)))

	start := time.Now()
	res, err := model.Classify(c, a.Config.MaxIterations)
	elapsed := time.Since(start)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return a.handleError(err, "classify")
	}
	a.Logger.Debug("parameter classified",
		logging.Complex("c", c),
		logging.String("kind", res.Kind.String()),
		logging.Duration("elapsed", elapsed))

	if a.Config.Quiet {
		cli.DisplayQuietClassification(out, res)
		return apperrors.ExitSuccess
	}
	cli.DisplayClassification(out, c, res, a.Config.Verbose)
	fmt.Fprintf(out, "Completed in %s%s%s.\n", ui.ColorYellow(), format.FormatExecutionDuration(elapsed), ui.ColorReset())
	return apperrors.ExitSuccess
}

// runPixel fits the viewport and traces the pixel given by -pixel.
func (a *Application) runPixel(ctx context.Context, out io.Writer, model *orbit.Model) int {
	ctx, cancel := a.withLifecycle(ctx)
	defer cancel()

	a.printHeader(out, fmt.Sprintf("pixel (%g, %g) of a %dx%d canvas",
		a.Config.PixelX, a.Config.PixelY, a.Config.Width, a.Config.Height))

	v, _, err := a.fit(ctx, model)
	if err != nil {
		return a.handleError(err, "fit viewport")
	}
	t, err := model.Trace(a.Config.PixelX, a.Config.PixelY, a.Config.Width, a.Config.Height, a.Config.MaxIterations)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return a.handleError(err, "trace pixel")
	}

	if a.Config.Quiet {
		cli.DisplayQuietClassification(out, t.Classification)
		return apperrors.ExitSuccess
	}
	cli.DisplayViewport(out, v)
	cli.DisplayTrace(out, t, cli.DefaultTraceLimit, a.Config.Verbose)
	return apperrors.ExitSuccess
}

// runSweep fits the viewport and classifies a grid of pixels.
func (a *Application) runSweep(ctx context.Context, out io.Writer, model *orbit.Model) int {
	ctx, cancel := a.withLifecycle(ctx)
	defer cancel()

	a.printHeader(out, fmt.Sprintf("sweep of a %dx%d grid", a.Config.GridW, a.Config.GridH))

	v, _, err := a.fit(ctx, model)
	if err != nil {
		return a.handleError(err, "fit viewport")
	}

	var reporter orchestration.ProgressReporter = cli.CLIProgressReporter{}
	progressOut := out
	if a.Config.Quiet {
		reporter = orchestration.NullProgressReporter{}
		progressOut = io.Discard
	}
	opts := orchestration.SweepOptions{
		GridW:         a.Config.GridW,
		GridH:         a.Config.GridH,
		MaxIterations: a.Config.MaxIterations,
		Workers:       a.Config.Workers,
	}
	if a.Config.Verbose {
		opts.ProgressObservers = append(opts.ProgressObservers, progress.NewLoggingObserver(a.Logger, 0.25))
	}

	mc := metrics.NewMemoryCollector()
	before := mc.Snapshot()
	res, err := orchestration.Sweep(ctx, model, opts, reporter, progressOut)
	if err != nil {
		return a.handleError(err, "sweep")
	}
	mem := mc.Snapshot().Since(before)
	a.Logger.Debug("sweep finished",
		logging.Int("points", res.Points),
		logging.Duration("elapsed", res.Duration),
		logging.Uint64("allocated_bytes", mem.Allocated),
		logging.Int("gc_cycles", int(mem.GCCycles)))

	if a.Config.Quiet {
		cli.DisplayQuietSweep(out, res)
		return apperrors.ExitSuccess
	}
	cli.DisplayViewport(out, v)
	cli.DisplaySweepSummary(out, res)
	return apperrors.ExitSuccess
}

// runREPL starts the interactive mode. A failed fit is reported but does
// not prevent parameter classification.
func (a *Application) runREPL(ctx context.Context, out io.Writer, model *orbit.Model) int {
	ctx, cancel := a.withLifecycle(ctx)
	defer cancel()

	if _, _, err := a.fit(ctx, model); err != nil {
		fmt.Fprintf(a.ErrWriter, "%sWarning: %v; pixel commands are unavailable.%s\n", ui.ColorYellow(), err, ui.ColorReset())
	}

	repl := cli.NewREPL(model, cli.REPLConfig{
		MaxIterations: a.Config.MaxIterations,
		Width:         a.Config.Width,
		Height:        a.Config.Height,
		Verbose:       a.Config.Verbose,
	})
	repl.SetInput(a.In)
	repl.SetOutput(out)
	repl.Start()
	return apperrors.ExitSuccess
}

// runServe fits the viewport and serves the HTTP API until interrupted.
// The -timeout bound does not apply to a server.
func (a *Application) runServe(ctx context.Context, out io.Writer, model *orbit.Model) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	metrics := server.NewMetrics()
	v, elapsed, err := a.fit(ctx, model)
	if err != nil {
		return a.handleError(err, "fit viewport")
	}
	metrics.ObserveFit(elapsed)

	if !a.Config.Quiet {
		fmt.Fprintf(out, "Serving %s on %s%s%s.\n", v, ui.ColorCyan(), a.Config.Serve, ui.ColorReset())
	}
	srv := server.NewServer(model, server.Config{
		Addr:          a.Config.Serve,
		MaxIterations: a.Config.MaxIterations,
		Width:         a.Config.Width,
		Height:        a.Config.Height,
		Workers:       a.Config.Workers,
	}, server.WithLogger(a.Logger), server.WithMetrics(metrics))

	if err := srv.Start(ctx); err != nil {
		return a.handleError(err, "serve")
	}
	return apperrors.ExitSuccess
}
