package orchestration

import (
	"io"
	"sync"

	"github.com/agbru/orbitcalc/internal/orbit"
	"github.com/agbru/orbitcalc/internal/progress"
)

// ProgressReporter defines the interface for displaying sweep progress.
// It keeps the orchestration layer independent of spinners, progress bars
// and other presentation concerns.
type ProgressReporter interface {
	// DisplayProgress consumes updates until progressChan is closed, then
	// calls wg.Done. It runs in its own goroutine.
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.Update, numSources int, out io.Writer)
}

// ProgressReporterFunc is a function adapter that implements ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan progress.Update, numSources int, out io.Writer)

// DisplayProgress calls the underlying function.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.Update, numSources int, out io.Writer) {
	f(wg, progressChan, numSources, out)
}

// NullProgressReporter drains the progress channel without displaying
// anything. Used in quiet mode and by the server.
type NullProgressReporter struct{}

// DisplayProgress drains the channel without output.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.Update, _ int, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// ClassificationObserver is notified of every point a sweep classifies.
// Implementations must be safe for concurrent use.
type ClassificationObserver interface {
	ObserveClassification(c complex128, result orbit.Classification)
}

// ClassificationObserverFunc adapts a function to ClassificationObserver.
type ClassificationObserverFunc func(c complex128, result orbit.Classification)

// ObserveClassification calls the underlying function.
func (f ClassificationObserverFunc) ObserveClassification(c complex128, result orbit.Classification) {
	f(c, result)
}

// ResultPresenter renders engine results.
type ResultPresenter interface {
	DisplayClassification(out io.Writer, c complex128, result orbit.Classification, verbose bool)
	DisplayViewport(out io.Writer, v orbit.Viewport)
	DisplaySweepSummary(out io.Writer, result SweepResult)
}
