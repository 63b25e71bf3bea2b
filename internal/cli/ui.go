//go:generate mockgen -source=ui.go -destination=mocks/mock_ui.go -package=mocks

package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/orbitcalc/internal/format"
	"github.com/agbru/orbitcalc/internal/orchestration"
	"github.com/agbru/orbitcalc/internal/progress"
	"github.com/agbru/orbitcalc/internal/ui"
)

const (
	// ProgressRefreshRate defines the refresh frequency of the progress bar.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth defines the width in characters of the progress bar.
	ProgressBarWidth = 40
)

// Spinner abstracts a terminal spinner so that DisplayProgress can be
// tested without a terminal.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to the Spinner interface.
type realSpinner struct {
	s *spinner.Spinner
}

// Start begins the spinner animation.
func (rs *realSpinner) Start() {
	rs.s.Start()
}

// Stop halts the spinner animation.
func (rs *realSpinner) Stop() {
	rs.s.Stop()
}

// UpdateSuffix sets the text that is displayed after the spinner.
func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// DisplayProgress shows a spinner with an aggregated progress bar and ETA
// until progressChan is closed. It calls wg.Done on return.
//
// Parameters:
//   - wg: Signalled when the display has finished.
//   - progressChan: Updates from the running sources.
//   - numSources: The number of sources reporting. Zero or less drains the
//     channel without display.
//   - out: The writer the spinner draws to.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.Update, numSources int, out io.Writer) {
	defer wg.Done()
	agg := orchestration.NewProgressAggregator(numSources)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}

	label := progressLabel(agg)
	s := newSpinner(spinner.WithWriter(out))
	s.UpdateSuffix(progressSuffix(label, 0, 0))
	s.Start()
	defer s.Stop()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	for {
		select {
		case u, ok := <-progressChan:
			if !ok {
				s.UpdateSuffix(progressSuffix(label, 1, 0))
				return
			}
			ap := agg.Update(u)
			s.UpdateSuffix(progressSuffix(label, ap.AverageProgress, ap.ETA))
		case <-ticker.C:
			s.UpdateSuffix(progressSuffix(label, agg.CalculateAverage(), agg.GetETA()))
		}
	}
}

func progressLabel(agg *orchestration.ProgressAggregator) string {
	if agg.IsMultiSource() {
		return fmt.Sprintf("Classifying (%d sources)", agg.NumSources())
	}
	return "Classifying"
}

func progressSuffix(label string, avg float64, eta time.Duration) string {
	return fmt.Sprintf(" %s%s%s %s",
		ui.ColorCyan(), label, ui.ColorReset(), format.FormatProgressBarWithETA(avg, eta, ProgressBarWidth))
}
