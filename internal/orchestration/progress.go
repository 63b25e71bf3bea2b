package orchestration

import (
	"time"

	"github.com/agbru/orbitcalc/internal/format"
	"github.com/agbru/orbitcalc/internal/progress"
)

// ProgressAggregator combines the progress of several sources into an
// average with an ETA. The CLI reporter consumes updates through it.
type ProgressAggregator struct {
	state      *format.ProgressWithETA
	numSources int
}

// NewProgressAggregator creates an aggregator for numSources sources.
// Returns nil if numSources <= 0.
func NewProgressAggregator(numSources int) *ProgressAggregator {
	if numSources <= 0 {
		return nil
	}
	return &ProgressAggregator{
		state:      format.NewProgressWithETA(numSources),
		numSources: numSources,
	}
}

// AggregatedProgress holds the result of processing a single update.
type AggregatedProgress struct {
	// Index is the source that sent the update.
	Index int
	// Value is the raw progress of that source.
	Value float64
	// AverageProgress is the mean across all sources.
	AverageProgress float64
	// ETA is the estimated time remaining.
	ETA time.Duration
}

// Update processes a single progress update.
func (a *ProgressAggregator) Update(u progress.Update) AggregatedProgress {
	avg, eta := a.state.UpdateWithETA(u.Index, u.Value)
	return AggregatedProgress{
		Index:           u.Index,
		Value:           u.Value,
		AverageProgress: avg,
		ETA:             eta,
	}
}

// CalculateAverage returns the current average without updating.
func (a *ProgressAggregator) CalculateAverage() float64 {
	return a.state.CalculateAverage()
}

// GetETA returns the current ETA estimate without updating.
func (a *ProgressAggregator) GetETA() time.Duration {
	return a.state.GetETA()
}

// NumSources returns the number of sources being tracked.
func (a *ProgressAggregator) NumSources() int {
	return a.numSources
}

// IsMultiSource reports whether more than one source is tracked.
func (a *ProgressAggregator) IsMultiSource() bool {
	return a.numSources > 1
}

// DrainChannel discards every update until the channel is closed.
func DrainChannel(progressChan <-chan progress.Update) {
	for range progressChan {
	}
}
