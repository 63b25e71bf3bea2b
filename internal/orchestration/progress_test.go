package orchestration

import (
	"testing"
	"time"

	"github.com/agbru/orbitcalc/internal/progress"
)

func TestNewProgressAggregator(t *testing.T) {
	t.Parallel()
	tests := []struct {
		sources int
		isNil   bool
		multi   bool
	}{
		{-1, true, false},
		{0, true, false},
		{1, false, false},
		{4, false, true},
	}
	for _, tt := range tests {
		agg := NewProgressAggregator(tt.sources)
		if (agg == nil) != tt.isNil {
			t.Errorf("NewProgressAggregator(%d) nil = %v, want %v", tt.sources, agg == nil, tt.isNil)
			continue
		}
		if agg == nil {
			continue
		}
		if agg.NumSources() != tt.sources || agg.IsMultiSource() != tt.multi {
			t.Errorf("NewProgressAggregator(%d): sources %d multi %v", tt.sources, agg.NumSources(), agg.IsMultiSource())
		}
	}
}

func TestProgressAggregator_RowsOfASweep(t *testing.T) {
	t.Parallel()
	// Four workers each report the fraction of their rows done.
	agg := NewProgressAggregator(4)
	if avg := agg.CalculateAverage(); avg != 0 {
		t.Fatalf("initial average = %v", avg)
	}
	if eta := agg.GetETA(); eta != 0 {
		t.Fatalf("initial ETA = %v, want 0 before any rate is known", eta)
	}

	steps := []struct {
		u    progress.Update
		want float64
	}{
		{progress.Update{Index: 0, Value: 1}, 0.25},
		{progress.Update{Index: 2, Value: 0.5}, 0.375},
		{progress.Update{Index: 2, Value: 1}, 0.5},
		{progress.Update{Index: 9, Value: 1}, 0.5},
		{progress.Update{Index: 1, Value: 1}, 0.75},
		{progress.Update{Index: 3, Value: 1}, 1},
	}
	for _, s := range steps {
		ap := agg.Update(s.u)
		if ap.Index != s.u.Index || ap.Value != s.u.Value {
			t.Errorf("Update(%+v) echoed %d/%v", s.u, ap.Index, ap.Value)
		}
		if ap.AverageProgress != s.want {
			t.Errorf("Update(%+v) average = %v, want %v", s.u, ap.AverageProgress, s.want)
		}
		if ap.ETA < 0 || ap.ETA > 24*time.Hour {
			t.Errorf("Update(%+v) ETA = %v out of range", s.u, ap.ETA)
		}
	}
	if eta := agg.GetETA(); eta != 0 {
		t.Errorf("ETA after completion = %v, want 0", eta)
	}
}

func TestDrainChannel(t *testing.T) {
	t.Parallel()
	for _, n := range []int{0, 1, 16} {
		ch := make(chan progress.Update, n)
		for i := range n {
			ch <- progress.Update{Index: i, Value: float64(i) / 16}
		}
		close(ch)

		done := make(chan struct{})
		go func() {
			DrainChannel(ch)
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatalf("DrainChannel with %d buffered updates did not return", n)
		}
	}
}
