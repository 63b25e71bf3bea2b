package progress

import (
	"sync"

	"github.com/agbru/orbitcalc/internal/logging"
)

// Update is a progress report from one source.
type Update struct {
	// Index identifies the source (a sweep, a worker, ...).
	Index int
	// Value is the completed fraction in [0, 1].
	Value float64
}

// Callback reports the completed fraction of a single source.
type Callback func(value float64)

// Observer receives progress updates.
type Observer interface {
	Update(index int, value float64)
}

// Subject fans progress updates out to its observers. It is safe for
// concurrent use.
type Subject struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewSubject creates a subject with no observers.
func NewSubject() *Subject {
	return &Subject{}
}

// Register adds an observer. Nil observers are ignored.
func (s *Subject) Register(o Observer) {
	if o == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, o)
	s.mu.Unlock()
}

// Unregister removes every registration of o.
func (s *Subject) Unregister(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.observers[:0]
	for _, existing := range s.observers {
		if existing != o {
			kept = append(kept, existing)
		}
	}
	clear(s.observers[len(kept):])
	s.observers = kept
}

// Len returns the number of registered observers.
func (s *Subject) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.observers)
}

// Notify sends an update to every registered observer.
func (s *Subject) Notify(index int, value float64) {
	s.mu.RLock()
	observers := s.observers
	s.mu.RUnlock()
	for _, o := range observers {
		o.Update(index, value)
	}
}

// Freeze returns a callback bound to index that notifies the observers
// registered at the time of the call. Later registrations are not seen.
func (s *Subject) Freeze(index int) Callback {
	s.mu.RLock()
	snapshot := make([]Observer, len(s.observers))
	copy(snapshot, s.observers)
	s.mu.RUnlock()

	return func(value float64) {
		for _, o := range snapshot {
			o.Update(index, value)
		}
	}
}

// ChannelObserver forwards updates to a channel without blocking. Updates
// are dropped when the channel is full.
type ChannelObserver struct {
	ch chan<- Update
}

// NewChannelObserver creates an observer writing to ch.
func NewChannelObserver(ch chan<- Update) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// Update implements Observer.
func (o *ChannelObserver) Update(index int, value float64) {
	if o.ch == nil {
		return
	}
	select {
	case o.ch <- Update{Index: index, Value: clamp(value)}:
	default:
	}
}

// LoggingObserver logs an update each time a source's progress crosses the
// next multiple of its step.
type LoggingObserver struct {
	logger logging.Logger
	step   float64

	mu   sync.Mutex
	last map[int]float64
}

// NewLoggingObserver creates an observer logging at every step fraction
// (0.25 logs at 25%, 50%, ...). Steps outside (0, 1] default to 0.1.
func NewLoggingObserver(logger logging.Logger, step float64) *LoggingObserver {
	if step <= 0 || step > 1 {
		step = 0.1
	}
	return &LoggingObserver{logger: logger, step: step, last: make(map[int]float64)}
}

// Update implements Observer.
func (o *LoggingObserver) Update(index int, value float64) {
	value = clamp(value)
	o.mu.Lock()
	last, seen := o.last[index]
	if seen && value < last+o.step && value < 1 {
		o.mu.Unlock()
		return
	}
	if seen && last >= 1 {
		o.mu.Unlock()
		return
	}
	o.last[index] = value
	o.mu.Unlock()

	o.logger.Debug("progress",
		logging.Int("source", index),
		logging.Float64("value", value),
	)
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
