package progress

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/agbru/orbitcalc/internal/logging"
)

type countingObserver struct {
	count atomic.Int64
}

func (o *countingObserver) Update(int, float64) {
	o.count.Add(1)
}

type recordingLogger struct {
	mu    sync.Mutex
	debug []string
}

func (l *recordingLogger) Info(string, ...logging.Field)         {}
func (l *recordingLogger) Error(string, error, ...logging.Field) {}
func (l *recordingLogger) Printf(string, ...any)                 {}
func (l *recordingLogger) Println(...any)                        {}
func (l *recordingLogger) Debug(msg string, _ ...logging.Field) {
	l.mu.Lock()
	l.debug = append(l.debug, msg)
	l.mu.Unlock()
}

func TestSubjectRegisterUnregister(t *testing.T) {
	t.Parallel()
	s := NewSubject()
	a, b := &countingObserver{}, &countingObserver{}
	s.Register(a)
	s.Register(b)
	s.Register(nil)
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}

	s.Notify(0, 0.5)
	s.Unregister(a)
	s.Notify(0, 1)

	if got := a.count.Load(); got != 1 {
		t.Errorf("a notified %d times, want 1", got)
	}
	if got := b.count.Load(); got != 2 {
		t.Errorf("b notified %d times, want 2", got)
	}
}

func TestFreezeSnapshotImmutability(t *testing.T) {
	t.Parallel()
	s := NewSubject()
	before := &countingObserver{}
	s.Register(before)

	callback := s.Freeze(0)

	after := &countingObserver{}
	s.Register(after)
	callback(0.5)

	if before.count.Load() != 1 {
		t.Errorf("observer registered before Freeze: count %d, want 1", before.count.Load())
	}
	if after.count.Load() != 0 {
		t.Errorf("observer registered after Freeze: count %d, want 0", after.count.Load())
	}
}

func TestFreezeConcurrent(t *testing.T) {
	t.Parallel()
	s := NewSubject()
	obs := &countingObserver{}
	s.Register(obs)

	callbacks := make([]Callback, 8)
	for i := range callbacks {
		callbacks[i] = s.Freeze(i)
	}

	var wg sync.WaitGroup
	for _, cb := range callbacks {
		wg.Add(1)
		go func(fn Callback) {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				fn(float64(j) / 500)
			}
		}(cb)
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Register(discard{})
		}()
	}
	wg.Wait()

	if got, want := obs.count.Load(), int64(8*500); got != want {
		t.Errorf("got %d updates, want %d", got, want)
	}
}

func TestChannelObserver(t *testing.T) {
	t.Parallel()
	ch := make(chan Update, 2)
	o := NewChannelObserver(ch)

	o.Update(1, 0.5)
	o.Update(2, 1.5)
	o.Update(3, 0.7) // dropped: channel full

	first, second := <-ch, <-ch
	if first != (Update{Index: 1, Value: 0.5}) {
		t.Errorf("first = %+v", first)
	}
	if second != (Update{Index: 2, Value: 1}) {
		t.Errorf("second = %+v, want value clamped to 1", second)
	}
	select {
	case u := <-ch:
		t.Errorf("unexpected update %+v", u)
	default:
	}

	NewChannelObserver(nil).Update(0, 0.5)
}

func TestLoggingObserver(t *testing.T) {
	t.Parallel()
	logger := &recordingLogger{}
	o := NewLoggingObserver(logger, 0.25)

	for _, v := range []float64{0, 0.1, 0.2, 0.3, 0.5, 0.6, 1, 1} {
		o.Update(0, v)
	}
	o.Update(1, 0.1)

	if got := len(logger.debug); got != 5 {
		t.Errorf("logged %d entries, want 5 (0, 0.3, 0.6, 1 for source 0 and one for source 1)", got)
	}
}

func TestLoggingObserver_DefaultStep(t *testing.T) {
	t.Parallel()
	for _, step := range []float64{0, -1, 2} {
		if o := NewLoggingObserver(&recordingLogger{}, step); o.step != 0.1 {
			t.Errorf("step %v: got %v, want 0.1", step, o.step)
		}
	}
}

type discard struct{}

func (discard) Update(int, float64) {}
