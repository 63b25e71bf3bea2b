package orbit

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/agbru/orbitcalc/internal/pointmap"
)

func newSquareModel(t *testing.T) *Model {
	t.Helper()
	md, err := NewModel(DefaultConfig())
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if err := md.SetViewport(Viewport{X: NewRange(-2, 2), Y: NewRange(-2, 2)}); err != nil {
		t.Fatalf("SetViewport: %v", err)
	}
	return md
}

func TestNewModel_InvalidConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.EscapeRadius = 0
	if _, err := NewModel(cfg); !errors.Is(err, ErrInvalidEscapeRadius) {
		t.Errorf("error = %v, want ErrInvalidEscapeRadius", err)
	}
}

func TestModel_ClassifierUsesConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.PatternWindow = 16
	cfg.Tolerance = 1e-6
	md, err := NewModel(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if md.Classifier().PatternWindow() != 16 || md.Classifier().Tolerance() != 1e-6 {
		t.Errorf("classifier = (%d, %v)", md.Classifier().PatternWindow(), md.Classifier().Tolerance())
	}
	if md.Map().Power() != DefaultPower || md.Config() != cfg {
		t.Error("model does not expose its configuration")
	}
}

func TestModel_TraceRequiresViewport(t *testing.T) {
	t.Parallel()
	md, err := NewModel(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := md.Viewport(); ok {
		t.Fatal("new model should have no viewport")
	}
	if _, err := md.Trace(0, 0, 100, 100, 64); !errors.Is(err, ErrNoViewport) {
		t.Errorf("error = %v, want ErrNoViewport", err)
	}
}

func TestModel_TraceArgumentErrors(t *testing.T) {
	t.Parallel()
	md := newSquareModel(t)
	if _, err := md.Trace(0, 0, 0, 100, 64); err == nil {
		t.Error("expected an error for an empty canvas")
	}
	if _, err := md.Trace(0, 0, 100, 100, 0); !errors.Is(err, ErrInvalidMaxIterations) {
		t.Errorf("error = %v, want ErrInvalidMaxIterations", err)
	}
}

func TestModel_Trace(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		px, py     float64
		wantPoint  complex128
		wantKind   Kind
		wantLen    int
		wantSource []complex128
		screens    map[complex128]ScreenPoint
	}{
		{
			name:       "origin",
			px:         200,
			py:         200,
			wantPoint:  0,
			wantKind:   Convergent,
			wantLen:    64,
			wantSource: []complex128{0},
			screens:    map[complex128]ScreenPoint{0: {200, 200, 0}},
		},
		{
			name:       "preperiodic two-cycle",
			px:         200,
			py:         300,
			wantPoint:  1i,
			wantKind:   Cyclic,
			wantLen:    64,
			wantSource: []complex128{1i, -1 + 1i, -1i},
			screens: map[complex128]ScreenPoint{
				1i:      {200, 300, 0},
				-1 + 1i: {100, 300, 1},
				-1i:     {200, 100, 2},
			},
		},
		{
			name:       "escaping corner",
			px:         400,
			py:         400,
			wantPoint:  2 + 2i,
			wantKind:   Divergent,
			wantLen:    1,
			wantSource: []complex128{2 + 2i},
			screens:    map[complex128]ScreenPoint{2 + 2i: {400, 400, 0}},
		},
	}

	md := newSquareModel(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tr, err := md.Trace(tt.px, tt.py, 400, 400, 64)
			if err != nil {
				t.Fatalf("Trace: %v", err)
			}
			if tr.Point != tt.wantPoint {
				t.Errorf("Point = %v, want %v", tr.Point, tt.wantPoint)
			}
			if tr.Classification.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", tr.Classification.Kind, tt.wantKind)
			}
			if len(tr.Orbit) != tt.wantLen {
				t.Fatalf("orbit length = %d, want %d", len(tr.Orbit), tt.wantLen)
			}

			sources := tr.Pairs.All(pointmap.KindSource)
			if len(sources) != len(tt.wantSource) {
				t.Fatalf("sources = %v, want %v", sources, tt.wantSource)
			}
			for i, want := range tt.wantSource {
				if sources[i] != ParamPoint(want) {
					t.Errorf("source[%d] = %v, want %v", i, sources[i], want)
				}
			}
			if got := len(tr.Pairs.All(pointmap.KindPaired)); got != len(tt.wantSource) {
				t.Errorf("paired items = %d, want %d", got, len(tt.wantSource))
			}

			for z, want := range tt.screens {
				got, err := tr.ScreenOf(z)
				if err != nil {
					t.Fatalf("ScreenOf(%v): %v", z, err)
				}
				if got != want {
					t.Errorf("ScreenOf(%v) = %v, want %v", z, got, want)
				}
				back, err := tr.Pairs.PairOf(got)
				if err != nil || back != ParamPoint(z) {
					t.Errorf("PairOf(%v) = (%v, %v), want %v", got, back, err, z)
				}
			}
			for i, z := range tr.Orbit {
				if sp, err := tr.ScreenOf(z); err != nil || sp != tr.ScreenAt(i) {
					t.Errorf("ScreenAt(%d) = %v, pair = %v (%v)", i, tr.ScreenAt(i), sp, err)
				}
			}
		})
	}
}

func TestModel_TraceUnknownPoint(t *testing.T) {
	t.Parallel()
	md := newSquareModel(t)
	tr, err := md.Trace(200, 200, 400, 400, 8)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tr.ScreenOf(1); !errors.Is(err, pointmap.ErrNotRegistered) {
		t.Errorf("error = %v, want ErrNotRegistered", err)
	}
}

func TestModel_TracePairsEveryOrbitPoint(t *testing.T) {
	t.Parallel()
	md, err := NewModel(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := md.FitViewport(DefaultFitOptions()); err != nil {
		t.Fatal(err)
	}
	// Converged cycles put neighbouring iterates on the same pixel; each
	// must still resolve to its own screen item.
	const width, height = 1280, 720
	for py := 0; py < height; py += 32 {
		for px := 0; px < width; px += 32 {
			tr, err := md.Trace(float64(px), float64(py), width, height, 512)
			if err != nil {
				t.Fatalf("Trace(%d, %d): %v", px, py, err)
			}
			for i, z := range tr.Orbit {
				sp, err := tr.ScreenOf(z)
				if err != nil {
					t.Fatalf("pixel (%d, %d) step %d: ScreenOf(%v): %v", px, py, i, z, err)
				}
				if back, err := tr.Pairs.PairOf(sp); err != nil || back != ParamPoint(z) {
					t.Fatalf("pixel (%d, %d) step %d: PairOf(%v) = %v, %v", px, py, i, sp, back, err)
				}
			}
		}
	}
}

func TestModel_TraceRepeatedScreenPositions(t *testing.T) {
	t.Parallel()
	md := newSquareModel(t)
	// The orbit of -0.5 settles on a fixed point; late iterates differ by less than the canvas
	// resolution and land on the same coordinate.
	tr, err := md.Trace(1.5, 2, 4, 4, 512)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Point != complex(-0.5, 0) {
		t.Fatalf("point = %v, want -0.5", tr.Point)
	}
	for i, z := range tr.Orbit {
		if _, err := tr.ScreenOf(z); err != nil {
			t.Fatalf("step %d: ScreenOf(%v): %v", i, z, err)
		}
	}
	sources := tr.Pairs.All(pointmap.KindSource)
	if got := len(tr.Pairs.All(pointmap.KindPaired)); got != len(sources) {
		t.Errorf("paired items = %d, sources = %d", got, len(sources))
	}
}

func TestModel_FitViewport(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.Power = 1
	cfg.Margin = 0.1
	md, err := NewModel(cfg)
	if err != nil {
		t.Fatal(err)
	}
	opts := FitOptions{Width: 100, Height: 100, DepthThreshold: 32, ScanDomain: 1, ScanStep: 0.5, Margin: 5}

	v, err := md.FitViewport(opts)
	if err != nil {
		t.Fatalf("FitViewport: %v", err)
	}
	want := Viewport{X: NewRange(-0.1, 0.1), Y: NewRange(-0.1, 0.1)}
	if v != want {
		t.Errorf("viewport = %v, want %v (model margin must win)", v, want)
	}
	if stored, ok := md.Viewport(); !ok || stored != want {
		t.Errorf("stored viewport = %v, %v", stored, ok)
	}
}

func TestModel_SetViewportRejectsDegenerate(t *testing.T) {
	t.Parallel()
	md := newSquareModel(t)
	before, _ := md.Viewport()
	for _, v := range []Viewport{
		{X: NewRange(-1, -1), Y: NewRange(0, 0)},
		{X: NewRange(0, 1), Y: NewRange(1, 0)},
		{X: NewRange(math.NaN(), 1), Y: NewRange(0, 1)},
	} {
		if err := md.SetViewport(v); !errors.Is(err, ErrInvalidViewport) {
			t.Errorf("SetViewport(%v) = %v, want ErrInvalidViewport", v, err)
		}
	}
	if got, _ := md.Viewport(); got != before {
		t.Errorf("viewport = %v, want the previous %v", got, before)
	}
	tr, err := md.Trace(200, 300, 400, 400, 16)
	if err != nil {
		t.Fatal(err)
	}
	for i := range tr.Orbit {
		if sp := tr.ScreenAt(i); math.IsNaN(sp.X) || math.IsNaN(sp.Y) {
			t.Fatalf("ScreenAt(%d) = %v", i, sp)
		}
	}
}

func TestModel_SetViewportOnEmptyModel(t *testing.T) {
	t.Parallel()
	md, err := NewModel(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := md.SetViewport(Viewport{}); err == nil {
		t.Fatal("zero viewport accepted")
	}
	if _, ok := md.Viewport(); ok {
		t.Error("a rejected viewport should not count as fitted")
	}
	if _, err := md.Trace(0, 0, 10, 10, 8); !errors.Is(err, ErrNoViewport) {
		t.Errorf("Trace error = %v, want ErrNoViewport", err)
	}
}

func TestModel_FitViewportFailureKeepsPrevious(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.Z0 = 3
	md, err := NewModel(cfg)
	if err != nil {
		t.Fatal(err)
	}
	manual := Viewport{X: NewRange(-1, 1), Y: NewRange(-1, 1)}
	if err := md.SetViewport(manual); err != nil {
		t.Fatal(err)
	}

	opts := FitOptions{Width: 100, Height: 100, DepthThreshold: 16, ScanDomain: 2, ScanStep: 0.25}
	if _, err := md.FitViewport(opts); !errors.Is(err, ErrFittingFailed) {
		t.Fatalf("error = %v, want ErrFittingFailed", err)
	}
	if got, ok := md.Viewport(); !ok || got != manual {
		t.Errorf("viewport = %v, want the previous %v", got, manual)
	}
}

func TestModel_ConcurrentAccess(t *testing.T) {
	t.Parallel()
	md := newSquareModel(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := md.Trace(200, 300, 400, 400, 32); err != nil {
				t.Error(err)
			}
		}()
		go func(i int) {
			defer wg.Done()
			w := float64(i + 1)
			if err := md.SetViewport(Viewport{X: NewRange(-w, w), Y: NewRange(-w, w)}); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()
}
