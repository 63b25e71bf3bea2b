package orbit

import (
	"errors"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestFitViewport_Mandelbrot(t *testing.T) {
	t.Parallel()
	m := mustMap(t, 0, 2, 2)
	opts := DefaultFitOptions()
	opts.Workers = 4

	v, err := m.FitViewport(opts)
	if err != nil {
		t.Fatalf("FitViewport: %v", err)
	}
	if v.X.Min >= -2 || v.X.Max <= 0.4 {
		t.Errorf("x range %v does not cover [-2, 0.4]", v.X)
	}
	if math.Abs(v.Y.Min+v.Y.Max) > 1e-6 {
		t.Errorf("y range %v is not symmetric about the real axis", v.Y)
	}
	want := float64(opts.Width) / float64(opts.Height)
	if got := v.X.Span / v.Y.Span; math.Abs(got-want) > 1e-9 {
		t.Errorf("aspect = %v, want %v", got, want)
	}
	if err := v.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestFitViewport_SquareCanvasExpandsHeight(t *testing.T) {
	t.Parallel()
	m := mustMap(t, 0, 2, 2)
	opts := FitOptions{Width: 400, Height: 400, DepthThreshold: 32, ScanDomain: 2, ScanStep: 0.1, Margin: 0.2, Workers: 2}

	v, err := m.FitViewport(opts)
	if err != nil {
		t.Fatalf("FitViewport: %v", err)
	}
	if math.Abs(v.X.Min+2.2) > 1e-9 || math.Abs(v.X.Max-0.5) > 1e-9 {
		t.Errorf("x range = %v, want [-2.2, 0.5]", v.X)
	}
	if math.Abs(v.Y.Span-v.X.Span) > 1e-9 {
		t.Errorf("spans differ on a square canvas: %v vs %v", v.X.Span, v.Y.Span)
	}
}

func TestFitViewport_DeterministicAcrossWorkers(t *testing.T) {
	t.Parallel()
	m := mustMap(t, 0, 2, 2)
	opts := FitOptions{Width: 640, Height: 480, DepthThreshold: 32, ScanDomain: 3, ScanStep: 0.05, Margin: 0.2}

	var first Viewport
	for i, workers := range []int{0, 1, 3, 16} {
		opts.Workers = workers
		v, err := m.FitViewport(opts)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		if i == 0 {
			first = v
			continue
		}
		if v != first {
			t.Errorf("workers=%d: %v, want %v", workers, v, first)
		}
	}
}

func TestScan_MergesColumnBoxes(t *testing.T) {
	t.Parallel()
	m := mustMap(t, 0, 2, 2)
	opts := FitOptions{Width: 1, Height: 1, DepthThreshold: 32, ScanDomain: 3, ScanStep: 0.05, Bounds: BoundsTight}

	var first boundingBox
	for i, workers := range []int{1, 8} {
		opts.Workers = workers
		box, err := m.scan(opts)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		if !box.found || !(box.x.Min < -1.9) || !(box.x.Max > 0.2) {
			t.Fatalf("workers=%d: box = %+v", workers, box)
		}
		if i == 0 {
			first = box
		} else if box != first {
			t.Errorf("workers=%d: box = %+v, want %+v", workers, box, first)
		}
	}
}

func TestFitViewport_LegacyMatchesTightWhenOriginInside(t *testing.T) {
	t.Parallel()
	m := mustMap(t, 0, 2, 2)
	opts := FitOptions{Width: 800, Height: 600, DepthThreshold: 32, ScanDomain: 3, ScanStep: 0.05, Margin: 0.2, Workers: 4}

	tight, err := m.FitViewport(opts)
	if err != nil {
		t.Fatal(err)
	}
	opts.Bounds = BoundsLegacy
	legacy, err := m.FitViewport(opts)
	if err != nil {
		t.Fatal(err)
	}
	if tight != legacy {
		t.Errorf("legacy %v differs from tight %v", legacy, tight)
	}
}

func TestFitViewport_Failures(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		z0    complex128
		power float64
		opts  FitOptions
	}{
		{
			name:  "seed outside the disc",
			z0:    3,
			power: 2,
			opts:  FitOptions{Width: 100, Height: 100, DepthThreshold: 32, ScanDomain: 3, ScanStep: 0.1, Margin: 0.2, Workers: 2},
		},
		{
			name:  "single point without margin",
			power: 1,
			opts:  FitOptions{Width: 100, Height: 100, DepthThreshold: 32, ScanDomain: 1, ScanStep: 0.5},
		},
		{
			name:  "invalid step",
			power: 2,
			opts:  FitOptions{Width: 100, Height: 100, DepthThreshold: 32, ScanDomain: 1, ScanStep: 0},
		},
		{
			name:  "invalid size",
			power: 2,
			opts:  FitOptions{Width: 0, Height: 100, DepthThreshold: 32, ScanDomain: 1, ScanStep: 0.1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := mustMap(t, tt.z0, tt.power, 2)
			_, err := m.FitViewport(tt.opts)
			if !errors.Is(err, ErrFittingFailed) {
				t.Fatalf("error = %v, want ErrFittingFailed", err)
			}
			var fe *FittingError
			if !errors.As(err, &fe) {
				t.Fatalf("error %T is not a *FittingError", err)
			}
			if fe.Options != tt.opts {
				t.Errorf("FittingError.Options = %+v, want %+v", fe.Options, tt.opts)
			}
		})
	}
}

func TestFitViewport_SinglePointWithMargin(t *testing.T) {
	t.Parallel()
	// z ← z + c stays bounded for 32 steps only near c = 0.
	m := mustMap(t, 0, 1, 2)
	v, err := m.FitViewport(FitOptions{Width: 100, Height: 100, DepthThreshold: 32, ScanDomain: 1, ScanStep: 0.5, Margin: 0.1})
	if err != nil {
		t.Fatalf("FitViewport: %v", err)
	}
	want := Viewport{X: NewRange(-0.1, 0.1), Y: NewRange(-0.1, 0.1)}
	if v != want {
		t.Errorf("viewport = %v, want %v", v, want)
	}
}

func TestFitAspect(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name          string
		x, y          Range
		width, height float64
		wantX, wantY  Range
	}{
		{"wide region grows vertically", NewRange(0, 4), NewRange(0, 1), 1, 1, NewRange(0, 4), NewRange(-1.5, 2.5)},
		{"tall region grows horizontally", NewRange(0, 1), NewRange(0, 2), 2, 1, NewRange(-1.5, 2.5), NewRange(0, 2)},
		{"already matching", NewRange(0, 2), NewRange(0, 1), 2, 1, NewRange(0, 2), NewRange(0, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			x, y := tt.x, tt.y
			fitAspect(&x, &y, tt.width, tt.height)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("fitAspect = (%v, %v), want (%v, %v)", x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestBoundingBox_Modes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		mode         BoundsMode
		points       [][2]float64
		wantX, wantY Range
	}{
		{"tight positive quadrant", BoundsTight, [][2]float64{{3, 3}, {5, 5}}, NewRange(3, 5), NewRange(3, 5)},
		{"legacy positive quadrant keeps origin", BoundsLegacy, [][2]float64{{3, 3}, {5, 5}}, NewRange(0, 5), NewRange(0, 5)},
		{"tight mixed", BoundsTight, [][2]float64{{-1, 2}, {-3, 4}}, NewRange(-3, -1), NewRange(2, 4)},
		{"legacy mixed", BoundsLegacy, [][2]float64{{-1, 2}, {-3, 4}}, NewRange(-3, 0), NewRange(0, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := newBoundingBox(tt.mode)
			for _, p := range tt.points {
				b.include(p[0], p[1])
			}
			if !b.found || b.x != tt.wantX || b.y != tt.wantY {
				t.Errorf("box = (%v, %v), want (%v, %v)", b.x, b.y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestBoundingBox_MergeIsOrderIndependent(t *testing.T) {
	t.Parallel()
	points := [][2]float64{{-1, 2}, {4, -3}, {0.5, 0.5}, {-2, 1}}
	for _, mode := range []BoundsMode{BoundsTight, BoundsLegacy} {
		whole := newBoundingBox(mode)
		for _, p := range points {
			whole.include(p[0], p[1])
		}

		left, right := newBoundingBox(mode), newBoundingBox(mode)
		for i, p := range points {
			if i%2 == 0 {
				left.include(p[0], p[1])
			} else {
				right.include(p[0], p[1])
			}
		}
		merged := newBoundingBox(mode)
		merged.merge(right)
		merged.merge(newBoundingBox(mode))
		merged.merge(left)

		if merged.x != whole.x || merged.y != whole.y {
			t.Errorf("%v: merged (%v, %v), want (%v, %v)", mode, merged.x, merged.y, whole.x, whole.y)
		}
	}
}

func TestParseBoundsMode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    BoundsMode
		wantErr bool
	}{
		{"tight", BoundsTight, false},
		{"", BoundsTight, false},
		{"legacy", BoundsLegacy, false},
		{"loose", BoundsTight, true},
	}
	for _, tt := range tests {
		got, err := ParseBoundsMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseBoundsMode(%q) = (%v, %v)", tt.in, got, err)
		}
		if err == nil && got.String() != tt.want.String() {
			t.Errorf("round trip of %q gave %q", tt.in, got.String())
		}
	}
}

func TestViewport_PointAt(t *testing.T) {
	t.Parallel()
	v := Viewport{X: NewRange(-2, 2), Y: NewRange(-1, 1)}
	tests := []struct {
		px, py float64
		want   complex128
	}{
		{0, 0, complex(-2, -1)},
		{400, 100, complex(2, 1)},
		{200, 50, 0},
		{100, 75, complex(-1, 0.5)},
	}
	for _, tt := range tests {
		if got := v.PointAt(tt.px, tt.py, 400, 100); got != tt.want {
			t.Errorf("PointAt(%v, %v) = %v, want %v", tt.px, tt.py, got, tt.want)
		}
	}
	if got := v.Center(); got != 0 {
		t.Errorf("Center() = %v, want 0", got)
	}
}

func TestViewport_Validate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		v    Viewport
		ok   bool
	}{
		{"Square", Viewport{X: NewRange(-2, 2), Y: NewRange(-2, 2)}, true},
		{"Tiny", Viewport{X: NewRange(0, 1e-12), Y: NewRange(0, 1e-12)}, true},
		{"FlatY", Viewport{X: NewRange(0, 1), Y: NewRange(2, 2)}, false},
		{"Point", Viewport{X: NewRange(-1, -1), Y: NewRange(0, 0)}, false},
		{"Inverted", Viewport{X: NewRange(1, 0), Y: NewRange(0, 1)}, false},
		{"NaN", Viewport{X: NewRange(math.NaN(), 1), Y: NewRange(0, 1)}, false},
		{"Infinite", Viewport{X: NewRange(0, math.Inf(1)), Y: NewRange(0, 1)}, false},
		{"Zero", Viewport{}, false},
	}
	for _, tt := range tests {
		err := tt.v.Validate()
		if tt.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
		if !tt.ok && !errors.Is(err, ErrInvalidViewport) {
			t.Errorf("%s: error = %v, want ErrInvalidViewport", tt.name, err)
		}
	}
}

// TestViewport_PixelRoundTrip checks that PixelOf inverts PointAt.
func TestViewport_PixelRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	v := Viewport{X: NewRange(-2.93, 1.33), Y: NewRange(-1.2, 1.2)}
	properties.Property("PixelOf(PointAt(p)) = p", prop.ForAll(
		func(px, py float64) bool {
			x, y := v.PixelOf(v.PointAt(px, py, 1280, 720), 1280, 720)
			return math.Abs(x-px) < 1e-6 && math.Abs(y-py) < 1e-6
		},
		gen.Float64Range(0, 1280), gen.Float64Range(0, 720),
	))

	properties.TestingRun(t)
}
