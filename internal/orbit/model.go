package orbit

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	"github.com/agbru/orbitcalc/internal/pointmap"
)

// ErrNoViewport is returned by pixel-based queries before a viewport has
// been fitted.
var ErrNoViewport = errors.New("no viewport fitted")

// Config describes a map family member and its display margin.
type Config struct {
	Z0           complex128
	Power        float64
	EscapeRadius float64
	// Margin is the padding added around the non-escaping region when the
	// viewport is fitted.
	Margin float64
	// PatternWindow and Tolerance tune the classifier; zero selects the
	// defaults.
	PatternWindow int
	Tolerance     float64
}

// DefaultConfig returns the classic Mandelbrot configuration.
func DefaultConfig() Config {
	return Config{
		Z0:           0,
		Power:        DefaultPower,
		EscapeRadius: DefaultEscapeRadius,
		Margin:       DefaultMargin,
	}
}

// Model bundles a map, its classifier and the viewport fitted for it.
// The viewport is the only mutable state and is guarded for concurrent
// readers.
type Model struct {
	cfg        Config
	m          *IterativeMap
	classifier *Classifier

	mu       sync.RWMutex
	viewport *Viewport
}

// NewModel validates cfg and builds a model without a viewport.
func NewModel(cfg Config) (*Model, error) {
	m, err := NewIterativeMap(cfg.Z0, cfg.Power, cfg.EscapeRadius)
	if err != nil {
		return nil, err
	}
	return &Model{
		cfg:        cfg,
		m:          m,
		classifier: NewClassifier(m, WithPatternWindow(cfg.PatternWindow), WithTolerance(cfg.Tolerance)),
	}, nil
}

// Config returns the configuration the model was built with.
func (md *Model) Config() Config { return md.cfg }

// Map returns the underlying iterative map.
func (md *Model) Map() *IterativeMap { return md.m }

// Classifier returns the model's classifier.
func (md *Model) Classifier() *Classifier { return md.classifier }

// FitViewport fits and stores a viewport. opts.Margin is overridden by the
// model's margin. On failure the previous viewport is kept.
func (md *Model) FitViewport(opts FitOptions) (Viewport, error) {
	opts.Margin = md.cfg.Margin
	v, err := md.m.FitViewport(opts)
	if err != nil {
		return Viewport{}, err
	}
	if err := md.SetViewport(v); err != nil {
		return Viewport{}, err
	}
	return v, nil
}

// SetViewport replaces the stored viewport. An invalid viewport is rejected
// and the previous one is kept.
func (md *Model) SetViewport(v Viewport) error {
	if err := v.Validate(); err != nil {
		return err
	}
	md.mu.Lock()
	md.viewport = &v
	md.mu.Unlock()
	return nil
}

// Viewport returns the stored viewport and whether one has been fitted.
func (md *Model) Viewport() (Viewport, bool) {
	md.mu.RLock()
	defer md.mu.RUnlock()
	if md.viewport == nil {
		return Viewport{}, false
	}
	return *md.viewport, true
}

// Classify classifies the parameter c.
func (md *Model) Classify(c complex128, maxIterations int) (Classification, error) {
	return md.classifier.Classify(c, maxIterations)
}

// Locus is an item of a trace's point map: either a parameter-plane point
// or a screen coordinate.
type Locus interface{ locus() }

// ParamPoint is a point of the complex parameter plane.
type ParamPoint complex128

// ScreenPoint is a display coordinate on the model's canvas. Step is the
// orbit step that first visited the point, so two iterates drawn at the same
// pixel remain distinct items of the point map.
type ScreenPoint struct {
	X, Y float64
	Step int
}

func (ParamPoint) locus()  {}
func (ScreenPoint) locus() {}

// Trace is the result of querying a pixel: the parameter it maps to, the
// classification of its orbit, and the screen position of every orbit point.
type Trace struct {
	Point          complex128
	Classification Classification
	Orbit          []complex128
	// Pairs links each distinct orbit point to its screen coordinate.
	Pairs *pointmap.Map[Locus]
}

// ScreenOf returns the screen coordinate paired with an orbit point.
func (t *Trace) ScreenOf(z complex128) (ScreenPoint, error) {
	p, err := t.Pairs.PairOf(ParamPoint(z))
	if err != nil {
		return ScreenPoint{}, err
	}
	return p.(ScreenPoint), nil
}

// ScreenAt returns where Orbit[i] is drawn. NaN iterates have no pairing
// and are reported at (NaN, NaN).
func (t *Trace) ScreenAt(i int) ScreenPoint {
	if sp, err := t.ScreenOf(t.Orbit[i]); err == nil {
		return sp
	}
	return ScreenPoint{X: math.NaN(), Y: math.NaN(), Step: i}
}

// Trace maps pixel (px, py) of a width × height canvas through the fitted
// viewport, classifies the resulting parameter and pairs every distinct
// orbit point with its screen coordinate.
func (md *Model) Trace(px, py float64, width, height, maxIterations int) (*Trace, error) {
	v, ok := md.Viewport()
	if !ok {
		return nil, ErrNoViewport
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("canvas size must be positive, got %dx%d", width, height)
	}
	c := v.PointAt(px, py, width, height)
	if maxIterations <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMaxIterations, maxIterations)
	}

	seq := md.m.Orbit(c, maxIterations)
	t := &Trace{
		Point:          c,
		Classification: md.classifier.ClassifyOrbit(c, seq, maxIterations),
		Orbit:          seq,
		Pairs:          pointmap.New[Locus](),
	}
	for i, z := range seq {
		// NaN never equals itself, so it cannot be used as a map key.
		if cmplx.IsNaN(z) {
			continue
		}
		p := ParamPoint(z)
		if t.Pairs.Contains(p) {
			continue
		}
		sx, sy := v.PixelOf(z, width, height)
		sp := ScreenPoint{X: sx, Y: sy, Step: i}
		t.Pairs.Register(p, pointmap.KindSource)
		t.Pairs.Register(sp, pointmap.KindPaired)
		if err := t.Pairs.Associate(p, sp); err != nil {
			return nil, err
		}
	}
	return t, nil
}
