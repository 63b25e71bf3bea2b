package orbit

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ErrFittingFailed is returned when the viewport scan finds no non-escaping
// sample, or when the fitted ranges are degenerate.
var ErrFittingFailed = errors.New("viewport fitting failed")

// ErrInvalidViewport is returned for viewports with a non-positive or
// non-finite extent on either axis.
var ErrInvalidViewport = errors.New("invalid viewport")

// Range is a closed interval on one axis. Span is always Max - Min.
type Range struct {
	Min  float64
	Max  float64
	Span float64
}

// NewRange returns the range [lo, hi] with its span.
func NewRange(lo, hi float64) Range {
	return Range{Min: lo, Max: hi, Span: hi - lo}
}

func (r *Range) updateSpan() { r.Span = r.Max - r.Min }

// expand grows the range by delta on each side.
func (r *Range) expand(delta float64) {
	r.Min -= delta
	r.Max += delta
	r.updateSpan()
}

// Center returns the midpoint of the range.
func (r Range) Center() float64 { return r.Min + r.Span/2 }

// Viewport is the pair of axis ranges defining the visible region of the
// complex plane.
type Viewport struct {
	X Range
	Y Range
}

// Validate reports an error when either axis has a non-positive span or a
// non-finite bound.
func (v Viewport) Validate() error {
	for _, r := range [...]Range{v.X, v.Y} {
		if !(r.Span > 0) || math.IsInf(r.Span, 0) || math.IsInf(r.Min, 0) || math.IsInf(r.Max, 0) {
			return fmt.Errorf("%w: x=[%v, %v] y=[%v, %v]", ErrInvalidViewport, v.X.Min, v.X.Max, v.Y.Min, v.Y.Max)
		}
	}
	return nil
}

// PointAt maps pixel (px, py) of a width × height canvas to the parameter
// plane:
//
//	real = X.Min + (px/width)  * X.Span
//	imag = Y.Min + (py/height) * Y.Span
func (v Viewport) PointAt(px, py float64, width, height int) complex128 {
	return complex(
		v.X.Min+(px/float64(width))*v.X.Span,
		v.Y.Min+(py/float64(height))*v.Y.Span,
	)
}

// PixelOf is the inverse of PointAt.
func (v Viewport) PixelOf(c complex128, width, height int) (float64, float64) {
	return float64(width) * (real(c) - v.X.Min) / v.X.Span,
		float64(height) * (imag(c) - v.Y.Min) / v.Y.Span
}

// Center returns the parameter at the middle of the viewport.
func (v Viewport) Center() complex128 {
	return complex(v.X.Center(), v.Y.Center())
}

// String implements fmt.Stringer.
func (v Viewport) String() string {
	return fmt.Sprintf("x=[%.4f, %.4f] y=[%.4f, %.4f]", v.X.Min, v.X.Max, v.Y.Min, v.Y.Max)
}

// BoundsMode selects how the fitting scan accumulates its bounding box.
type BoundsMode int

const (
	// BoundsTight tracks the true minimum and maximum of the non-escaping
	// samples independently.
	BoundsTight BoundsMode = iota
	// BoundsLegacy seeds both ranges at zero and updates them with a
	// mutually exclusive max-else-min rule. The resulting box always
	// contains the origin.
	BoundsLegacy
)

// String implements fmt.Stringer.
func (b BoundsMode) String() string {
	if b == BoundsLegacy {
		return "legacy"
	}
	return "tight"
}

// ParseBoundsMode parses "tight" or "legacy".
func ParseBoundsMode(s string) (BoundsMode, error) {
	switch s {
	case "tight", "":
		return BoundsTight, nil
	case "legacy":
		return BoundsLegacy, nil
	}
	return BoundsTight, fmt.Errorf("unknown bounds mode %q (want tight or legacy)", s)
}

// FitOptions controls viewport fitting.
type FitOptions struct {
	// Width and Height give the target aspect ratio.
	Width, Height int
	// DepthThreshold is the escape count a sample must reach to count as
	// non-escaping.
	DepthThreshold int
	// ScanDomain is the half-width of the square scanned.
	ScanDomain float64
	// ScanStep is the grid spacing.
	ScanStep float64
	// Margin pads both ranges on each side before aspect correction.
	Margin float64
	// Bounds selects the bounding-box accumulation rule.
	Bounds BoundsMode
	// Workers bounds the number of columns scanned concurrently.
	// Values below 1 scan sequentially.
	Workers int
}

// DefaultFitOptions returns the options used when the caller supplies none.
func DefaultFitOptions() FitOptions {
	return FitOptions{
		Width:          DefaultWidth,
		Height:         DefaultHeight,
		DepthThreshold: DefaultDepthThreshold,
		ScanDomain:     DefaultScanDomain,
		ScanStep:       DefaultScanStep,
		Margin:         DefaultMargin,
		Bounds:         BoundsTight,
		Workers:        runtime.NumCPU(),
	}
}

func (o FitOptions) validate() error {
	switch {
	case o.Width <= 0 || o.Height <= 0:
		return fmt.Errorf("target size must be positive, got %dx%d", o.Width, o.Height)
	case o.DepthThreshold <= 0:
		return fmt.Errorf("depth threshold must be positive, got %d", o.DepthThreshold)
	case !(o.ScanDomain > 0) || math.IsInf(o.ScanDomain, 0):
		return fmt.Errorf("scan domain must be positive and finite, got %v", o.ScanDomain)
	case !(o.ScanStep > 0) || o.ScanStep > 2*o.ScanDomain:
		return fmt.Errorf("scan step must be in (0, %v], got %v", 2*o.ScanDomain, o.ScanStep)
	case math.IsNaN(o.Margin) || o.Margin < 0:
		return fmt.Errorf("margin must be non-negative, got %v", o.Margin)
	}
	return nil
}

// FittingError describes a failed viewport fit.
type FittingError struct {
	Options FitOptions
	Reason  string
}

// Error implements error.
func (e *FittingError) Error() string {
	return fmt.Sprintf("%s: %s (depth %d, domain ±%v, step %v)",
		ErrFittingFailed, e.Reason, e.Options.DepthThreshold, e.Options.ScanDomain, e.Options.ScanStep)
}

// Unwrap lets errors.Is match ErrFittingFailed.
func (e *FittingError) Unwrap() error { return ErrFittingFailed }

// FitViewport scans the parameter grid for non-escaping points and derives a
// padded, aspect-corrected viewport around them.
func (m *IterativeMap) FitViewport(opts FitOptions) (Viewport, error) {
	if err := opts.validate(); err != nil {
		return Viewport{}, &FittingError{Options: opts, Reason: err.Error()}
	}

	box, err := m.scan(opts)
	if err != nil {
		return Viewport{}, &FittingError{Options: opts, Reason: err.Error()}
	}
	if !box.found {
		return Viewport{}, &FittingError{Options: opts, Reason: "no sample point reached the depth threshold"}
	}

	x, y := box.x, box.y
	x.expand(opts.Margin)
	y.expand(opts.Margin)
	if err := (Viewport{X: x, Y: y}).Validate(); err != nil {
		return Viewport{}, &FittingError{Options: opts, Reason: "non-escaping region has zero extent"}
	}

	fitAspect(&x, &y, float64(opts.Width), float64(opts.Height))
	return Viewport{X: x, Y: y}, nil
}

// fitAspect widens whichever axis is under-sized so that x.Span/y.Span
// equals width/height.
func fitAspect(x, y *Range, width, height float64) {
	if x.Span/y.Span >= width/height {
		y.expand((x.Span*height - y.Span*width) / (2 * width))
	} else {
		x.expand((y.Span*width - x.Span*height) / (2 * height))
	}
}

// scan evaluates every grid sample and returns the bounding box of the
// non-escaping ones. Columns are distributed over an errgroup; the merged
// box does not depend on scheduling.
func (m *IterativeMap) scan(opts FitOptions) (boundingBox, error) {
	cols := gridSize(opts.ScanDomain, opts.ScanStep)
	boxes := make([]boundingBox, cols)

	var g errgroup.Group
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	} else {
		g.SetLimit(1)
	}
	for i := 0; i < cols; i++ {
		g.Go(func() error {
			x := -opts.ScanDomain + float64(i)*opts.ScanStep
			b := newBoundingBox(opts.Bounds)
			for j := 0; j < cols; j++ {
				y := -opts.ScanDomain + float64(j)*opts.ScanStep
				if m.EscapeCount(complex(x, y), opts.DepthThreshold) >= opts.DepthThreshold {
					b.include(x, y)
				}
			}
			boxes[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return boundingBox{}, err
	}

	merged := newBoundingBox(opts.Bounds)
	for _, b := range boxes {
		merged.merge(b)
	}
	return merged, nil
}

// gridSize returns the number of samples -d + i*step strictly below d.
func gridSize(d, step float64) int {
	n := 0
	for -d+float64(n)*step < d {
		n++
	}
	return n
}

// boundingBox accumulates the extent of the non-escaping samples.
type boundingBox struct {
	mode  BoundsMode
	x, y  Range
	found bool
}

func newBoundingBox(mode BoundsMode) boundingBox {
	return boundingBox{mode: mode}
}

func (b *boundingBox) include(x, y float64) {
	if b.mode == BoundsLegacy {
		legacyInclude(&b.x, x)
		legacyInclude(&b.y, y)
		b.found = true
		return
	}
	if !b.found {
		b.x = NewRange(x, x)
		b.y = NewRange(y, y)
		b.found = true
		return
	}
	b.x.Min = math.Min(b.x.Min, x)
	b.x.Max = math.Max(b.x.Max, x)
	b.y.Min = math.Min(b.y.Min, y)
	b.y.Max = math.Max(b.y.Max, y)
	b.x.updateSpan()
	b.y.updateSpan()
}

// legacyInclude reproduces the either/or update: a value that raises the
// maximum is never also considered for the minimum.
func legacyInclude(r *Range, v float64) {
	if r.Max <= v {
		r.Max = v
	} else if r.Min > v {
		r.Min = v
	}
	r.updateSpan()
}

// merge folds other into b by including its corners.
func (b *boundingBox) merge(other boundingBox) {
	if !other.found {
		return
	}
	b.include(other.x.Min, other.y.Min)
	b.include(other.x.Max, other.y.Max)
}
