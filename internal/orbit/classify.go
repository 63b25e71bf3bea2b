package orbit

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/agbru/orbitcalc/internal/orbit/pattern"
)

// ErrInvalidMaxIterations is returned when a classification is requested
// with a non-positive test depth.
var ErrInvalidMaxIterations = errors.New("max iterations must be positive")

// Kind is the long-run behaviour of an orbit.
type Kind int

const (
	// Divergent orbits leave the escape disc within the test depth.
	Divergent Kind = iota
	// Convergent orbits settle: their step distances do not grow on average.
	Convergent
	// Cyclic orbits end in an approximately repeating pattern.
	Cyclic
	// ChaoticOrUndetermined orbits stay bounded without a detectable pattern.
	ChaoticOrUndetermined
)

// Kinds lists every kind in declaration order.
var Kinds = []Kind{Divergent, Convergent, Cyclic, ChaoticOrUndetermined}

// String returns the lower-case label used in reports.
func (k Kind) String() string {
	switch k {
	case Divergent:
		return "divergent"
	case Convergent:
		return "convergent"
	case Cyclic:
		return "cyclic"
	case ChaoticOrUndetermined:
		return "chaotic or undetermined"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Classification is the result of classifying one parameter value.
type Classification struct {
	Kind Kind
	// Center is the orbit mean for convergent orbits and the queried
	// parameter otherwise.
	Center complex128
	// Period is the length of the detected pattern; zero unless Kind is Cyclic.
	Period int
	// TestDepth is the iteration depth that failed to reveal a pattern;
	// zero unless Kind is ChaoticOrUndetermined.
	TestDepth int
}

// HasPeriod reports whether the classification carries a period.
func (c Classification) HasPeriod() bool { return c.Period > 0 }

// HasTestDepth reports whether the classification carries a test depth.
func (c Classification) HasTestDepth() bool { return c.TestDepth > 0 }

// Classifier classifies orbits of an IterativeMap.
type Classifier struct {
	m             *IterativeMap
	patternWindow int
	tolerance     float64
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithPatternWindow sets how many trailing orbit points are searched for a
// repeating pattern. Non-positive values are ignored.
func WithPatternWindow(n int) ClassifierOption {
	return func(c *Classifier) {
		if n > 0 {
			c.patternWindow = n
		}
	}
}

// WithTolerance sets the distance under which orbit points are considered
// equal by the pattern detector. Non-positive values are ignored.
func WithTolerance(t float64) ClassifierOption {
	return func(c *Classifier) {
		if t > 0 {
			c.tolerance = t
		}
	}
}

// NewClassifier returns a classifier for m.
func NewClassifier(m *IterativeMap, opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		m:             m,
		patternWindow: DefaultPatternWindow,
		tolerance:     DefaultTolerance,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PatternWindow returns the number of trailing points searched for a pattern.
func (cl *Classifier) PatternWindow() int { return cl.patternWindow }

// Tolerance returns the pattern matching tolerance.
func (cl *Classifier) Tolerance() float64 { return cl.tolerance }

// Classify iterates c up to maxIterations times and classifies the orbit.
func (cl *Classifier) Classify(c complex128, maxIterations int) (Classification, error) {
	if maxIterations <= 0 {
		return Classification{}, fmt.Errorf("%w: got %d", ErrInvalidMaxIterations, maxIterations)
	}
	return cl.ClassifyOrbit(c, cl.m.Orbit(c, maxIterations), maxIterations), nil
}

// ClassifyOrbit classifies an orbit of c that was computed with the given
// test depth. Orbits shorter than maxIterations are divergent.
func (cl *Classifier) ClassifyOrbit(c complex128, orbit []complex128, maxIterations int) Classification {
	if len(orbit) < maxIterations {
		return Classification{Kind: Divergent, Center: c}
	}

	center := mean(orbit)
	if isConvergent(orbit, distanceWindow(maxIterations, center)) {
		return Classification{Kind: Convergent, Center: center}
	}

	found := pattern.Find(tail(orbit, cl.patternWindow), cl.tolerance)
	if len(found) == 0 || len(found) == cl.patternWindow/4+1 {
		return Classification{Kind: ChaoticOrUndetermined, Center: c, TestDepth: maxIterations}
	}
	return Classification{Kind: Cyclic, Center: c, Period: len(found)}
}

// distanceWindow returns how many consecutive step distances take part in
// the convergence test. It shrinks towards zero for orbits centred near the
// origin and approaches the full depth for distant centres.
func distanceWindow(maxIterations int, center complex128) int {
	w := int(float64(maxIterations) * (1 - math.Exp(-cmplx.Abs(center))))
	if w < 0 {
		return 0
	}
	return w
}

// isConvergent reports whether every step distance d[i] in the first w
// steps is at least the mean of the distances after it.
func isConvergent(orbit []complex128, w int) bool {
	w = min(w, len(orbit)-1)
	if w < 2 {
		return true
	}
	d := make([]float64, w)
	for i := range d {
		d[i] = pattern.Distance(orbit[i], orbit[i+1])
	}

	// Walk backwards keeping the suffix sum of d[i+1:].
	var suffix float64
	for i := w - 2; i >= 0; i-- {
		suffix += d[i+1]
		if d[i] < suffix/float64(w-1-i) {
			return false
		}
	}
	return true
}

func mean(orbit []complex128) complex128 {
	var re, im float64
	for _, z := range orbit {
		re += real(z)
		im += imag(z)
	}
	n := float64(len(orbit))
	return complex(re/n, im/n)
}

// tail returns the last n points of orbit, or all of them when it is shorter.
func tail(orbit []complex128, n int) []complex128 {
	if len(orbit) <= n {
		return orbit
	}
	return orbit[len(orbit)-n:]
}
