package orbit

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

// ErrInvalidEscapeRadius is returned when a map is configured with a
// non-positive or non-finite escape radius.
var ErrInvalidEscapeRadius = errors.New("escape radius must be a positive finite number")

// ErrInvalidPower is returned when the exponent of the map is not finite.
var ErrInvalidPower = errors.New("power must be a finite number")

// IterativeMap evaluates z ← zᵖ + c from a fixed seed z0.
// It is immutable after construction and safe for concurrent use.
type IterativeMap struct {
	z0           complex128
	power        float64
	escapeRadius float64

	// exact is set when power is an integer in [0, maxExactPower].
	exact    bool
	intPower int
}

// NewIterativeMap creates a map with the given seed, exponent and escape
// radius. The exponent may be non-integral.
func NewIterativeMap(z0 complex128, power, escapeRadius float64) (*IterativeMap, error) {
	if math.IsNaN(escapeRadius) || math.IsInf(escapeRadius, 0) || escapeRadius <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidEscapeRadius, escapeRadius)
	}
	if math.IsNaN(power) || math.IsInf(power, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidPower, power)
	}
	m := &IterativeMap{z0: z0, power: power, escapeRadius: escapeRadius}
	if power >= 0 && power <= maxExactPower && power == math.Trunc(power) {
		m.exact = true
		m.intPower = int(power)
	}
	return m, nil
}

// Seed returns the starting value z0.
func (m *IterativeMap) Seed() complex128 { return m.z0 }

// Power returns the exponent p.
func (m *IterativeMap) Power() float64 { return m.power }

// EscapeRadius returns the divergence threshold.
func (m *IterativeMap) EscapeRadius() float64 { return m.escapeRadius }

// step applies one iteration of the recurrence.
func (m *IterativeMap) step(z, c complex128) complex128 {
	if m.exact {
		return ipow(z, m.intPower) + c
	}
	return cmplx.Pow(z, complex(m.power, 0)) + c
}

// EscapeCount returns the number of iterations performed before the orbit
// of c leaves the escape disc, capped at maxIterations. A result equal to
// maxIterations means the point did not escape within the tested depth.
func (m *IterativeMap) EscapeCount(c complex128, maxIterations int) int {
	n := 0
	z := m.z0
	for n < maxIterations && cmplx.Abs(z) <= m.escapeRadius {
		z = m.step(z, c)
		n++
	}
	return n
}

// Orbit returns the successive iterates of c, excluding the seed. Iteration
// stops at the first iterate outside the escape disc (which is included) or
// once maxIterations points have been produced, so len(Orbit(c, n)) always
// equals EscapeCount(c, n).
func (m *IterativeMap) Orbit(c complex128, maxIterations int) []complex128 {
	if maxIterations <= 0 {
		return []complex128{}
	}
	seq := make([]complex128, 0, min(maxIterations, 1024))
	z := m.z0
	for len(seq) < maxIterations && cmplx.Abs(z) <= m.escapeRadius {
		z = m.step(z, c)
		seq = append(seq, z)
	}
	return seq
}

// ipow raises z to a non-negative integer power by binary exponentiation.
// Go defines 0⁰ as 1 here, matching cmplx.Pow.
func ipow(z complex128, p int) complex128 {
	result := complex(1, 0)
	for p > 0 {
		if p&1 == 1 {
			result *= z
		}
		z *= z
		p >>= 1
	}
	return result
}
