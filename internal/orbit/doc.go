// Package orbit evaluates the iterative map z ← zᵖ + c, fits a default viewing
// window around the non-escaping region of parameter space, and classifies the
// long-run behaviour of individual orbits as divergent, convergent, cyclic, or
// chaotic/undetermined.
//
// Every operation in this package is a pure function of its inputs and of the
// read-only map configuration, so callers may classify points from any number
// of goroutines without locking.
package orbit
