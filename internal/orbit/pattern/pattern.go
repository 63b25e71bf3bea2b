// Package pattern finds the shortest approximately repeating unit in a short
// sequence of complex numbers.
//
// The detector is syntactic: it knows nothing about dynamics and only reports
// numeric repetition within a tolerance. The search is cubic in the sequence
// length, which is acceptable for the short orbit tails it is used on.
package pattern

import "math/cmplx"

// Distance returns the Euclidean distance between a and b on the complex plane.
func Distance(a, b complex128) float64 {
	return cmplx.Abs(a - b)
}

// IsApproxSubsequence reports whether sub occurs in lst up to tolerance.
// It holds when the two slices are exactly equal, or when some contiguous
// window of lst with the length of sub differs from it elementwise by less
// than tolerance. Every offset, including the last one, is tried.
func IsApproxSubsequence(sub, lst []complex128, tolerance float64) bool {
	if equal(sub, lst) {
		return true
	}
	if len(sub) > len(lst) {
		return false
	}
	for i := 0; i <= len(lst)-len(sub); i++ {
		if within(sub, lst[i:i+len(sub)], tolerance) {
			return true
		}
	}
	return false
}

// Find returns the shortest contiguous window of seq whose cyclic repetition
// reproduces the rest of seq within tolerance, or an empty slice when there
// is none.
//
// Candidate lengths run from 1 to len(seq)/2 and, for each length, start
// offsets from 0 to len(seq)-length. The first passing candidate wins, so
// ties resolve to the smallest length and then the smallest offset. The
// returned slice is a copy.
func Find(seq []complex128, tolerance float64) []complex128 {
	n := len(seq)
	rest := make([]complex128, 0, n)
	tiled := make([]complex128, 0, n)

	for a := 1; a <= n/2; a++ {
		for b := 0; b <= n-a; b++ {
			window := seq[b : b+a]

			rest = append(rest[:0], seq[:b]...)
			rest = append(rest, seq[b+a:]...)

			tiled = tiled[:0]
			for len(tiled) < len(rest) {
				tiled = append(tiled, window[len(tiled)%a])
			}

			if IsApproxSubsequence(tiled, rest, tolerance) {
				out := make([]complex128, a)
				copy(out, window)
				return out
			}
		}
	}
	return []complex128{}
}

// FindReal is Find for real-valued sequences.
func FindReal(seq []float64, tolerance float64) []float64 {
	cs := make([]complex128, len(seq))
	for i, v := range seq {
		cs[i] = complex(v, 0)
	}
	found := Find(cs, tolerance)
	out := make([]float64, len(found))
	for i, v := range found {
		out[i] = real(v)
	}
	return out
}

func equal(a, b []complex128) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func within(a, b []complex128, tolerance float64) bool {
	for i := range a {
		if !(Distance(a[i], b[i]) < tolerance) {
			return false
		}
	}
	return true
}
