package orbit

// ─────────────────────────────────────────────────────────────────────────────
// Map Defaults
// ─────────────────────────────────────────────────────────────────────────────

const (
	// DefaultPower is the exponent of the classic Mandelbrot recurrence.
	DefaultPower = 2.0

	// DefaultEscapeRadius is the magnitude beyond which an iterate is
	// considered divergent. Any orbit leaving the disc of radius 2 escapes
	// for the quadratic family.
	DefaultEscapeRadius = 2.0

	// DefaultMargin is the symmetric padding added around the fitted
	// non-escaping region so that the set does not touch the viewport edges.
	DefaultMargin = 0.2

	// DefaultMaxIterations is the test depth used for interactive point
	// classification.
	DefaultMaxIterations = 512

	// maxExactPower is the largest integral exponent evaluated by repeated
	// squaring instead of cmplx.Pow.
	maxExactPower = 64
)

// ─────────────────────────────────────────────────────────────────────────────
// Viewport Fitting Defaults
// ─────────────────────────────────────────────────────────────────────────────

const (
	// DefaultScanDomain is the half-width D of the square [-D, D] × [-D, D]
	// scanned while fitting the viewport.
	DefaultScanDomain = 10.0

	// DefaultScanStep is the grid spacing of the fitting scan.
	DefaultScanStep = 0.05

	// DefaultDepthThreshold is the iteration depth a sample must survive to
	// be counted as non-escaping during the scan.
	DefaultDepthThreshold = 32

	// DefaultWidth and DefaultHeight are the fallback target dimensions used
	// when the caller does not supply a display size.
	DefaultWidth  = 1280
	DefaultHeight = 720
)

// ─────────────────────────────────────────────────────────────────────────────
// Classification Defaults
// ─────────────────────────────────────────────────────────────────────────────

const (
	// DefaultPatternWindow is the number of trailing orbit points handed to
	// the pattern detector.
	DefaultPatternWindow = 32

	// DefaultTolerance is the distance under which two orbit points are
	// considered equal by the pattern detector.
	DefaultTolerance = 0.00025
)
