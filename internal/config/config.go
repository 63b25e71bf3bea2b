// Package config handles command-line and environment configuration for
// orbitcalc.
package config

import (
	"flag"
	"fmt"
	"io"
	"math"
	"runtime"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/agbru/orbitcalc/internal/errors"
	"github.com/agbru/orbitcalc/internal/orbit"
	"github.com/agbru/orbitcalc/internal/orchestration"
)

// EnvPrefix is the prefix of every environment variable override.
const EnvPrefix = "ORBITCALC_"

// DefaultTimeout bounds a single command-line run.
const DefaultTimeout = 5 * time.Minute

// DefaultGrid is the lattice classified by -sweep.
const DefaultGrid = "64x36"

// MaxGridCells caps the number of points a sweep may classify.
const MaxGridCells = orchestration.MaxSweepCells

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// Point selection.
	Re, Im   float64
	HasPoint bool
	Pixel    string
	PixelX   float64
	PixelY   float64
	HasPixel bool

	// MaxIterations is the classification test depth.
	MaxIterations int

	// Map family.
	Z0     complex128
	Power  float64
	Radius float64

	// Viewport fitting.
	Margin    float64
	Width     int
	Height    int
	Depth     int
	Domain    float64
	Step      float64
	Bounds    string
	Workers   int
	Tolerance float64
	Window    int

	// Modes.
	Sweep      bool
	Grid       string
	GridW      int
	GridH      int
	REPL       bool
	Serve      string
	Completion string
	Version    bool

	// Output.
	Timeout time.Duration
	Quiet   bool
	Verbose bool
	NoColor bool
}

// complexValue adapts a complex128 to flag.Value.
type complexValue struct{ p *complex128 }

func (v complexValue) String() string {
	if v.p == nil {
		return "0"
	}
	return strconv.FormatComplex(*v.p, 'g', -1, 128)
}

func (v complexValue) Set(s string) error {
	c, err := strconv.ParseComplex(strings.TrimSpace(s), 128)
	if err != nil {
		return fmt.Errorf("invalid complex number %q", s)
	}
	*v.p = c
	return nil
}

// ParseConfig parses args into an AppConfig. The priority is command-line
// flags, then ORBITCALC_ environment variables, then defaults.
//
// Parameters:
//   - programName: The name used in usage messages.
//   - args: The command-line arguments without the program name.
//   - errWriter: The destination of usage and parse errors.
//
// Returns:
//   - AppConfig: The parsed and validated configuration.
//   - error: flag.ErrHelp when -h was given, or a ConfigError.
func ParseConfig(programName string, args []string, errWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)

	cfg := AppConfig{}
	fs.Float64Var(&cfg.Re, "re", 0, "Real part of the parameter to classify.")
	fs.Float64Var(&cfg.Im, "im", 0, "Imaginary part of the parameter to classify.")
	fs.StringVar(&cfg.Pixel, "pixel", "", "Classify the parameter under canvas pixel \"x,y\".")
	fs.IntVar(&cfg.MaxIterations, "n", orbit.DefaultMaxIterations, "Maximum number of iterations (test depth).")
	fs.Var(complexValue{&cfg.Z0}, "z0", "Seed of every orbit, e.g. \"0.1+0.2i\".")
	fs.Float64Var(&cfg.Power, "power", orbit.DefaultPower, "Exponent p of z ← zᵖ + c.")
	fs.Float64Var(&cfg.Radius, "radius", orbit.DefaultEscapeRadius, "Escape radius.")
	fs.Float64Var(&cfg.Margin, "margin", orbit.DefaultMargin, "Padding around the fitted region.")
	fs.IntVar(&cfg.Width, "width", orbit.DefaultWidth, "Canvas width in pixels.")
	fs.IntVar(&cfg.Height, "height", orbit.DefaultHeight, "Canvas height in pixels.")
	fs.IntVar(&cfg.Depth, "depth", orbit.DefaultDepthThreshold, "Iteration depth of the fitting scan.")
	fs.Float64Var(&cfg.Domain, "domain", orbit.DefaultScanDomain, "Half-width of the square scanned while fitting.")
	fs.Float64Var(&cfg.Step, "step", orbit.DefaultScanStep, "Grid spacing of the fitting scan.")
	fs.StringVar(&cfg.Bounds, "bounds", "tight", "Bounding-box rule of the fitting scan (tight, legacy).")
	fs.IntVar(&cfg.Workers, "workers", runtime.NumCPU(), "Number of concurrent workers.")
	fs.Float64Var(&cfg.Tolerance, "tolerance", orbit.DefaultTolerance, "Pattern matching tolerance.")
	fs.IntVar(&cfg.Window, "pattern-window", orbit.DefaultPatternWindow, "Number of trailing orbit points searched for a cycle.")
	fs.BoolVar(&cfg.Sweep, "sweep", false, "Classify a grid of pixels and print a summary.")
	fs.StringVar(&cfg.Grid, "grid", DefaultGrid, "Sweep resolution as WxH.")
	fs.BoolVar(&cfg.REPL, "repl", false, "Start the interactive mode.")
	fs.StringVar(&cfg.Serve, "serve", "", "Serve the HTTP API on this address (e.g. :8080).")
	fs.StringVar(&cfg.Completion, "completion", "", "Generate a completion script (bash, zsh, fish).")
	fs.DurationVar(&cfg.Timeout, "timeout", DefaultTimeout, "Maximum execution time.")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "Minimal output for scripts.")
	fs.BoolVar(&cfg.Quiet, "q", false, "Shorthand for -quiet.")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Verbose output with debug logging.")
	fs.BoolVar(&cfg.Verbose, "v", false, "Shorthand for -verbose.")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output.")
	fs.BoolVar(&cfg.Version, "version", false, "Show version information.")
	fs.BoolVar(&cfg.Version, "V", false, "Shorthand for -version.")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		return AppConfig{}, apperrors.NewConfigError("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	applyEnvOverrides(&cfg, fs)
	cfg.HasPoint = isFlagSetAny(fs, "re", "im") || cfg.HasPoint

	if err := cfg.resolve(); err != nil {
		return AppConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// resolve parses the composite string flags.
func (c *AppConfig) resolve() error {
	if c.Pixel != "" {
		x, y, err := ParsePixel(c.Pixel)
		if err != nil {
			return err
		}
		c.PixelX, c.PixelY, c.HasPixel = x, y, true
	}
	w, h, err := ParseGrid(c.Grid)
	if err != nil {
		return err
	}
	c.GridW, c.GridH = w, h
	return nil
}

// ParsePixel parses "x,y" into canvas coordinates.
func ParsePixel(s string) (float64, float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, apperrors.NewConfigError("invalid pixel %q (want x,y)", s)
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errX != nil || errY != nil {
		return 0, 0, apperrors.NewConfigError("invalid pixel %q (want x,y)", s)
	}
	return x, y, nil
}

// ParseGrid parses "WxH" into a sweep resolution.
func ParseGrid(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, apperrors.NewConfigError("invalid grid %q (want WxH)", s)
	}
	w, errW := strconv.Atoi(strings.TrimSpace(ws))
	h, errH := strconv.Atoi(strings.TrimSpace(hs))
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, apperrors.NewConfigError("invalid grid %q (want WxH with positive sizes)", s)
	}
	if orchestration.GridCells(w, h) > MaxGridCells {
		return 0, 0, apperrors.NewConfigError("grid %q has more than %d cells", s, MaxGridCells)
	}
	return w, h, nil
}

// Validate checks the semantic consistency of the configuration.
//
// Returns:
//   - error: A ConfigError describing the first invalid setting.
func (c AppConfig) Validate() error {
	switch {
	case c.MaxIterations <= 0:
		return apperrors.NewConfigError("-n must be positive, got %d", c.MaxIterations)
	case !finite(c.Power):
		return apperrors.NewConfigError("-power must be finite, got %v", c.Power)
	case !finite(c.Radius) || c.Radius <= 0:
		return apperrors.NewConfigError("-radius must be positive, got %v", c.Radius)
	case !finite(c.Margin) || c.Margin < 0:
		return apperrors.NewConfigError("-margin must be non-negative, got %v", c.Margin)
	case c.Width <= 0 || c.Height <= 0:
		return apperrors.NewConfigError("-width and -height must be positive, got %dx%d", c.Width, c.Height)
	case c.Depth <= 0:
		return apperrors.NewConfigError("-depth must be positive, got %d", c.Depth)
	case !finite(c.Domain) || c.Domain <= 0:
		return apperrors.NewConfigError("-domain must be positive, got %v", c.Domain)
	case !finite(c.Step) || c.Step <= 0 || c.Step > 2*c.Domain:
		return apperrors.NewConfigError("-step must be in (0, %v], got %v", 2*c.Domain, c.Step)
	case c.Workers <= 0:
		return apperrors.NewConfigError("-workers must be positive, got %d", c.Workers)
	case !finite(c.Tolerance) || c.Tolerance <= 0:
		return apperrors.NewConfigError("-tolerance must be positive, got %v", c.Tolerance)
	case c.Window < 2:
		return apperrors.NewConfigError("-pattern-window must be at least 2, got %d", c.Window)
	case c.Timeout <= 0:
		return apperrors.NewConfigError("-timeout must be positive, got %s", c.Timeout)
	case c.HasPoint && c.HasPixel:
		return apperrors.NewConfigError("-re/-im and -pixel are mutually exclusive")
	}
	if _, err := orbit.ParseBoundsMode(c.Bounds); err != nil {
		return apperrors.NewConfigError("-bounds: %v", err)
	}
	switch c.Completion {
	case "", "bash", "zsh", "fish":
	default:
		return apperrors.NewConfigError("unsupported shell %q for -completion (bash, zsh, fish)", c.Completion)
	}
	return nil
}

// Point returns the parameter selected with -re/-im.
func (c AppConfig) Point() complex128 { return complex(c.Re, c.Im) }

// ToModelConfig converts the map settings into an orbit.Config.
func (c AppConfig) ToModelConfig() orbit.Config {
	return orbit.Config{
		Z0:            c.Z0,
		Power:         c.Power,
		EscapeRadius:  c.Radius,
		Margin:        c.Margin,
		PatternWindow: c.Window,
		Tolerance:     c.Tolerance,
	}
}

// ToFitOptions converts the fitting settings into orbit.FitOptions.
// Bounds has already been validated.
func (c AppConfig) ToFitOptions() orbit.FitOptions {
	mode, _ := orbit.ParseBoundsMode(c.Bounds)
	return orbit.FitOptions{
		Width:          c.Width,
		Height:         c.Height,
		DepthThreshold: c.Depth,
		ScanDomain:     c.Domain,
		ScanStep:       c.Step,
		Margin:         c.Margin,
		Bounds:         mode,
		Workers:        c.Workers,
	}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
