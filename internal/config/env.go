// This file contains environment variable utilities for configuration override.

package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Environment Variable Utilities
// ─────────────────────────────────────────────────────────────────────────────

// isFlagSet checks if a flag was explicitly set on the command line.
// This is used to determine whether to apply environment variable overrides.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isFlagSetAny checks if any of the specified flags were explicitly set.
// This is useful for aliased flags where either the short or long form may be used.
func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// envOverride declares a single environment variable override.
// Each entry maps an env key (without the ORBITCALC_ prefix) to the CLI flag
// name(s) it corresponds to and a function that applies the env value.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string)
}

// envOverrides is the declarative table of all environment variable overrides,
// grouped as numeric, duration, string and boolean.
var envOverrides = []envOverride{
	// Numeric overrides
	{"RE", []string{"re"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			c.Re, c.HasPoint = parsed, true
		}
	}},
	{"IM", []string{"im"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			c.Im, c.HasPoint = parsed, true
		}
	}},
	{"N", []string{"n"}, func(c *AppConfig, v string) { setInt(&c.MaxIterations, v) }},
	{"Z0", []string{"z0"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.ParseComplex(v, 128); err == nil {
			c.Z0 = parsed
		}
	}},
	{"POWER", []string{"power"}, func(c *AppConfig, v string) { setFloat(&c.Power, v) }},
	{"RADIUS", []string{"radius"}, func(c *AppConfig, v string) { setFloat(&c.Radius, v) }},
	{"MARGIN", []string{"margin"}, func(c *AppConfig, v string) { setFloat(&c.Margin, v) }},
	{"WIDTH", []string{"width"}, func(c *AppConfig, v string) { setInt(&c.Width, v) }},
	{"HEIGHT", []string{"height"}, func(c *AppConfig, v string) { setInt(&c.Height, v) }},
	{"DEPTH", []string{"depth"}, func(c *AppConfig, v string) { setInt(&c.Depth, v) }},
	{"DOMAIN", []string{"domain"}, func(c *AppConfig, v string) { setFloat(&c.Domain, v) }},
	{"STEP", []string{"step"}, func(c *AppConfig, v string) { setFloat(&c.Step, v) }},
	{"WORKERS", []string{"workers"}, func(c *AppConfig, v string) { setInt(&c.Workers, v) }},
	{"TOLERANCE", []string{"tolerance"}, func(c *AppConfig, v string) { setFloat(&c.Tolerance, v) }},
	{"PATTERN_WINDOW", []string{"pattern-window"}, func(c *AppConfig, v string) { setInt(&c.Window, v) }},

	// Duration overrides
	{"TIMEOUT", []string{"timeout"}, func(c *AppConfig, v string) {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.Timeout = parsed
		}
	}},

	// String overrides
	{"PIXEL", []string{"pixel"}, func(c *AppConfig, v string) { c.Pixel = v }},
	{"BOUNDS", []string{"bounds"}, func(c *AppConfig, v string) { c.Bounds = strings.ToLower(v) }},
	{"GRID", []string{"grid"}, func(c *AppConfig, v string) { c.Grid = v }},
	{"SERVE", []string{"serve"}, func(c *AppConfig, v string) { c.Serve = v }},

	// Boolean overrides
	{"VERBOSE", []string{"v", "verbose"}, func(c *AppConfig, v string) {
		c.Verbose = parseBoolEnv(v, c.Verbose)
	}},
	{"QUIET", []string{"quiet", "q"}, func(c *AppConfig, v string) {
		c.Quiet = parseBoolEnv(v, c.Quiet)
	}},
	{"NO_COLOR", []string{"no-color"}, func(c *AppConfig, v string) {
		c.NoColor = parseBoolEnv(v, c.NoColor)
	}},
	{"SWEEP", []string{"sweep"}, func(c *AppConfig, v string) {
		c.Sweep = parseBoolEnv(v, c.Sweep)
	}},
}

func setInt(dst *int, v string) {
	if parsed, err := strconv.Atoi(v); err == nil {
		*dst = parsed
	}
}

func setFloat(dst *float64, v string) {
	if parsed, err := strconv.ParseFloat(v, 64); err == nil {
		*dst = parsed
	}
}

// parseBoolEnv parses a boolean environment variable value.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false (case-insensitive).
// Returns defaultVal if the value is not recognized.
func parseBoolEnv(val string, defaultVal bool) bool {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}

// applyEnvOverrides applies environment variable values to the configuration
// for any flags that were not explicitly set on the command line.
// This implements the priority: CLI flags > Environment variables > Defaults.
//
// Supported environment variables (all prefixed with ORBITCALC_):
//   - RE, IM, N, Z0, POWER, RADIUS, MARGIN, WIDTH, HEIGHT, DEPTH, DOMAIN,
//     STEP, WORKERS, TOLERANCE, PATTERN_WINDOW, TIMEOUT, PIXEL, BOUNDS,
//     GRID, SERVE, VERBOSE, QUIET, NO_COLOR, SWEEP
//
// ORBITCALC_THEME is read separately by ui.InitTheme.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	for _, o := range envOverrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.envKey); val != "" {
			o.apply(config, val)
		}
	}
}
