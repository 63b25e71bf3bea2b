package config

import (
	"errors"
	"flag"
	"io"
	"testing"
	"time"

	apperrors "github.com/agbru/orbitcalc/internal/errors"
	"github.com/agbru/orbitcalc/internal/orbit"
)

func TestParseConfig_Defaults(t *testing.T) {
	t.Parallel()
	cfg, err := ParseConfig("orbitcalc", nil, io.Discard)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.MaxIterations != orbit.DefaultMaxIterations {
		t.Errorf("MaxIterations = %d, want %d", cfg.MaxIterations, orbit.DefaultMaxIterations)
	}
	if cfg.Power != 2 || cfg.Radius != 2 || cfg.Margin != 0.2 {
		t.Errorf("map defaults = (%v, %v, %v)", cfg.Power, cfg.Radius, cfg.Margin)
	}
	if cfg.Width != 1280 || cfg.Height != 720 {
		t.Errorf("canvas = %dx%d, want 1280x720", cfg.Width, cfg.Height)
	}
	if cfg.GridW != 64 || cfg.GridH != 36 {
		t.Errorf("grid = %dx%d, want 64x36", cfg.GridW, cfg.GridH)
	}
	if cfg.HasPoint || cfg.HasPixel {
		t.Error("no point should be selected by default")
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %s, want %s", cfg.Timeout, DefaultTimeout)
	}
}

func TestParseConfig_Flags(t *testing.T) {
	t.Parallel()
	args := []string{
		"-re", "-0.5", "-im", "0.25", "-n", "100", "-z0", "0.1+0.2i", "-power", "3",
		"-bounds", "legacy", "-grid", "10x5", "-workers", "2", "-q", "-v", "-no-color",
	}
	cfg, err := ParseConfig("orbitcalc", args, io.Discard)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if !cfg.HasPoint || cfg.Point() != complex(-0.5, 0.25) {
		t.Errorf("point = %v (set %v)", cfg.Point(), cfg.HasPoint)
	}
	if cfg.MaxIterations != 100 || cfg.Power != 3 || cfg.Z0 != complex(0.1, 0.2) {
		t.Errorf("unexpected map settings: %+v", cfg)
	}
	if cfg.GridW != 10 || cfg.GridH != 5 {
		t.Errorf("grid = %dx%d, want 10x5", cfg.GridW, cfg.GridH)
	}
	if !cfg.Quiet || !cfg.Verbose || !cfg.NoColor {
		t.Error("boolean shorthands not applied")
	}

	opts := cfg.ToFitOptions()
	if opts.Bounds != orbit.BoundsLegacy || opts.Workers != 2 || opts.Width != 1280 {
		t.Errorf("ToFitOptions = %+v", opts)
	}
	mc := cfg.ToModelConfig()
	if mc.Power != 3 || mc.Z0 != complex(0.1, 0.2) || mc.PatternWindow != orbit.DefaultPatternWindow {
		t.Errorf("ToModelConfig = %+v", mc)
	}
}

func TestParseConfig_Pixel(t *testing.T) {
	t.Parallel()
	cfg, err := ParseConfig("orbitcalc", []string{"-pixel", "640, 360.5"}, io.Discard)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if !cfg.HasPixel || cfg.PixelX != 640 || cfg.PixelY != 360.5 {
		t.Errorf("pixel = (%v, %v) set=%v", cfg.PixelX, cfg.PixelY, cfg.HasPixel)
	}
}

func TestParseConfig_Invalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		args []string
	}{
		{"zero depth", []string{"-n", "0"}},
		{"negative radius", []string{"-radius", "-1"}},
		{"negative margin", []string{"-margin", "-0.1"}},
		{"unknown bounds", []string{"-bounds", "loose"}},
		{"bad grid", []string{"-grid", "0x5"}},
		{"grid without separator", []string{"-grid", "64"}},
		{"grid over the cell cap", []string{"-grid", "4000x4000"}},
		{"grid product overflows", []string{"-grid", "4611686018427387904x4"}},
		{"bad pixel", []string{"-pixel", "abc"}},
		{"point and pixel", []string{"-re", "0", "-pixel", "1,2"}},
		{"unsupported shell", []string{"-completion", "powershell"}},
		{"zero step", []string{"-step", "0"}},
		{"tiny pattern window", []string{"-pattern-window", "1"}},
		{"stray argument", []string{"extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseConfig("orbitcalc", tt.args, io.Discard)
			var cfgErr apperrors.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error = %v, want ConfigError", err)
			}
			if apperrors.ExitCodeFor(err) != apperrors.ExitErrorConfig {
				t.Errorf("exit code = %d, want %d", apperrors.ExitCodeFor(err), apperrors.ExitErrorConfig)
			}
		})
	}
}

func TestParseConfig_FlagErrors(t *testing.T) {
	t.Parallel()
	if _, err := ParseConfig("orbitcalc", []string{"-h"}, io.Discard); !errors.Is(err, flag.ErrHelp) {
		t.Errorf("-h error = %v, want flag.ErrHelp", err)
	}
	if _, err := ParseConfig("orbitcalc", []string{"-z0", "nope"}, io.Discard); err == nil {
		t.Error("expected an error for an invalid -z0")
	}
}

func TestParseConfig_EnvOverrides(t *testing.T) {
	t.Setenv(EnvPrefix+"N", "64")
	t.Setenv(EnvPrefix+"RE", "-1")
	t.Setenv(EnvPrefix+"BOUNDS", "LEGACY")
	t.Setenv(EnvPrefix+"TIMEOUT", "30s")
	t.Setenv(EnvPrefix+"QUIET", "yes")
	t.Setenv(EnvPrefix+"Z0", "0.5i")

	cfg, err := ParseConfig("orbitcalc", nil, io.Discard)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.MaxIterations != 64 {
		t.Errorf("MaxIterations = %d, want 64", cfg.MaxIterations)
	}
	if !cfg.HasPoint || cfg.Re != -1 {
		t.Errorf("env point not applied: %v (set %v)", cfg.Point(), cfg.HasPoint)
	}
	if cfg.Bounds != "legacy" || cfg.Timeout != 30*time.Second || !cfg.Quiet || cfg.Z0 != 0.5i {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestParseConfig_FlagsWinOverEnv(t *testing.T) {
	t.Setenv(EnvPrefix+"N", "64")
	t.Setenv(EnvPrefix+"VERBOSE", "true")

	cfg, err := ParseConfig("orbitcalc", []string{"-n", "128", "-v=false"}, io.Discard)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.MaxIterations != 128 {
		t.Errorf("MaxIterations = %d, want the flag value 128", cfg.MaxIterations)
	}
	if cfg.Verbose {
		t.Error("explicit -v=false should win over ORBITCALC_VERBOSE")
	}
}

func TestParseConfig_InvalidEnvIgnored(t *testing.T) {
	t.Setenv(EnvPrefix+"N", "lots")
	cfg, err := ParseConfig("orbitcalc", nil, io.Discard)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.MaxIterations != orbit.DefaultMaxIterations {
		t.Errorf("MaxIterations = %d, want the default", cfg.MaxIterations)
	}
}

func TestParseBoolEnv(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		def  bool
		want bool
	}{
		{"TRUE", false, true},
		{"1", false, true},
		{"no", true, false},
		{"0", true, false},
		{"maybe", true, true},
	}
	for _, tt := range tests {
		if got := parseBoolEnv(tt.in, tt.def); got != tt.want {
			t.Errorf("parseBoolEnv(%q, %v) = %v", tt.in, tt.def, got)
		}
	}
}
