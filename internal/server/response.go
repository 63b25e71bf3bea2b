package server

import (
	"math"
	"strconv"
	"time"

	"github.com/agbru/orbitcalc/internal/metrics"
	"github.com/agbru/orbitcalc/internal/orbit"
	"github.com/agbru/orbitcalc/internal/orchestration"
	"github.com/agbru/orbitcalc/internal/sysmon"
)

// jsonFloat encodes non-finite values as null, which encoding/json rejects.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// ComplexJSON is a complex number on the wire.
type ComplexJSON struct {
	Re jsonFloat `json:"re"`
	Im jsonFloat `json:"im"`
}

func complexJSON(z complex128) ComplexJSON {
	return ComplexJSON{Re: jsonFloat(real(z)), Im: jsonFloat(imag(z))}
}

// PixelJSON is a canvas coordinate on the wire.
type PixelJSON struct {
	X jsonFloat `json:"x"`
	Y jsonFloat `json:"y"`
}

// RangeJSON is an interval on the wire.
type RangeJSON struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Span float64 `json:"span"`
}

// ClassificationResponse is the body of /classify and part of /pixel.
type ClassificationResponse struct {
	Point         ComplexJSON  `json:"point"`
	Kind          string       `json:"kind"`
	Center        *ComplexJSON `json:"center,omitempty"`
	Period        int          `json:"period,omitempty"`
	TestDepth     int          `json:"test_depth,omitempty"`
	MaxIterations int          `json:"max_iterations"`
}

func newClassificationResponse(c complex128, res orbit.Classification, n int) ClassificationResponse {
	out := ClassificationResponse{
		Point:         complexJSON(c),
		Kind:          res.Kind.String(),
		Period:        res.Period,
		TestDepth:     res.TestDepth,
		MaxIterations: n,
	}
	// A divergent orbit has no meaningful center.
	if res.Kind != orbit.Divergent {
		center := complexJSON(res.Center)
		out.Center = &center
	}
	return out
}

// ViewportResponse is the body of /viewport.
type ViewportResponse struct {
	X      RangeJSON   `json:"x"`
	Y      RangeJSON   `json:"y"`
	Center ComplexJSON `json:"center"`
	Width  int         `json:"width"`
	Height int         `json:"height"`
}

func newViewportResponse(v orbit.Viewport, width, height int) ViewportResponse {
	return ViewportResponse{
		X:      RangeJSON{Min: v.X.Min, Max: v.X.Max, Span: v.X.Span},
		Y:      RangeJSON{Min: v.Y.Min, Max: v.Y.Max, Span: v.Y.Span},
		Center: complexJSON(v.Center()),
		Width:  width,
		Height: height,
	}
}

// OrbitPointJSON pairs an orbit point with its screen position.
type OrbitPointJSON struct {
	Z         ComplexJSON `json:"z"`
	Screen    PixelJSON   `json:"screen"`
	FirstStep int         `json:"first_step"`
}

// TraceResponse is the body of /pixel.
type TraceResponse struct {
	Pixel          PixelJSON              `json:"pixel"`
	Classification ClassificationResponse `json:"classification"`
	OrbitLength    int                    `json:"orbit_length"`
	Orbit          []OrbitPointJSON       `json:"orbit"`
}

func newTraceResponse(px, py float64, t *orbit.Trace, n, limit int) TraceResponse {
	count := min(len(t.Orbit), limit)
	points := make([]OrbitPointJSON, count)
	for i := range count {
		sp := t.ScreenAt(i)
		points[i] = OrbitPointJSON{
			Z:         complexJSON(t.Orbit[i]),
			Screen:    PixelJSON{X: jsonFloat(sp.X), Y: jsonFloat(sp.Y)},
			FirstStep: sp.Step,
		}
	}
	return TraceResponse{
		Pixel:          PixelJSON{X: jsonFloat(px), Y: jsonFloat(py)},
		Classification: newClassificationResponse(t.Point, t.Classification, n),
		OrbitLength:    len(t.Orbit),
		Orbit:          points,
	}
}

// SweepResponse is the body of /sweep.
type SweepResponse struct {
	Points     int            `json:"points"`
	Counts     map[string]int `json:"counts"`
	Periods    map[int]int    `json:"periods"`
	Dominant   string         `json:"dominant,omitempty"`
	DurationMS int64          `json:"duration_ms"`
}

func newSweepResponse(r orchestration.SweepResult) SweepResponse {
	out := SweepResponse{
		Points:     r.Points,
		Counts:     make(map[string]int, len(orbit.Kinds)),
		Periods:    r.Periods,
		DurationMS: r.Duration.Milliseconds(),
	}
	if out.Periods == nil {
		out.Periods = map[int]int{}
	}
	for _, k := range orbit.Kinds {
		out.Counts[kindLabel(k)] = r.Counts[k]
	}
	if k, ok := r.Dominant(); ok {
		out.Dominant = k.String()
	}
	return out
}

// HealthResponse is the body of /health.
type HealthResponse struct {
	Status   string      `json:"status"`
	Viewport bool        `json:"viewport"`
	Uptime   string      `json:"uptime,omitempty"`
	Memory   MemoryJSON  `json:"memory"`
	System   *SystemJSON `json:"system,omitempty"`
}

// MemoryJSON reports the process heap.
type MemoryJSON struct {
	HeapAlloc   uint64 `json:"heap_alloc_bytes"`
	HeapObjects uint64 `json:"heap_objects"`
	NumGC       uint32 `json:"gc_cycles"`
}

// SystemJSON reports host-wide usage.
type SystemJSON struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemPercent float64 `json:"mem_percent"`
}

func newHealthResponse(fitted bool, started time.Time, mem metrics.MemorySnapshot, sys *sysmon.Stats) HealthResponse {
	out := HealthResponse{
		Status:   "ok",
		Viewport: fitted,
		Uptime:   uptime(started),
		Memory: MemoryJSON{
			HeapAlloc:   mem.HeapAlloc,
			HeapObjects: mem.HeapObjects,
			NumGC:       mem.NumGC,
		},
	}
	if sys != nil {
		out.System = &SystemJSON{CPUPercent: sys.CPUPercent, MemPercent: sys.MemPercent}
	}
	return out
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

func uptime(since time.Time) string {
	if since.IsZero() {
		return ""
	}
	return time.Since(since).Round(time.Second).String()
}
