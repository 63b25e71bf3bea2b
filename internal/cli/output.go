// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     They handle presentation logic and colorization.
//     Examples: [DisplayClassification], [DisplayQuietClassification], [DisplayProgress].
//
//   - Format* functions return formatted strings without performing I/O.
//     They are pure functions suitable for composition.
//     Examples: [FormatQuietClassification], [FormatPeriodHistogram].

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/agbru/orbitcalc/internal/format"
	"github.com/agbru/orbitcalc/internal/orbit"
	"github.com/agbru/orbitcalc/internal/orchestration"
)

// FormatQuietClassification formats a classification as a single
// uncolored line suitable for scripts, e.g. "cyclic period=3 center=(0.00+1.00i)".
func FormatQuietClassification(result orbit.Classification) string {
	fields := []string{strings.ReplaceAll(result.Kind.String(), " ", "-")}
	if result.HasPeriod() {
		fields = append(fields, fmt.Sprintf("period=%d", result.Period))
	}
	if result.HasTestDepth() {
		fields = append(fields, fmt.Sprintf("depth=%d", result.TestDepth))
	}
	if result.Kind != orbit.Divergent {
		fields = append(fields, "center="+format.FormatComplex(result.Center, CenterDecimals))
	}
	return strings.Join(fields, " ")
}

// DisplayQuietClassification writes FormatQuietClassification's line.
func DisplayQuietClassification(out io.Writer, result orbit.Classification) {
	fmt.Fprintln(out, FormatQuietClassification(result))
}

// FormatQuietSweep formats sweep counts as "points=N kind=count ..." in
// orbit.Kinds order.
func FormatQuietSweep(result orchestration.SweepResult) string {
	fields := []string{fmt.Sprintf("points=%d", result.Points)}
	for _, k := range orbit.Kinds {
		fields = append(fields, fmt.Sprintf("%s=%d", strings.ReplaceAll(k.String(), " ", "-"), result.Counts[k]))
	}
	return strings.Join(fields, " ")
}

// DisplayQuietSweep writes FormatQuietSweep's line.
func DisplayQuietSweep(out io.Writer, result orchestration.SweepResult) {
	fmt.Fprintln(out, FormatQuietSweep(result))
}
