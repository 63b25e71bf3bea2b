package cli

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/agbru/orbitcalc/internal/format"
	"github.com/agbru/orbitcalc/internal/orbit"
	"github.com/agbru/orbitcalc/internal/orchestration"
	"github.com/agbru/orbitcalc/internal/progress"
	"github.com/agbru/orbitcalc/internal/ui"
)

// CenterDecimals is the precision used for centers in the information panel.
const CenterDecimals = 2

// HistogramWidth is the width in characters of the longest histogram bar.
const HistogramWidth = 30

// CLIProgressReporter implements orchestration.ProgressReporter with a
// spinner and progress bar.
type CLIProgressReporter struct{}

// Verify that CLIProgressReporter implements orchestration.ProgressReporter.
var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress displays a spinner and progress bar for a running sweep.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.Update, numSources int, out io.Writer) {
	DisplayProgress(wg, progressChan, numSources, out)
}

// CLIResultPresenter implements orchestration.ResultPresenter for terminal
// output.
type CLIResultPresenter struct{}

// Verify interface compliance.
var _ orchestration.ResultPresenter = CLIResultPresenter{}

// DisplayClassification delegates to DisplayClassification.
func (CLIResultPresenter) DisplayClassification(out io.Writer, c complex128, result orbit.Classification, verbose bool) {
	DisplayClassification(out, c, result, verbose)
}

// DisplayViewport delegates to DisplayViewport.
func (CLIResultPresenter) DisplayViewport(out io.Writer, v orbit.Viewport) {
	DisplayViewport(out, v)
}

// DisplaySweepSummary delegates to DisplaySweepSummary.
func (CLIResultPresenter) DisplaySweepSummary(out io.Writer, result orchestration.SweepResult) {
	DisplaySweepSummary(out, result)
}

// KindColor returns the palette color of a classification kind.
func KindColor(k orbit.Kind) colorful.Color {
	return ui.PaletteColor(int(k), len(orbit.Kinds))
}

var kindDescriptions = map[orbit.Kind]string{
	orbit.Divergent:             "The orbit leaves the escape disc and tends to infinity.",
	orbit.Convergent:            "The orbit settles on a single point.",
	orbit.Cyclic:                "The orbit settles into a repeating cycle. The cycle often appears only after a transient.",
	orbit.ChaoticOrUndetermined: "No repeating pattern was found. The orbit is chaotic or the test depth was too small to tell.",
}

// FormatClassification returns the information panel lines for a
// classification: TYPE, then PERIOD or TEST DEPTH when present, then
// CENTER for every kind except divergent.
func FormatClassification(result orbit.Classification) []string {
	lines := []string{"TYPE: " + result.Kind.String()}
	if result.HasPeriod() {
		lines = append(lines, "PERIOD: "+strconv.Itoa(result.Period))
	}
	if result.HasTestDepth() {
		lines = append(lines, "TEST DEPTH: "+strconv.Itoa(result.TestDepth))
	}
	if result.Kind != orbit.Divergent {
		lines = append(lines, "CENTER: "+format.FormatComplex(result.Center, CenterDecimals))
	}
	return lines
}

// DisplayClassification renders the information panel for the parameter c.
// Verbose output adds the full-precision parameter and a description of the
// kind.
func DisplayClassification(out io.Writer, c complex128, result orbit.Classification, verbose bool) {
	styles := ui.CurrentStyles()
	lines := FormatClassification(result)
	lines[0] = styles.Label.Render("TYPE:") + " " + ui.Badge(result.Kind.String(), KindColor(result.Kind))
	if verbose {
		lines = append(lines, "", "POINT: "+format.FormatComplex(c, -1))
		if desc, ok := kindDescriptions[result.Kind]; ok {
			lines = append(lines, desc)
		}
	}
	fmt.Fprintln(out, styles.Panel.Render(strings.Join(lines, "\n")))
}

// DisplayViewport prints the fitted viewport.
func DisplayViewport(out io.Writer, v orbit.Viewport) {
	fmt.Fprintf(out, "Viewport: %sx%s [%.4f, %.4f]  %sy%s [%.4f, %.4f]\n",
		ui.ColorBold(), ui.ColorReset(), v.X.Min, v.X.Max,
		ui.ColorBold(), ui.ColorReset(), v.Y.Min, v.Y.Max)
	fmt.Fprintf(out, "Center:   %s%s%s\n", ui.ColorCyan(), format.FormatComplex(v.Center(), 4), ui.ColorReset())
}

// DisplaySweepSummary prints the kind counts of a sweep as a table followed
// by a histogram of the detected periods.
func DisplaySweepSummary(out io.Writer, result orchestration.SweepResult) {
	styles := ui.CurrentStyles()
	fmt.Fprintf(out, "\n%s\n", styles.Title.Render("Sweep Summary"))
	fmt.Fprintf(out, "Points: %s%s%s in %s%s%s\n",
		ui.ColorCyan(), format.FormatNumberString(strconv.Itoa(result.Points)), ui.ColorReset(),
		ui.ColorYellow(), format.FormatExecutionDuration(result.Duration), ui.ColorReset())

	nameWidth := len("Kind")
	for _, k := range orbit.Kinds {
		nameWidth = max(nameWidth, len(k.String()))
	}
	fmt.Fprintf(out, "%sKind%s%s   %sCount%s      %sShare%s\n",
		ui.ColorUnderline(), ui.ColorReset(), padRight("", nameWidth-len("Kind")),
		ui.ColorUnderline(), ui.ColorReset(),
		ui.ColorUnderline(), ui.ColorReset())
	for _, k := range orbit.Kinds {
		name := k.String()
		fmt.Fprintf(out, "%s%s   %10s %6.1f%%\n",
			ui.Badge(name, KindColor(k)), padRight("", nameWidth-len(name)),
			format.FormatNumberString(strconv.Itoa(result.Counts[k])),
			result.Fraction(k)*100)
	}
	if k, ok := result.Dominant(); ok {
		fmt.Fprintf(out, "Dominant: %s\n", ui.Badge(k.String(), KindColor(k)))
	}

	if len(result.Periods) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s\n", styles.Title.Render("Periods"))
	for _, line := range FormatPeriodHistogram(result.Periods, HistogramWidth) {
		fmt.Fprintln(out, line)
	}
}

// FormatPeriodHistogram renders one bar per period in ascending order,
// scaled so that the most frequent period spans width characters.
func FormatPeriodHistogram(periods map[int]int, width int) []string {
	keys := make([]int, 0, len(periods))
	peak := 0
	for p, n := range periods {
		keys = append(keys, p)
		peak = max(peak, n)
	}
	slices.Sort(keys)

	lines := make([]string, 0, len(keys))
	for _, p := range keys {
		n := periods[p]
		share := float64(n) / float64(peak)
		bar := strings.Repeat("█", max(1, int(share*float64(width))))
		lines = append(lines, fmt.Sprintf("%4d │ %s %s", p, ui.Badge(bar, ui.HeatColor(share)), format.FormatNumberString(strconv.Itoa(n))))
	}
	return lines
}

// DisplayTrace prints a traced pixel: its classification followed by at
// most limit orbit points with their screen coordinates. A point seen earlier
// in the orbit is marked with the step of its first visit. A limit of zero or
// less prints the whole orbit.
func DisplayTrace(out io.Writer, t *orbit.Trace, limit int, verbose bool) {
	DisplayClassification(out, t.Point, t.Classification, verbose)
	n := len(t.Orbit)
	if limit > 0 && limit < n {
		n = limit
	}
	fmt.Fprintf(out, "Orbit (%d of %d points):\n", n, len(t.Orbit))
	for i := 0; i < n; i++ {
		sp := t.ScreenAt(i)
		fmt.Fprintf(out, "  %4d  %s%-24s%s → (%.1f, %.1f)",
			i, ui.ColorCyan(), format.FormatComplex(t.Orbit[i], 6), ui.ColorReset(), sp.X, sp.Y)
		if sp.Step < i {
			fmt.Fprintf(out, "  ↺ %d", sp.Step)
		}
		fmt.Fprintln(out)
	}
}

// padRight returns s followed by length spaces.
func padRight(s string, length int) string {
	if length <= 0 {
		return s
	}
	return s + strings.Repeat(" ", length)
}
