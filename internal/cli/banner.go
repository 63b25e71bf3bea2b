package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/orbitcalc/internal/config"
	"github.com/agbru/orbitcalc/internal/format"
	"github.com/agbru/orbitcalc/internal/ui"
)

// PrintExecutionConfig displays the map, the test depth and the runtime
// environment before a run.
//
// Parameters:
//   - cfg: The application configuration.
//   - out: The writer for standard output.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Map: %sz ← z^%g + c%s from z0 = %s%s%s, escape radius %s%g%s.\n",
		ui.ColorMagenta(), cfg.Power, ui.ColorReset(),
		ui.ColorCyan(), format.FormatComplex(cfg.Z0, -1), ui.ColorReset(),
		ui.ColorCyan(), cfg.Radius, ui.ColorReset())
	fmt.Fprintf(out, "Test depth %s%d%s with a timeout of %s%s%s.\n",
		ui.ColorMagenta(), cfg.MaxIterations, ui.ColorReset(), ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, %s%d%s workers, Go %s%s%s.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(),
		ui.ColorCyan(), cfg.Workers, ui.ColorReset(),
		ui.ColorCyan(), runtime.Version(), ui.ColorReset())
}

// PrintExecutionMode announces the selected mode.
func PrintExecutionMode(mode string, out io.Writer) {
	fmt.Fprintf(out, "Execution mode: %s%s%s.\n", ui.ColorGreen(), mode, ui.ColorReset())
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
