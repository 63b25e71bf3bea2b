package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/agbru/orbitcalc/internal/format"
	"github.com/agbru/orbitcalc/internal/orbit"
	"github.com/agbru/orbitcalc/internal/orbit/pattern"
	"github.com/agbru/orbitcalc/internal/ui"
)

// DefaultTraceLimit is the number of orbit points the pixel command prints.
const DefaultTraceLimit = 16

// REPLConfig holds configuration for the REPL session.
type REPLConfig struct {
	// MaxIterations is the initial test depth.
	MaxIterations int
	// Width and Height give the canvas the pixel command maps through the
	// viewport.
	Width, Height int
	// TraceLimit caps the orbit points printed by the pixel command.
	TraceLimit int
	// Verbose adds descriptions to every classification panel.
	Verbose bool
}

// REPL is an interactive classification session over a model.
type REPL struct {
	config REPLConfig
	model  *orbit.Model
	in     io.Reader
	out    io.Writer
}

// NewREPL creates a new REPL bound to model. The model should have a
// fitted viewport for the pixel command to work.
func NewREPL(model *orbit.Model, config REPLConfig) *REPL {
	if config.MaxIterations <= 0 {
		config.MaxIterations = orbit.DefaultMaxIterations
	}
	if config.Width <= 0 || config.Height <= 0 {
		config.Width, config.Height = orbit.DefaultWidth, orbit.DefaultHeight
	}
	if config.TraceLimit <= 0 {
		config.TraceLimit = DefaultTraceLimit
	}
	return &REPL{
		config: config,
		model:  model,
		in:     os.Stdin,
		out:    os.Stdout,
	}
}

// SetInput sets a custom input reader (useful for testing).
func (r *REPL) SetInput(in io.Reader) {
	r.in = in
}

// SetOutput sets a custom output writer (useful for testing).
func (r *REPL) SetOutput(out io.Writer) {
	r.out = out
}

// Start runs the session until the user exits or input ends.
func (r *REPL) Start() {
	r.printBanner()
	r.printHelp()
	fmt.Fprintln(r.out)

	reader := bufio.NewReader(r.in)

	for {
		fmt.Fprint(r.out, ui.ColorGreen()+"orbit> "+ui.ColorReset())

		input, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintf(r.out, "%sRead error: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
			return
		}
		eof := errors.Is(err, io.EOF)

		input = strings.TrimSpace(input)
		if input != "" && !r.processCommand(input) {
			return
		}
		if eof {
			fmt.Fprintln(r.out, "\nGoodbye!")
			return
		}
	}
}

func (r *REPL) printBanner() {
	fmt.Fprintf(r.out, "\n%s╔══════════════════════════════════════════════════════════╗%s\n", ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s║%s     %sOrbit Classifier - Interactive Mode%s                  %s║%s\n",
		ui.ColorCyan(), ui.ColorReset(), ui.ColorBold(), ui.ColorReset(), ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s╚══════════════════════════════════════════════════════════╝%s\n\n", ui.ColorCyan(), ui.ColorReset())
}

func (r *REPL) printHelp() {
	fmt.Fprintf(r.out, "%sAvailable commands:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sclassify <re> <im> [n]%s - Classify the parameter re+im·i\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %spixel <x> <y> [n]%s     - Classify the parameter under a canvas pixel\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sviewport%s               - Show the fitted viewport\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sdepth <n>%s              - Change the test depth\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %spattern <v...>%s         - Find the repeating unit of a sequence\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sstatus%s                 - Display current configuration\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %shelp%s                   - Display this help\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sexit%s / %squit%s            - Exit interactive mode\n", ui.ColorYellow(), ui.ColorReset(), ui.ColorYellow(), ui.ColorReset())
}

// processCommand parses and executes a user command.
// Returns false if the REPL should exit.
func (r *REPL) processCommand(input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return true
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "classify", "c":
		r.cmdClassify(args)
	case "pixel", "p":
		r.cmdPixel(args)
	case "viewport", "vp":
		r.cmdViewport()
	case "depth", "d":
		r.cmdDepth(args)
	case "pattern", "pat":
		r.cmdPattern(args)
	case "status", "st":
		r.cmdStatus()
	case "help", "h", "?":
		r.printHelp()
	case "exit", "quit", "q":
		fmt.Fprintf(r.out, "%sGoodbye!%s\n", ui.ColorGreen(), ui.ColorReset())
		return false
	default:
		// Two bare numbers are a quick classification.
		if _, err := strconv.ParseFloat(cmd, 64); err == nil && len(parts) >= 2 {
			r.cmdClassify(parts)
		} else {
			fmt.Fprintf(r.out, "%sUnknown command: %s%s\n", ui.ColorRed(), cmd, ui.ColorReset())
			fmt.Fprintf(r.out, "Type %shelp%s to see available commands.\n", ui.ColorYellow(), ui.ColorReset())
		}
	}

	return true
}

// depthArg returns the optional depth at args[i], or the session depth.
func (r *REPL) depthArg(args []string, i int) (int, bool) {
	if len(args) <= i {
		return r.config.MaxIterations, true
	}
	n, err := strconv.Atoi(args[i])
	if err != nil || n <= 0 {
		fmt.Fprintf(r.out, "%sInvalid depth: %s%s\n", ui.ColorRed(), args[i], ui.ColorReset())
		return 0, false
	}
	return n, true
}

// floatArgs parses args[0] and args[1].
func (r *REPL) floatArgs(args []string, usage string) (float64, float64, bool) {
	if len(args) < 2 {
		fmt.Fprintf(r.out, "%sUsage: %s%s\n", ui.ColorRed(), usage, ui.ColorReset())
		return 0, 0, false
	}
	a, errA := strconv.ParseFloat(args[0], 64)
	b, errB := strconv.ParseFloat(args[1], 64)
	if errA != nil || errB != nil {
		fmt.Fprintf(r.out, "%sInvalid value: %s %s%s\n", ui.ColorRed(), args[0], args[1], ui.ColorReset())
		return 0, 0, false
	}
	return a, b, true
}

func (r *REPL) cmdClassify(args []string) {
	re, im, ok := r.floatArgs(args, "classify <re> <im> [n]")
	if !ok {
		return
	}
	n, ok := r.depthArg(args, 2)
	if !ok {
		return
	}
	c := complex(re, im)
	res, err := r.model.Classify(c, n)
	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}
	DisplayClassification(r.out, c, res, r.config.Verbose)
}

func (r *REPL) cmdPixel(args []string) {
	x, y, ok := r.floatArgs(args, "pixel <x> <y> [n]")
	if !ok {
		return
	}
	n, ok := r.depthArg(args, 2)
	if !ok {
		return
	}
	t, err := r.model.Trace(x, y, r.config.Width, r.config.Height, n)
	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}
	DisplayTrace(r.out, t, r.config.TraceLimit, r.config.Verbose)
}

func (r *REPL) cmdViewport() {
	v, ok := r.model.Viewport()
	if !ok {
		fmt.Fprintf(r.out, "%sNo viewport fitted.%s\n", ui.ColorYellow(), ui.ColorReset())
		return
	}
	DisplayViewport(r.out, v)
}

func (r *REPL) cmdDepth(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: depth <n>%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}
	n, ok := r.depthArg(args, 0)
	if !ok {
		return
	}
	r.config.MaxIterations = n
	fmt.Fprintf(r.out, "Test depth changed to: %s%d%s\n", ui.ColorGreen(), n, ui.ColorReset())
}

func (r *REPL) cmdPattern(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: pattern <v...>%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}
	tol := r.model.Classifier().Tolerance()
	if reals, ok := parseReals(args); ok {
		unit := pattern.FindReal(reals, tol)
		parts := make([]string, len(unit))
		for i, v := range unit {
			parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		r.printPattern(parts)
		return
	}

	seq := make([]complex128, len(args))
	for i, a := range args {
		v, err := strconv.ParseComplex(a, 128)
		if err != nil {
			fmt.Fprintf(r.out, "%sInvalid value: %s%s\n", ui.ColorRed(), a, ui.ColorReset())
			return
		}
		seq[i] = v
	}
	unit := pattern.Find(seq, tol)
	parts := make([]string, len(unit))
	for i, z := range unit {
		parts[i] = format.FormatComplex(z, -1)
	}
	r.printPattern(parts)
}

// parseReals parses args as real numbers; ok is false if any is not one.
func parseReals(args []string) ([]float64, bool) {
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func (r *REPL) printPattern(parts []string) {
	if len(parts) == 0 {
		fmt.Fprintf(r.out, "No repeating pattern.\n")
		return
	}
	fmt.Fprintf(r.out, "Pattern (length %s%d%s): %s\n", ui.ColorCyan(), len(parts), ui.ColorReset(), strings.Join(parts, " "))
}

func (r *REPL) cmdStatus() {
	cfg := r.model.Config()
	fmt.Fprintf(r.out, "\n%sCurrent configuration:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  Map:            %sz ← z^%g + c%s\n", ui.ColorCyan(), cfg.Power, ui.ColorReset())
	fmt.Fprintf(r.out, "  Seed:           %s%s%s\n", ui.ColorCyan(), format.FormatComplex(cfg.Z0, -1), ui.ColorReset())
	fmt.Fprintf(r.out, "  Escape radius:  %s%g%s\n", ui.ColorCyan(), cfg.EscapeRadius, ui.ColorReset())
	fmt.Fprintf(r.out, "  Test depth:     %s%d%s\n", ui.ColorCyan(), r.config.MaxIterations, ui.ColorReset())
	fmt.Fprintf(r.out, "  Pattern window: %s%d%s\n", ui.ColorCyan(), r.model.Classifier().PatternWindow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  Canvas:         %s%dx%d%s\n", ui.ColorCyan(), r.config.Width, r.config.Height, ui.ColorReset())
	if v, ok := r.model.Viewport(); ok {
		fmt.Fprintf(r.out, "  Viewport:       %s%s%s\n", ui.ColorCyan(), v, ui.ColorReset())
	}
	fmt.Fprintln(r.out)
}
