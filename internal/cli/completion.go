package cli

import (
	"fmt"
	"io"
	"strings"
)

// FlagCompletion describes one orbitcalc flag for the completion scripts.
type FlagCompletion struct {
	Long      string   // name without dashes; empty for short-only flags
	Short     string   // single-letter alias
	Help      string
	Values    []string // suggested values; nil for booleans and free-form values
	ValueName string   // zsh value label; non-empty means the flag takes a value
	Section   string   // heading the flag is listed under in fish
	BashGroup string   // flags sharing a group share one bash case entry
}

// Sections in the order fish lists them.
const (
	secGeneral  = "Help and version"
	secPoint    = "Point selection"
	secMap      = "Map"
	secViewport = "Viewport fitting"
	secModes    = "Modes"
	secOutput   = "Output options"
)

var sectionOrder = []string{secGeneral, secPoint, secMap, secViewport, secModes, secOutput}

// flagRegistry lists every flag offered by the completion scripts.
var flagRegistry = []FlagCompletion{
	{Long: "help", Short: "h", Help: "Show help message", Section: secGeneral},
	{Long: "version", Short: "V", Help: "Show version information", Section: secGeneral},
	{Long: "re", Help: "Real part of the parameter", ValueName: "real", Section: secPoint},
	{Long: "im", Help: "Imaginary part of the parameter", ValueName: "imag", Section: secPoint},
	{Long: "pixel", Help: "Classify the parameter under pixel x,y", ValueName: "x,y", Section: secPoint},
	{Short: "n", Help: "Maximum number of iterations", Values: []string{"128", "256", "512", "1024", "4096"}, ValueName: "iterations", Section: secPoint},
	{Long: "z0", Help: "Seed of every orbit", ValueName: "complex", Section: secMap},
	{Long: "power", Help: "Exponent of the map", Values: []string{"2", "3", "4", "5"}, ValueName: "power", Section: secMap},
	{Long: "radius", Help: "Escape radius", ValueName: "radius", Section: secMap},
	{Long: "margin", Help: "Padding around the fitted region", ValueName: "margin", Section: secViewport},
	{Long: "width", Help: "Canvas width in pixels", Values: []string{"640", "1280", "1920"}, ValueName: "pixels", BashGroup: "size", Section: secViewport},
	{Long: "height", Help: "Canvas height in pixels", Values: []string{"480", "720", "1080"}, ValueName: "pixels", BashGroup: "size", Section: secViewport},
	{Long: "depth", Help: "Iteration depth of the fitting scan", Values: []string{"16", "32", "64"}, ValueName: "iterations", Section: secViewport},
	{Long: "domain", Help: "Half-width of the fitting scan", ValueName: "number", Section: secViewport},
	{Long: "step", Help: "Grid spacing of the fitting scan", Values: []string{"0.01", "0.05", "0.1"}, ValueName: "number", Section: secViewport},
	{Long: "bounds", Help: "Bounding-box rule of the fitting scan", Values: []string{"tight", "legacy"}, ValueName: "mode", Section: secViewport},
	{Long: "workers", Help: "Number of concurrent workers", ValueName: "number", Section: secViewport},
	{Long: "tolerance", Help: "Pattern matching tolerance", ValueName: "number", Section: secMap},
	{Long: "pattern-window", Help: "Trailing orbit points searched for a cycle", Values: []string{"16", "32", "64"}, ValueName: "number", Section: secMap},
	{Long: "sweep", Help: "Classify a grid of pixels and print a summary", Section: secModes},
	{Long: "grid", Help: "Sweep resolution", Values: []string{"32x18", "64x36", "128x72", "256x144"}, ValueName: "WxH", Section: secModes},
	{Long: "repl", Help: "Start the interactive mode", Section: secModes},
	{Long: "serve", Help: "Serve the HTTP API on an address", Values: []string{":8080", "localhost:8080"}, ValueName: "address", Section: secModes},
	{Long: "timeout", Help: "Maximum execution time", Values: []string{"30s", "1m", "5m", "10m"}, ValueName: "duration", Section: secOutput},
	{Long: "quiet", Short: "q", Help: "Quiet mode for scripts", Section: secOutput},
	{Long: "verbose", Short: "v", Help: "Verbose output with debug logging", Section: secOutput},
	{Long: "no-color", Help: "Disable colored output", Section: secOutput},
	{Long: "completion", Help: "Generate completion script", Values: []string{"bash", "zsh", "fish"}, ValueName: "shell", Section: secModes},
}

// bashGroupValues defines the completion values used in bash for grouped flags.
var bashGroupValues = map[string][]string{
	"size": {"480", "640", "720", "1080", "1280", "1920"},
}

// zshHelpOverrides provides shell-specific help text overrides for zsh.
var zshHelpOverrides = map[string]string{
	"n": "Test depth (maximum iterations)",
}

// completionGenerators maps a shell name to its script writer.
var completionGenerators = map[string]func(io.Writer) error{
	"bash": generateBashCompletion,
	"zsh":  generateZshCompletion,
	"fish": generateFishCompletion,
}

// GenerateCompletion writes the completion script for shell (bash, zsh or
// fish) to out.
func GenerateCompletion(out io.Writer, shell string) error {
	gen, ok := completionGenerators[shell]
	if !ok {
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish)", shell)
	}
	return gen(out)
}

// flagKey returns the identifier used for lookups: Long name if present, else Short.
func flagKey(f FlagCompletion) string {
	if f.Long != "" {
		return f.Long
	}
	return f.Short
}

// flagPatterns returns the spellings of a flag on the command line.
func flagPatterns(f FlagCompletion) []string {
	var patterns []string
	if f.Long != "" {
		patterns = append(patterns, "--"+f.Long, "-"+f.Long)
	}
	if f.Short != "" {
		patterns = append(patterns, "-"+f.Short)
	}
	return patterns
}

// generateBashCompletion generates a Bash completion script.
func generateBashCompletion(out io.Writer) error {
	var opts []string
	for _, f := range flagRegistry {
		if f.Long != "" {
			opts = append(opts, "--"+f.Long)
		}
		if f.Short != "" {
			opts = append(opts, "-"+f.Short)
		}
	}

	type caseEntry struct {
		patterns []string
		values   []string
	}
	var cases []caseEntry

	// Flags with static values, in registry order.
	for _, f := range flagRegistry {
		if f.BashGroup == "" && len(f.Values) > 0 {
			cases = append(cases, caseEntry{patterns: flagPatterns(f), values: f.Values})
		}
	}

	// Grouped flags share one entry.
	seenGroups := map[string]bool{}
	for _, f := range flagRegistry {
		if f.BashGroup == "" || seenGroups[f.BashGroup] {
			continue
		}
		seenGroups[f.BashGroup] = true
		var patterns []string
		for _, gf := range flagRegistry {
			if gf.BashGroup == f.BashGroup {
				patterns = append(patterns, flagPatterns(gf)...)
			}
		}
		cases = append(cases, caseEntry{patterns: patterns, values: bashGroupValues[f.BashGroup]})
	}

	var caseBody strings.Builder
	for _, c := range cases {
		caseBody.WriteString("        ")
		caseBody.WriteString(strings.Join(c.patterns, "|"))
		caseBody.WriteString(")\n")
		fmt.Fprintf(&caseBody, "            COMPREPLY=( $(compgen -W \"%s\" -- \"${cur}\") )\n", strings.Join(c.values, " "))
		caseBody.WriteString("            return 0\n            ;;\n")
	}

	script := fmt.Sprintf(`# Bash completion script for orbitcalc
# Add this to your ~/.bashrc or ~/.bash_completion

_orbitcalc_completions() {
    local cur prev opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    # Main options
    opts="%s"

    case "${prev}" in
%s    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
        return 0
    fi
}

complete -F _orbitcalc_completions orbitcalc
`, strings.Join(opts, " "), caseBody.String())

	if _, err := fmt.Fprint(out, script); err != nil {
		return fmt.Errorf("completion bash generation failed: %w", err)
	}
	return nil
}

// generateZshCompletion generates a Zsh completion script.
func generateZshCompletion(out io.Writer) error {
	var args []string
	for _, f := range flagRegistry {
		args = append(args, zshArgEntry(f))
	}

	script := fmt.Sprintf(`#compdef orbitcalc

# Zsh completion script for orbitcalc
# Add this to your ~/.zshrc or place in $fpath

_orbitcalc() {
    _arguments -s \
%s
}

_orbitcalc "$@"
`, strings.Join(args, " \\\n"))

	if _, err := fmt.Fprint(out, script); err != nil {
		return fmt.Errorf("completion zsh generation failed: %w", err)
	}
	return nil
}

// zshHelp returns the help text for a flag in zsh, using an override if available.
func zshHelp(f FlagCompletion) string {
	if override, ok := zshHelpOverrides[flagKey(f)]; ok {
		return override
	}
	return f.Help
}

// zshArgEntry formats a single FlagCompletion as a zsh _arguments entry.
func zshArgEntry(f FlagCompletion) string {
	help := zshHelp(f)

	valueSuffix := ""
	if len(f.Values) > 0 {
		valueSuffix = fmt.Sprintf(":%s:(%s)", f.ValueName, strings.Join(f.Values, " "))
	} else if f.ValueName != "" {
		valueSuffix = fmt.Sprintf(":%s:", f.ValueName)
	}

	if f.Long != "" && f.Short != "" {
		return fmt.Sprintf("        '(-%s --%s)'{-%s,--%s}'[%s]%s'",
			f.Short, f.Long, f.Short, f.Long, help, valueSuffix)
	}
	if f.Long != "" {
		return fmt.Sprintf("        '--%s[%s]%s'", f.Long, help, valueSuffix)
	}
	return fmt.Sprintf("        '-%s[%s]%s'", f.Short, help, valueSuffix)
}

// generateFishCompletion generates a Fish completion script.
func generateFishCompletion(out io.Writer) error {
	lines := []string{
		"# Fish completion script for orbitcalc",
		"# Add this to ~/.config/fish/completions/orbitcalc.fish",
		"",
		"# Disable file completion by default",
		"complete -c orbitcalc -f",
		"",
	}

	for _, sec := range sectionOrder {
		lines = append(lines, "# "+sec)
		for _, f := range flagRegistry {
			if f.Section == sec {
				lines = append(lines, fishCompleteLine(f))
			}
		}
		lines = append(lines, "")
	}

	if _, err := fmt.Fprint(out, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("completion fish generation failed: %w", err)
	}
	return nil
}

// fishCompleteLine formats a single FlagCompletion as a fish complete command.
func fishCompleteLine(f FlagCompletion) string {
	parts := []string{"complete -c orbitcalc"}
	if f.Short != "" {
		parts = append(parts, fmt.Sprintf("-s %s", f.Short))
	}
	if f.Long != "" {
		parts = append(parts, fmt.Sprintf("-l %s", f.Long))
	}
	parts = append(parts, fmt.Sprintf("-d '%s'", f.Help))

	if len(f.Values) > 0 {
		parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(f.Values, " ")))
	} else if f.ValueName != "" {
		parts = append(parts, "-x")
	}
	return strings.Join(parts, " ")
}
