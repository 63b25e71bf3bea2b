package ui

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// ThemeEnv selects a theme by name when colors are enabled.
const ThemeEnv = "ORBITCALC_THEME"

// Theme maps semantic roles to ANSI escape sequences.
type Theme struct {
	Name      string
	Primary   string
	Secondary string
	Success   string
	Warning   string
	Error     string
	Info      string
	Bold      string
	Underline string
	Reset     string
	// Border is the hex color of panel borders; empty means uncolored.
	Border string
}

// fg returns the 256-color foreground sequence for code.
func fg(code int) string { return fmt.Sprintf("\033[38;5;%dm", code) }

func ansiTheme(name, border string, primary, secondary, success, warning, errc, info int) Theme {
	return Theme{
		Name:      name,
		Primary:   fg(primary),
		Secondary: fg(secondary),
		Success:   fg(success),
		Warning:   fg(warning),
		Error:     fg(errc),
		Info:      fg(info),
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
		Border:    border,
	}
}

var (
	// DarkTheme suits dark terminal backgrounds.
	DarkTheme = ansiTheme("dark", "#4488FF", 39, 245, 82, 220, 196, 141)
	// LightTheme uses darker tones for light backgrounds.
	LightTheme = ansiTheme("light", "#1F4E9E", 27, 240, 28, 130, 124, 54)
	// OrangeTheme is a warm variant of DarkTheme.
	OrangeTheme = ansiTheme("orange", "#FF8C00", 208, 245, 82, 214, 196, 69)
	// NoColorTheme emits no escape sequences at all.
	NoColorTheme = Theme{Name: "none"}

	themes = map[string]Theme{
		DarkTheme.Name:    DarkTheme,
		LightTheme.Name:   LightTheme,
		OrangeTheme.Name:  OrangeTheme,
		NoColorTheme.Name: NoColorTheme,
	}

	themeMutex   sync.RWMutex
	currentTheme = DarkTheme
)

// LookupTheme returns the theme registered under name.
func LookupTheme(name string) (Theme, bool) {
	t, ok := themes[name]
	return t, ok
}

// Styles holds the lipgloss styles used for boxed CLI output.
type Styles struct {
	Panel lipgloss.Style
	Label lipgloss.Style
	Title lipgloss.Style
}

// CurrentStyles returns the lipgloss styles of the active theme.
// Without colors the panel keeps its rounded border.
func CurrentStyles() Styles {
	border := GetCurrentTheme().Border

	panel := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	label := lipgloss.NewStyle().Bold(true)
	title := lipgloss.NewStyle().Bold(true).Underline(true)
	if border != "" {
		panel = panel.BorderForeground(lipgloss.Color(border))
		title = title.Foreground(lipgloss.Color(border))
	}
	return Styles{Panel: panel, Label: label, Title: title}
}

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme replaces the active theme, mostly to restore state in tests.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// SetTheme activates the theme registered under name, falling back to
// DarkTheme for unknown names.
func SetTheme(name string) {
	t, ok := LookupTheme(name)
	if !ok {
		t = DarkTheme
	}
	SetCurrentTheme(t)
}

// InitTheme picks the startup theme. noColor and a set NO_COLOR variable
// (see no-color.org) both disable colors; otherwise ORBITCALC_THEME names
// the theme.
func InitTheme(noColor bool) {
	if _, set := os.LookupEnv("NO_COLOR"); noColor || set {
		SetCurrentTheme(NoColorTheme)
		return
	}
	SetTheme(os.Getenv(ThemeEnv))
}
