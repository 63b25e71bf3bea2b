// Package ui holds the terminal color themes of orbitcalc: ANSI sequences per
// semantic role, lipgloss panel styles and a go-colorful palette used to tell
// orbit kinds apart.
//
// The active theme is process-wide and chosen once by InitTheme from
// -no-color, NO_COLOR and ORBITCALC_THEME.
package ui
