package ui

// Color accessors return the escape sequence of the active theme for each
// semantic color, or an empty string when colors are disabled.

// ColorReset returns the sequence that clears formatting.
func ColorReset() string { return GetCurrentTheme().Reset }

// ColorBold returns the bold sequence.
func ColorBold() string { return GetCurrentTheme().Bold }

// ColorUnderline returns the underline sequence.
func ColorUnderline() string { return GetCurrentTheme().Underline }

// ColorRed is used for errors and divergent points.
func ColorRed() string { return GetCurrentTheme().Error }

// ColorGreen is used for success and convergent points.
func ColorGreen() string { return GetCurrentTheme().Success }

// ColorYellow is used for warnings and commands.
func ColorYellow() string { return GetCurrentTheme().Warning }

// ColorBlue is used for informational values.
func ColorBlue() string { return GetCurrentTheme().Info }

// ColorMagenta is used for secondary highlights.
func ColorMagenta() string { return GetCurrentTheme().Info }

// ColorCyan is used for headings and numbers.
func ColorCyan() string { return GetCurrentTheme().Primary }
