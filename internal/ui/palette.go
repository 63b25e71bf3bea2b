package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Endpoints of the heat gradient used for histogram bars.
var (
	heatCold = colorful.Color{R: 0.23, G: 0.30, B: 0.75}
	heatHot  = colorful.Color{R: 0.71, G: 0.02, B: 0.15}
)

// PaletteColor returns the i-th of n perceptually evenly spaced hues.
// Out-of-range indices wrap around.
func PaletteColor(i, n int) colorful.Color {
	if n <= 0 {
		n = 1
	}
	i = ((i % n) + n) % n
	hue := 360 * float64(i) / float64(n)
	return colorful.Hcl(hue, 0.55, 0.65).Clamped()
}

// HeatColor blends from cold to hot as t goes from 0 to 1.
func HeatColor(t float64) colorful.Color {
	switch {
	case t < 0:
		t = 0
	case t > 1:
		t = 1
	}
	return heatCold.BlendLuv(heatHot, t).Clamped()
}

// Badge renders label in the given color, or plain when colors are disabled.
func Badge(label string, c colorful.Color) string {
	if GetCurrentTheme().Name == NoColorTheme.Name {
		return label
	}
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(c.Hex())).Render(label)
}
