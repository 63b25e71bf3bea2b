package format

import (
	"fmt"
	"time"
)

// FormatExecutionDuration renders d in the largest unit below its magnitude.
// A single classification finishes in micro- or nanoseconds while a sweep
// takes seconds, so sub-second values keep one decimal and longer ones are
// rounded to the millisecond.
func FormatExecutionDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.1fµs", float64(d)/float64(time.Microsecond))
	case d < time.Second:
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	default:
		return d.Round(time.Millisecond).String()
	}
}
