package output

import (
	"fmt"
	"strings"
	"time"
)

// FormatHeader returns a markdown header of the given level.
func FormatHeader(level int, text string) string {
	level = min(max(level, 1), 6)
	return strings.Repeat("#", level) + " " + text
}

// FormatKeyValue returns a markdown list item with a bold key.
func FormatKeyValue(key string, value any) string {
	return fmt.Sprintf("- **%s:** %v", key, value)
}

// FormatDuration rounds d for display.
func FormatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "0s"
	case d < time.Millisecond:
		return d.Round(time.Microsecond).String()
	case d < time.Second:
		return d.Round(100 * time.Microsecond).String()
	default:
		return d.Round(10 * time.Millisecond).String()
	}
}

// FormatFloat prints v with up to six significant decimals.
func FormatFloat(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.6f", v), "0"), ".")
}

// FormatPercent prints a fraction as a percentage.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}
