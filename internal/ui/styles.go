// Package ui renders CLI output.
package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ANSI256 color codes.
const (
	colorAccent  = 74  // blue
	colorMuted   = 245 // gray
	colorWarn    = 214 // orange
	colorSuccess = 114 // green
)

var noColor bool

func render(code int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string { return render(colorAccent, s) }

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string { return render(colorMuted, s) }

// RenderWarn returns s in the warning (orange) color.
func RenderWarn(s string) string { return render(colorWarn, s) }

// RenderSuccess returns s in the success (green) color.
func RenderSuccess(s string) string { return render(colorSuccess, s) }

// SetColor enables or disables color output globally.
func SetColor(enabled bool) {
	noColor = !enabled
}

// DotLeader cuts s to maxRunes and pads it with dots to width runes, so that
// trailing columns line up.
func DotLeader(s string, maxRunes, width int) string {
	if utf8.RuneCountInString(s) > maxRunes {
		s = string([]rune(s)[:maxRunes])
	}
	if n := width - utf8.RuneCountInString(s); n > 0 {
		s += strings.Repeat(".", n)
	}
	return s
}
