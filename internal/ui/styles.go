package ui

import "fmt"

// ANSI256 color codes matching the Ayu palette.
const (
	colorAccent = 74  // blue
	colorCycle  = 167 // red, for cycle members
	colorOrphan = 179 // amber, for orphaned providers
	colorMuted  = 245 // medium gray
)

var noColor bool

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorAccent, s)
}

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorMuted, s)
}

// RenderCycle returns s styled as a cycle diagnostic (red).
func RenderCycle(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorCycle, s)
}

// RenderOrphan returns s styled as an orphan diagnostic (amber).
func RenderOrphan(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorOrphan, s)
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
