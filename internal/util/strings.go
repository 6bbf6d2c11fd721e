// Package util provides small string helpers shared by the example
// programs when rendering task names and run reports.
package util

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// ellipsis marks a shortened string.
const ellipsis = "..."

// Ellipsize shortens s to maxLen runes, appending "..." when it cuts.
// It counts runes, not columns; for styled terminal output use
// EllipsizeANSI instead.
func Ellipsize(s string, maxLen int) string {
	if maxLen <= len(ellipsis) {
		return ellipsis
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-len(ellipsis)]) + ellipsis
}

// EllipsizeANSI shortens s to maxWidth visual columns, appending "..."
// when it cuts. ANSI escape sequences and wide characters are measured
// by rendered width, so styled task names survive truncation intact.
func EllipsizeANSI(s string, maxWidth int) string {
	if maxWidth <= len(ellipsis) {
		return ellipsis
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	// ansi.Truncate counts the tail against maxWidth
	return ansi.Truncate(s, maxWidth, ellipsis)
}

// TaskLabel names a task for display. Tasks built from closures carry no
// name; those render as "(anonymous)".
func TaskLabel(name string) string {
	if name == "" {
		return "(anonymous)"
	}
	return name
}
