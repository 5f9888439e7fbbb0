package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/harborops/stevedore/internal/tui/styles"
)

// StatusBar is the console footer: key hints on the left and an optional
// session note (such as the unsaved-change count) pinned to the right edge.
type StatusBar struct{}

// NewStatusBar creates a new StatusBar instance.
func NewStatusBar() StatusBar {
	return StatusBar{}
}

// Render lays the hints and the note out across the given width. Hints are
// joined with " • "; when the terminal is too narrow to pin the note at the
// right edge, it folds in ahead of the hints instead of being dropped.
func (s StatusBar) Render(width int, items []string, note string) string {
	hints := strings.Join(items, " • ")
	if note == "" {
		return styles.StatusBarStyle.Width(width).Render(hints)
	}

	left := styles.StatusBarStyle.Render(hints)
	right := styles.WarningStyle.Render(note)
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return styles.StatusBarStyle.Width(width).Render(note + " • " + hints)
	}
	return left + strings.Repeat(" ", gap) + right
}
