package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/vocabquiz/internal/ui/theme"
)

// ProgressBar displays how far through the question set the learner is.
type ProgressBar struct {
	Current int // questions answered
	Total   int
	Width   int
}

// NewProgressBar creates a progress bar.
func NewProgressBar(current, total, width int) ProgressBar {
	return ProgressBar{Current: current, Total: total, Width: width}
}

// Percent returns the completed fraction in [0, 1].
func (p ProgressBar) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	return min(max(float64(p.Current)/float64(p.Total), 0), 1)
}

// View renders the bar with a "n/total" label.
func (p ProgressBar) View() string {
	label := lipgloss.NewStyle().Foreground(theme.Text).
		Render(fmt.Sprintf("%d/%d", p.Current, p.Total)) + "  "

	barWidth := p.Width - lipgloss.Width(label)
	if barWidth < 4 {
		barWidth = 4
	}
	filled := int(float64(barWidth) * p.Percent())

	return label +
		theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled))
}
