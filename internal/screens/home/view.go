package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/vocabquiz/internal/ui/layout"
	"github.com/abhisek/vocabquiz/internal/ui/theme"
)

// contentWidth returns the uniform inner width used for all sections.
func contentWidth(frameWidth int) int {
	return min(max(frameWidth-6, 20), 64)
}

func (h *HomeScreen) View(width, height int) string {
	cw := contentWidth(width)

	var sections []string

	title := h.deps.Bank.Title()
	if title == "" {
		title = "Vocabulary"
	}
	sections = append(sections, theme.Title.Width(cw).Render(title))
	if lessons := len(h.lessons.Items); lessons > 0 && !layout.IsCompactHeight(height) {
		sections = append(sections, theme.Subtitle.Width(cw).Render(
			fmt.Sprintf("%d of %d lessons mastered", h.mastered, lessons)))
	}

	sections = append(sections, box("Lessons", h.lessons.View(), h.lessons.Focused, cw))

	if len(h.attempts) > 0 {
		sections = append(sections, box("Saved drafts", h.drafts.View(), h.drafts.Focused, cw))
	}

	if h.errMsg != "" {
		sections = append(sections, lipgloss.NewStyle().
			Width(cw).
			Foreground(theme.Error).
			Render(h.errMsg))
	}

	sep := "\n\n"
	if layout.IsCompactHeight(height) {
		sep = "\n"
	}
	content := strings.Join(sections, sep)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// box renders a titled bordered section. The focused section gets the
// primary border color.
func box(title, body string, focused bool, width int) string {
	border := theme.Border
	if focused {
		border = theme.Primary
	}
	heading := lipgloss.NewStyle().Foreground(theme.TextDim).Render(title)
	return lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Render(heading + "\n" + strings.TrimRight(body, "\n"))
}
