package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	sess "github.com/abhisek/vocabquiz/internal/session"
	"github.com/abhisek/vocabquiz/internal/ui/components"
	"github.com/abhisek/vocabquiz/internal/ui/layout"
	"github.com/abhisek/vocabquiz/internal/ui/theme"
)

func (s *QuizScreen) View(width, height int) string {
	q := s.snap.Question
	if q == nil {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("\n\n  No question loaded.")
	}

	compact := layout.IsCompactHeight(height)
	gap := "\n\n"
	if compact {
		gap = "\n"
	}

	var b strings.Builder

	answered := s.snap.Index
	if _, ok := s.snap.Screen.(sess.FeedbackScreen); ok {
		answered++
	}
	bar := components.NewProgressBar(answered, s.snap.Total, min(width-8, 60))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n")
	if !compact {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
		b.WriteString("\n\n")
	}

	b.WriteString(theme.Sentence.Width(width).Align(lipgloss.Center).Render(q.Sentence))
	b.WriteString(gap)

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.choices.View()))

	if _, ok := s.snap.Screen.(sess.FeedbackScreen); ok {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.renderVerdict(width, compact)))
	}

	if s.busy {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Hint.Render("Saving…")))
	}
	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render(s.errMsg))
	}
	return b.String()
}

// renderVerdict renders the feedback card. Short terminals get a card
// without vertical padding.
func (s *QuizScreen) renderVerdict(width int, compact bool) string {
	q := s.snap.Question
	card := theme.Card
	if compact {
		card = card.Padding(0, 2)
	}
	inner := min(max(width-10, 10), 60)
	center := lipgloss.NewStyle().Width(inner).Align(lipgloss.Center)

	var b strings.Builder
	if s.snap.Correct {
		b.WriteString(center.Inherit(theme.Correct).Render("Correct!"))
	} else {
		b.WriteString(center.Inherit(theme.Incorrect).Render("Not quite"))
		b.WriteString("\n")
		b.WriteString(center.Foreground(theme.Text).Render(
			fmt.Sprintf("The answer is: %s", q.CorrectAnswer)))
	}
	if q.Definition != "" {
		b.WriteString("\n")
		word := q.Word
		if word == "" {
			word = q.CorrectAnswer
		}
		b.WriteString(center.Inherit(theme.Hint).Render(fmt.Sprintf("%s: %s", word, q.Definition)))
	}
	return card.Render(b.String())
}
