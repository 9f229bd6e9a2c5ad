// Package summary provides the screen shown after an attempt is scored.
package summary

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/vocabquiz/internal/router"
	"github.com/abhisek/vocabquiz/internal/screen"
	sess "github.com/abhisek/vocabquiz/internal/session"
	"github.com/abhisek/vocabquiz/internal/ui/keys"
	"github.com/abhisek/vocabquiz/internal/ui/layout"
	"github.com/abhisek/vocabquiz/internal/ui/theme"
)

// RetryScreenFunc builds the screen that runs a retry attempt.
type RetryScreenFunc func(m *sess.Machine) screen.Screen

// retryDoneMsg reports the outcome of RetryMissed.
type retryDoneMsg struct {
	Err error
}

// SummaryScreen displays the scored attempt and the missed words.
type SummaryScreen struct {
	machine *sess.Machine
	snap    sess.Snapshot
	retry   RetryScreenFunc
	busy    bool
	errMsg  string
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)
var _ screen.EscapeHandler = (*SummaryScreen)(nil)

// New creates a SummaryScreen for a machine in the Completed screen.
func New(m *sess.Machine, snap sess.Snapshot, retry RetryScreenFunc) *SummaryScreen {
	return &SummaryScreen{machine: m, snap: snap, retry: retry}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Results"
}

// HandlesEscape reports that Esc leaves through Restart.
func (s *SummaryScreen) HandlesEscape() bool { return true }

func (s *SummaryScreen) canRetry() bool {
	return s.snap.Result != nil && len(s.snap.Result.Missed) > 0 && s.retry != nil
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	retry := keys.Retry
	retry.SetEnabled(s.canRetry())
	return keys.Hints(retry, keys.Again, key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "Home")))
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case retryDoneMsg:
		s.busy = false
		if msg.Err != nil {
			s.errMsg = fmt.Sprintf("Could not start retry: %v", msg.Err)
			return s, nil
		}
		next := s.retry(s.machine)
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }

	case tea.KeyMsg:
		if s.busy {
			return s, nil
		}
		switch {
		case key.Matches(msg, keys.Retry):
			if !s.canRetry() {
				return s, nil
			}
			s.busy = true
			s.errMsg = ""
			m := s.machine
			return s, func() tea.Msg {
				return retryDoneMsg{Err: m.RetryMissed(context.Background())}
			}
		case key.Matches(msg, keys.Again, keys.Back):
			if err := s.machine.Restart(); err != nil {
				s.errMsg = err.Error()
				return s, nil
			}
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	res := s.snap.Result
	if res == nil {
		return ""
	}
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	// Short terminals drop definitions; narrow ones shorten the answer line.
	compactHeight := layout.IsCompactHeight(height)
	chose := "   you chose "
	if layout.IsCompactWidth(width) {
		chose = " ≠ "
	}

	var b strings.Builder

	heading := "Quiz complete!"
	if s.snap.ParentID != "" {
		heading = "Retry complete!"
	}
	b.WriteString(center.Foreground(theme.Primary).Bold(true).Render(heading))
	b.WriteString("\n\n")

	b.WriteString(center.Inherit(theme.Body).Render(
		fmt.Sprintf("Score: %d/%d        %d%%", res.CorrectCount, res.Total, res.Percentage)))
	b.WriteString("\n\n")

	if s.snap.MasteryGranted {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Banner.Render(fmt.Sprintf("Lesson mastered: %s", strings.Join(s.snap.SelectedLessons, ", ")))))
		b.WriteString("\n\n")
	}

	missed := res.MissedWords()
	if len(missed) == 0 {
		b.WriteString(center.Inherit(theme.Correct).Render("Perfect score. No words to review."))
		b.WriteString("\n")
	} else {
		divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
			strings.Repeat("─", min(max(width-8, 0), 60)))
		b.WriteString(theme.Subtitle.Width(width).Render("Words to review"))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
		b.WriteString("\n\n")

		for _, w := range missed {
			given := w.Given
			if given == "" {
				given = "(no answer)"
			}
			line := lipgloss.NewStyle().Foreground(theme.Success).Bold(true).Render(w.Correct) +
				lipgloss.NewStyle().Foreground(theme.TextDim).Render(chose) +
				lipgloss.NewStyle().Foreground(theme.Error).Render(given)
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, line))
			b.WriteString("\n")
			if w.Definition != "" && !compactHeight {
				b.WriteString(center.Inherit(theme.Hint).Render(w.Definition))
				b.WriteString("\n")
			}
		}
	}

	if s.busy {
		b.WriteString("\n")
		b.WriteString(center.Inherit(theme.Hint).Render("Preparing retry…"))
	}
	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(center.Foreground(theme.Error).Render(s.errMsg))
	}
	return b.String()
}
