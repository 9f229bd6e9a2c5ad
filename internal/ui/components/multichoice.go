package components

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/vocabquiz/internal/ui/keys"
	"github.com/abhisek/vocabquiz/internal/ui/theme"
)

// MultiChoice is a multiple-choice selector. Options are picked with the
// arrows and Enter, or directly with their number.
type MultiChoice struct {
	Options   []string
	Selected  int
	Submitted bool
	// Correct is set by Reveal once the verdict is known.
	Correct string
}

// NewMultiChoice creates a selector over options.
func NewMultiChoice(options []string) MultiChoice {
	return MultiChoice{Options: options}
}

// Update handles navigation and submission.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Submitted {
		return m, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(kmsg, keys.Up):
		if m.Selected > 0 {
			m.Selected--
		}
	case key.Matches(kmsg, keys.Down):
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	case key.Matches(kmsg, keys.Enter):
		m.Submitted = len(m.Options) > 0
	default:
		s := kmsg.String()
		if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if i := int(s[0] - '1'); i < len(m.Options) {
				m.Selected = i
				m.Submitted = true
			}
		}
	}
	return m, nil
}

// Choice returns the highlighted option.
func (m MultiChoice) Choice() string {
	if m.Selected < 0 || m.Selected >= len(m.Options) {
		return ""
	}
	return m.Options[m.Selected]
}

// Reveal marks the selector submitted with the given choice and correct answer.
func (m MultiChoice) Reveal(chosen, correct string) MultiChoice {
	for i, o := range m.Options {
		if o == chosen {
			m.Selected = i
		}
	}
	m.Submitted = true
	m.Correct = correct
	return m
}

// View renders the options.
func (m MultiChoice) View() string {
	var b strings.Builder
	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Selected && !m.Submitted {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d) %s", prefix, i+1, opt)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case m.Correct != "" && opt == m.Correct:
			style = theme.Correct
		case m.Correct != "" && i == m.Selected:
			style = theme.Incorrect
		case m.Correct != "":
			style = style.Foreground(theme.TextDim)
		case i == m.Selected:
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
