// Package quiz provides the screen that presents questions and feedback
// for an active attempt.
package quiz

import (
	"context"
	"fmt"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/vocabquiz/internal/router"
	"github.com/abhisek/vocabquiz/internal/screen"
	"github.com/abhisek/vocabquiz/internal/screens/summary"
	sess "github.com/abhisek/vocabquiz/internal/session"
	"github.com/abhisek/vocabquiz/internal/ui/components"
	"github.com/abhisek/vocabquiz/internal/ui/keys"
	"github.com/abhisek/vocabquiz/internal/ui/layout"
)

// QuizScreen implements screen.Screen for an attempt in progress. The
// machine must already be Active, either freshly started or resumed.
//
// Operations that write to the store run inside a tea.Cmd. While one is in
// flight the screen ignores keys and renders from the last snapshot, so the
// machine is never touched from two goroutines.
type QuizScreen struct {
	machine *sess.Machine
	snap    sess.Snapshot
	choices components.MultiChoice
	busy    bool
	errMsg  string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.EscapeHandler = (*QuizScreen)(nil)

// New creates a QuizScreen for m.
func New(m *sess.Machine) *QuizScreen {
	s := &QuizScreen{machine: m}
	s.sync(m.Snapshot())
	return s
}

func (s *QuizScreen) Init() tea.Cmd {
	return nil
}

func (s *QuizScreen) Title() string {
	if s.snap.ParentID != "" {
		return "Retry Missed"
	}
	return "Quiz"
}

// HandlesEscape reports that Esc abandons the quiz instead of popping.
func (s *QuizScreen) HandlesEscape() bool { return true }

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	if s.busy {
		return []layout.KeyHint{{Key: "…", Description: "Saving"}}
	}
	switch s.snap.Screen.(type) {
	case sess.FeedbackScreen:
		return keys.Hints(
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Next")),
			keys.Back,
		)
	default:
		return keys.Hints(
			keys.Up,
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Submit")),
			keys.Save,
			keys.Back,
		)
	}
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case opDoneMsg:
		return s.handleOpDone(msg)
	case tea.KeyMsg:
		if s.busy {
			return s, nil
		}
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if key.Matches(msg, keys.Back) {
		if err := s.machine.Abandon(); err != nil {
			s.errMsg = err.Error()
			return s, nil
		}
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	switch s.snap.Screen.(type) {
	case sess.ActiveScreen:
		if key.Matches(msg, keys.Save) {
			return s, s.run("save draft", s.machine.SaveDraft)
		}

		var cmd tea.Cmd
		s.choices, cmd = s.choices.Update(msg)
		if s.choices.Submitted {
			// Submitting only changes in-memory state.
			if err := s.machine.SubmitAnswer(s.choices.Choice()); err != nil {
				s.errMsg = err.Error()
				s.choices.Submitted = false
				return s, cmd
			}
			s.errMsg = ""
			s.sync(s.machine.Snapshot())
		}
		return s, cmd

	case sess.FeedbackScreen:
		if key.Matches(msg, keys.Enter, keys.Toggle) {
			return s, s.run("advance", s.machine.Advance)
		}
	}
	return s, nil
}

// run executes op off the update loop and reports back with opDoneMsg.
func (s *QuizScreen) run(name string, op func(context.Context) error) tea.Cmd {
	s.busy = true
	s.errMsg = ""
	m := s.machine
	return func() tea.Msg {
		err := op(context.Background())
		return opDoneMsg{Op: name, Snap: m.Snapshot(), Err: err}
	}
}

func (s *QuizScreen) handleOpDone(msg opDoneMsg) (screen.Screen, tea.Cmd) {
	s.busy = false
	if msg.Err != nil {
		s.errMsg = fmt.Sprintf("Could not %s: %v", msg.Op, msg.Err)
		s.sync(msg.Snap)
		return s, nil
	}

	switch msg.Snap.Screen.(type) {
	case sess.CompletedScreen:
		next := summary.New(s.machine, msg.Snap, func(m *sess.Machine) screen.Screen { return New(m) })
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
	case sess.StartScreen:
		// Draft saved.
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	s.sync(msg.Snap)
	return s, nil
}

// sync adopts snap and rebuilds the option selector when the question
// changed or the verdict is in.
func (s *QuizScreen) sync(snap sess.Snapshot) {
	prev := s.snap
	s.snap = snap
	if snap.Question == nil {
		return
	}
	switch st := snap.Screen.(type) {
	case sess.ActiveScreen:
		if _, wasActive := prev.Screen.(sess.ActiveScreen); !wasActive || prev.Index != st.Index || prev.AttemptID != snap.AttemptID {
			s.choices = components.NewMultiChoice(snap.Question.Options)
		}
	case sess.FeedbackScreen:
		s.choices = components.NewMultiChoice(snap.Question.Options).
			Reveal(st.Pending, snap.Question.CorrectAnswer)
	}
}
