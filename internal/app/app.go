// Package app wires the screens into the root Bubble Tea program.
package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/vocabquiz/internal/bank"
	"github.com/abhisek/vocabquiz/internal/mastery"
	"github.com/abhisek/vocabquiz/internal/router"
	"github.com/abhisek/vocabquiz/internal/screen"
	"github.com/abhisek/vocabquiz/internal/screens/home"
	quizscreen "github.com/abhisek/vocabquiz/internal/screens/quiz"
	"github.com/abhisek/vocabquiz/internal/screens/summary"
	sess "github.com/abhisek/vocabquiz/internal/session"
	"github.com/abhisek/vocabquiz/internal/store"
	"github.com/abhisek/vocabquiz/internal/ui/keys"
	"github.com/abhisek/vocabquiz/internal/ui/layout"
)

// Options configures the TUI.
type Options struct {
	Machine  *sess.Machine
	Bank     *bank.Bank
	Mastery  *mastery.Service
	Attempts store.AttemptRepo
	Learner  string
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router   *router.Router
	learner  string
	mastered int
	lessons  int
	width    int
	height   int
}

// newAppModel creates a new AppModel with the home screen at the bottom of
// the stack. A machine that is already past Start (for example after
// --resume) gets its quiz or results screen pushed on top.
func newAppModel(opts Options) AppModel {
	homeScreen := home.New(home.Deps{
		Machine:  opts.Machine,
		Bank:     opts.Bank,
		Mastery:  opts.Mastery,
		Attempts: opts.Attempts,
		Learner:  opts.Learner,
	})
	r := router.New(homeScreen)

	switch opts.Machine.Screen().(type) {
	case sess.ActiveScreen, sess.FeedbackScreen:
		r.Push(quizscreen.New(opts.Machine))
	case sess.CompletedScreen:
		r.Push(summary.New(opts.Machine, opts.Machine.Snapshot(), func(m *sess.Machine) screen.Screen {
			return quizscreen.New(m)
		}))
	}

	return AppModel{
		router:  r,
		learner: opts.Learner,
	}
}

func (m AppModel) Init() tea.Cmd {
	// Screens pushed in newAppModel already ran Init. The home screen
	// loads its data when it is uncovered.
	if m.router.Depth() > 1 {
		return nil
	}
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screen.MasteryMsg:
		m.mastered = msg.Mastered
		m.lessons = msg.Lessons
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if eh, ok := m.router.Active().(screen.EscapeHandler); ok && eh.HandlesEscape() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.learner, m.mastered, m.lessons, m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = keys.Hints(keys.Back, keys.Quit)
	} else {
		footerHints = keys.Hints(keys.Up, keys.Enter, keys.Quit)
	}

	footer := layout.RenderFooter(footerHints, m.width)

	content := m.router.View(m.width, layout.ContentHeight(m.height))
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
