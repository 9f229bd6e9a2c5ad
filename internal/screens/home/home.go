// Package home provides the lesson-selection screen: pick lessons, start a
// quiz, or pick up a saved draft.
package home

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/samber/lo"

	"github.com/abhisek/vocabquiz/internal/bank"
	"github.com/abhisek/vocabquiz/internal/mastery"
	"github.com/abhisek/vocabquiz/internal/router"
	"github.com/abhisek/vocabquiz/internal/screen"
	quizscreen "github.com/abhisek/vocabquiz/internal/screens/quiz"
	"github.com/abhisek/vocabquiz/internal/screens/summary"
	sess "github.com/abhisek/vocabquiz/internal/session"
	"github.com/abhisek/vocabquiz/internal/store"
	"github.com/abhisek/vocabquiz/internal/ui/components"
	"github.com/abhisek/vocabquiz/internal/ui/keys"
	"github.com/abhisek/vocabquiz/internal/ui/layout"
)

// Deps are the collaborators the home screen reads from.
type Deps struct {
	Machine  *sess.Machine
	Bank     *bank.Bank
	Mastery  *mastery.Service
	Attempts store.AttemptRepo
	Learner  string
}

type focus int

const (
	focusLessons focus = iota
	focusDrafts
)

// loadedMsg carries lesson availability and resumable attempts.
type loadedMsg struct {
	statuses []mastery.LessonStatus
	drafts   []store.Attempt
	err      error
}

// startedMsg reports the outcome of StartQuiz or Resume.
type startedMsg struct {
	snap sess.Snapshot
	err  error
}

// deletedMsg reports the outcome of deleting a draft.
type deletedMsg struct {
	err error
}

// HomeScreen is the main screen of the application.
type HomeScreen struct {
	deps     Deps
	lessons  components.Checklist
	drafts   components.Menu
	attempts []store.Attempt
	mastered int
	focus    focus
	busy     bool
	errMsg   string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ screen.Refresher = (*HomeScreen)(nil)

// New creates a new HomeScreen. Lesson data is loaded by Init.
func New(deps Deps) *HomeScreen {
	return &HomeScreen{deps: deps, lessons: components.NewChecklist(nil)}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.load()
}

// Refresh reloads lessons and drafts when the home screen is uncovered.
func (h *HomeScreen) Refresh() tea.Cmd {
	h.busy = false
	return h.load()
}

func (h *HomeScreen) Title() string {
	return "Lessons"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	focusKey := keys.Focus
	focusKey.SetEnabled(len(h.attempts) > 0)
	if h.focus == focusDrafts {
		return keys.Hints(keys.Up,
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Resume")),
			keys.Delete, focusKey, keys.Quit)
	}
	return keys.Hints(keys.Up, keys.Toggle, keys.All,
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Start")),
		focusKey, keys.Quit)
}

func (h *HomeScreen) load() tea.Cmd {
	deps := h.deps
	return func() tea.Msg {
		ctx := context.Background()
		statuses, err := deps.Mastery.Available(ctx, deps.Learner, deps.Bank)
		if err != nil {
			return loadedMsg{err: err}
		}
		all, err := deps.Attempts.ListForOwner(ctx, deps.Learner, store.ListOpts{})
		if err != nil {
			return loadedMsg{statuses: statuses, err: err}
		}
		drafts := lo.Filter(all, func(a store.Attempt, _ int) bool {
			return a.Status != store.StatusCompleted
		})
		return loadedMsg{statuses: statuses, drafts: drafts}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		return h.handleLoaded(msg)

	case startedMsg:
		h.busy = false
		if msg.err != nil {
			h.errMsg = msg.err.Error()
			return h, nil
		}
		h.errMsg = ""
		return h, func() tea.Msg { return router.PushScreenMsg{Screen: h.screenFor(msg.snap)} }

	case deletedMsg:
		h.busy = false
		if msg.err != nil {
			h.errMsg = fmt.Sprintf("Could not delete draft: %v", msg.err)
			return h, nil
		}
		return h, h.load()

	case tea.KeyMsg:
		if h.busy {
			return h, nil
		}
		return h.handleKey(msg)
	}
	return h, nil
}

func (h *HomeScreen) handleLoaded(msg loadedMsg) (screen.Screen, tea.Cmd) {
	if msg.err != nil {
		h.errMsg = fmt.Sprintf("Could not load lessons: %v", msg.err)
	} else {
		h.errMsg = ""
	}
	if msg.statuses == nil {
		return h, nil
	}

	checked := lo.SliceToMap(h.lessons.CheckedIDs(), func(id string) (string, bool) { return id, true })
	items := make([]components.CheckItem, 0, len(msg.statuses))
	h.mastered = 0
	for _, st := range msg.statuses {
		note := ""
		switch {
		case st.Mastered:
			h.mastered++
			note = "★ mastered"
		case !st.Selectable:
			note = "locked"
			if prev, ok := h.deps.Bank.Previous(st.Lesson.ID); ok {
				note = "master " + prev.Name + " to unlock"
			}
		}
		items = append(items, components.CheckItem{
			ID:       st.Lesson.ID,
			Label:    st.Lesson.Name,
			Note:     note,
			Checked:  checked[st.Lesson.ID] && st.Selectable,
			Disabled: !st.Selectable,
		})
	}
	sel := min(h.lessons.Selected, max(len(items)-1, 0))
	h.lessons = components.NewChecklist(items)
	h.lessons.Selected = sel

	h.attempts = msg.drafts
	menuItems := make([]components.MenuItem, 0, len(msg.drafts))
	for _, a := range msg.drafts {
		id := a.ID
		menuItems = append(menuItems, components.MenuItem{
			Label:  draftLabel(h.deps.Bank, a),
			Action: func() tea.Cmd { return h.resume(id) },
		})
	}
	h.drafts = components.NewMenu(menuItems)
	if len(menuItems) == 0 {
		h.focus = focusLessons
	}
	h.applyFocus()

	mastered, total := h.mastered, len(items)
	return h, func() tea.Msg { return screen.MasteryMsg{Mastered: mastered, Lessons: total} }
}

func (h *HomeScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if key.Matches(msg, keys.Focus) {
		if h.focus == focusLessons && len(h.attempts) > 0 {
			h.focus = focusDrafts
		} else {
			h.focus = focusLessons
		}
		h.applyFocus()
		return h, nil
	}

	if h.focus == focusDrafts {
		if key.Matches(msg, keys.Delete) {
			if h.drafts.Selected < len(h.attempts) {
				return h, h.deleteDraft(h.attempts[h.drafts.Selected].ID)
			}
			return h, nil
		}
		var cmd tea.Cmd
		h.drafts, cmd = h.drafts.Update(msg)
		return h, cmd
	}

	if key.Matches(msg, keys.Enter) {
		return h, h.start(h.lessons.CheckedIDs())
	}
	var cmd tea.Cmd
	h.lessons, cmd = h.lessons.Update(msg)
	return h, cmd
}

func (h *HomeScreen) applyFocus() {
	h.lessons.Focused = h.focus == focusLessons
	h.drafts.Focused = h.focus == focusDrafts
}

func (h *HomeScreen) start(lessons []string) tea.Cmd {
	if len(lessons) == 0 {
		h.errMsg = "Select at least one lesson."
		return nil
	}
	h.busy = true
	m := h.deps.Machine
	return func() tea.Msg {
		err := m.StartQuiz(context.Background(), lessons)
		return startedMsg{snap: m.Snapshot(), err: err}
	}
}

func (h *HomeScreen) resume(id string) tea.Cmd {
	h.busy = true
	m := h.deps.Machine
	return func() tea.Msg {
		err := m.Resume(context.Background(), id)
		return startedMsg{snap: m.Snapshot(), err: err}
	}
}

func (h *HomeScreen) deleteDraft(id string) tea.Cmd {
	h.busy = true
	repo := h.deps.Attempts
	return func() tea.Msg {
		return deletedMsg{err: repo.Delete(context.Background(), id)}
	}
}

// screenFor returns the screen matching a freshly started or resumed
// session. Resuming a fully answered attempt lands on the results.
func (h *HomeScreen) screenFor(snap sess.Snapshot) screen.Screen {
	if _, ok := snap.Screen.(sess.CompletedScreen); ok {
		return summary.New(h.deps.Machine, snap, func(m *sess.Machine) screen.Screen {
			return quizscreen.New(m)
		})
	}
	return quizscreen.New(h.deps.Machine)
}

func draftLabel(b *bank.Bank, a store.Attempt) string {
	names := lo.Map(a.SelectedLessons, func(id string, _ int) string {
		if l, ok := b.Lesson(id); ok {
			return l.Name
		}
		return id
	})
	label := fmt.Sprintf("%s  %d/%d", strings.Join(names, ", "), a.CurrentIndex, len(a.Questions))
	if a.ParentID != "" {
		label += "  (retry)"
	}
	return label + "  " + a.UpdatedAt.Local().Format("Jan 2 15:04")
}
