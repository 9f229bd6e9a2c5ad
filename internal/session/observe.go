package session

import (
	"slices"

	"github.com/abhisek/vocabquiz/internal/bank"
	"github.com/abhisek/vocabquiz/internal/quiz"
	"github.com/abhisek/vocabquiz/internal/store"
)

// Owner returns the learner this machine acts for.
func (m *Machine) Owner() string { return m.owner }

// Screen returns the current screen.
func (m *Machine) Screen() Screen { return m.screen }

// Attempt returns a copy of the loaded attempt, or nil in Start.
func (m *Machine) Attempt() *store.Attempt { return m.attempt.Clone() }

// CurrentQuestion returns the question shown in Active or Feedback.
func (m *Machine) CurrentQuestion() (bank.Question, bool) {
	var idx int
	switch s := m.screen.(type) {
	case ActiveScreen:
		idx = s.Index
	case FeedbackScreen:
		idx = s.Index
	default:
		return bank.Question{}, false
	}
	return m.attempt.Questions[idx].Clone(), true
}

// Answers returns a copy of the committed answers.
func (m *Machine) Answers() []*string {
	if m.attempt == nil {
		return nil
	}
	return store.CloneAnswers(m.attempt.Answers)
}

// PendingAnswer returns the uncommitted choice while in Feedback.
func (m *Machine) PendingAnswer() (string, bool) {
	fb, ok := m.screen.(FeedbackScreen)
	return fb.Pending, ok
}

// Result returns the score once Completed.
func (m *Machine) Result() (quiz.Result, bool) {
	done, ok := m.screen.(CompletedScreen)
	return done.Result, ok
}

// Progress returns the zero-based question index and the question count.
// Completed attempts report index == total.
func (m *Machine) Progress() (index, total int) {
	if m.attempt == nil {
		return 0, 0
	}
	total = len(m.attempt.Questions)
	switch s := m.screen.(type) {
	case ActiveScreen:
		return s.Index, total
	case FeedbackScreen:
		return s.Index, total
	default:
		return total, total
	}
}

// MasteryGranted reports whether finishing this attempt unlocked mastery.
func (m *Machine) MasteryGranted() bool { return m.granted }

// Snapshot is a read-only copy of the session for rendering.
type Snapshot struct {
	Screen          Screen
	AttemptID       string
	ParentID        string
	SelectedLessons []string
	Index           int
	Total           int
	Question        *bank.Question
	Pending         string
	Correct         bool // Pending matches the correct answer
	Answers         []*string
	Result          *quiz.Result
	MasteryGranted  bool
}

// Snapshot captures the current session state.
func (m *Machine) Snapshot() Snapshot {
	snap := Snapshot{Screen: m.screen, MasteryGranted: m.granted}
	if m.attempt == nil {
		return snap
	}
	snap.AttemptID = m.attempt.ID
	snap.ParentID = m.attempt.ParentID
	snap.SelectedLessons = slices.Clone(m.attempt.SelectedLessons)
	snap.Index, snap.Total = m.Progress()
	snap.Answers = m.Answers()
	if q, ok := m.CurrentQuestion(); ok {
		snap.Question = &q
	}
	if p, ok := m.PendingAnswer(); ok {
		snap.Pending = p
		snap.Correct = snap.Question.IsCorrect(p)
	}
	if res, ok := m.Result(); ok {
		snap.Result = &res
	}
	return snap
}
