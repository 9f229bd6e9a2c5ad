package session

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/abhisek/vocabquiz/internal/bank"
	"github.com/abhisek/vocabquiz/internal/mastery"
	"github.com/abhisek/vocabquiz/internal/quiz"
	"github.com/abhisek/vocabquiz/internal/store"
)

// Deps are the collaborators a Machine needs.
type Deps struct {
	Bank     *bank.Bank
	Builder  *quiz.Builder
	Attempts store.AttemptRepo
	Mastery  *mastery.Service
	Logger   *zap.Logger
}

// Machine drives one learner's quiz session. It is not safe for concurrent
// use; callers serialize access.
type Machine struct {
	owner    string
	bank     *bank.Bank
	builder  *quiz.Builder
	attempts store.AttemptRepo
	mastery  *mastery.Service
	log      *zap.Logger

	screen  Screen
	attempt *store.Attempt
	granted bool

	// grantedFor is the attempt whose mastery write landed before its
	// completion write did. It survives a failed finish so the retry still
	// reports the grant.
	grantedFor string
}

// New returns a Machine in the Start screen for owner.
func New(owner string, deps Deps) *Machine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	builder := deps.Builder
	if builder == nil {
		builder = quiz.NewBuilder(nil)
	}
	return &Machine{
		owner:    owner,
		bank:     deps.Bank,
		builder:  builder,
		attempts: deps.Attempts,
		mastery:  deps.Mastery,
		log:      log.With(zap.String("owner", owner)),
		screen:   StartScreen{},
	}
}

// StartQuiz builds a question set for lessons and persists a new attempt.
func (m *Machine) StartQuiz(ctx context.Context, lessons []string) error {
	const op = "start quiz"
	if _, ok := m.screen.(StartScreen); !ok {
		return invalidTransition(op, m.screen)
	}
	lessons = lo.Uniq(lessons)
	if len(lessons) == 0 {
		return validationError(op, "no lessons selected")
	}

	questions, err := m.builder.Build(lessons, m.bank)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrValidation, err)
	}
	if len(questions) == 0 {
		return validationError(op, "selected lessons have no questions")
	}

	created, err := m.attempts.Create(ctx, &store.Attempt{
		Owner:           m.owner,
		SelectedLessons: slices.Clone(lessons),
		Questions:       questions,
		Answers:         []*string{},
		Status:          store.StatusInProgress,
	})
	if err != nil {
		return m.storeError(op, "", err)
	}

	m.load(created, ActiveScreen{Index: 0})
	m.log.Info("quiz started",
		zap.String("attempt_id", created.ID),
		zap.Strings("lessons", lessons),
		zap.Int("questions", len(questions)))
	return nil
}

// Resume reloads a persisted attempt at its saved position. A draft or
// in-progress attempt whose every question is already answered is
// finalized and lands on the Completed screen.
func (m *Machine) Resume(ctx context.Context, attemptID string) error {
	const op = "resume"
	if _, ok := m.screen.(StartScreen); !ok {
		return invalidTransition(op, m.screen)
	}

	a, err := m.attempts.Get(ctx, attemptID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err != nil {
		return m.storeError(op, attemptID, err)
	}
	if a.Owner != m.owner {
		return fmt.Errorf("%s: attempt %s: %w", op, attemptID, store.ErrNotFound)
	}
	if a.Status == store.StatusCompleted {
		return validationError(op, "attempt %s is already completed", attemptID)
	}
	if len(a.Questions) == 0 {
		return validationError(op, "attempt %s has no questions", attemptID)
	}

	index := min(max(a.CurrentIndex, 0), len(a.Questions))
	a.CurrentIndex = index
	a.Answers = alignAnswers(a.Answers, index)

	if index == len(a.Questions) {
		return m.finish(ctx, op, a, a.Answers, index)
	}

	m.load(a, ActiveScreen{Index: index})
	m.log.Info("quiz resumed", zap.String("attempt_id", a.ID), zap.Int("index", index))
	return nil
}

// SubmitAnswer records choice for the current question in memory and moves
// to the Feedback screen.
func (m *Machine) SubmitAnswer(choice string) error {
	const op = "submit answer"
	active, ok := m.screen.(ActiveScreen)
	if !ok {
		return invalidTransition(op, m.screen)
	}
	q := m.attempt.Questions[active.Index]
	if !q.HasOption(choice) {
		return validationError(op, "%q is not an option for question %s", choice, q.ID)
	}
	m.screen = FeedbackScreen{Index: active.Index, Pending: choice}
	return nil
}

// Advance commits the pending answer, writes it through and moves to the
// next question, or scores the attempt after the last one.
func (m *Machine) Advance(ctx context.Context) error {
	const op = "advance"
	fb, ok := m.screen.(FeedbackScreen)
	if !ok {
		return invalidTransition(op, m.screen)
	}

	a := m.attempt
	pending := fb.Pending
	answers := append(store.CloneAnswers(a.Answers[:fb.Index]), &pending)
	next := fb.Index + 1

	if err := m.attempts.Update(ctx, a.ID, store.AttemptPatch{
		Answers:      &answers,
		CurrentIndex: &next,
	}); err != nil {
		return m.storeError(op, a.ID, err)
	}

	if next < len(a.Questions) {
		a.Answers = answers
		a.CurrentIndex = next
		m.screen = ActiveScreen{Index: next}
		return nil
	}

	// On failure the session stays in Feedback. A retried Advance rewrites
	// the same answers before finishing again.
	return m.finish(ctx, op, a, answers, next)
}

// finish scores a, applies the mastery rule and marks the attempt completed.
// The screen and attempt are only updated once every write has succeeded.
func (m *Machine) finish(ctx context.Context, op string, a *store.Attempt, answers []*string, index int) error {
	res, err := quiz.Score(a.Questions, answers)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	granted := false
	if m.mastery != nil {
		granted, err = m.mastery.RecordCompletion(ctx, a.Owner, a.SelectedLessons, res.CorrectCount, res.Total)
		if err != nil {
			return m.storeError(op, a.ID, err)
		}
		if granted {
			m.grantedFor = a.ID
		}
	}
	granted = granted || m.grantedFor == a.ID

	status := store.StatusCompleted
	score := res.CorrectCount
	if err := m.attempts.Update(ctx, a.ID, store.AttemptPatch{
		Status: &status,
		Score:  &score,
	}); err != nil {
		return m.storeError(op, a.ID, err)
	}

	a.Answers = answers
	a.CurrentIndex = index
	a.Status = status
	a.Score = &score
	m.load(a, CompletedScreen{Result: res})
	m.granted = granted
	m.grantedFor = ""

	m.log.Info("quiz completed",
		zap.String("attempt_id", a.ID),
		zap.Int("correct", res.CorrectCount),
		zap.Int("total", res.Total),
		zap.Bool("mastery_granted", granted))
	return nil
}

// SaveDraft persists the current position with draft status and ends the
// session.
func (m *Machine) SaveDraft(ctx context.Context) error {
	const op = "save draft"
	active, ok := m.screen.(ActiveScreen)
	if !ok {
		return invalidTransition(op, m.screen)
	}

	a := m.attempt
	answers := store.CloneAnswers(a.Answers)
	index := active.Index
	status := store.StatusDraft
	if err := m.attempts.Update(ctx, a.ID, store.AttemptPatch{
		Answers:      &answers,
		CurrentIndex: &index,
		Status:       &status,
	}); err != nil {
		return m.storeError(op, a.ID, err)
	}

	m.log.Info("draft saved", zap.String("attempt_id", a.ID), zap.Int("index", index))
	m.reset()
	return nil
}

// Restart leaves the Completed screen for a fresh Start.
func (m *Machine) Restart() error {
	if _, ok := m.screen.(CompletedScreen); !ok {
		return invalidTransition("restart", m.screen)
	}
	m.reset()
	return nil
}

// Abandon leaves an unfinished quiz without writing anything. Progress up
// to the last Advance is already persisted.
func (m *Machine) Abandon() error {
	switch m.screen.(type) {
	case ActiveScreen, FeedbackScreen:
		m.log.Debug("quiz abandoned", zap.String("attempt_id", m.attempt.ID))
		m.reset()
		return nil
	default:
		return invalidTransition("abandon", m.screen)
	}
}

// RetryMissed starts a child attempt made of the questions missed in the
// completed attempt, in the same order and with the same option order.
func (m *Machine) RetryMissed(ctx context.Context) error {
	const op = "retry missed"
	done, ok := m.screen.(CompletedScreen)
	if !ok {
		return invalidTransition(op, m.screen)
	}
	if len(done.Result.Missed) == 0 {
		return validationError(op, "no missed questions")
	}

	parent := m.attempt
	questions := make([]bank.Question, len(done.Result.Missed))
	for i, q := range done.Result.Missed {
		questions[i] = q.Clone()
	}

	created, err := m.attempts.Create(ctx, &store.Attempt{
		Owner:           m.owner,
		ParentID:        parent.ID,
		SelectedLessons: slices.Clone(parent.SelectedLessons),
		Questions:       questions,
		Answers:         []*string{},
		Status:          store.StatusInProgress,
	})
	if err != nil {
		return m.storeError(op, parent.ID, err)
	}

	m.load(created, ActiveScreen{Index: 0})
	m.log.Info("retry started",
		zap.String("attempt_id", created.ID),
		zap.String("parent_id", parent.ID),
		zap.Int("questions", len(questions)))
	return nil
}

func (m *Machine) load(a *store.Attempt, s Screen) {
	m.attempt = a
	m.screen = s
	m.granted = false
}

func (m *Machine) reset() {
	m.attempt = nil
	m.screen = StartScreen{}
	m.granted = false
}

func (m *Machine) storeError(op, attemptID string, err error) error {
	m.log.Warn("store operation failed",
		zap.String("op", op),
		zap.String("attempt_id", attemptID),
		zap.Error(err))
	return &StoreError{Op: op, Err: err}
}

// alignAnswers returns answers sized to exactly n entries: extras are
// dropped and missing ones are left unanswered.
func alignAnswers(answers []*string, n int) []*string {
	out := store.CloneAnswers(answers)
	if out == nil {
		out = []*string{}
	}
	if len(out) > n {
		return out[:n]
	}
	for len(out) < n {
		out = append(out, nil)
	}
	return out
}
