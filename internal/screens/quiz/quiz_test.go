package quiz

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/vocabquiz/internal/bank"
	"github.com/abhisek/vocabquiz/internal/mastery"
	quizpkg "github.com/abhisek/vocabquiz/internal/quiz"
	"github.com/abhisek/vocabquiz/internal/router"
	"github.com/abhisek/vocabquiz/internal/screen"
	"github.com/abhisek/vocabquiz/internal/screens/summary"
	sess "github.com/abhisek/vocabquiz/internal/session"
	"github.com/abhisek/vocabquiz/internal/store"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

type fixture struct {
	machine  *sess.Machine
	attempts *store.MemoryAttemptRepo
}

func startedFixture(t *testing.T, lessons ...string) fixture {
	t.Helper()
	b, err := bank.Default()
	if err != nil {
		t.Fatalf("load bank: %v", err)
	}
	attempts := store.NewMemoryAttemptRepo()
	m := sess.New("ada", sess.Deps{
		Bank:     b,
		Builder:  quizpkg.NewSeededBuilder(7),
		Attempts: attempts,
		Mastery:  mastery.NewService(store.NewMemoryMasteryRepo(), nil),
	})
	if err := m.StartQuiz(context.Background(), lessons); err != nil {
		t.Fatalf("StartQuiz: %v", err)
	}
	return fixture{machine: m, attempts: attempts}
}

// digitFor returns the number key selecting choice in the current question.
func digitFor(t *testing.T, s *QuizScreen, choice string) rune {
	t.Helper()
	for i, o := range s.snap.Question.Options {
		if o == choice {
			return rune('1' + i)
		}
	}
	t.Fatalf("%q is not an option", choice)
	return 0
}

// runCmd executes cmd and feeds its message back to the screen.
func runCmd(t *testing.T, scr screen.Screen, cmd tea.Cmd) (screen.Screen, tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	return scr.Update(cmd())
}

func TestQuizScreen_Title(t *testing.T) {
	f := startedFixture(t, "lesson1")
	s := New(f.machine)
	if s.Title() != "Quiz" {
		t.Errorf("Title = %q, want %q", s.Title(), "Quiz")
	}
}

func TestQuizScreen_ViewShowsSentence(t *testing.T) {
	f := startedFixture(t, "lesson1")
	s := New(f.machine)
	view := s.View(80, 24)
	if view == "" {
		t.Fatal("expected non-empty view")
	}
	if s.snap.Question == nil {
		t.Fatal("expected a current question")
	}
}

func TestQuizScreen_DigitSubmitsAnswer(t *testing.T) {
	f := startedFixture(t, "lesson1")
	s := New(f.machine)
	correct := s.snap.Question.CorrectAnswer

	var scr screen.Screen = s
	scr, _ = scr.Update(keyPress(digitFor(t, s, correct)))

	fb, ok := f.machine.Screen().(sess.FeedbackScreen)
	if !ok {
		t.Fatalf("machine screen = %s, want feedback", f.machine.Screen().Name())
	}
	if fb.Pending != correct {
		t.Errorf("Pending = %q, want %q", fb.Pending, correct)
	}
	qs := scr.(*QuizScreen)
	if !qs.snap.Correct {
		t.Error("expected snapshot to mark the answer correct")
	}
	if qs.choices.Correct != correct {
		t.Errorf("revealed correct = %q, want %q", qs.choices.Correct, correct)
	}
}

func TestQuizScreen_ArrowsThenEnterSubmits(t *testing.T) {
	f := startedFixture(t, "lesson1")
	s := New(f.machine)

	var scr screen.Screen = s
	scr, _ = scr.Update(specialKey(tea.KeyDown))
	scr, _ = scr.Update(specialKey(tea.KeyEnter))

	fb, ok := f.machine.Screen().(sess.FeedbackScreen)
	if !ok {
		t.Fatalf("machine screen = %s, want feedback", f.machine.Screen().Name())
	}
	if fb.Pending != s.snap.Question.Options[1] {
		t.Errorf("Pending = %q, want second option", fb.Pending)
	}
}

func TestQuizScreen_AdvanceMovesToNextQuestion(t *testing.T) {
	f := startedFixture(t, "lesson1")
	s := New(f.machine)

	var scr screen.Screen = s
	scr, _ = scr.Update(keyPress('1'))
	scr, cmd := scr.Update(specialKey(tea.KeyEnter))
	if !scr.(*QuizScreen).busy {
		t.Fatal("expected screen to be busy while advancing")
	}

	scr, _ = runCmd(t, scr, cmd)

	qs := scr.(*QuizScreen)
	if qs.busy {
		t.Error("expected busy cleared after advance")
	}
	active, ok := qs.snap.Screen.(sess.ActiveScreen)
	if !ok || active.Index != 1 {
		t.Fatalf("snap screen = %#v, want active index 1", qs.snap.Screen)
	}
	if qs.choices.Submitted {
		t.Error("expected a fresh selector for the next question")
	}
}

func TestQuizScreen_KeysIgnoredWhileBusy(t *testing.T) {
	f := startedFixture(t, "lesson1")
	s := New(f.machine)

	var scr screen.Screen = s
	scr, _ = scr.Update(keyPress('1'))
	scr, _ = scr.Update(specialKey(tea.KeyEnter))

	_, cmd := scr.Update(specialKey(tea.KeyEnter))
	if cmd != nil {
		t.Error("expected no command while busy")
	}
}

func TestQuizScreen_FinishReplacesWithSummary(t *testing.T) {
	f := startedFixture(t, "lesson1")
	var scr screen.Screen = New(f.machine)

	var cmd tea.Cmd
	for {
		qs := scr.(*QuizScreen)
		scr, _ = scr.Update(keyPress(digitFor(t, qs, qs.snap.Question.CorrectAnswer)))
		scr, cmd = scr.Update(specialKey(tea.KeyEnter))
		scr, cmd = runCmd(t, scr, cmd)
		if cmd != nil {
			break
		}
	}

	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	if _, ok := msg.Screen.(*summary.SummaryScreen); !ok {
		t.Fatalf("expected summary screen, got %T", msg.Screen)
	}
	res, ok := f.machine.Result()
	if !ok || !res.Perfect() {
		t.Errorf("expected a perfect completed result, got %+v", res)
	}
	if !f.machine.MasteryGranted() {
		t.Error("expected mastery granted for a perfect single-lesson attempt")
	}
}

func TestQuizScreen_SaveDraftPops(t *testing.T) {
	f := startedFixture(t, "lesson1", "lesson2")
	var scr screen.Screen = New(f.machine)

	scr, cmd := scr.Update(keyPress('s'))
	_, cmd = runCmd(t, scr, cmd)
	if cmd == nil {
		t.Fatal("expected pop command after saving")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Fatal("expected PopScreenMsg")
	}

	drafts, err := f.attempts.ListForOwner(context.Background(), "ada", store.ListOpts{Status: store.StatusDraft})
	if err != nil {
		t.Fatalf("ListForOwner: %v", err)
	}
	if len(drafts) != 1 {
		t.Fatalf("drafts = %d, want 1", len(drafts))
	}
	if _, ok := f.machine.Screen().(sess.StartScreen); !ok {
		t.Errorf("machine screen = %s, want start", f.machine.Screen().Name())
	}
}

func TestQuizScreen_SaveIgnoredInFeedback(t *testing.T) {
	f := startedFixture(t, "lesson1")
	var scr screen.Screen = New(f.machine)

	scr, _ = scr.Update(keyPress('1'))
	_, cmd := scr.Update(keyPress('s'))
	if cmd != nil {
		t.Error("expected no command for save during feedback")
	}
	if _, ok := f.machine.Screen().(sess.FeedbackScreen); !ok {
		t.Errorf("machine screen = %s, want feedback", f.machine.Screen().Name())
	}
}

func TestQuizScreen_EscAbandons(t *testing.T) {
	f := startedFixture(t, "lesson1")
	s := New(f.machine)
	if !s.HandlesEscape() {
		t.Fatal("quiz screen should handle Esc")
	}

	_, cmd := s.Update(specialKey(tea.KeyEscape))
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Fatal("expected PopScreenMsg")
	}
	if _, ok := f.machine.Screen().(sess.StartScreen); !ok {
		t.Errorf("machine screen = %s, want start", f.machine.Screen().Name())
	}
}

func TestQuizScreen_KeyHints(t *testing.T) {
	f := startedFixture(t, "lesson1")
	s := New(f.machine)
	if len(s.KeyHints()) != 4 {
		t.Errorf("active KeyHints = %d, want 4", len(s.KeyHints()))
	}

	var scr screen.Screen = s
	scr.Update(keyPress('1'))
	if len(s.KeyHints()) != 2 {
		t.Errorf("feedback KeyHints = %d, want 2", len(s.KeyHints()))
	}
}

func TestQuizScreen_FeedbackCardFitsShortTerminals(t *testing.T) {
	f := startedFixture(t, "lesson1")
	s := New(f.machine)
	q := *s.snap.Question
	wrong := ""
	for _, o := range q.Options {
		if o != q.CorrectAnswer {
			wrong = o
			break
		}
	}

	var scr screen.Screen = s
	scr, _ = scr.Update(keyPress(digitFor(t, s, wrong)))
	qs := scr.(*QuizScreen)

	full := qs.View(100, 40)
	compact := qs.View(100, 24)
	for _, v := range []string{full, compact} {
		if !strings.Contains(v, q.CorrectAnswer) {
			t.Errorf("feedback view does not show the correct answer %q", q.CorrectAnswer)
		}
	}
	if strings.Count(compact, "\n") >= strings.Count(full, "\n") {
		t.Errorf("compact view has %d lines, full view %d; want fewer",
			strings.Count(compact, "\n"), strings.Count(full, "\n"))
	}
}
