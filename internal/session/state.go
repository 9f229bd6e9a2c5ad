// Package session implements the quiz session state machine: starting a
// quiz, answering, advancing with write-through persistence, saving
// drafts, resuming, finishing and retrying missed questions.
package session

import "github.com/abhisek/vocabquiz/internal/quiz"

// Screen is the current state of a session. It is one of StartScreen,
// ActiveScreen, FeedbackScreen or CompletedScreen.
type Screen interface {
	// Name returns a stable identifier used by views and the HTTP API.
	Name() string
	isScreen()
}

// StartScreen is the idle state: no attempt is loaded.
type StartScreen struct{}

// ActiveScreen shows question Index awaiting an answer.
type ActiveScreen struct {
	Index int
}

// FeedbackScreen shows the verdict for question Index. Pending is the
// chosen option, not yet written to the attempt.
type FeedbackScreen struct {
	Index   int
	Pending string
}

// CompletedScreen shows the scored attempt.
type CompletedScreen struct {
	Result quiz.Result
}

func (StartScreen) Name() string     { return "start" }
func (ActiveScreen) Name() string    { return "active" }
func (FeedbackScreen) Name() string  { return "feedback" }
func (CompletedScreen) Name() string { return "completed" }

func (StartScreen) isScreen()     {}
func (ActiveScreen) isScreen()    {}
func (FeedbackScreen) isScreen()  {}
func (CompletedScreen) isScreen() {}
