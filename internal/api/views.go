package api

import (
	"time"

	"github.com/samber/lo"

	"github.com/abhisek/vocabquiz/internal/bank"
	"github.com/abhisek/vocabquiz/internal/mastery"
	"github.com/abhisek/vocabquiz/internal/quiz"
	"github.com/abhisek/vocabquiz/internal/session"
	"github.com/abhisek/vocabquiz/internal/store"
)

type questionView struct {
	ID       string   `json:"id"`
	Sentence string   `json:"sentence"`
	Options  []string `json:"options"`
	// Revealed only once an answer is pending.
	CorrectAnswer string `json:"correct_answer,omitempty"`
	Word          string `json:"word,omitempty"`
	Definition    string `json:"definition,omitempty"`
}

type missedView struct {
	QuestionID string `json:"question_id"`
	Word       string `json:"word"`
	Sentence   string `json:"sentence"`
	Given      string `json:"given,omitempty"`
	Correct    string `json:"correct"`
	Definition string `json:"definition"`
}

type resultView struct {
	CorrectCount int          `json:"correct_count"`
	Total        int          `json:"total"`
	Percentage   int          `json:"percentage"`
	Missed       []missedView `json:"missed"`
}

type sessionView struct {
	Screen          string        `json:"screen"`
	AttemptID       string        `json:"attempt_id,omitempty"`
	ParentID        string        `json:"parent_id,omitempty"`
	SelectedLessons []string      `json:"selected_lessons,omitempty"`
	Index           int           `json:"index"`
	Total           int           `json:"total"`
	Question        *questionView `json:"question,omitempty"`
	Pending         *string       `json:"pending_answer,omitempty"`
	Correct         *bool         `json:"correct,omitempty"`
	Answers         []*string     `json:"answers,omitempty"`
	Result          *resultView   `json:"result,omitempty"`
	MasteryGranted  bool          `json:"mastery_granted"`
}

type attemptView struct {
	ID              string    `json:"id"`
	ParentID        string    `json:"parent_id,omitempty"`
	SelectedLessons []string  `json:"selected_lessons"`
	Status          string    `json:"status"`
	Score           *int      `json:"score,omitempty"`
	CurrentIndex    int       `json:"current_index"`
	Total           int       `json:"total"`
	CreatedAt       time.Time `json:"created_at"`
}

type lessonView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Order      int    `json:"order"`
	Questions  int    `json:"questions"`
	Mastered   bool   `json:"mastered"`
	Selectable bool   `json:"selectable"`
}

func newQuestionView(q bank.Question, reveal bool) *questionView {
	v := &questionView{ID: q.ID, Sentence: q.Sentence, Options: q.Options}
	if reveal {
		v.CorrectAnswer = q.CorrectAnswer
		v.Word = q.Word
		v.Definition = q.Definition
	}
	return v
}

func newResultView(r quiz.Result) *resultView {
	return &resultView{
		CorrectCount: r.CorrectCount,
		Total:        r.Total,
		Percentage:   r.Percentage,
		Missed: lo.Map(r.MissedWords(), func(w quiz.MissedWord, _ int) missedView {
			return missedView(w)
		}),
	}
}

func newSessionView(snap session.Snapshot) sessionView {
	v := sessionView{
		Screen:          snap.Screen.Name(),
		AttemptID:       snap.AttemptID,
		ParentID:        snap.ParentID,
		SelectedLessons: snap.SelectedLessons,
		Index:           snap.Index,
		Total:           snap.Total,
		Answers:         snap.Answers,
		MasteryGranted:  snap.MasteryGranted,
	}
	_, feedback := snap.Screen.(session.FeedbackScreen)
	if snap.Question != nil {
		v.Question = newQuestionView(*snap.Question, feedback)
	}
	if feedback {
		pending, correct := snap.Pending, snap.Correct
		v.Pending, v.Correct = &pending, &correct
	}
	if snap.Result != nil {
		v.Result = newResultView(*snap.Result)
	}
	return v
}

func newAttemptView(a store.Attempt) attemptView {
	return attemptView{
		ID:              a.ID,
		ParentID:        a.ParentID,
		SelectedLessons: a.SelectedLessons,
		Status:          string(a.Status),
		Score:           a.Score,
		CurrentIndex:    a.CurrentIndex,
		Total:           len(a.Questions),
		CreatedAt:       a.CreatedAt,
	}
}

func newLessonView(st mastery.LessonStatus) lessonView {
	return lessonView{
		ID:         st.Lesson.ID,
		Name:       st.Lesson.Name,
		Order:      st.Lesson.Order,
		Questions:  len(st.Lesson.QuestionIDs),
		Mastered:   st.Mastered,
		Selectable: st.Selectable,
	}
}
