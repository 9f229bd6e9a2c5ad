package quiz

import (
	"errors"
	"math"

	"github.com/abhisek/vocabquiz/internal/bank"
)

// ErrEmptyQuestionSet is returned when scoring an attempt with no questions.
var ErrEmptyQuestionSet = errors.New("empty question set")

// Result is the outcome of scoring an attempt.
type Result struct {
	CorrectCount int
	Total        int
	// Percentage is CorrectCount/Total as a whole percent, rounded half up.
	Percentage int
	Missed     []bank.Question
	// Given maps a missed question id to the learner's answer. Unanswered
	// questions have no entry.
	Given map[string]string
}

// Perfect reports whether every question was answered correctly.
func (r Result) Perfect() bool {
	return r.Total > 0 && r.CorrectCount == r.Total
}

// MissedWord is a display row for a missed question.
type MissedWord struct {
	QuestionID string
	Word       string
	Sentence   string
	Given      string
	Correct    string
	Definition string
}

// MissedWords returns the missed questions joined with the learner's answers.
func (r Result) MissedWords() []MissedWord {
	out := make([]MissedWord, 0, len(r.Missed))
	for _, q := range r.Missed {
		out = append(out, MissedWord{
			QuestionID: q.ID,
			Word:       q.Word,
			Sentence:   q.Sentence,
			Given:      r.Given[q.ID],
			Correct:    q.CorrectAnswer,
			Definition: q.Definition,
		})
	}
	return out
}

// Score compares answers index-by-index against questions. Missing and nil
// answers count as incorrect.
func Score(questions []bank.Question, answers []*string) (Result, error) {
	if len(questions) == 0 {
		return Result{}, ErrEmptyQuestionSet
	}

	res := Result{
		Total: len(questions),
		Given: make(map[string]string),
	}
	for i, q := range questions {
		var given *string
		if i < len(answers) {
			given = answers[i]
		}
		if given != nil && q.IsCorrect(*given) {
			res.CorrectCount++
			continue
		}
		res.Missed = append(res.Missed, q.Clone())
		if given != nil {
			res.Given[q.ID] = *given
		}
	}

	res.Percentage = int(math.Round(float64(res.CorrectCount) / float64(res.Total) * 100))
	return res, nil
}
