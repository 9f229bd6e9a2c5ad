// Package bank holds the static vocabulary question bank: the flat question
// records and the lesson index that maps each lesson to its question ids.
package bank

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrUnknownLesson is returned when a lesson id is not in the lesson index.
	ErrUnknownLesson = errors.New("unknown lesson")

	// ErrInvalidBank is returned when bank content fails validation.
	ErrInvalidBank = errors.New("invalid question bank")
)

// Question is a single multiple-choice vocabulary item.
type Question struct {
	ID            string   `json:"id"`
	Sentence      string   `json:"sentence"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Word          string   `json:"word"`
	Definition    string   `json:"definition"`
}

// Clone returns a deep copy of q.
func (q Question) Clone() Question {
	q.Options = slices.Clone(q.Options)
	return q
}

// HasOption reports whether choice is one of the question's options.
func (q Question) HasOption(choice string) bool {
	return slices.Contains(q.Options, choice)
}

// IsCorrect reports whether choice matches the correct answer exactly.
func (q Question) IsCorrect(choice string) bool {
	return choice == q.CorrectAnswer
}

// Lesson is an entry of the lesson index.
type Lesson struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Order       int      `json:"order"`
	QuestionIDs []string `json:"questions"`
}

// Bank is an immutable, validated question bank.
type Bank struct {
	version   string
	title     string
	lessons   []Lesson
	byLesson  map[string]int
	questions []Question
	byID      map[string]int
}

// New builds a bank from lessons and questions and validates the index.
// Lessons are ordered by their Order field.
func New(version string, lessons []Lesson, questions []Question) (*Bank, error) {
	b := &Bank{
		version:   version,
		lessons:   make([]Lesson, 0, len(lessons)),
		byLesson:  make(map[string]int, len(lessons)),
		questions: make([]Question, 0, len(questions)),
		byID:      make(map[string]int, len(questions)),
	}

	for _, q := range questions {
		if q.ID == "" {
			return nil, fmt.Errorf("%w: question with empty id", ErrInvalidBank)
		}
		if _, dup := b.byID[q.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate question id %q", ErrInvalidBank, q.ID)
		}
		if !q.HasOption(q.CorrectAnswer) {
			return nil, fmt.Errorf("%w: question %q: correct answer %q not among options",
				ErrInvalidBank, q.ID, q.CorrectAnswer)
		}
		b.byID[q.ID] = len(b.questions)
		b.questions = append(b.questions, q.Clone())
	}

	sorted := slices.Clone(lessons)
	slices.SortStableFunc(sorted, func(a, b Lesson) int { return a.Order - b.Order })

	seen := make(map[string]string)
	for _, l := range sorted {
		if l.ID == "" {
			return nil, fmt.Errorf("%w: lesson with empty id", ErrInvalidBank)
		}
		if _, dup := b.byLesson[l.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate lesson id %q", ErrInvalidBank, l.ID)
		}
		for _, id := range l.QuestionIDs {
			if _, ok := b.byID[id]; !ok {
				return nil, fmt.Errorf("%w: lesson %q references unknown question %q",
					ErrInvalidBank, l.ID, id)
			}
			if owner, ok := seen[id]; ok {
				return nil, fmt.Errorf("%w: question %q listed in both %q and %q",
					ErrInvalidBank, id, owner, l.ID)
			}
			seen[id] = l.ID
		}
		l.QuestionIDs = slices.Clone(l.QuestionIDs)
		if l.Name == "" {
			l.Name = l.ID
		}
		b.byLesson[l.ID] = len(b.lessons)
		b.lessons = append(b.lessons, l)
	}

	return b, nil
}

// Version returns the bank content version.
func (b *Bank) Version() string { return b.version }

// Title returns the bank display title.
func (b *Bank) Title() string { return b.title }

// Lessons returns the lesson index in unlock order.
func (b *Bank) Lessons() []Lesson {
	out := make([]Lesson, len(b.lessons))
	for i, l := range b.lessons {
		l.QuestionIDs = slices.Clone(l.QuestionIDs)
		out[i] = l
	}
	return out
}

// Lesson looks up a lesson by id.
func (b *Bank) Lesson(id string) (Lesson, bool) {
	i, ok := b.byLesson[id]
	if !ok {
		return Lesson{}, false
	}
	l := b.lessons[i]
	l.QuestionIDs = slices.Clone(l.QuestionIDs)
	return l, true
}

// QuestionIDs returns the ordered question ids of a lesson.
func (b *Bank) QuestionIDs(lessonID string) ([]string, error) {
	i, ok := b.byLesson[lessonID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLesson, lessonID)
	}
	return slices.Clone(b.lessons[i].QuestionIDs), nil
}

// Question returns a copy of the question with the given id.
func (b *Bank) Question(id string) (Question, bool) {
	i, ok := b.byID[id]
	if !ok {
		return Question{}, false
	}
	return b.questions[i].Clone(), true
}

// Questions returns copies of every question in bank order.
func (b *Bank) Questions() []Question {
	out := make([]Question, len(b.questions))
	for i, q := range b.questions {
		out[i] = q.Clone()
	}
	return out
}

// Previous returns the lesson that must be mastered before lessonID becomes
// selectable. ok is false for the first lesson and for unknown ids.
func (b *Bank) Previous(lessonID string) (Lesson, bool) {
	i, ok := b.byLesson[lessonID]
	if !ok || i == 0 {
		return Lesson{}, false
	}
	return b.lessons[i-1], true
}

// Selectable reports whether lessonID may be chosen given the learner's
// mastered lessons. The first lesson is always selectable; every later
// lesson requires its predecessor to be mastered.
func (b *Bank) Selectable(lessonID string, mastered []string) bool {
	i, ok := b.byLesson[lessonID]
	if !ok {
		return false
	}
	if i == 0 {
		return true
	}
	return slices.Contains(mastered, b.lessons[i-1].ID)
}
