package store

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/abhisek/vocabquiz/internal/bank"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Status is the lifecycle state of an attempt.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusDraft      Status = "draft"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusInProgress, StatusDraft, StatusCompleted:
		return true
	}
	return false
}

// Attempt is one persisted run through a question set.
type Attempt struct {
	ID              string
	Owner           string
	ParentID        string // empty when not a retry
	SelectedLessons []string
	Questions       []bank.Question
	Answers         []*string // index-aligned with Questions; nil = unanswered
	CurrentIndex    int
	Status          Status
	Score           *int // set once completed
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Clone returns a deep copy of a.
func (a *Attempt) Clone() *Attempt {
	if a == nil {
		return nil
	}
	c := *a
	c.SelectedLessons = slices.Clone(a.SelectedLessons)
	c.Questions = make([]bank.Question, len(a.Questions))
	for i, q := range a.Questions {
		c.Questions[i] = q.Clone()
	}
	c.Answers = CloneAnswers(a.Answers)
	if a.Score != nil {
		s := *a.Score
		c.Score = &s
	}
	return &c
}

// CloneAnswers copies an answer slice including the pointed-to strings.
func CloneAnswers(answers []*string) []*string {
	if answers == nil {
		return nil
	}
	out := make([]*string, len(answers))
	for i, a := range answers {
		if a != nil {
			v := *a
			out[i] = &v
		}
	}
	return out
}

// AttemptPatch is a partial update. Nil fields are left untouched.
type AttemptPatch struct {
	Answers      *[]*string
	CurrentIndex *int
	Status       *Status
	Score        *int
}

// Empty reports whether the patch changes nothing.
func (p AttemptPatch) Empty() bool {
	return p.Answers == nil && p.CurrentIndex == nil && p.Status == nil && p.Score == nil
}

// apply writes the patch onto a.
func (p AttemptPatch) apply(a *Attempt) {
	if p.Answers != nil {
		a.Answers = CloneAnswers(*p.Answers)
	}
	if p.CurrentIndex != nil {
		a.CurrentIndex = *p.CurrentIndex
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.Score != nil {
		s := *p.Score
		a.Score = &s
	}
}

// ListOpts filters owner listings.
type ListOpts struct {
	Status Status // empty = any
	Limit  int    // 0 = unlimited
}

// AttemptRepo persists attempts.
type AttemptRepo interface {
	// Create stores a new attempt, assigning ID and CreatedAt when empty.
	Create(ctx context.Context, a *Attempt) (*Attempt, error)

	// Get returns the attempt with id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Attempt, error)

	// Update applies a partial update, or returns ErrNotFound.
	Update(ctx context.Context, id string, patch AttemptPatch) error

	// Delete removes the attempt, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// ListForOwner returns the owner's attempts, newest first.
	ListForOwner(ctx context.Context, owner string, opts ListOpts) ([]Attempt, error)
}

// MasteryRepo persists the set of lessons each learner has mastered.
type MasteryRepo interface {
	// Get returns the owner's mastered lesson ids in the order they were granted.
	Get(ctx context.Context, owner string) ([]string, error)

	// AddIfAbsent records lessonID as mastered. Adding an existing entry is a no-op.
	AddIfAbsent(ctx context.Context, owner, lessonID string) error
}
