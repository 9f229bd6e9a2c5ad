// Package mastery grants lesson mastery on perfect single-lesson attempts
// and gates lesson selection on the previous lesson's mastery.
package mastery

import (
	"context"
	"fmt"
	"slices"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/abhisek/vocabquiz/internal/bank"
	"github.com/abhisek/vocabquiz/internal/store"
)

// Service applies the mastery-unlock rule against a MasteryRepo.
type Service struct {
	repo store.MasteryRepo
	log  *zap.Logger
}

// NewService creates a Service. A nil logger discards output.
func NewService(repo store.MasteryRepo, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, log: log}
}

// Eligible reports whether an attempt over lessons qualifies for mastery:
// every answer correct and exactly one lesson selected.
func Eligible(lessons []string, correct, total int) bool {
	return total > 0 && correct == total && len(lessons) == 1
}

// RecordCompletion grants mastery of the attempt's lesson when Eligible.
// It returns true only when the lesson was newly added.
func (s *Service) RecordCompletion(ctx context.Context, owner string, lessons []string, correct, total int) (bool, error) {
	if !Eligible(lessons, correct, total) {
		return false, nil
	}
	lessonID := lessons[0]

	mastered, err := s.repo.Get(ctx, owner)
	if err != nil {
		return false, fmt.Errorf("read mastery: %w", err)
	}
	if slices.Contains(mastered, lessonID) {
		return false, nil
	}

	if err := s.repo.AddIfAbsent(ctx, owner, lessonID); err != nil {
		return false, fmt.Errorf("grant mastery: %w", err)
	}
	s.log.Info("lesson mastered", zap.String("owner", owner), zap.String("lesson", lessonID))
	return true, nil
}

// Mastered returns the learner's mastered lesson ids in grant order.
func (s *Service) Mastered(ctx context.Context, owner string) ([]string, error) {
	mastered, err := s.repo.Get(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("read mastery: %w", err)
	}
	return mastered, nil
}

// LessonStatus is a lesson annotated for a lesson picker.
type LessonStatus struct {
	Lesson     bank.Lesson
	Mastered   bool
	Selectable bool
}

// Available returns every lesson in unlock order with its mastery and
// selectability for owner.
func (s *Service) Available(ctx context.Context, owner string, b *bank.Bank) ([]LessonStatus, error) {
	mastered, err := s.Mastered(ctx, owner)
	if err != nil {
		return nil, err
	}
	return lo.Map(b.Lessons(), func(l bank.Lesson, _ int) LessonStatus {
		return LessonStatus{
			Lesson:     l,
			Mastered:   slices.Contains(mastered, l.ID),
			Selectable: b.Selectable(l.ID, mastered),
		}
	}), nil
}

// SelectableIDs returns the ids of lessons owner may currently pick.
func SelectableIDs(statuses []LessonStatus) []string {
	return lo.FilterMap(statuses, func(st LessonStatus, _ int) (string, bool) {
		return st.Lesson.ID, st.Selectable
	})
}
