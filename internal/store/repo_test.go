package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/vocabquiz/internal/bank"
)

type repos struct {
	attempts AttemptRepo
	mastery  MasteryRepo
}

// backends runs fn against every repository implementation.
func backends(t *testing.T, fn func(t *testing.T, r repos)) {
	t.Run("sqlite", func(t *testing.T) {
		s := openTestStore(t)
		s.now = tickingClock()
		fn(t, repos{attempts: s.AttemptRepo(), mastery: s.MasteryRepo()})
	})
	t.Run("memory", func(t *testing.T) {
		a := NewMemoryAttemptRepo()
		a.now = tickingClock()
		fn(t, repos{attempts: a, mastery: NewMemoryMasteryRepo()})
	})
}

func str(s string) *string { return &s }

func sampleAttempt(owner string) *Attempt {
	return &Attempt{
		Owner:           owner,
		SelectedLessons: []string{"lesson1"},
		Questions: []bank.Question{
			{ID: "q1", Sentence: "s1", Options: []string{"a", "b"}, CorrectAnswer: "a", Word: "a", Definition: "d1"},
			{ID: "q2", Sentence: "s2", Options: []string{"c", "d"}, CorrectAnswer: "d", Word: "d", Definition: "d2"},
		},
		Status: StatusInProgress,
	}
}

func TestAttemptCreateGet(t *testing.T) {
	backends(t, func(t *testing.T, r repos) {
		ctx := context.Background()

		created, err := r.attempts.Create(ctx, sampleAttempt("alice"))
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.False(t, created.CreatedAt.IsZero())

		got, err := r.attempts.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Owner)
		assert.Equal(t, []string{"lesson1"}, got.SelectedLessons)
		assert.Equal(t, created.Questions, got.Questions)
		assert.Empty(t, got.Answers)
		assert.Equal(t, 0, got.CurrentIndex)
		assert.Equal(t, StatusInProgress, got.Status)
		assert.Nil(t, got.Score)
		assert.Equal(t, "", got.ParentID)
		assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	})
}

func TestAttemptGetNotFound(t *testing.T) {
	backends(t, func(t *testing.T, r repos) {
		_, err := r.attempts.Get(context.Background(), "missing")
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestAttemptUpdatePartial(t *testing.T) {
	backends(t, func(t *testing.T, r repos) {
		ctx := context.Background()
		created, err := r.attempts.Create(ctx, sampleAttempt("alice"))
		require.NoError(t, err)

		answers := []*string{str("a")}
		idx := 1
		require.NoError(t, r.attempts.Update(ctx, created.ID, AttemptPatch{Answers: &answers, CurrentIndex: &idx}))

		got, err := r.attempts.Get(ctx, created.ID)
		require.NoError(t, err)
		require.Len(t, got.Answers, 1)
		assert.Equal(t, "a", *got.Answers[0])
		assert.Equal(t, 1, got.CurrentIndex)
		assert.Equal(t, StatusInProgress, got.Status, "status must be untouched")

		status := StatusCompleted
		score := 2
		require.NoError(t, r.attempts.Update(ctx, created.ID, AttemptPatch{Status: &status, Score: &score}))

		got, err = r.attempts.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, got.Status)
		require.NotNil(t, got.Score)
		assert.Equal(t, 2, *got.Score)
		require.Len(t, got.Answers, 1, "answers must be untouched")
	})
}

func TestAttemptUpdateKeepsNilAnswers(t *testing.T) {
	backends(t, func(t *testing.T, r repos) {
		ctx := context.Background()
		created, err := r.attempts.Create(ctx, sampleAttempt("alice"))
		require.NoError(t, err)

		answers := []*string{nil, str("d")}
		require.NoError(t, r.attempts.Update(ctx, created.ID, AttemptPatch{Answers: &answers}))

		got, err := r.attempts.Get(ctx, created.ID)
		require.NoError(t, err)
		require.Len(t, got.Answers, 2)
		assert.Nil(t, got.Answers[0])
		assert.Equal(t, "d", *got.Answers[1])
	})
}

func TestAttemptUpdateNotFound(t *testing.T) {
	backends(t, func(t *testing.T, r repos) {
		idx := 1
		err := r.attempts.Update(context.Background(), "missing", AttemptPatch{CurrentIndex: &idx})
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestAttemptDelete(t *testing.T) {
	backends(t, func(t *testing.T, r repos) {
		ctx := context.Background()
		created, err := r.attempts.Create(ctx, sampleAttempt("alice"))
		require.NoError(t, err)

		require.NoError(t, r.attempts.Delete(ctx, created.ID))
		_, err = r.attempts.Get(ctx, created.ID)
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.True(t, errors.Is(r.attempts.Delete(ctx, created.ID), ErrNotFound))
	})
}

func TestAttemptListForOwner(t *testing.T) {
	backends(t, func(t *testing.T, r repos) {
		ctx := context.Background()

		first, err := r.attempts.Create(ctx, sampleAttempt("alice"))
		require.NoError(t, err)
		second, err := r.attempts.Create(ctx, sampleAttempt("alice"))
		require.NoError(t, err)
		_, err = r.attempts.Create(ctx, sampleAttempt("bob"))
		require.NoError(t, err)

		draft := StatusDraft
		require.NoError(t, r.attempts.Update(ctx, first.ID, AttemptPatch{Status: &draft}))

		all, err := r.attempts.ListForOwner(ctx, "alice", ListOpts{})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, second.ID, all[0].ID, "newest first")
		assert.Equal(t, first.ID, all[1].ID)

		drafts, err := r.attempts.ListForOwner(ctx, "alice", ListOpts{Status: StatusDraft})
		require.NoError(t, err)
		require.Len(t, drafts, 1)
		assert.Equal(t, first.ID, drafts[0].ID)

		limited, err := r.attempts.ListForOwner(ctx, "alice", ListOpts{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, limited, 1)

		none, err := r.attempts.ListForOwner(ctx, "carol", ListOpts{})
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestAttemptRetryKeepsParent(t *testing.T) {
	backends(t, func(t *testing.T, r repos) {
		ctx := context.Background()
		parent, err := r.attempts.Create(ctx, sampleAttempt("alice"))
		require.NoError(t, err)

		child := sampleAttempt("alice")
		child.ParentID = parent.ID
		created, err := r.attempts.Create(ctx, child)
		require.NoError(t, err)

		got, err := r.attempts.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, parent.ID, got.ParentID)
	})
}

func TestAttemptCreateDoesNotAliasInput(t *testing.T) {
	backends(t, func(t *testing.T, r repos) {
		ctx := context.Background()
		in := sampleAttempt("alice")
		created, err := r.attempts.Create(ctx, in)
		require.NoError(t, err)

		in.Questions[0].Options[0] = "mutated"
		got, err := r.attempts.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "a", got.Questions[0].Options[0])
	})
}

func TestMasteryAddIfAbsent(t *testing.T) {
	backends(t, func(t *testing.T, r repos) {
		ctx := context.Background()

		got, err := r.mastery.Get(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, got)

		require.NoError(t, r.mastery.AddIfAbsent(ctx, "alice", "lesson1"))
		require.NoError(t, r.mastery.AddIfAbsent(ctx, "alice", "lesson1"))
		require.NoError(t, r.mastery.AddIfAbsent(ctx, "alice", "lesson2"))
		require.NoError(t, r.mastery.AddIfAbsent(ctx, "bob", "lesson3"))

		got, err = r.mastery.Get(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, []string{"lesson1", "lesson2"}, got)

		got, err = r.mastery.Get(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, []string{"lesson3"}, got)
	})
}

func TestMemoryMasteryConcurrentAdds(t *testing.T) {
	repo := NewMemoryMasteryRepo()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.AddIfAbsent(ctx, "alice", "lesson1")
		}()
	}
	wg.Wait()

	got, err := repo.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"lesson1"}, got)
}

func TestMemoryListTieBreaksByInsertion(t *testing.T) {
	repo := NewMemoryAttemptRepo()
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }
	ctx := context.Background()

	a, err := repo.Create(ctx, sampleAttempt("alice"))
	require.NoError(t, err)
	b, err := repo.Create(ctx, sampleAttempt("alice"))
	require.NoError(t, err)

	list, err := repo.ListForOwner(ctx, "alice", ListOpts{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, a.ID, list[1].ID)
}
