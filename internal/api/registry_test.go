package api

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/vocabquiz/internal/session"
	"github.com/abhisek/vocabquiz/internal/store"
)

func TestRegistryDropsIdleMachines(t *testing.T) {
	ts := newTestServer(t)
	reg := ts.srv.sessions
	ctx := context.Background()

	require.NoError(t, reg.With("alice", func(*session.Machine) error { return nil }))
	assert.Equal(t, 0, reg.Len(), "a machine on Start is not kept")

	require.NoError(t, reg.With("alice", func(m *session.Machine) error {
		return m.StartQuiz(ctx, []string{"lesson1"})
	}))
	assert.Equal(t, 1, reg.Len())

	// The same machine is handed back while the quiz runs.
	require.NoError(t, reg.With("alice", func(m *session.Machine) error {
		assert.Equal(t, "active", m.Screen().Name())
		return m.SaveDraft(ctx)
	}))
	assert.Equal(t, 0, reg.Len())
}

func TestRegistrySerializesPerLearner(t *testing.T) {
	ts := newTestServer(t)
	reg := ts.srv.sessions
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = reg.With("bob", func(m *session.Machine) error {
				if _, ok := m.Screen().(session.StartScreen); ok {
					return m.StartQuiz(ctx, []string{"lesson1"})
				}
				return m.Abandon()
			})
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	attempts, err := ts.attempts.ListForOwner(ctx, "bob", store.ListOpts{})
	require.NoError(t, err)
	assert.Len(t, attempts, 4, "starts and abandons alternate")
	assert.Equal(t, 0, reg.Len())
}
