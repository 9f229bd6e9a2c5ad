package api

import (
	"sync"

	"github.com/abhisek/vocabquiz/internal/session"
)

// Registry keeps one session machine per learner and serializes access to
// each of them. A machine back on the Start screen holds no state, so its
// entry is dropped and the registry only grows with learners mid-quiz.
type Registry struct {
	mu         sync.Mutex
	entries    map[string]*entry
	newMachine func(owner string) *session.Machine
}

type entry struct {
	mu      sync.Mutex
	m       *session.Machine
	retired bool
}

// NewRegistry returns a Registry that creates machines with newMachine.
func NewRegistry(newMachine func(owner string) *session.Machine) *Registry {
	return &Registry{
		entries:    make(map[string]*entry),
		newMachine: newMachine,
	}
}

// With runs fn while holding the learner's machine exclusively.
func (r *Registry) With(owner string, fn func(m *session.Machine) error) error {
	for {
		e := r.entry(owner)

		e.mu.Lock()
		if e.retired {
			// Dropped while we waited; pick up the replacement.
			e.mu.Unlock()
			continue
		}
		err := fn(e.m)
		if _, idle := e.m.Screen().(session.StartScreen); idle {
			r.mu.Lock()
			if r.entries[owner] == e {
				delete(r.entries, owner)
			}
			r.mu.Unlock()
			e.retired = true
		}
		e.mu.Unlock()
		return err
	}
}

func (r *Registry) entry(owner string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[owner]
	if !ok {
		e = &entry{m: r.newMachine(owner)}
		r.entries[owner] = e
	}
	return e
}

// Len returns the number of learners with a machine.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
