package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryAttemptRepo is an in-process AttemptRepo. Safe for concurrent use.
type MemoryAttemptRepo struct {
	mu       sync.RWMutex
	attempts map[string]*Attempt
	seq      map[string]int // insertion order breaks created_at ties
	next     int
	now      func() time.Time
}

// NewMemoryAttemptRepo returns an empty in-memory attempt repository.
func NewMemoryAttemptRepo() *MemoryAttemptRepo {
	return &MemoryAttemptRepo{
		attempts: make(map[string]*Attempt),
		seq:      make(map[string]int),
		now:      time.Now,
	}
}

func (r *MemoryAttemptRepo) Create(_ context.Context, a *Attempt) (*Attempt, error) {
	out := a.Clone()
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = r.now().UTC()
	}
	out.UpdatedAt = out.CreatedAt
	if out.Answers == nil {
		out.Answers = []*string{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.attempts[out.ID]; dup {
		return nil, fmt.Errorf("insert attempt: duplicate id %s", out.ID)
	}
	r.attempts[out.ID] = out.Clone()
	r.seq[out.ID] = r.next
	r.next++
	return out, nil
}

func (r *MemoryAttemptRepo) Get(_ context.Context, id string) (*Attempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.attempts[id]
	if !ok {
		return nil, fmt.Errorf("attempt %s: %w", id, ErrNotFound)
	}
	return a.Clone(), nil
}

func (r *MemoryAttemptRepo) Update(_ context.Context, id string, patch AttemptPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attempts[id]
	if !ok {
		return fmt.Errorf("attempt %s: %w", id, ErrNotFound)
	}
	patch.apply(a)
	a.UpdatedAt = r.now().UTC()
	return nil
}

func (r *MemoryAttemptRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.attempts[id]; !ok {
		return fmt.Errorf("attempt %s: %w", id, ErrNotFound)
	}
	delete(r.attempts, id)
	delete(r.seq, id)
	return nil
}

func (r *MemoryAttemptRepo) ListForOwner(_ context.Context, owner string, opts ListOpts) ([]Attempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Attempt
	for _, a := range r.attempts {
		if a.Owner != owner {
			continue
		}
		if opts.Status != "" && a.Status != opts.Status {
			continue
		}
		out = append(out, *a.Clone())
	}
	slices.SortFunc(out, func(x, y Attempt) int {
		if c := y.CreatedAt.Compare(x.CreatedAt); c != 0 {
			return c
		}
		return r.seq[y.ID] - r.seq[x.ID]
	})
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

// MemoryMasteryRepo is an in-process MasteryRepo. Safe for concurrent use.
type MemoryMasteryRepo struct {
	mu      sync.RWMutex
	lessons map[string][]string
}

// NewMemoryMasteryRepo returns an empty in-memory mastery repository.
func NewMemoryMasteryRepo() *MemoryMasteryRepo {
	return &MemoryMasteryRepo{lessons: make(map[string][]string)}
}

func (r *MemoryMasteryRepo) Get(_ context.Context, owner string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := slices.Clone(r.lessons[owner])
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func (r *MemoryMasteryRepo) AddIfAbsent(_ context.Context, owner, lessonID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if slices.Contains(r.lessons[owner], lessonID) {
		return nil
	}
	r.lessons[owner] = append(r.lessons[owner], lessonID)
	return nil
}

var (
	_ AttemptRepo = (*MemoryAttemptRepo)(nil)
	_ MasteryRepo = (*MemoryMasteryRepo)(nil)
	_ AttemptRepo = (*attemptRepo)(nil)
	_ MasteryRepo = (*masteryRepo)(nil)
)
