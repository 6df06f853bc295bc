package question

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotFound is returned when a question ID does not exist.
var ErrNotFound = errors.New("question not found")

// Repository holds question records and exposes filtered lookup.
type Repository interface {
	// Find returns every question matching the filter, ordered by ID.
	Find(ctx context.Context, f Filter) ([]Question, error)

	// Get returns a single question or an error wrapping ErrNotFound.
	Get(ctx context.Context, id string) (*Question, error)

	// IncrementUsage bumps the usage counter of each listed question.
	// Unknown IDs are ignored.
	IncrementUsage(ctx context.Context, ids ...string) error

	// Save inserts or replaces questions.
	Save(ctx context.Context, qs ...Question) error
}

// MemoryRepository is a Repository backed by a map. The pool is read-mostly;
// usage counters are the only field that changes after Save.
type MemoryRepository struct {
	mu        sync.RWMutex
	questions map[string]*Question
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates a repository holding copies of qs.
func NewMemoryRepository(qs ...Question) *MemoryRepository {
	r := &MemoryRepository{questions: make(map[string]*Question, len(qs))}
	for i := range qs {
		q := qs[i]
		r.questions[q.ID] = &q
	}
	return r
}

func (r *MemoryRepository) Find(_ context.Context, f Filter) ([]Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Question
	for _, q := range r.questions {
		if f.Matches(q) {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.questions[id]
	if !ok {
		return nil, fmt.Errorf("question %q: %w", id, ErrNotFound)
	}
	cp := *q
	return &cp, nil
}

func (r *MemoryRepository) IncrementUsage(_ context.Context, ids ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		if q, ok := r.questions[id]; ok {
			q.UsageCount++
		}
	}
	return nil
}

func (r *MemoryRepository) Save(_ context.Context, qs ...Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range qs {
		q := qs[i]
		if q.ID == "" {
			return errors.New("question ID is required")
		}
		r.questions[q.ID] = &q
	}
	return nil
}

// Len returns the number of stored questions.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.questions)
}
