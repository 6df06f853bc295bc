package interview

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/mockprep/internal/evaluation"
	"github.com/abhisek/mockprep/internal/feedback"
)

// memStore is an in-memory Store with the same conflict rules as the
// sqlite one.
type memStore struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	assignments map[string][]Assignment
	answers     map[string][]Answer
	reports     map[string]*feedback.SessionFeedback
	// completeErr, when set, fails the next CompleteSession call.
	completeErr error
}

var _ Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		sessions:    make(map[string]*Session),
		assignments: make(map[string][]Assignment),
		answers:     make(map[string][]Answer),
		reports:     make(map[string]*feedback.SessionFeedback),
	}
}

func cloneSession(s *Session) *Session {
	c := *s
	if s.CompletedAt != nil {
		at := *s.CompletedAt
		c.CompletedAt = &at
	}
	if s.AverageScores != nil {
		avg := *s.AverageScores
		c.AverageScores = &avg
	}
	return &c
}

func (m *memStore) CreateSession(_ context.Context, s *Session, asgs []Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; ok {
		return ErrConflict
	}
	m.sessions[s.ID] = cloneSession(s)
	m.assignments[s.ID] = slices.Clone(asgs)
	return nil
}

func (m *memStore) GetSession(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return cloneSession(s), nil
}

func (m *memStore) ListSessions(_ context.Context, f ListFilter) ([]Session, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Session
	for _, s := range m.sessions {
		if s.UserRef != f.User || (f.Status != "" && s.Status != f.Status) || (f.Type != "" && s.Type != f.Type) {
			continue
		}
		out = append(out, *cloneSession(s))
	}
	slices.SortFunc(out, func(a, b Session) int {
		if c := b.StartedAt.Compare(a.StartedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	total := len(out)
	lo := min(f.Offset, total)
	hi := min(lo+f.Limit, total)
	return out[lo:hi], total, nil
}

func (m *memStore) Assignments(_ context.Context, sessionID string) ([]Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.assignments[sessionID]), nil
}

func (m *memStore) Answers(_ context.Context, sessionID string) ([]Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.answers[sessionID]), nil
}

func (m *memStore) SaveAnswer(_ context.Context, a *Answer, expected int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[a.SessionID]
	if !ok {
		return ErrRecordNotFound
	}
	for _, prev := range m.answers[a.SessionID] {
		if prev.AssignmentID == a.AssignmentID {
			return ErrConflict
		}
	}
	if s.Status != StatusInProgress || s.Answered != expected {
		return ErrConflict
	}
	m.answers[a.SessionID] = append(m.answers[a.SessionID], *a)
	s.Answered++
	s.UpdatedAt = a.CreatedAt
	return nil
}

func (m *memStore) CompleteSession(_ context.Context, id string, at time.Time, avg evaluation.Scores, fb *feedback.SessionFeedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.completeErr; err != nil {
		m.completeErr = nil
		return err
	}
	s, ok := m.sessions[id]
	if !ok {
		return ErrRecordNotFound
	}
	if s.Status != StatusInProgress {
		return ErrConflict
	}
	s.Status = StatusCompleted
	s.CompletedAt = &at
	s.UpdatedAt = at
	s.AverageScores = &avg
	report := *fb
	m.reports[id] = &report
	return nil
}

func (m *memStore) AbandonSession(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrRecordNotFound
	}
	if s.Status != StatusInProgress {
		return ErrConflict
	}
	s.Status = StatusAbandoned
	s.UpdatedAt = at
	return nil
}

func (m *memStore) Feedback(_ context.Context, sessionID string) (*feedback.SessionFeedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fb, ok := m.reports[sessionID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	report := *fb
	return &report, nil
}

func (m *memStore) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrRecordNotFound
	}
	delete(m.sessions, id)
	delete(m.assignments, id)
	delete(m.answers, id)
	delete(m.reports, id)
	return nil
}
