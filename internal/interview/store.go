package interview

import (
	"context"
	"time"

	"github.com/abhisek/mockprep/internal/evaluation"
	"github.com/abhisek/mockprep/internal/feedback"
)

// ListFilter narrows Store.ListSessions.
type ListFilter struct {
	User   string
	Status Status
	Type   SessionType
	Limit  int
	Offset int
}

// Store persists sessions and everything hanging off them. Missing rows
// are reported with ErrRecordNotFound and lost compare-and-set races with
// ErrConflict.
type Store interface {
	// CreateSession inserts a session and its assignments atomically.
	CreateSession(ctx context.Context, s *Session, assignments []Assignment) error
	GetSession(ctx context.Context, id string) (*Session, error)
	// ListSessions returns one page and the total number of matches.
	ListSessions(ctx context.Context, f ListFilter) ([]Session, int, error)
	// Assignments returns a session's assignments by ordinal.
	Assignments(ctx context.Context, sessionID string) ([]Assignment, error)
	// Answers returns a session's answers by ordinal.
	Answers(ctx context.Context, sessionID string) ([]Answer, error)

	// SaveAnswer inserts a and advances the session's answered counter from
	// expectedAnswered, in one transaction. It fails with ErrConflict when
	// the assignment already has an answer, the counter moved, or the
	// session is no longer in progress.
	SaveAnswer(ctx context.Context, a *Answer, expectedAnswered int) error

	// CompleteSession marks an in-progress session completed and stores its
	// report. ErrConflict if the session is not in progress.
	CompleteSession(ctx context.Context, id string, at time.Time, avg evaluation.Scores, fb *feedback.SessionFeedback) error
	// AbandonSession marks an in-progress session abandoned.
	AbandonSession(ctx context.Context, id string, at time.Time) error
	// Feedback returns the stored report of a completed session.
	Feedback(ctx context.Context, sessionID string) (*feedback.SessionFeedback, error)

	// DeleteSession removes a session with its assignments, answers and
	// report.
	DeleteSession(ctx context.Context, id string) error
}
