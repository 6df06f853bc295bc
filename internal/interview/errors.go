package interview

import (
	"errors"
	"fmt"

	"github.com/abhisek/mockprep/internal/selector"
)

// Sentinels carried by *StateError.
var (
	ErrSessionComplete   = errors.New("session is complete")
	ErrSessionAbandoned  = errors.New("session was abandoned")
	ErrAlreadyAnswered   = errors.New("question already answered")
	ErrOutOfOrder        = errors.New("answer submitted out of order")
	ErrWrongOwner        = errors.New("session belongs to another user")
	ErrNoAnswers         = errors.New("session has no answers")
	ErrInvalidTransition = errors.New("invalid state transition")
)

// Store sentinels. Implementations return these (possibly wrapped) so the
// engine can classify failures.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrConflict       = errors.New("concurrent modification")
)

// PoolExhaustedError is returned by StartSession when not enough questions
// match the request.
type PoolExhaustedError = selector.PoolExhaustedError

// ValidationError reports a malformed request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid request: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a missing session, assignment or question.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// StateError reports an operation the session's current state forbids.
type StateError struct {
	SessionID string
	Status    Status
	Event     Event
	Err       error
}

func (e *StateError) Error() string {
	switch {
	case e.SessionID != "" && e.Event != "":
		return fmt.Sprintf("session %s (%s): %s: %v", e.SessionID, e.Status, e.Event, e.Err)
	case e.SessionID != "":
		return fmt.Sprintf("session %s (%s): %v", e.SessionID, e.Status, e.Err)
	default:
		return fmt.Sprintf("%s in %s: %v", e.Event, e.Status, e.Err)
	}
}

func (e *StateError) Unwrap() error {
	return e.Err
}
