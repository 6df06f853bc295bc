package interview

// Status is the lifecycle state of a session.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusAbandoned  Status = "abandoned"
)

// Statuses lists every status.
var Statuses = []Status{StatusInProgress, StatusCompleted, StatusAbandoned}

// Terminal reports whether no further events are accepted.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusAbandoned
}

// Event is something that happens to a session.
type Event string

const (
	EventAnswer   Event = "answer"
	EventComplete Event = "complete"
	EventAbandon  Event = "abandon"
)

// transitions is the complete table of legal moves. Anything missing is
// rejected.
var transitions = map[Status]map[Event]Status{
	StatusInProgress: {
		EventAnswer:   StatusInProgress,
		EventComplete: StatusCompleted,
		EventAbandon:  StatusAbandoned,
	},
}

// Transition returns the status reached by applying ev in from. Illegal
// pairs fail with a *StateError. Terminal states report why they are closed.
func Transition(from Status, ev Event) (Status, error) {
	if to, ok := transitions[from][ev]; ok {
		return to, nil
	}
	err := ErrInvalidTransition
	switch from {
	case StatusCompleted:
		err = ErrSessionComplete
	case StatusAbandoned:
		err = ErrSessionAbandoned
	}
	return from, &StateError{Status: from, Event: ev, Err: err}
}
