package practice

import (
	"time"

	"github.com/abhisek/mockprep/internal/feedback"
	"github.com/abhisek/mockprep/internal/interview"
)

// sessionStartedMsg carries the result of StartSession.
type sessionStartedMsg struct {
	Started *interview.Started
	Err     error
}

// answerScoredMsg carries the result of SubmitAnswer.
type answerScoredMsg struct {
	Submission *interview.Submission
	Err        error
}

// nextQuestionMsg carries a prompt fetched after a submission came back
// without one.
type nextQuestionMsg struct {
	Prompt *interview.Prompt
	Err    error
}

// sessionCompletedMsg carries the report of an early finish.
type sessionCompletedMsg struct {
	Feedback *feedback.SessionFeedback
	Err      error
}

// sessionAbandonedMsg is sent once the session has been abandoned.
type sessionAbandonedMsg struct {
	Err error
}

// timerTickMsg is sent every second to refresh the question clock.
type timerTickMsg time.Time
