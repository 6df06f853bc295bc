package interview

import (
	"time"

	"github.com/abhisek/mockprep/internal/evaluation"
	"github.com/abhisek/mockprep/internal/feedback"
	"github.com/abhisek/mockprep/internal/question"
	"github.com/abhisek/mockprep/internal/selector"
)

// SessionType decides which question types a session draws from.
type SessionType = selector.SessionType

const (
	SessionTechnical   = selector.SessionTechnical
	SessionBehavioral  = selector.SessionBehavioral
	SessionMixed       = selector.SessionMixed
	SessionJobSpecific = selector.SessionJobSpecific
)

// Session is one practice interview.
type Session struct {
	ID             string              `json:"id"`
	UserRef        string              `json:"user"`
	Type           SessionType         `json:"type"`
	JobRole        string              `json:"job_role,omitempty"`
	Difficulty     question.Difficulty `json:"difficulty"`
	TotalQuestions int                 `json:"total_questions"`
	Answered       int                 `json:"answered"`
	Status         Status              `json:"status"`
	Hint           *selector.Hint      `json:"hint,omitempty"`
	StartedAt      time.Time           `json:"started_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	CompletedAt    *time.Time          `json:"completed_at,omitempty"`
	// AverageScores is set only once the session is completed.
	AverageScores *evaluation.Scores `json:"average_scores,omitempty"`
}

// Remaining is the number of unanswered questions.
func (s *Session) Remaining() int {
	return s.TotalQuestions - s.Answered
}

// Assignment places a question at a position in a session.
type Assignment struct {
	ID         string        `json:"id"`
	SessionID  string        `json:"session_id"`
	QuestionID string        `json:"question_id"`
	Ordinal    int           `json:"ordinal"`
	TimeLimit  time.Duration `json:"time_limit,omitempty"`
}

// Answer is a scored response to one assignment.
type Answer struct {
	ID           string               `json:"id"`
	AssignmentID string               `json:"assignment_id"`
	SessionID    string               `json:"session_id"`
	QuestionID   string               `json:"question_id"`
	Ordinal      int                  `json:"ordinal"`
	Text         string               `json:"text"`
	TimeTaken    time.Duration        `json:"time_taken"`
	Scores       evaluation.Scores    `json:"scores"`
	Feedback     evaluation.Feedback  `json:"feedback"`
	WordCount    int                  `json:"word_count"`
	Sentiment    evaluation.Sentiment `json:"sentiment"`
	Degraded     bool                 `json:"degraded,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

// StartRequest opens a session.
type StartRequest struct {
	User       string              `json:"user" validate:"required,max=128"`
	Type       SessionType         `json:"type" validate:"required,oneof=technical behavioral mixed job-specific"`
	JobRole    string              `json:"job_role" validate:"max=120"`
	Difficulty question.Difficulty `json:"difficulty" validate:"required,oneof=junior mid senior all"`
	// Count of zero uses the configured default.
	Count int            `json:"count" validate:"gte=0"`
	Hint  *selector.Hint `json:"hint"`
}

// SubmitRequest answers the assignment named by AssignmentID.
type SubmitRequest struct {
	SessionID    string        `json:"session_id" validate:"required"`
	User         string        `json:"user" validate:"required"`
	AssignmentID string        `json:"assignment_id" validate:"required"`
	Text         string        `json:"text"`
	TimeTaken    time.Duration `json:"time_taken"`
}

// ListRequest pages through a user's sessions, newest first.
type ListRequest struct {
	User   string      `json:"user" validate:"required"`
	Status Status      `json:"status" validate:"omitempty,oneof=in_progress completed abandoned"`
	Type   SessionType `json:"type" validate:"omitempty,oneof=technical behavioral mixed job-specific"`
	// Limit of zero uses DefaultPageSize.
	Limit  int `json:"limit" validate:"gte=0,lte=100"`
	Offset int `json:"offset" validate:"gte=0"`
}

// DefaultPageSize is the ListSessions page size when none is given.
const DefaultPageSize = 20

// Prompt is a question ready to be shown.
type Prompt struct {
	SessionID  string
	Assignment Assignment
	Question   question.Question
	Ordinal    int
	Total      int
}

// Started is the result of StartSession.
type Started struct {
	Session *Session
	First   *Prompt
}

// Submission is the result of SubmitAnswer.
type Submission struct {
	Answer  *Answer
	Session *Session
	HasMore bool
	// Next is the following prompt while HasMore is true.
	Next *Prompt
	// Feedback is set when this answer completed the session.
	Feedback *feedback.SessionFeedback
}

// SessionPage is one page of ListSessions.
type SessionPage struct {
	Sessions []Session
	Total    int
	Limit    int
	Offset   int
}

// DetailItem pairs an assignment with its question and answer, if any.
type DetailItem struct {
	Assignment Assignment
	Question   *question.Question
	Answer     *Answer
}

// Detail is the full view of a session.
type Detail struct {
	Session  *Session
	Items    []DetailItem
	Feedback *feedback.SessionFeedback
}
