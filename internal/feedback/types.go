package feedback

import (
	"errors"
	"time"

	"github.com/abhisek/mockprep/internal/evaluation"
	"github.com/abhisek/mockprep/internal/question"
)

// ErrNoAnswers is returned when a session has nothing to summarize.
var ErrNoAnswers = errors.New("no answers to summarize")

// TopPhrases caps the strengths and areas-to-improve lists.
const TopPhrases = 5

// Source records who wrote the tips and recommendations.
type Source string

const (
	SourceTemplate Source = "template"
	SourceCoach    Source = "coach"
)

// Answer is the part of a scored answer the synthesizer reads.
type Answer struct {
	QuestionID   string
	QuestionText string
	QuestionType question.Type
	Scores       evaluation.Scores
	Feedback     evaluation.Feedback
}

// Input is one session's worth of scored answers in ordinal order.
type Input struct {
	SessionID   string
	SessionType string
	JobRole     string
	Answers     []Answer
}

// Resource is a study pointer for the weakest dimension.
type Resource struct {
	Title string `json:"title"`
	Kind  string `json:"kind"`
	URL   string `json:"url,omitempty"`
}

// SessionFeedback is the end-of-session report.
type SessionFeedback struct {
	SessionID string          `json:"session_id"`
	Tier      evaluation.Tier `json:"tier"`

	TechnicalRating     int `json:"technical_rating"`
	CommunicationRating int `json:"communication_rating"`
	ConfidenceRating    int `json:"confidence_rating"`

	Strengths               []string   `json:"strengths"`
	AreasToImprove          []string   `json:"areas_to_improve"`
	Resources               []Resource `json:"resources"`
	PreparationTips         []string   `json:"preparation_tips"`
	PracticeRecommendations []string   `json:"practice_recommendations"`

	AverageScores    evaluation.Scores    `json:"average_scores"`
	WeakestDimension evaluation.Dimension `json:"weakest_dimension"`
	Source           Source               `json:"source"`
	CreatedAt        time.Time            `json:"created_at"`
}
