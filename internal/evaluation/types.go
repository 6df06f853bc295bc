package evaluation

import (
	"time"

	"github.com/abhisek/mockprep/internal/question"
)

// Dimension names one scored aspect of an answer.
type Dimension string

const (
	Relevance         Dimension = "relevance"
	Completeness      Dimension = "completeness"
	Clarity           Dimension = "clarity"
	TechnicalAccuracy Dimension = "technical_accuracy"
	Communication     Dimension = "communication"
	Overall           Dimension = "overall"
)

// Dimensions lists the five weighted dimensions. The order breaks ties
// wherever a single "lowest" or "highest" dimension is chosen.
var Dimensions = []Dimension{Relevance, Completeness, Clarity, TechnicalAccuracy, Communication}

// Label returns a human-readable name.
func (d Dimension) Label() string {
	switch d {
	case TechnicalAccuracy:
		return "technical accuracy"
	default:
		return string(d)
	}
}

// Scores holds the six 0–100 dimension scores.
type Scores struct {
	Relevance         int `json:"relevance"`
	Completeness      int `json:"completeness"`
	Clarity           int `json:"clarity"`
	TechnicalAccuracy int `json:"technical_accuracy"`
	Communication     int `json:"communication"`
	Overall           int `json:"overall"`
}

// Get returns the score of dimension d.
func (s Scores) Get(d Dimension) int {
	switch d {
	case Relevance:
		return s.Relevance
	case Completeness:
		return s.Completeness
	case Clarity:
		return s.Clarity
	case TechnicalAccuracy:
		return s.TechnicalAccuracy
	case Communication:
		return s.Communication
	case Overall:
		return s.Overall
	}
	return 0
}

// Set assigns the score of dimension d.
func (s *Scores) Set(d Dimension, v int) {
	switch d {
	case Relevance:
		s.Relevance = v
	case Completeness:
		s.Completeness = v
	case Clarity:
		s.Clarity = v
	case TechnicalAccuracy:
		s.TechnicalAccuracy = v
	case Communication:
		s.Communication = v
	case Overall:
		s.Overall = v
	}
}

// Lowest returns the weakest of the five weighted dimensions.
func (s Scores) Lowest() Dimension {
	low := Dimensions[0]
	for _, d := range Dimensions[1:] {
		if s.Get(d) < s.Get(low) {
			low = d
		}
	}
	return low
}

// Highest returns the strongest of the five weighted dimensions.
func (s Scores) Highest() Dimension {
	high := Dimensions[0]
	for _, d := range Dimensions[1:] {
		if s.Get(d) > s.Get(high) {
			high = d
		}
	}
	return high
}

// Sentiment is the coarse tone of an answer.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Tier is the performance band of an overall score.
type Tier string

const (
	TierExcellent        Tier = "excellent"
	TierGood             Tier = "good"
	TierAverage          Tier = "average"
	TierNeedsImprovement Tier = "needs_improvement"
)

// Tier thresholds on the overall score.
const (
	ExcellentMin = 85
	GoodMin      = 70
	AverageMin   = 55
)

// TierFor maps an overall score to its band.
func TierFor(overall int) Tier {
	switch {
	case overall >= ExcellentMin:
		return TierExcellent
	case overall >= GoodMin:
		return TierGood
	case overall >= AverageMin:
		return TierAverage
	default:
		return TierNeedsImprovement
	}
}

// Label returns the tier as prose.
func (t Tier) Label() string {
	if t == TierNeedsImprovement {
		return "needs improvement"
	}
	return string(t)
}

// Feedback is the structured commentary on one answer.
type Feedback struct {
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	MissingPoints []string `json:"missing_points"`
	Suggestions   []string `json:"suggestions"`
	Narrative     string   `json:"narrative"`
}

// Input is everything the evaluator looks at.
type Input struct {
	Question  *question.Question
	Text      string
	TimeTaken time.Duration
	// TimeLimit is optional; zero disables the pacing check.
	TimeLimit time.Duration
}

// Result is the outcome of scoring one answer.
type Result struct {
	Scores    Scores
	Feedback  Feedback
	WordCount int
	Sentiment Sentiment
	// Degraded is set when the input could not be scored and neutral
	// scores were substituted.
	Degraded bool
}
