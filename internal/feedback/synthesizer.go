package feedback

import (
	"context"
	"math"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/mockprep/internal/evaluation"
)

// Synthesizer aggregates the answers of a session into a report.
type Synthesizer struct {
	coach Coach
	log   *zap.Logger
	now   func() time.Time
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithCoach lets an LLM rewrite the tips and recommendations.
func WithCoach(c Coach) Option {
	return func(s *Synthesizer) { s.coach = c }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Synthesizer) { s.log = log }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Synthesizer) { s.now = now }
}

// New creates a Synthesizer.
func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{log: zap.NewNop(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Synthesize builds the session report. It is deterministic for a given
// input unless a coach is configured.
func (s *Synthesizer) Synthesize(ctx context.Context, in Input) (*SessionFeedback, error) {
	if len(in.Answers) == 0 {
		return nil, ErrNoAnswers
	}

	avg := Average(in.Answers)
	weakest := avg.Lowest()

	strengths := make([][]string, len(in.Answers))
	weak := make([][]string, len(in.Answers))
	for i, a := range in.Answers {
		strengths[i] = a.Feedback.Strengths
		weak[i] = a.Feedback.Weaknesses
	}

	fb := &SessionFeedback{
		SessionID:           in.SessionID,
		Tier:                evaluation.TierFor(avg.Overall),
		TechnicalRating:     Rating(float64(avg.TechnicalAccuracy)),
		CommunicationRating: Rating(float64(avg.Communication)),
		ConfidenceRating:    Rating(float64(avg.Communication+avg.Clarity) / 2),

		Strengths:               TopPhrasesOf(strengths, TopPhrases),
		AreasToImprove:          TopPhrasesOf(weak, TopPhrases),
		Resources:               ResourcesFor(weakest),
		PreparationTips:         templateTips(weakest, in.JobRole),
		PracticeRecommendations: templateRecommendations(in, weakest),

		AverageScores:    avg,
		WeakestDimension: weakest,
		Source:           SourceTemplate,
		CreatedAt:        s.now().UTC(),
	}

	if s.coach != nil {
		s.applyCoach(ctx, in, fb)
	}
	return fb, nil
}

func (s *Synthesizer) applyCoach(ctx context.Context, in Input, fb *SessionFeedback) {
	advice, err := s.coach.Advise(ctx, CoachInput{
		SessionType:    in.SessionType,
		JobRole:        in.JobRole,
		Tier:           fb.Tier,
		Averages:       fb.AverageScores,
		Weakest:        fb.WeakestDimension,
		Strengths:      fb.Strengths,
		AreasToImprove: fb.AreasToImprove,
	})
	if err == nil && (len(advice.Tips) == 0 || len(advice.Recommendations) == 0) {
		err = errEmptyAdvice
	}
	if err != nil {
		s.log.Warn("session coach failed, using templates",
			zap.String("session_id", in.SessionID), zap.Error(err))
		return
	}
	fb.PreparationTips = advice.Tips
	fb.PracticeRecommendations = advice.Recommendations
	fb.Source = SourceCoach
}

// Average returns the rounded per-dimension means. answers must be
// non-empty.
func Average(answers []Answer) evaluation.Scores {
	var sums [6]int
	dims := append(slices.Clone(evaluation.Dimensions), evaluation.Overall)
	for _, a := range answers {
		for i, d := range dims {
			sums[i] += a.Scores.Get(d)
		}
	}
	var avg evaluation.Scores
	for i, d := range dims {
		avg.Set(d, int(math.Round(float64(sums[i])/float64(len(answers)))))
	}
	return avg
}

// Rating maps a 0-100 score onto 1-5.
func Rating(score float64) int {
	r := 1 + int(math.Round(score*4/100))
	return max(1, min(5, r))
}

// TopPhrasesOf returns the n most frequent phrases across lists. Ties keep
// the order of first occurrence.
func TopPhrasesOf(lists [][]string, n int) []string {
	counts := make(map[string]int)
	var order []string
	for _, l := range lists {
		for _, p := range l {
			if counts[p] == 0 {
				order = append(order, p)
			}
			counts[p]++
		}
	}
	slices.SortStableFunc(order, func(a, b string) int {
		return counts[b] - counts[a]
	})
	if len(order) > n {
		order = order[:n]
	}
	if order == nil {
		return []string{}
	}
	return order
}
