package evaluation

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/abhisek/mockprep/internal/question"
)

// WeaknessTooBrief is reported for answers shorter than expected.
const WeaknessTooBrief = "Answer too brief"

// Evaluator scores answers with deterministic heuristics. It holds no
// mutable state and is safe for concurrent use.
type Evaluator struct {
	cfg  Config
	stop map[string]bool
	log  *zap.Logger

	// score is the heuristic pipeline; replaced in tests.
	score func(in Input) Result
}

// New creates an Evaluator. A nil logger discards warnings.
func New(cfg Config, log *zap.Logger) *Evaluator {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Evaluator{cfg: cfg, log: log, stop: make(map[string]bool, len(cfg.StopWords))}
	for _, w := range cfg.StopWords {
		e.stop[w] = true
	}
	e.score = e.heuristics
	return e
}

// Config returns the configuration in use.
func (e *Evaluator) Config() Config { return e.cfg }

// Evaluate scores one answer. It never fails: input that cannot be scored
// yields neutral scores with Degraded set.
func (e *Evaluator) Evaluate(in Input) (res Result) {
	if err := checkInput(in); err != nil {
		return e.degrade(in, err)
	}

	defer func() {
		if r := recover(); r != nil {
			res = e.degrade(in, fmt.Errorf("heuristic panic: %v", r))
		}
	}()

	if utf8.RuneCountInString(strings.TrimSpace(in.Text)) < e.cfg.MinChars {
		return e.tooBrief(in)
	}
	return e.score(in)
}

func checkInput(in Input) error {
	switch {
	case in.Question == nil:
		return errors.New("nil question")
	case !utf8.ValidString(in.Text):
		return errors.New("answer is not valid UTF-8")
	case in.TimeTaken < 0:
		return fmt.Errorf("negative time taken %s", in.TimeTaken)
	}
	return nil
}

func (e *Evaluator) degrade(in Input, cause error) Result {
	fields := []zap.Field{zap.Error(cause)}
	if in.Question != nil {
		fields = append(fields, zap.String("question_id", in.Question.ID))
	}
	e.log.Warn("answer scoring degraded", fields...)

	s := Scores{}
	for _, d := range Dimensions {
		s.Set(d, NeutralScore)
	}
	s.Overall = NeutralScore
	return Result{
		Scores:    s,
		WordCount: len(strings.Fields(in.Text)),
		Sentiment: SentimentNeutral,
		Degraded:  true,
		Feedback: Feedback{
			Strengths:     []string{},
			Weaknesses:    []string{},
			MissingPoints: []string{},
			Suggestions:   []string{},
			Narrative:     "This answer could not be scored automatically, so neutral scores were recorded.",
		},
	}
}

func (e *Evaluator) tooBrief(in Input) Result {
	var missing []string
	for _, t := range in.Question.KeyPoints.MustMention {
		missing = append(missing, t.Term)
	}
	return Result{
		WordCount: len(strings.Fields(in.Text)),
		Sentiment: SentimentNeutral,
		Feedback: Feedback{
			Strengths:     []string{},
			Weaknesses:    []string{WeaknessTooBrief},
			MissingPoints: nonNil(missing),
			Suggestions:   []string{suggestions[Completeness]},
			Narrative:     "The answer was too short to evaluate. Give a complete response that walks through your reasoning.",
		},
	}
}

func (e *Evaluator) heuristics(in Input) Result {
	q := in.Question
	a := analyze(in.Text)
	wordCount := len(strings.Fields(in.Text))

	found, missing := e.matchTerms(a, q.KeyPoints.MustMention)

	var s Scores
	s.Relevance = e.relevance(a, q, found)
	s.Completeness = e.completeness(q, wordCount, found)
	s.Clarity = e.clarity(a)
	s.TechnicalAccuracy = e.technicalAccuracy(q, found, s)
	s.Communication = e.communication(a, s.Clarity)
	s.Overall = e.overall(s)

	return Result{
		Scores:    s,
		Feedback:  e.feedback(in, s, wordCount, missing),
		WordCount: wordCount,
		Sentiment: e.sentiment(a),
	}
}

// matchTerms returns which must-mention terms the answer contains, keyed
// by lower-cased term. A term listed twice is checked and reported once.
func (e *Evaluator) matchTerms(a *analysis, terms []question.KeyTerm) (map[string]bool, []string) {
	found := make(map[string]bool, len(terms))
	seen := make(map[string]bool, len(terms))
	var missing []string
	for _, t := range terms {
		key := strings.ToLower(t.Term)
		if seen[key] {
			continue
		}
		seen[key] = true
		if a.containsTerm(t.Term) {
			found[key] = true
		} else {
			missing = append(missing, t.Term)
		}
	}
	return found, missing
}

func distinctTerms(terms []question.KeyTerm) int {
	seen := make(map[string]bool, len(terms))
	for _, t := range terms {
		seen[strings.ToLower(t.Term)] = true
	}
	return len(seen)
}

func (e *Evaluator) relevance(a *analysis, q *question.Question, found map[string]bool) int {
	var base float64
	if musts := q.KeyPoints.MustMention; len(musts) > 0 {
		base = 100 * float64(len(found)) / float64(distinctTerms(musts))
	} else {
		content := contentStems(q.Text, e.stop)
		if len(content) == 0 {
			base = NeutralScore
		} else {
			hit := 0
			for _, st := range content {
				if a.hasStem(st) {
					hit++
				}
			}
			base = 100 * float64(hit) / float64(len(content))
		}
	}

	bonus := 0
	for _, b := range q.KeyPoints.Bonus {
		if a.containsTerm(b) {
			bonus += e.cfg.BonusPerTerm
		}
	}
	bonus = min(bonus, e.cfg.BonusCap)
	return clamp(base + float64(bonus))
}

func (e *Evaluator) completeness(q *question.Question, wordCount int, found map[string]bool) int {
	minWords := e.cfg.MinWords.For(q.Difficulty)
	length := 1.0
	if minWords > 0 {
		length = math.Min(1, float64(wordCount)/float64(minWords))
	}

	cats := q.KeyPoints.Categories()
	if len(cats) == 0 {
		return clamp(100 * length)
	}
	covered := 0
	for _, c := range cats {
		for _, t := range q.KeyPoints.MustMention {
			if strings.EqualFold(strings.TrimSpace(t.Category), c) && found[strings.ToLower(t.Term)] {
				covered++
				break
			}
		}
	}
	coverage := float64(covered) / float64(len(cats))
	return clamp(100 * (e.cfg.LengthWeight*length + e.cfg.CoverageWeight*coverage))
}

func (e *Evaluator) clarity(a *analysis) int {
	score := float64(e.cfg.ClarityBase)

	if a.sentences > 0 {
		avg := float64(len(a.words)) / float64(a.sentences)
		if over := avg - float64(e.cfg.RunOnThreshold); over > 0 {
			score -= math.Min(float64(e.cfg.RunOnPenaltyCap), over*float64(e.cfg.RunOnPenaltyPerWord))
		}
	}

	markers := a.distinctPhrases(e.cfg.StructureMarkers) * e.cfg.MarkerBonus
	score += float64(min(markers, e.cfg.MarkerCap))

	if len(a.words) > 0 {
		density := float64(a.totalPhrases(e.cfg.Fillers)) / float64(len(a.words))
		if excess := density - e.cfg.FillerThreshold; excess > 0 {
			score -= math.Min(float64(e.cfg.FillerPenaltyCap), excess*e.cfg.FillerScale)
		}
	}
	return clamp(score)
}

func (e *Evaluator) technicalAccuracy(q *question.Question, found map[string]bool, s Scores) int {
	if q.Type == question.TypeBehavioral {
		return s.Completeness
	}
	terms := q.KeyPoints.TechnicalTerms()
	if len(terms) == 0 {
		terms = q.KeyPoints.MustMention
	}
	if len(terms) == 0 {
		return s.Relevance
	}
	hit := 0
	for _, t := range terms {
		if found[strings.ToLower(t.Term)] {
			hit++
		}
	}
	return clamp(100 * float64(hit) / float64(len(terms)))
}

func (e *Evaluator) communication(a *analysis, clarity int) int {
	delivery := e.cfg.DeliveryBase
	delivery += min(a.distinctStems(e.cfg.ActionVerbs), e.cfg.MaxActionVerbs) * e.cfg.ActionVerbBonus
	if a.totalPhrases(e.cfg.FirstPerson) > 0 {
		delivery += e.cfg.FirstPersonBonus
	}
	delivery -= min(a.totalPhrases(e.cfg.Hedges), e.cfg.MaxHedges) * e.cfg.HedgePenalty
	d := math.Max(0, math.Min(100, float64(delivery)))

	return clamp(0.5*float64(clarity) + 0.5*d)
}

// overall is the rounded weighted average of the integer dimension scores.
func (e *Evaluator) overall(s Scores) int {
	return WeightedOverall(s, e.cfg.Weights)
}

// WeightedOverall applies w to the five dimensions of s.
func WeightedOverall(s Scores, w Weights) int {
	var sum float64
	for _, d := range Dimensions {
		sum += w.Of(d) * float64(s.Get(d))
	}
	return clamp(sum)
}

func (e *Evaluator) sentiment(a *analysis) Sentiment {
	pos := a.distinctStems(e.cfg.PositiveWords)
	neg := a.distinctStems(e.cfg.NegativeWords)
	switch {
	case pos > neg:
		return SentimentPositive
	case neg > pos:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// clamp rounds v half away from zero and bounds it to [0,100].
func clamp(v float64) int {
	r := int(math.Round(v))
	return max(0, min(100, r))
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
