package evaluation

import (
	"slices"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/mockprep/internal/question"
)

const concurrencyAnswer = "First, I profiled the service and found two goroutines writing the same map. " +
	"I added a mutex around every write and read path, which removed the data race. " +
	"I reviewed the lock ordering to avoid a deadlock when two handlers needed both caches. " +
	"Finally, I wrote a stress test with the race detector and measured latency before and after " +
	"the change to confirm the fix held under load."

func concurrencyQuestion() *question.Question {
	return &question.Question{
		ID:         "fixture-concurrency",
		Text:       "How do you make shared state safe when many goroutines touch it?",
		Type:       question.TypeTechnical,
		Difficulty: question.DifficultyMid,
		Category:   "concurrency",
		KeyPoints: question.KeyPoints{
			MustMention: []question.KeyTerm{
				{Term: "mutex", Category: question.CategoryTechnical},
				{Term: "deadlock", Category: question.CategoryTechnical},
				{Term: "atomic", Category: question.CategoryTechnical},
			},
			Bonus: []string{"rwmutex", "channel"},
		},
	}
}

func bankQuestion(t *testing.T, id string) *question.Question {
	t.Helper()
	for _, q := range question.DefaultBank().Questions {
		if q.ID == id {
			return &q
		}
	}
	t.Fatalf("question %q not in default bank", id)
	return nil
}

func newTestEvaluator(t *testing.T) (*Evaluator, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.WarnLevel)
	return New(DefaultConfig(), zap.New(core)), logs
}

func TestEvaluateVagueAnswer(t *testing.T) {
	e, _ := newTestEvaluator(t)
	res := e.Evaluate(Input{
		Question:  bankQuestion(t, "tech-sql-index"),
		Text:      "I would handle it carefully and talk to the team.",
		TimeTaken: 20 * time.Second,
	})

	want := Scores{Relevance: 0, Completeness: 20, Clarity: 75, TechnicalAccuracy: 0, Communication: 68, Overall: 26}
	if res.Scores != want {
		t.Errorf("Scores = %+v, want %+v", res.Scores, want)
	}
	if res.Scores.Overall > 30 {
		t.Errorf("Overall = %d, want <= 30", res.Scores.Overall)
	}
	if res.WordCount != 10 {
		t.Errorf("WordCount = %d, want 10", res.WordCount)
	}
	if len(res.Feedback.Weaknesses) == 0 || res.Feedback.Weaknesses[0] != WeaknessTooBrief {
		t.Errorf("Weaknesses = %v, want %q first", res.Feedback.Weaknesses, WeaknessTooBrief)
	}
	if len(res.Feedback.Weaknesses) != 4 {
		t.Errorf("len(Weaknesses) = %d, want 4 (brief, relevance, completeness, technical)", len(res.Feedback.Weaknesses))
	}
	wantMissing := []string{"b-tree", "lookup", "write", "tradeoff", "storage"}
	if !slices.Equal(res.Feedback.MissingPoints, wantMissing) {
		t.Errorf("MissingPoints = %v, want %v", res.Feedback.MissingPoints, wantMissing)
	}
	if len(res.Feedback.Strengths) != 0 {
		t.Errorf("Strengths = %v, want none", res.Feedback.Strengths)
	}
	if res.Degraded {
		t.Error("Degraded = true, want false")
	}
}

func TestEvaluateStrongAnswer(t *testing.T) {
	e, _ := newTestEvaluator(t)
	res := e.Evaluate(Input{Question: concurrencyQuestion(), Text: concurrencyAnswer, TimeTaken: 3 * time.Minute, TimeLimit: 4 * time.Minute})

	want := Scores{Relevance: 67, Completeness: 100, Clarity: 85, TechnicalAccuracy: 67, Communication: 93, Overall: 82}
	if res.Scores != want {
		t.Errorf("Scores = %+v, want %+v", res.Scores, want)
	}
	if got := TierFor(res.Scores.Overall); got != TierGood {
		t.Errorf("tier = %s, want %s", got, TierGood)
	}
	if res.WordCount != 68 {
		t.Errorf("WordCount = %d, want 68", res.WordCount)
	}
	if !slices.Equal(res.Feedback.MissingPoints, []string{"atomic"}) {
		t.Errorf("MissingPoints = %v, want [atomic]", res.Feedback.MissingPoints)
	}
	if len(res.Feedback.Weaknesses) != 0 {
		t.Errorf("Weaknesses = %v, want none", res.Feedback.Weaknesses)
	}
	if len(res.Feedback.Strengths) != 3 {
		t.Errorf("Strengths = %v, want completeness, clarity and communication", res.Feedback.Strengths)
	}

	// Relevance and technical accuracy tie; relevance wins on order.
	wantSuggestions := []string{
		SuggestionFor(Relevance),
		"Work these points into your answer: atomic.",
	}
	if !slices.Equal(res.Feedback.Suggestions, wantSuggestions) {
		t.Errorf("Suggestions = %q, want %q", res.Feedback.Suggestions, wantSuggestions)
	}
	if !strings.Contains(res.Feedback.Narrative, "good (82/100)") {
		t.Errorf("Narrative = %q, want tier and score", res.Feedback.Narrative)
	}
}

func TestEvaluatePacingSuggestion(t *testing.T) {
	e, _ := newTestEvaluator(t)
	res := e.Evaluate(Input{Question: concurrencyQuestion(), Text: concurrencyAnswer, TimeTaken: 5 * time.Minute, TimeLimit: 4 * time.Minute})

	last := res.Feedback.Suggestions[len(res.Feedback.Suggestions)-1]
	if !strings.Contains(last, "5m0s against a 4m0s allowance") {
		t.Errorf("last suggestion = %q, want pacing advice", last)
	}
	if res.Scores.Overall != 82 {
		t.Errorf("Overall = %d, want pacing to leave scores alone", res.Scores.Overall)
	}
}

func TestEvaluateTooShort(t *testing.T) {
	e, logs := newTestEvaluator(t)
	for _, text := range []string{"", "idk", "   short answer    "} {
		res := e.Evaluate(Input{Question: bankQuestion(t, "tech-caching"), Text: text})
		if res.Scores != (Scores{}) {
			t.Errorf("%q: Scores = %+v, want all zero", text, res.Scores)
		}
		if !slices.Equal(res.Feedback.Weaknesses, []string{WeaknessTooBrief}) {
			t.Errorf("%q: Weaknesses = %v, want only %q", text, res.Feedback.Weaknesses, WeaknessTooBrief)
		}
		if len(res.Feedback.MissingPoints) != 5 {
			t.Errorf("%q: MissingPoints = %v, want every must-mention term", text, res.Feedback.MissingPoints)
		}
		if res.Degraded {
			t.Errorf("%q: Degraded = true, want false", text)
		}
	}
	if logs.Len() != 0 {
		t.Errorf("logged %d warnings, want none", logs.Len())
	}
}

func TestEvaluateDegraded(t *testing.T) {
	q := concurrencyQuestion()
	tests := []struct {
		name string
		in   Input
	}{
		{"nil question", Input{Text: concurrencyAnswer}},
		{"invalid utf8", Input{Question: q, Text: "I added a mutex \xff\xfe around the map writes."}},
		{"negative time", Input{Question: q, Text: concurrencyAnswer, TimeTaken: -time.Second}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, logs := newTestEvaluator(t)
			res := e.Evaluate(tt.in)
			assertNeutral(t, res)
			if n := logs.FilterMessage("answer scoring degraded").Len(); n != 1 {
				t.Errorf("degraded warnings = %d, want 1", n)
			}
		})
	}
}

func TestEvaluateRecoversPanic(t *testing.T) {
	e, logs := newTestEvaluator(t)
	e.score = func(Input) Result { panic("boom") }

	res := e.Evaluate(Input{Question: concurrencyQuestion(), Text: concurrencyAnswer})
	assertNeutral(t, res)

	entries := logs.FilterMessage("answer scoring degraded").All()
	if len(entries) != 1 {
		t.Fatalf("degraded warnings = %d, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["question_id"]; got != "fixture-concurrency" {
		t.Errorf("question_id = %v, want fixture-concurrency", got)
	}
}

func assertNeutral(t *testing.T, res Result) {
	t.Helper()
	if !res.Degraded {
		t.Error("Degraded = false, want true")
	}
	for _, d := range append(slices.Clone(Dimensions), Overall) {
		if got := res.Scores.Get(d); got != NeutralScore {
			t.Errorf("%s = %d, want %d", d, got, NeutralScore)
		}
	}
	if res.Feedback.Strengths == nil || res.Feedback.Suggestions == nil {
		t.Error("feedback lists must be non-nil")
	}
}

func TestEvaluateBoundsAndWeights(t *testing.T) {
	answers := []string{
		concurrencyAnswer,
		"Um, like, basically I just, um, really did it, you know, like whatever, um, so yeah.",
		strings.Repeat("the system handles every request and it keeps going and it scales and ", 20),
		"Maybe I think it might probably work, I guess, sort of, hopefully somehow.",
		"In my last team I led the migration, measured the error budget, and shipped the fix in a week.",
	}
	e, logs := newTestEvaluator(t)
	w := e.Config().Weights
	for _, q := range question.DefaultBank().Questions {
		for i, text := range answers {
			res := e.Evaluate(Input{Question: &q, Text: text, TimeTaken: time.Minute})
			for _, d := range append(slices.Clone(Dimensions), Overall) {
				if v := res.Scores.Get(d); v < 0 || v > 100 {
					t.Errorf("%s/answer %d: %s = %d, out of range", q.ID, i, d, v)
				}
			}
			if got := WeightedOverall(res.Scores, w); got != res.Scores.Overall {
				t.Errorf("%s/answer %d: Overall = %d, weighted = %d", q.ID, i, res.Scores.Overall, got)
			}
			if res.Degraded {
				t.Errorf("%s/answer %d: unexpectedly degraded", q.ID, i)
			}
			if len(res.Feedback.Suggestions) == 0 {
				t.Errorf("%s/answer %d: no suggestions", q.ID, i)
			}
		}
	}
	if logs.Len() != 0 {
		t.Errorf("logged %d warnings, want none", logs.Len())
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	e := New(DefaultConfig(), nil)
	in := Input{Question: concurrencyQuestion(), Text: concurrencyAnswer, TimeTaken: time.Minute}
	first := e.Evaluate(in)
	for range 5 {
		again := e.Evaluate(in)
		if again.Scores != first.Scores || !slices.Equal(again.Feedback.Suggestions, first.Feedback.Suggestions) {
			t.Fatalf("Evaluate not deterministic: %+v vs %+v", again.Scores, first.Scores)
		}
	}
}

func TestSentiment(t *testing.T) {
	e := New(DefaultConfig(), nil)
	tests := []struct {
		text string
		want Sentiment
	}{
		{"I was proud of the launch; it was a great success and we learned a lot.", SentimentPositive},
		{"The project failed, it was a terrible mistake and everyone was frustrated.", SentimentNegative},
		{"We moved the queue to a new cluster over the weekend.", SentimentNeutral},
		{"It failed at first but we learned from it.", SentimentNeutral},
	}
	for _, tt := range tests {
		if got := e.sentiment(analyze(tt.text)); got != tt.want {
			t.Errorf("sentiment(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		overall int
		want    Tier
	}{
		{100, TierExcellent},
		{85, TierExcellent},
		{84, TierGood},
		{70, TierGood},
		{69, TierAverage},
		{55, TierAverage},
		{54, TierNeedsImprovement},
		{0, TierNeedsImprovement},
	}
	for _, tt := range tests {
		if got := TierFor(tt.overall); got != tt.want {
			t.Errorf("TierFor(%d) = %s, want %s", tt.overall, got, tt.want)
		}
	}
}

func TestLowestHighestTies(t *testing.T) {
	flat := Scores{Relevance: 50, Completeness: 50, Clarity: 50, TechnicalAccuracy: 50, Communication: 50}
	if got := flat.Lowest(); got != Relevance {
		t.Errorf("Lowest() = %s, want relevance", got)
	}
	if got := flat.Highest(); got != Relevance {
		t.Errorf("Highest() = %s, want relevance", got)
	}

	s := Scores{Relevance: 60, Completeness: 40, Clarity: 90, TechnicalAccuracy: 40, Communication: 90}
	if got := s.Lowest(); got != Completeness {
		t.Errorf("Lowest() = %s, want completeness", got)
	}
	if got := s.Highest(); got != Clarity {
		t.Errorf("Highest() = %s, want clarity", got)
	}
}

func TestEvaluateTooShortCountsCharacters(t *testing.T) {
	e, _ := newTestEvaluator(t)
	// Ten characters, thirty bytes.
	res := e.Evaluate(Input{Question: bankQuestion(t, "tech-caching"), Text: "我觉得应该先加缓存层"})
	if res.Scores != (Scores{}) {
		t.Errorf("Scores = %+v, want all zero", res.Scores)
	}
	if !slices.Equal(res.Feedback.Weaknesses, []string{WeaknessTooBrief}) {
		t.Errorf("Weaknesses = %v, want only %q", res.Feedback.Weaknesses, WeaknessTooBrief)
	}
}

func TestEvaluateRepeatedTermCountsOnce(t *testing.T) {
	e, _ := newTestEvaluator(t)
	q := concurrencyQuestion()
	q.KeyPoints.Bonus = nil
	q.KeyPoints.MustMention = append(q.KeyPoints.MustMention, question.KeyTerm{Term: "Mutex", Category: "safety"})

	res := e.Evaluate(Input{Question: q, Text: "I guard the map with a mutex, use atomic counters and avoid deadlock by ordering locks."})
	if res.Scores.Relevance != 100 {
		t.Errorf("Relevance = %d, want 100", res.Scores.Relevance)
	}
	if len(res.Feedback.MissingPoints) != 0 {
		t.Errorf("MissingPoints = %v, want none", res.Feedback.MissingPoints)
	}

	res = e.Evaluate(Input{Question: q, Text: "I would think about it carefully and plan the work with the team."})
	if want := []string{"mutex", "deadlock", "atomic"}; !slices.Equal(res.Feedback.MissingPoints, want) {
		t.Errorf("MissingPoints = %v, want %v", res.Feedback.MissingPoints, want)
	}
}
