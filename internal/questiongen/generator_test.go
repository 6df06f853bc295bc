package questiongen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/mockprep/internal/llm"
	"github.com/abhisek/mockprep/internal/question"
)

type fakeStore struct {
	texts   []string
	saved   []question.Question
	saveErr error
}

func (f *fakeStore) Texts(context.Context) ([]string, error) { return f.texts, nil }

func (f *fakeStore) SaveGenerated(_ context.Context, qs ...question.Question) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, qs...)
	return nil
}

func item(text string, terms ...string) map[string]any {
	mm := make([]map[string]any, len(terms))
	for i, t := range terms {
		mm[i] = map[string]any{"term": t, "category": "technical"}
	}
	return map[string]any{
		"text":            text,
		"category":        "Databases",
		"required_skills": []string{" SQL ", ""},
		"must_mention":    mm,
		"bonus":           []string{"Query Plan"},
		"sample_answer":   "An index trades write cost for faster lookups.",
	}
}

func batch(items ...map[string]any) llm.MockResponse {
	return llm.JSONResponse(map[string]any{"questions": items})
}

func newTestGenerator(p llm.Provider, st Store) (*Generator, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	n := 0
	g := New(p, st, DefaultConfig(),
		WithLogger(zap.New(core)),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("gen-%d", n) }),
	)
	return g, logs
}

var techInput = Input{Role: "Data Engineer", Type: question.TypeTechnical, Difficulty: question.DifficultyMid, Count: 3}

func TestGenerate_AcceptsAndSaves(t *testing.T) {
	mock := llm.NewMockProvider(batch(
		item("How does a covering index avoid table lookups?", "index", "lookup"),
		item("When would you partition a large table by date?", "partition", "pruning", "retention"),
	))
	st := &fakeStore{}
	g, _ := newTestGenerator(mock, st)

	res, err := g.Generate(context.Background(), techInput)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Accepted) != 2 || len(res.Rejected) != 0 {
		t.Fatalf("accepted %d rejected %d, want 2/0", len(res.Accepted), len(res.Rejected))
	}
	if len(st.saved) != 2 {
		t.Fatalf("saved %d questions, want 2", len(st.saved))
	}

	q := st.saved[0]
	if q.ID != "gen-1" || q.Type != question.TypeTechnical || q.Difficulty != question.DifficultyMid {
		t.Errorf("question = %+v", q)
	}
	if q.Category != "databases" {
		t.Errorf("Category = %q, want databases", q.Category)
	}
	if len(q.RequiredSkills) != 1 || q.RequiredSkills[0] != "sql" {
		t.Errorf("RequiredSkills = %v, want [sql]", q.RequiredSkills)
	}
	if len(q.JobRoles) != 1 || q.JobRoles[0] != "data engineer" {
		t.Errorf("JobRoles = %v, want [data engineer]", q.JobRoles)
	}
	if len(q.KeyPoints.Bonus) != 1 || q.KeyPoints.Bonus[0] != "query plan" {
		t.Errorf("Bonus = %v", q.KeyPoints.Bonus)
	}

	calls := mock.Calls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	if calls[0].Schema != QuestionSetSchema {
		t.Error("request does not carry the question set schema")
	}
	msg := calls[0].Messages[0].Content
	for _, want := range []string{"Question type: technical", "Seniority: mid", "Target role: Data Engineer", "Number of questions: 3", "Already in the bank:\nNone"} {
		if !strings.Contains(msg, want) {
			t.Errorf("prompt missing %q:\n%s", want, msg)
		}
	}
}

func TestGenerate_RejectsDuplicatesAndMalformed(t *testing.T) {
	mock := llm.NewMockProvider(batch(
		item("Explain what a database index is, and how it speeds up queries?", "index", "lookup"),
		item("How does a covering index avoid table lookups?", "index"),
		item("How does a covering index avoid table lookups?", "index", "lookup"),
		item("how does a covering index avoid table lookups", "index", "lookup"),
	))
	st := &fakeStore{texts: []string{"Explain what a database index is and how it speeds up queries."}}
	g, logs := newTestGenerator(mock, st)

	res, err := g.Generate(context.Background(), techInput)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Accepted) != 1 {
		t.Fatalf("accepted = %d, want 1", len(res.Accepted))
	}
	want := []string{"duplicate", "structural", "duplicate"}
	if len(res.Rejected) != len(want) {
		t.Fatalf("rejected = %d, want %d", len(res.Rejected), len(want))
	}
	for i, r := range res.Rejected {
		if r.Err.Validator != want[i] {
			t.Errorf("rejection %d by %q, want %q", i, r.Err.Validator, want[i])
		}
	}
	if n := logs.FilterMessage("generated question rejected").Len(); n != 3 {
		t.Errorf("rejection logs = %d, want 3", n)
	}
	if !strings.Contains(mock.Calls()[0].Messages[0].Content, "1. Explain what a database index is") {
		t.Error("existing question not listed in prompt")
	}
}

func TestGenerate_NoneAccepted(t *testing.T) {
	mock := llm.NewMockProvider(batch(item("Short?", "a", "b")))
	st := &fakeStore{}
	g, _ := newTestGenerator(mock, st)

	res, err := g.Generate(context.Background(), techInput)
	if !errors.Is(err, ErrNoneAccepted) {
		t.Fatalf("err = %v, want ErrNoneAccepted", err)
	}
	if res == nil || len(res.Rejected) != 1 {
		t.Fatalf("result = %+v, want one rejection", res)
	}
	if len(st.saved) != 0 {
		t.Error("nothing should be saved")
	}
}

func TestGenerate_InvalidInput(t *testing.T) {
	mock := llm.NewMockProvider()
	g, _ := newTestGenerator(mock, &fakeStore{})

	bad := []Input{
		{Type: "trivia", Difficulty: question.DifficultyMid, Count: 1},
		{Type: question.TypeBehavioral, Difficulty: "expert", Count: 1},
		{Type: question.TypeBehavioral, Difficulty: question.DifficultyMid, Count: 0},
		{Type: question.TypeBehavioral, Difficulty: question.DifficultyMid, Count: MaxBatch + 1},
	}
	for _, in := range bad {
		if _, err := g.Generate(context.Background(), in); err == nil {
			t.Errorf("Generate(%+v) succeeded, want error", in)
		}
	}
	if mock.CallCount() != 0 {
		t.Errorf("provider called %d times for invalid input", mock.CallCount())
	}
}

func TestGenerate_ProviderAndSaveErrors(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	g, _ := newTestGenerator(mock, &fakeStore{})
	_, err := g.Generate(context.Background(), techInput)
	var unavailable *llm.ErrProviderUnavailable
	if !errors.As(err, &unavailable) {
		t.Errorf("err = %v, want ErrProviderUnavailable", err)
	}

	mock = llm.NewMockProvider(llm.MockResponse{Content: []byte(`{"questions": "nope"}`)})
	g, _ = newTestGenerator(mock, &fakeStore{})
	if _, err := g.Generate(context.Background(), techInput); err == nil {
		t.Error("schema-violating response accepted")
	}

	saveErr := errors.New("disk full")
	mock = llm.NewMockProvider(batch(item("How does a covering index avoid table lookups?", "index", "lookup")))
	g, _ = newTestGenerator(mock, &fakeStore{saveErr: saveErr})
	if _, err := g.Generate(context.Background(), techInput); !errors.Is(err, saveErr) {
		t.Errorf("err = %v, want %v", err, saveErr)
	}
}

func TestStructuralValidator(t *testing.T) {
	base := func() question.Question {
		return question.Question{
			ID: "gen-1", Text: "Tell me about a time you disagreed with your manager.",
			Type: question.TypeBehavioral, Difficulty: question.DifficultyMid,
			KeyPoints: question.KeyPoints{MustMention: []question.KeyTerm{
				{Term: "situation", Category: "situation"},
				{Term: "result", Category: "result"},
			}},
		}
	}
	tests := []struct {
		name   string
		mutate func(*question.Question)
		ok     bool
	}{
		{"valid behavioral", func(*question.Question) {}, true},
		{"text too long", func(q *question.Question) { q.Text = strings.Repeat("why ", 101) }, false},
		{"too few terms", func(q *question.Question) { q.KeyPoints.MustMention = q.KeyPoints.MustMention[:1] }, false},
		{"empty term", func(q *question.Question) { q.KeyPoints.MustMention[0].Term = " " }, false},
		{"missing category", func(q *question.Question) { q.KeyPoints.MustMention[1].Category = "" }, false},
		{"technical without technical terms", func(q *question.Question) { q.Type = question.TypeTechnical }, false},
	}
	v := &StructuralValidator{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := base()
			tt.mutate(&q)
			err := v.Validate(&q, nil)
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"How does a Covering Index work?", "how does a covering index work"},
		{"  spaced\t out  ", "spaced out"},
		{"REST vs. RPC -- when?", "rest vs rpc when"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildDedup(t *testing.T) {
	if got := buildDedup(nil, 5); got != "None" {
		t.Errorf("buildDedup(nil) = %q, want None", got)
	}
	got := buildDedup([]string{"a", "b", "c"}, 2)
	if want := "1. b\n2. c"; got != want {
		t.Errorf("buildDedup = %q, want %q", got, want)
	}
}
