package selector

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/mockprep/internal/metrics"
	"github.com/abhisek/mockprep/internal/question"
)

func newTestSelector(seed uint64, opts ...Option) (*Selector, *question.MemoryRepository) {
	repo := question.NewMemoryRepository(question.DefaultBank().Questions...)
	opts = append([]Option{WithRand(rand.New(rand.NewPCG(seed, seed+1)))}, opts...)
	return New(repo, opts...), repo
}

func countTypes(qs []question.Question) map[question.Type]int {
	out := make(map[question.Type]int)
	for _, q := range qs {
		out[q.Type]++
	}
	return out
}

func ids(qs []question.Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

func assertUnique(t *testing.T, qs []question.Question) {
	t.Helper()
	seen := make(map[string]bool)
	for _, q := range qs {
		if seen[q.ID] {
			t.Fatalf("question %s selected twice", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestSelect_MixedSplit(t *testing.T) {
	tests := []struct {
		count, technical, behavioral int
	}{
		{10, 6, 4},
		{5, 3, 2},
		{1, 1, 0},
		{3, 2, 1},
	}
	for _, tt := range tests {
		s, _ := newTestSelector(7)
		sel, err := s.Select(context.Background(), Request{
			SessionType: SessionMixed, Difficulty: question.DifficultyMid, Count: tt.count,
		})
		if err != nil {
			t.Fatalf("count=%d: %v", tt.count, err)
		}
		s.Wait()

		got := countTypes(sel.Questions)
		if got[question.TypeTechnical] != tt.technical || got[question.TypeBehavioral] != tt.behavioral {
			t.Errorf("count=%d: split = %v, want %d technical / %d behavioral", tt.count, got, tt.technical, tt.behavioral)
		}
		if sel.Level != LevelStrict {
			t.Errorf("count=%d: level = %s, want strict", tt.count, sel.Level)
		}
		assertUnique(t, sel.Questions)
	}
}

func TestSelect_NoDuplicatesAcrossSeeds(t *testing.T) {
	for seed := uint64(1); seed <= 25; seed++ {
		s, _ := newTestSelector(seed)
		sel, err := s.Select(context.Background(), Request{
			SessionType: SessionJobSpecific, Difficulty: question.DifficultyAll, Count: 35,
		})
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		s.Wait()
		if len(sel.Questions) != 35 {
			t.Fatalf("seed %d: got %d questions", seed, len(sel.Questions))
		}
		assertUnique(t, sel.Questions)
	}
}

func TestSelect_DeterministicForSeed(t *testing.T) {
	req := Request{SessionType: SessionTechnical, Difficulty: question.DifficultyAll, Count: 6}

	a, _ := newTestSelector(99)
	b, _ := newTestSelector(99)
	first, err := a.Select(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	second, err := b.Select(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	a.Wait()
	b.Wait()

	if !slices.Equal(ids(first.Questions), ids(second.Questions)) {
		t.Errorf("same seed gave %v and %v", ids(first.Questions), ids(second.Questions))
	}
}

func TestSelect_RelaxesRoleFirst(t *testing.T) {
	m := metrics.New()
	s, _ := newTestSelector(3, WithMetrics(m))

	sel, err := s.Select(context.Background(), Request{
		SessionType: SessionTechnical, JobRole: "Frontend Engineer",
		Difficulty: question.DifficultySenior, Count: 4,
	})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	s.Wait()

	if sel.Level != LevelAnyRole {
		t.Errorf("level = %s, want %s", sel.Level, LevelAnyRole)
	}
	got := ids(sel.Questions)
	// The only strict matches are kept.
	for _, want := range []string{"tech-web-security", "tech-big-o"} {
		if !slices.Contains(got, want) {
			t.Errorf("selection %v is missing strict match %s", got, want)
		}
	}
	for _, q := range sel.Questions {
		if !q.FitsDifficulty(question.DifficultySenior) {
			t.Errorf("%s has difficulty %s, want senior or all", q.ID, q.Difficulty)
		}
	}
	if v := testutil.ToFloat64(m.Relaxations.WithLabelValues("any_role")); v != 1 {
		t.Errorf("any_role relaxations = %v, want 1", v)
	}
}

func TestSelect_RelaxesToAdjacentDifficulty(t *testing.T) {
	s, _ := newTestSelector(11)

	sel, err := s.Select(context.Background(), Request{
		SessionType: SessionTechnical, Difficulty: question.DifficultyJunior, Count: 8,
	})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	s.Wait()

	if sel.Level != LevelAdjacent {
		t.Errorf("level = %s, want %s", sel.Level, LevelAdjacent)
	}
	counts := map[question.Difficulty]int{}
	for _, q := range sel.Questions {
		if q.Type != question.TypeTechnical {
			t.Errorf("%s is %s, want technical", q.ID, q.Type)
		}
		counts[q.Difficulty]++
	}
	// Five junior and one "all" question exist; both stay.
	if counts[question.DifficultyJunior] != 5 || counts[question.DifficultyAll] != 1 || counts[question.DifficultyMid] != 2 {
		t.Errorf("difficulty counts = %v", counts)
	}
}

func TestSelect_SituationalFiller(t *testing.T) {
	s, _ := newTestSelector(5)

	sel, err := s.Select(context.Background(), Request{
		SessionType: SessionBehavioral, Difficulty: question.DifficultyAll, Count: 12,
	})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	s.Wait()

	got := countTypes(sel.Questions)
	if got[question.TypeBehavioral] != 10 || got[question.TypeSituational] != 2 {
		t.Errorf("types = %v, want 10 behavioral + 2 situational", got)
	}
}

func TestSelect_PoolExhausted(t *testing.T) {
	s, repo := newTestSelector(1)

	_, err := s.Select(context.Background(), Request{
		SessionType: SessionTechnical, Difficulty: question.DifficultyAll, Count: 30,
	})
	var pe *PoolExhaustedError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *PoolExhaustedError", err)
	}
	if pe.Requested != 30 || pe.Available != 25 {
		t.Errorf("PoolExhaustedError = %+v, want requested 30 available 25", pe)
	}

	s.Wait()
	q, _ := repo.Get(context.Background(), "tech-big-o")
	if q.UsageCount != 0 {
		t.Errorf("usage bumped on failed selection: %d", q.UsageCount)
	}
}

func TestSelect_IncrementsUsage(t *testing.T) {
	s, repo := newTestSelector(21)

	sel, err := s.Select(context.Background(), Request{
		SessionType: SessionMixed, Difficulty: question.DifficultyMid, Count: 5,
	})
	if err != nil {
		t.Fatal(err)
	}
	s.Wait()

	for _, q := range sel.Questions {
		got, err := repo.Get(context.Background(), q.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.UsageCount != 1 {
			t.Errorf("%s usage = %d, want 1", q.ID, got.UsageCount)
		}
	}
}

type failingUsageRepo struct {
	*question.MemoryRepository
}

func (failingUsageRepo) IncrementUsage(context.Context, ...string) error {
	return errors.New("database is locked")
}

func TestSelect_UsageFailureOnlyWarns(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	repo := failingUsageRepo{question.NewMemoryRepository(question.DefaultBank().Questions...)}
	s := New(repo, WithSeed(8), WithLogger(zap.New(core)))

	if _, err := s.Select(context.Background(), Request{
		SessionType: SessionBehavioral, Difficulty: question.DifficultyMid, Count: 3,
	}); err != nil {
		t.Fatalf("Select: %v", err)
	}
	s.Wait()

	if logs.FilterMessage("increment question usage").Len() != 1 {
		t.Errorf("expected one usage warning, got %v", logs.All())
	}
}

func TestSelect_HintSkillsWidenStrictMatch(t *testing.T) {
	s, _ := newTestSelector(2)

	sel, err := s.Select(context.Background(), Request{
		SessionType: SessionJobSpecific, JobRole: "Frontend Engineer", Difficulty: question.DifficultyJunior,
		Count: 1, Hint: &Hint{Skills: []string{"sql"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	s.Wait()
	if sel.Level != LevelStrict {
		t.Errorf("level = %s, want strict", sel.Level)
	}
}

func TestSelect_InvalidRequest(t *testing.T) {
	s, _ := newTestSelector(1)
	if _, err := s.Select(context.Background(), Request{SessionType: SessionMixed, Count: 0}); err == nil {
		t.Error("expected error for zero count")
	}
	if _, err := s.Select(context.Background(), Request{SessionType: "panel", Count: 3}); err == nil {
		t.Error("expected error for unknown session type")
	}
}

func TestParseSessionType(t *testing.T) {
	if got, err := ParseSessionType(" Job-Specific "); err != nil || got != SessionJobSpecific {
		t.Errorf("ParseSessionType = %q, %v", got, err)
	}
	if _, err := ParseSessionType("panel"); err == nil {
		t.Error("expected error")
	}
}
