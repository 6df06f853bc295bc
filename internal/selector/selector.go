package selector

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/mockprep/internal/metrics"
	"github.com/abhisek/mockprep/internal/question"
)

// SessionType decides which question types a session draws from.
type SessionType string

const (
	SessionTechnical   SessionType = "technical"
	SessionBehavioral  SessionType = "behavioral"
	SessionMixed       SessionType = "mixed"
	SessionJobSpecific SessionType = "job-specific"
)

// SessionTypes lists every valid session type.
var SessionTypes = []SessionType{SessionTechnical, SessionBehavioral, SessionMixed, SessionJobSpecific}

func (t SessionType) Valid() bool {
	return slices.Contains(SessionTypes, t)
}

// ParseSessionType converts a user-supplied string to a SessionType.
func ParseSessionType(s string) (SessionType, error) {
	t := SessionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown session type %q", s)
	}
	return t, nil
}

// BehavioralShare is the fraction of a mixed session that is behavioral,
// rounded down.
const BehavioralShare = 0.4

// Level is how far the filters were loosened to fill a bucket.
type Level int

const (
	// LevelStrict applies role and exact difficulty.
	LevelStrict Level = iota
	// LevelAnyRole drops the role filter.
	LevelAnyRole
	// LevelAdjacent also admits neighbouring difficulties.
	LevelAdjacent
)

func (l Level) String() string {
	switch l {
	case LevelStrict:
		return "strict"
	case LevelAnyRole:
		return "any_role"
	case LevelAdjacent:
		return "adjacent_difficulty"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Hint carries optional resume-derived context.
type Hint struct {
	Role   string
	Skills []string
}

// Request describes the question set a session needs.
type Request struct {
	SessionType SessionType
	JobRole     string
	Difficulty  question.Difficulty
	Count       int
	Hint        *Hint
}

// Selection is an ordered, duplicate-free question sequence.
type Selection struct {
	Questions []question.Question
	// Level is the loosest level any bucket needed.
	Level Level
}

// PoolExhaustedError is returned when the pool cannot supply Requested
// questions even after every relaxation.
type PoolExhaustedError struct {
	Requested int
	Available int
}

func (e *PoolExhaustedError) Error() string {
	return fmt.Sprintf("question pool exhausted: requested %d, only %d available", e.Requested, e.Available)
}

// Selector picks question sequences from a Repository.
type Selector struct {
	repo    question.Repository
	log     *zap.Logger
	metrics *metrics.Metrics

	mu  sync.Mutex // guards rng
	rng *rand.Rand

	pending sync.WaitGroup
}

// Option configures a Selector.
type Option func(*Selector)

// WithRand sets the random source used for sampling and shuffling.
func WithRand(r *rand.Rand) Option {
	return func(s *Selector) { s.rng = r }
}

// WithSeed seeds a PCG source. A zero seed leaves the clock-seeded default.
func WithSeed(seed uint64) Option {
	return func(s *Selector) {
		if seed != 0 {
			s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Selector) {
		if l != nil {
			s.log = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Selector) { s.metrics = m }
}

// New creates a Selector over repo.
func New(repo question.Repository, opts ...Option) *Selector {
	now := uint64(time.Now().UnixNano())
	s := &Selector{
		repo: repo,
		log:  zap.NewNop(),
		rng:  rand.New(rand.NewPCG(now, now>>1)),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// bucket is a slice of the session filled from a fixed set of types.
type bucket struct {
	types []question.Type
	want  int
}

func plan(t SessionType, count int) []bucket {
	switch t {
	case SessionTechnical:
		return []bucket{{types: []question.Type{question.TypeTechnical}, want: count}}
	case SessionBehavioral:
		return []bucket{{types: []question.Type{question.TypeBehavioral}, want: count}}
	case SessionMixed:
		behavioral := int(float64(count) * BehavioralShare)
		return []bucket{
			{types: []question.Type{question.TypeTechnical}, want: count - behavioral},
			{types: []question.Type{question.TypeBehavioral}, want: behavioral},
		}
	default:
		return []bucket{{types: question.Types, want: count}}
	}
}

// Select builds the question sequence for req. Usage counters of the
// chosen questions are bumped in the background; see Wait.
func (s *Selector) Select(ctx context.Context, req Request) (*Selection, error) {
	if req.Count < 1 {
		return nil, errors.New("question count must be at least 1")
	}
	if !req.SessionType.Valid() {
		return nil, fmt.Errorf("unknown session type %q", req.SessionType)
	}

	taken := make(map[string]bool, req.Count)
	var (
		picked []question.Question
		level  Level
	)
	for _, b := range plan(req.SessionType, req.Count) {
		if b.want == 0 {
			continue
		}
		got, lvl, err := s.fill(ctx, req, b.types, b.want, taken)
		if err != nil {
			return nil, err
		}
		level = max(level, lvl)
		picked = append(picked, got...)

		if short := b.want - len(got); short > 0 && !slices.Contains(b.types, question.TypeSituational) {
			s.log.Debug("filling shortfall with situational questions",
				zap.String("session_type", string(req.SessionType)),
				zap.Int("short", short))
			extra, lvl, err := s.fill(ctx, req, []question.Type{question.TypeSituational}, short, taken)
			if err != nil {
				return nil, err
			}
			level = max(level, lvl)
			picked = append(picked, extra...)
		}
	}

	if len(picked) < req.Count {
		return nil, &PoolExhaustedError{Requested: req.Count, Available: len(picked)}
	}

	s.mu.Lock()
	s.rng.Shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
	s.mu.Unlock()

	s.bumpUsage(ctx, picked)
	return &Selection{Questions: picked, Level: level}, nil
}

// fill draws up to want unused questions of the given types, loosening the
// filters level by level. Picks from stricter levels are kept.
func (s *Selector) fill(ctx context.Context, req Request, types []question.Type, want int, taken map[string]bool) ([]question.Question, Level, error) {
	var out []question.Question
	reached := LevelStrict
	for lvl := LevelStrict; lvl <= LevelAdjacent && len(out) < want; lvl++ {
		if !widens(req, types, lvl) {
			continue
		}
		if lvl > LevelStrict {
			reached = lvl
			s.metrics.Relaxed(lvl.String())
			s.log.Info("relaxing question filter",
				zap.Stringer("level", lvl),
				zap.String("role", req.JobRole),
				zap.String("difficulty", string(req.Difficulty)),
				zap.Int("have", len(out)),
				zap.Int("want", want))
		}

		candidates, err := s.repo.Find(ctx, filterFor(req, types, lvl))
		if err != nil {
			return nil, reached, fmt.Errorf("find questions: %w", err)
		}
		candidates = slices.DeleteFunc(candidates, func(q question.Question) bool { return taken[q.ID] })

		for _, q := range s.sample(candidates, want-len(out)) {
			taken[q.ID] = true
			out = append(out, q)
		}
	}
	return out, reached, nil
}

// widens reports whether lvl loosens anything compared to the level below.
func widens(req Request, types []question.Type, lvl Level) bool {
	switch lvl {
	case LevelAnyRole:
		return filterFor(req, types, LevelStrict).Topical()
	case LevelAdjacent:
		return req.Difficulty != question.DifficultyAll && len(req.Difficulty.Adjacent()) > 0
	}
	return true
}

func filterFor(req Request, types []question.Type, lvl Level) question.Filter {
	f := question.Filter{Types: types}
	if req.Difficulty != "" && req.Difficulty != question.DifficultyAll {
		f.Difficulties = []question.Difficulty{req.Difficulty}
		if lvl >= LevelAdjacent {
			f.Difficulties = append(f.Difficulties, req.Difficulty.Adjacent()...)
		}
	}
	if lvl == LevelStrict {
		f.Role = req.JobRole
		if req.Hint != nil {
			f.Role = strings.TrimSpace(f.Role + " " + req.Hint.Role)
			f.Skills = req.Hint.Skills
		}
	}
	return f
}

// sample returns n items chosen uniformly without replacement.
func (s *Selector) sample(qs []question.Question, n int) []question.Question {
	if n <= 0 || len(qs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.rng.Perm(len(qs))
	if n > len(idx) {
		n = len(idx)
	}
	out := make([]question.Question, n)
	for i := range n {
		out[i] = qs[idx[i]]
	}
	return out
}

func (s *Selector) bumpUsage(ctx context.Context, qs []question.Question) {
	ids := make([]string, len(qs))
	for i, q := range qs {
		ids[i] = q.ID
	}
	ctx = context.WithoutCancel(ctx)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := s.repo.IncrementUsage(ctx, ids...); err != nil {
			s.log.Warn("increment question usage", zap.Strings("question_ids", ids), zap.Error(err))
		}
	}()
}

// Wait blocks until background usage updates have finished.
func (s *Selector) Wait() {
	s.pending.Wait()
}
