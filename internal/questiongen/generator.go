// Package questiongen grows the question bank with LLM-written questions.
package questiongen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/mockprep/internal/llm"
	"github.com/abhisek/mockprep/internal/logger"
	"github.com/abhisek/mockprep/internal/question"
)

// ErrNoneAccepted is returned when every generated question was rejected.
var ErrNoneAccepted = errors.New("no generated question passed validation")

// Input describes the batch to generate.
type Input struct {
	Role       string              `validate:"max=120"`
	Type       question.Type       `validate:"required,oneof=technical behavioral situational"`
	Difficulty question.Difficulty `validate:"required,oneof=junior mid senior all"`
	Skills     []string            `validate:"max=10,dive,min=1,max=60"`
	Count      int                 `validate:"gte=1,lte=10"`
}

// Store is where generated questions are checked against and saved.
type Store interface {
	Texts(ctx context.Context) ([]string, error)
	SaveGenerated(ctx context.Context, qs ...question.Question) error
}

// Config controls a Generator.
type Config struct {
	// Validators run in order; the first failure rejects the question.
	Validators []Validator
	MaxTokens  int
	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64
	// MaxPriorQuestions caps how many bank questions go into the prompt.
	MaxPriorQuestions int
}

// DefaultConfig returns the standard validator chain and limits.
func DefaultConfig() Config {
	return Config{
		Validators:        []Validator{&StructuralValidator{}, &DuplicateValidator{}},
		MaxTokens:         4096,
		Temperature:       0.7,
		MaxPriorQuestions: 25,
	}
}

// Rejection is a generated question that failed validation.
type Rejection struct {
	Text string
	Err  *ValidationError
}

// Result is the outcome of one Generate call.
type Result struct {
	Accepted []question.Question
	Rejected []Rejection
}

// Generator produces, validates and saves questions.
type Generator struct {
	provider llm.Provider
	store    Store
	cfg      Config
	validate *validator.Validate
	log      *zap.Logger
	newID    func() string
}

// Option configures a Generator.
type Option func(*Generator)

func WithLogger(log *zap.Logger) Option {
	return func(g *Generator) { g.log = logger.OrNop(log) }
}

// WithIDGenerator overrides the ID scheme of generated questions.
func WithIDGenerator(f func() string) Option {
	return func(g *Generator) { g.newID = f }
}

// New creates a Generator.
func New(p llm.Provider, store Store, cfg Config, opts ...Option) *Generator {
	g := &Generator{
		provider: p,
		store:    store,
		cfg:      cfg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      zap.NewNop(),
		newID:    func() string { return "gen-" + uuid.NewString() },
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Generate asks for in.Count questions, keeps the ones that pass every
// validator and saves them. Rejections are reported in the result. It
// fails with ErrNoneAccepted when nothing survives.
func (g *Generator) Generate(ctx context.Context, in Input) (*Result, error) {
	if err := g.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("invalid generation request: %w", err)
	}

	existing, err := g.store.Texts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load existing questions: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, t := range existing {
		seen[Normalize(t)] = true
	}

	req := llm.UserPrompt(systemPrompt, buildUserMessage(in, existing, g.cfg.MaxPriorQuestions), QuestionSetSchema, g.cfg.MaxTokens)
	req.Temperature = g.cfg.Temperature

	var out questionSetOutput
	if _, err := llm.GenerateInto(llm.WithPurpose(ctx, llm.PurposeQuestion), g.provider, req, &out); err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	res := &Result{}
	for _, raw := range out.Questions {
		q := g.toQuestion(raw, in)
		if verr := g.check(&q, seen); verr != nil {
			g.log.Warn("generated question rejected",
				zap.String("validator", verr.Validator),
				zap.String("reason", verr.Message),
				zap.String("text", logger.TruncateForLog(q.Text, 120)),
			)
			res.Rejected = append(res.Rejected, Rejection{Text: q.Text, Err: verr})
			continue
		}
		seen[Normalize(q.Text)] = true
		res.Accepted = append(res.Accepted, q)
	}

	if len(res.Accepted) == 0 {
		return res, ErrNoneAccepted
	}
	if err := g.store.SaveGenerated(ctx, res.Accepted...); err != nil {
		return nil, fmt.Errorf("save generated questions: %w", err)
	}
	g.log.Info("questions generated",
		zap.String("type", string(in.Type)),
		zap.String("difficulty", string(in.Difficulty)),
		zap.Int("accepted", len(res.Accepted)),
		zap.Int("rejected", len(res.Rejected)),
	)
	return res, nil
}

func (g *Generator) check(q *question.Question, seen map[string]bool) *ValidationError {
	for _, v := range g.cfg.Validators {
		if verr := v.Validate(q, seen); verr != nil {
			return verr
		}
	}
	return nil
}

func (g *Generator) toQuestion(raw questionOutput, in Input) question.Question {
	q := question.Question{
		ID:           g.newID(),
		Text:         strings.TrimSpace(raw.Text),
		Type:         in.Type,
		Difficulty:   in.Difficulty,
		Category:     strings.ToLower(strings.TrimSpace(raw.Category)),
		SampleAnswer: strings.TrimSpace(raw.SampleAnswer),
	}
	for _, s := range raw.RequiredSkills {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			q.RequiredSkills = append(q.RequiredSkills, s)
		}
	}
	if in.Role != "" {
		q.JobRoles = []string{strings.ToLower(strings.TrimSpace(in.Role))}
	}
	for _, t := range raw.MustMention {
		q.KeyPoints.MustMention = append(q.KeyPoints.MustMention, question.KeyTerm{
			Term:     strings.ToLower(strings.TrimSpace(t.Term)),
			Category: strings.ToLower(strings.TrimSpace(t.Category)),
		})
	}
	for _, b := range raw.Bonus {
		if b = strings.ToLower(strings.TrimSpace(b)); b != "" {
			q.KeyPoints.Bonus = append(q.KeyPoints.Bonus, b)
		}
	}
	return q
}
