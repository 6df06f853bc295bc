package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/mockprep/internal/evaluation"
	"github.com/abhisek/mockprep/internal/llm"
)

var errEmptyAdvice = errors.New("coach returned no advice")

// Coach writes personalized preparation advice.
type Coach interface {
	Advise(ctx context.Context, in CoachInput) (*Advice, error)
}

// CoachInput is the session summary handed to a coach.
type CoachInput struct {
	SessionType    string
	JobRole        string
	Tier           evaluation.Tier
	Averages       evaluation.Scores
	Weakest        evaluation.Dimension
	Strengths      []string
	AreasToImprove []string
}

// Advice replaces the templated tips and recommendations.
type Advice struct {
	Tips            []string `json:"tips"`
	Recommendations []string `json:"recommendations"`
}

// AdviceSchema constrains the coach response.
var AdviceSchema = &llm.Schema{
	Name:        "session-advice",
	Description: "Preparation tips and practice recommendations for an interview candidate",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tips": map[string]any{
				"type":        "array",
				"description": "Concrete preparation tips, one sentence each",
				"items":       map[string]any{"type": "string", "minLength": 1},
				"minItems":    1,
				"maxItems":    5,
			},
			"recommendations": map[string]any{
				"type":        "array",
				"description": "Practice activities for the next sessions, one sentence each",
				"items":       map[string]any{"type": "string", "minLength": 1},
				"minItems":    1,
				"maxItems":    5,
			},
		},
		"required":             []any{"tips", "recommendations"},
		"additionalProperties": false,
	},
}

const coachSystemPrompt = `You are an experienced interview coach. You receive the scores of a completed mock interview and write short, specific advice. Never invent scores and never repeat the same point twice.`

// DefaultCoachMaxTokens bounds the coach completion.
const DefaultCoachMaxTokens = 1024

// LLMCoach asks a language model for advice.
type LLMCoach struct {
	provider  llm.Provider
	maxTokens int
}

// NewLLMCoach creates a coach backed by p.
func NewLLMCoach(p llm.Provider) *LLMCoach {
	return &LLMCoach{provider: p, maxTokens: DefaultCoachMaxTokens}
}

func (c *LLMCoach) Advise(ctx context.Context, in CoachInput) (*Advice, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeCoach)

	req := llm.UserPrompt(coachSystemPrompt, buildCoachMessage(in), AdviceSchema, c.maxTokens)
	req.Temperature = 0.4

	var out Advice
	if _, err := llm.GenerateInto(ctx, c.provider, req, &out); err != nil {
		return nil, fmt.Errorf("session coach: %w", err)
	}
	return &out, nil
}

func buildCoachMessage(in CoachInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Session type: %s\n", in.SessionType)
	if in.JobRole != "" {
		fmt.Fprintf(&b, "Target role: %s\n", in.JobRole)
	}
	fmt.Fprintf(&b, "Overall: %d (%s)\n", in.Averages.Overall, in.Tier.Label())

	b.WriteString("\nAverage scores:\n")
	for _, d := range evaluation.Dimensions {
		fmt.Fprintf(&b, "- %s: %d\n", d.Label(), in.Averages.Get(d))
	}
	fmt.Fprintf(&b, "\nWeakest area: %s\n", in.Weakest.Label())

	writeList(&b, "Strengths observed", in.Strengths)
	writeList(&b, "Areas to improve", in.AreasToImprove)

	b.WriteString(`
Instructions:
1. Write up to five preparation tips aimed mostly at the weakest area.
2. Write up to five practice recommendations the candidate can do before the next session.
3. Keep each item to one sentence in plain text.`)
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	fmt.Fprintf(b, "\n%s:\n", title)
	if len(items) == 0 {
		b.WriteString("None\n")
		return
	}
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
}
