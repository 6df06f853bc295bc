package llm

import "context"

type purposeKey struct{}

// Purposes recorded in the request log.
const (
	PurposeCoach    = "session-coach"
	PurposeQuestion = "question-gen"
)

// WithPurpose tags ctx with the reason for the LLM call.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the tag set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
