package questiongen

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/abhisek/mockprep/internal/question"
)

// Validator checks one generated question.
type Validator interface {
	// Name identifies the validator in errors and logs.
	Name() string
	// Validate returns nil when q is acceptable. seen holds the normalized
	// texts of the bank plus the questions accepted so far in the batch.
	Validate(q *question.Question, seen map[string]bool) *ValidationError
}

// ValidationError describes why a generated question was rejected.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// Limits enforced by StructuralValidator.
const (
	MaxTextChars = 400
	MinTerms     = 2
	MaxTerms     = 8
)

// StructuralValidator applies question.Validate and the generation limits.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *question.Question, _ map[string]bool) *ValidationError {
	fail := func(format string, args ...any) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf(format, args...)}
	}
	if err := q.Validate(); err != nil {
		return fail("%v", err)
	}
	if n := len([]rune(q.Text)); n > MaxTextChars {
		return fail("text is %d characters, limit is %d", n, MaxTextChars)
	}
	if n := len(q.KeyPoints.MustMention); n < MinTerms || n > MaxTerms {
		return fail("%d must-mention terms, want %d to %d", n, MinTerms, MaxTerms)
	}
	if q.Type == question.TypeTechnical && len(q.KeyPoints.TechnicalTerms()) == 0 {
		return fail("technical question has no technical terms")
	}
	for _, t := range q.KeyPoints.MustMention {
		if strings.TrimSpace(t.Category) == "" {
			return fail("term %q has no category", t.Term)
		}
	}
	return nil
}

// DuplicateValidator rejects texts already seen after normalization.
type DuplicateValidator struct{}

func (v *DuplicateValidator) Name() string { return "duplicate" }

func (v *DuplicateValidator) Validate(q *question.Question, seen map[string]bool) *ValidationError {
	if seen[Normalize(q.Text)] {
		return &ValidationError{Validator: v.Name(), Message: "question already exists"}
	}
	return nil
}

// Normalize lower-cases s and keeps only letters and digits separated by
// single spaces, so punctuation and spacing differences compare equal.
func Normalize(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, " ")
}
