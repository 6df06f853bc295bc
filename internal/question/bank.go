package question

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
)

// Bank is a versioned collection of questions, the on-disk import format.
type Bank struct {
	Version   string     `json:"version"`
	Questions []Question `json:"questions"`
}

// ErrStaleBank is returned when an imported bank is older than the one
// already installed.
var ErrStaleBank = errors.New("question bank is older than the installed version")

// bankSchema describes the JSON layout accepted by ReadBank.
var bankSchema = map[string]any{
	"type":     "object",
	"required": []any{"version", "questions"},
	"properties": map[string]any{
		"version": map[string]any{"type": "string", "pattern": `^v\d+\.\d+\.\d+`},
		"questions": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []any{"id", "text", "type", "difficulty", "key_points"},
				"properties": map[string]any{
					"id":         map[string]any{"type": "string", "minLength": 1},
					"text":       map[string]any{"type": "string", "minLength": 10},
					"type":       map[string]any{"enum": []any{"technical", "behavioral", "situational"}},
					"difficulty": map[string]any{"enum": []any{"junior", "mid", "senior", "all"}},
					"category":   map[string]any{"type": "string"},
					"required_skills": map[string]any{
						"type": "array", "items": map[string]any{"type": "string"},
					},
					"job_roles": map[string]any{
						"type": "array", "items": map[string]any{"type": "string"},
					},
					"key_points": map[string]any{
						"type":     "object",
						"required": []any{"must_mention"},
						"properties": map[string]any{
							"must_mention": map[string]any{
								"type": "array",
								"items": map[string]any{
									"type":     "object",
									"required": []any{"term", "category"},
									"properties": map[string]any{
										"term":     map[string]any{"type": "string", "minLength": 1},
										"category": map[string]any{"type": "string", "minLength": 1},
									},
								},
							},
							"bonus": map[string]any{
								"type": "array", "items": map[string]any{"type": "string"},
							},
						},
					},
					"sample_answer": map[string]any{"type": "string"},
				},
			},
		},
	},
}

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func bankValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		const url = "schema://question-bank.json"
		if err := c.AddResource(url, bankSchema); err != nil {
			compileErr = fmt.Errorf("add bank schema: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(url)
	})
	return compiledSchema, compileErr
}

// ReadBank decodes and validates a question bank from r.
func ReadBank(r io.Reader) (*Bank, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read bank: %w", err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse bank: %w", err)
	}
	sch, err := bankValidator()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("bank does not match schema: %w", err)
	}

	var b Bank
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("decode bank: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate checks the bank version and that question IDs are unique.
func (b *Bank) Validate() error {
	if !semver.IsValid(b.Version) {
		return fmt.Errorf("invalid bank version %q", b.Version)
	}
	seen := make(map[string]bool, len(b.Questions))
	for i := range b.Questions {
		q := &b.Questions[i]
		if seen[q.ID] {
			return fmt.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = true
		if err := q.Validate(); err != nil {
			return fmt.Errorf("question %q: %w", q.ID, err)
		}
	}
	return nil
}

// CheckUpgrade returns ErrStaleBank when incoming is older than installed.
// An empty installed version accepts anything.
func CheckUpgrade(installed, incoming string) error {
	if installed == "" {
		return nil
	}
	if semver.Compare(incoming, installed) < 0 {
		return fmt.Errorf("%w (installed %s, got %s)", ErrStaleBank, installed, incoming)
	}
	return nil
}

// Validate checks a single question for structural problems.
func (q *Question) Validate() error {
	switch {
	case strings.TrimSpace(q.ID) == "":
		return errors.New("missing id")
	case len(strings.TrimSpace(q.Text)) < 10:
		return errors.New("question text too short")
	case !q.Type.Valid():
		return fmt.Errorf("unknown type %q", q.Type)
	case !q.Difficulty.Valid():
		return fmt.Errorf("unknown difficulty %q", q.Difficulty)
	}
	for _, t := range q.KeyPoints.MustMention {
		if strings.TrimSpace(t.Term) == "" {
			return errors.New("empty must-mention term")
		}
	}
	return nil
}
