package question

import (
	"fmt"
	"strings"
)

// Type classifies what a question tests.
type Type string

const (
	TypeTechnical   Type = "technical"
	TypeBehavioral  Type = "behavioral"
	TypeSituational Type = "situational"
)

// Types lists every valid question type in display order.
var Types = []Type{TypeTechnical, TypeBehavioral, TypeSituational}

// Valid reports whether t is a known question type.
func (t Type) Valid() bool {
	switch t {
	case TypeTechnical, TypeBehavioral, TypeSituational:
		return true
	}
	return false
}

// ParseType converts a user-supplied string to a Type.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown question type %q", s)
	}
	return t, nil
}

// Difficulty is the seniority level a question targets.
type Difficulty string

const (
	DifficultyJunior Difficulty = "junior"
	DifficultyMid    Difficulty = "mid"
	DifficultySenior Difficulty = "senior"
	// DifficultyAll marks a question as fitting every level. As a session
	// difficulty it disables the difficulty filter.
	DifficultyAll Difficulty = "all"
)

// Difficulties lists the concrete levels from easiest to hardest.
var Difficulties = []Difficulty{DifficultyJunior, DifficultyMid, DifficultySenior}

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyJunior, DifficultyMid, DifficultySenior, DifficultyAll:
		return true
	}
	return false
}

// Rank returns the position of d on the junior→senior ladder, or -1 for
// DifficultyAll and unknown values.
func (d Difficulty) Rank() int {
	for i, l := range Difficulties {
		if l == d {
			return i
		}
	}
	return -1
}

// Adjacent returns the levels directly above and below d.
func (d Difficulty) Adjacent() []Difficulty {
	r := d.Rank()
	if r < 0 {
		return nil
	}
	var out []Difficulty
	if r > 0 {
		out = append(out, Difficulties[r-1])
	}
	if r < len(Difficulties)-1 {
		out = append(out, Difficulties[r+1])
	}
	return out
}

// ParseDifficulty converts a user-supplied string to a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
	return d, nil
}

// CategoryTechnical tags must-mention terms that are checked by the
// technical accuracy dimension.
const CategoryTechnical = "technical"

// KeyTerm is a single must-mention expectation.
type KeyTerm struct {
	Term     string `json:"term"`
	Category string `json:"category"`
}

// KeyPoints are the structured expectations an answer is scored against.
type KeyPoints struct {
	MustMention []KeyTerm `json:"must_mention"`
	Bonus       []string  `json:"bonus,omitempty"`
}

// Categories returns the distinct categories of the must-mention terms in
// first-seen order.
func (k KeyPoints) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range k.MustMention {
		c := strings.ToLower(strings.TrimSpace(t.Category))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// TechnicalTerms returns the must-mention terms tagged as technical.
func (k KeyPoints) TechnicalTerms() []KeyTerm {
	var out []KeyTerm
	for _, t := range k.MustMention {
		if strings.EqualFold(t.Category, CategoryTechnical) {
			out = append(out, t)
		}
	}
	return out
}

// Question is a single interview prompt. Everything except UsageCount is
// immutable once created.
type Question struct {
	ID             string     `json:"id"`
	Text           string     `json:"text"`
	Type           Type       `json:"type"`
	Difficulty     Difficulty `json:"difficulty"`
	Category       string     `json:"category"`
	RequiredSkills []string   `json:"required_skills,omitempty"`
	JobRoles       []string   `json:"job_roles,omitempty"`
	KeyPoints      KeyPoints  `json:"key_points"`
	SampleAnswer   string     `json:"sample_answer,omitempty"`
	UsageCount     int        `json:"usage_count,omitempty"`
}

// FitsDifficulty reports whether the question can be served at level d.
func (q *Question) FitsDifficulty(d Difficulty) bool {
	return d == DifficultyAll || q.Difficulty == DifficultyAll || q.Difficulty == d
}
