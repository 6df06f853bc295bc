package question

import (
	"slices"
	"strings"
	"unicode"
)

// AnyRole in a question's JobRoles makes it match every requested role.
const AnyRole = "any"

// Filter narrows a question lookup. Zero-valued fields do not filter.
type Filter struct {
	Types []Type
	// Difficulties lists acceptable levels. Questions marked "all" always
	// pass. A list containing DifficultyAll disables the check.
	Difficulties []Difficulty
	// Role and Skills form the topical filter: a question passes when its
	// roles or category overlap with Role, or its required skills overlap
	// with Skills.
	Role   string
	Skills []string
}

// Topical reports whether the filter restricts by role or skills.
func (f Filter) Topical() bool {
	return len(roleTokens(f.Role)) > 0 || len(f.Skills) > 0
}

// Matches reports whether q passes every part of the filter.
func (f Filter) Matches(q *Question) bool {
	if len(f.Types) > 0 && !slices.Contains(f.Types, q.Type) {
		return false
	}
	if !f.MatchesDifficulty(q) {
		return false
	}
	return f.MatchesTopic(q)
}

// MatchesDifficulty applies the difficulty part of the filter.
func (f Filter) MatchesDifficulty(q *Question) bool {
	if len(f.Difficulties) == 0 || q.Difficulty == DifficultyAll {
		return true
	}
	for _, d := range f.Difficulties {
		if q.FitsDifficulty(d) {
			return true
		}
	}
	return false
}

// MatchesTopic applies the role/skills part of the filter.
func (f Filter) MatchesTopic(q *Question) bool {
	if !f.Topical() {
		return true
	}
	for _, r := range q.JobRoles {
		if strings.EqualFold(strings.TrimSpace(r), AnyRole) {
			return true
		}
	}

	want := roleTokens(f.Role)
	if len(want) > 0 {
		have := make(map[string]bool)
		for _, r := range q.JobRoles {
			for _, tok := range roleTokens(r) {
				have[tok] = true
			}
		}
		for _, tok := range roleTokens(q.Category) {
			have[tok] = true
		}
		for _, tok := range want {
			if have[tok] {
				return true
			}
		}
	}

	for _, s := range f.Skills {
		for _, rs := range q.RequiredSkills {
			if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(rs)) {
				return true
			}
		}
	}
	return false
}

// genericRoleWords carry no topical signal on their own.
var genericRoleWords = map[string]bool{
	"engineer": true, "engineering": true, "developer": true, "dev": true,
	"senior": true, "junior": true, "mid": true, "lead": true, "staff": true,
	"principal": true, "intern": true, "specialist": true, "and": true,
	"of": true, "the": true, "a": true, "an": true, "ii": true, "iii": true,
}

// roleTokens lower-cases s and splits it into meaningful role words.
func roleTokens(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
	out := fields[:0]
	for _, f := range fields {
		if genericRoleWords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}
