package evaluation

import (
	"strings"
	"unicode"
)

// analysis is the tokenized form of an answer, computed once per call.
type analysis struct {
	lower     string
	words     []string // lower-cased word tokens
	stems     []string
	stemSet   map[string]bool
	sentences int
}

func analyze(text string) *analysis {
	a := &analysis{lower: strings.ToLower(text)}
	a.words = tokenize(a.lower)
	a.stems = make([]string, len(a.words))
	a.stemSet = make(map[string]bool, len(a.words))
	for i, w := range a.words {
		a.stems[i] = stem(w)
		a.stemSet[a.stems[i]] = true
	}
	a.sentences = countSentences(text)
	return a
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '-'
	})
}

// countSentences counts runs of text terminated by . ! ? or a newline.
func countSentences(text string) int {
	n := 0
	inSentence := false
	for _, r := range text {
		switch {
		case r == '.' || r == '!' || r == '?' || r == '\n':
			if inSentence {
				n++
			}
			inSentence = false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			inSentence = true
		}
	}
	if inSentence {
		n++
	}
	return n
}

// stem is a light suffix stripper, enough to match "profiled" with
// "profile" and "caches" with "cache".
func stem(w string) string {
	w = strings.Trim(w, "'-")
	if strings.HasSuffix(w, "ies") && len(w) > 4 {
		return w[:len(w)-3] + "y"
	}
	for _, suf := range []string{"ing", "ed", "es", "s"} {
		if strings.HasSuffix(w, suf) && len(w)-len(suf) >= 3 {
			w = w[:len(w)-len(suf)]
			break
		}
	}
	if len(w) > 3 && strings.HasSuffix(w, "e") {
		w = w[:len(w)-1]
	}
	return w
}

// stemEqual also accepts a doubled final consonant ("shipp" for "ship").
func stemEqual(got, want string) bool {
	if got == want {
		return true
	}
	n := len(got)
	return n == len(want)+1 && n >= 2 && strings.HasPrefix(got, want) && got[n-1] == got[n-2]
}

func (a *analysis) hasStem(want string) bool {
	if a.stemSet[want] {
		return true
	}
	for _, s := range a.stems {
		if stemEqual(s, want) {
			return true
		}
	}
	return false
}

// containsTerm reports whether term occurs as a substring or every word of
// it matches a word of the answer after stemming.
func (a *analysis) containsTerm(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return false
	}
	if strings.Contains(a.lower, term) {
		return true
	}
	parts := tokenize(term)
	if len(parts) == 0 {
		return false
	}
	for _, p := range parts {
		if !a.hasStem(stem(p)) {
			return false
		}
	}
	return true
}

// countPhrase counts whole-word occurrences of phrase.
func (a *analysis) countPhrase(phrase string) int {
	parts := tokenize(strings.ToLower(phrase))
	if len(parts) == 0 || len(parts) > len(a.words) {
		return 0
	}
	n := 0
outer:
	for i := 0; i+len(parts) <= len(a.words); i++ {
		for j, p := range parts {
			if a.words[i+j] != p {
				continue outer
			}
		}
		n++
	}
	return n
}

// distinctPhrases counts how many entries of list occur at least once.
func (a *analysis) distinctPhrases(list []string) int {
	n := 0
	for _, p := range list {
		if a.countPhrase(p) > 0 {
			n++
		}
	}
	return n
}

// totalPhrases sums the occurrences of every entry of list.
func (a *analysis) totalPhrases(list []string) int {
	n := 0
	for _, p := range list {
		n += a.countPhrase(p)
	}
	return n
}

// distinctStems counts entries of list whose stem appears in the answer.
func (a *analysis) distinctStems(list []string) int {
	seen := make(map[string]bool, len(list))
	n := 0
	for _, w := range list {
		s := stem(strings.ToLower(w))
		if seen[s] {
			continue
		}
		seen[s] = true
		if a.hasStem(s) {
			n++
		}
	}
	return n
}

// contentStems returns the distinct stems of the meaningful words of s.
func contentStems(s string, stop map[string]bool) []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range tokenize(strings.ToLower(s)) {
		if len(w) < 4 || stop[w] {
			continue
		}
		st := stem(w)
		if seen[st] {
			continue
		}
		seen[st] = true
		out = append(out, st)
	}
	return out
}
