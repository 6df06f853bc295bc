package evaluation

import "testing"

func TestStem(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"profiled", "profil"},
		{"profile", "profil"},
		{"caches", "cach"},
		{"cache", "cach"},
		{"queries", "query"},
		{"tests", "test"},
		{"testing", "test"},
		{"bus", "bus"},
		{"the", "the"},
		{"'quoted'", "quot"},
	}
	for _, tt := range tests {
		if got := stem(tt.in); got != tt.want {
			t.Errorf("stem(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStemEqualDoubledConsonant(t *testing.T) {
	if !stemEqual(stem("shipping"), stem("ship")) {
		t.Errorf("shipping should match ship (%q vs %q)", stem("shipping"), stem("ship"))
	}
	if stemEqual("shop", "ship") {
		t.Error("shop should not match ship")
	}
}

func TestContainsTerm(t *testing.T) {
	a := analyze("We added composite indexes to speed up lookups on the B-Tree.")
	tests := []struct {
		term string
		want bool
	}{
		{"lookup", true},
		{"composite index", true},
		{"lookup composite", true},
		{"b-tree", true},
		{"ADDED", true},
		{"add", true},
		{"hash index", false},
		{"", false},
		{"  ", false},
	}
	for _, tt := range tests {
		if got := a.containsTerm(tt.term); got != tt.want {
			t.Errorf("containsTerm(%q) = %v, want %v", tt.term, got, tt.want)
		}
	}
}

func TestCountPhraseWholeWords(t *testing.T) {
	a := analyze("First we planned. Then, for example, we shipped it first thing.")
	if got := a.countPhrase("first"); got != 2 {
		t.Errorf("countPhrase(first) = %d, want 2", got)
	}
	if got := a.countPhrase("for example"); got != 1 {
		t.Errorf("countPhrase(for example) = %d, want 1", got)
	}
	if got := a.countPhrase("plan"); got != 0 {
		t.Errorf("countPhrase(plan) = %d, want 0 for partial words", got)
	}
	if got := a.distinctPhrases([]string{"first", "then", "finally"}); got != 2 {
		t.Errorf("distinctPhrases = %d, want 2", got)
	}
}

func TestCountSentences(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"One sentence without a stop", 1},
		{"One. Two! Three?", 3},
		{"Wait... what?!", 2},
		{"line one\nline two", 2},
	}
	for _, tt := range tests {
		if got := countSentences(tt.in); got != tt.want {
			t.Errorf("countSentences(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
