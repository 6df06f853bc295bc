package evaluation

import (
	"fmt"
	"strings"
	"time"
)

var strengths = map[Dimension]string{
	Relevance:         "Stayed on topic and covered the key points",
	Completeness:      "Thorough answer that covered every area of the question",
	Clarity:           "Clear, well-structured explanation",
	TechnicalAccuracy: "Technically accurate use of core concepts",
	Communication:     "Confident delivery with concrete actions",
}

var weaknesses = map[Dimension]string{
	Relevance:         "Missed several key points the question was looking for",
	Completeness:      "Answer left parts of the question unaddressed",
	Clarity:           "Explanation was hard to follow",
	TechnicalAccuracy: "Technical details were thin or missing",
	Communication:     "Delivery sounded tentative or abstract",
}

var suggestions = map[Dimension]string{
	Relevance:         "Restate the question in your first sentence and make sure each key concept it asks about appears in your answer.",
	Completeness:      "Expand your answer: cover the what, the how and the trade-offs, and close with a short summary.",
	Clarity:           "Use shorter sentences and signpost your structure with words like first, next and finally.",
	TechnicalAccuracy: "Name the specific mechanisms involved and explain how they work, not only what they achieve.",
	Communication:     "Describe what you did with action verbs in the first person, and drop hedges like maybe or I think.",
}

// SuggestionFor returns the stock advice for improving d.
func SuggestionFor(d Dimension) string {
	return suggestions[d]
}

func (e *Evaluator) feedback(in Input, s Scores, wordCount int, missing []string) Feedback {
	fb := Feedback{
		Strengths:     []string{},
		Weaknesses:    []string{},
		MissingPoints: nonNil(missing),
		Suggestions:   []string{},
	}

	if wordCount < e.cfg.MinWords.For(in.Question.Difficulty) {
		fb.Weaknesses = append(fb.Weaknesses, WeaknessTooBrief)
	}
	for _, d := range Dimensions {
		switch v := s.Get(d); {
		case v >= e.cfg.StrengthMin:
			fb.Strengths = append(fb.Strengths, strengths[d])
		case v < e.cfg.WeaknessMax:
			fb.Weaknesses = append(fb.Weaknesses, weaknesses[d])
		}
	}

	low := s.Lowest()
	fb.Suggestions = append(fb.Suggestions, suggestions[low])
	if len(missing) > 0 {
		fb.Suggestions = append(fb.Suggestions, "Work these points into your answer: "+strings.Join(missing, ", ")+".")
	}
	if in.TimeLimit > 0 && in.TimeTaken > in.TimeLimit {
		fb.Suggestions = append(fb.Suggestions, fmt.Sprintf(
			"You took %s against a %s allowance. Practice giving the core answer first and adding detail after.",
			in.TimeTaken.Round(time.Second), in.TimeLimit))
	}

	fb.Narrative = narrative(s, low)
	return fb
}

func narrative(s Scores, low Dimension) string {
	tier := TierFor(s.Overall)
	high := s.Highest()

	var b strings.Builder
	fmt.Fprintf(&b, "Overall this answer rates as %s (%d/100). ", tier.Label(), s.Overall)
	if high != low {
		fmt.Fprintf(&b, "Your strongest area was %s at %d. ", high.Label(), s.Get(high))
	}
	switch tier {
	case TierExcellent:
		fmt.Fprintf(&b, "Keep it up; %s is the only place with room to polish.", low.Label())
	case TierGood:
		fmt.Fprintf(&b, "Improving %s (%d) would lift it into the excellent band.", low.Label(), s.Get(low))
	default:
		fmt.Fprintf(&b, "Focus next on %s, which scored %d.", low.Label(), s.Get(low))
	}
	return b.String()
}
