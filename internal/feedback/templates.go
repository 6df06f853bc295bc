package feedback

import (
	"fmt"

	"github.com/abhisek/mockprep/internal/evaluation"
)

var resources = map[evaluation.Dimension][]Resource{
	evaluation.Relevance: {
		{Title: "Tech Interview Handbook: answering interview questions", Kind: "guide", URL: "https://www.techinterviewhandbook.org/"},
		{Title: "Re-read the job description and list the concepts it names", Kind: "exercise"},
	},
	evaluation.Completeness: {
		{Title: "The STAR method (situation, task, action, result)", Kind: "framework"},
		{Title: "Cracking the Coding Interview, chapter on behavioral questions", Kind: "book"},
	},
	evaluation.Clarity: {
		{Title: "The Pyramid Principle by Barbara Minto", Kind: "book"},
		{Title: "Record yourself answering and transcribe the first minute", Kind: "exercise"},
	},
	evaluation.TechnicalAccuracy: {
		{Title: "The System Design Primer", Kind: "guide", URL: "https://github.com/donnemartin/system-design-primer"},
		{Title: "Designing Data-Intensive Applications by Martin Kleppmann", Kind: "book"},
	},
	evaluation.Communication: {
		{Title: "Crucial Conversations by Patterson, Grenny, McMillan and Switzler", Kind: "book"},
		{Title: "Practice answers out loud with a peer and ask for delivery notes", Kind: "exercise"},
	},
}

var tips = map[evaluation.Dimension][]string{
	evaluation.Relevance: {
		"Before answering, name the two or three concepts the question is really about.",
		"Open with a one-sentence direct answer, then support it.",
		"Check at the end that every part of the question got a response.",
	},
	evaluation.Completeness: {
		"Structure stories as situation, task, action and result so no part is skipped.",
		"For technical questions cover how it works, when to use it and what it costs.",
		"Aim for a two-minute answer; very short answers leave points unmade.",
	},
	evaluation.Clarity: {
		"Keep sentences short and make one point per sentence.",
		"Signpost your structure with first, next, finally.",
		"Cut filler words by pausing instead of saying um or like.",
	},
	evaluation.TechnicalAccuracy: {
		"Name the specific mechanisms, data structures or protocols involved.",
		"Explain trade-offs with concrete numbers or failure modes where you can.",
		"Review the fundamentals of the core technologies on your resume.",
	},
	evaluation.Communication: {
		"Describe your own actions with strong verbs: built, measured, led, fixed.",
		"Replace hedges like maybe and I think with what you actually did.",
		"Close each story with the measurable result.",
	},
}

var drills = map[evaluation.Dimension]string{
	evaluation.Relevance:         "Drill: for five practice questions, write down the key terms you expect before answering.",
	evaluation.Completeness:      "Drill: answer three behavioral questions using the full STAR structure.",
	evaluation.Clarity:           "Drill: answer one question, then restate it in under sixty words.",
	evaluation.TechnicalAccuracy: "Drill: explain one core concept from your stack to a peer and have them question the details.",
	evaluation.Communication:     "Drill: rewrite one past answer in the first person with an action verb in every sentence.",
}

// ResourcesFor returns the stock resources for d.
func ResourcesFor(d evaluation.Dimension) []Resource {
	return append([]Resource(nil), resources[d]...)
}

func templateTips(d evaluation.Dimension, role string) []string {
	out := append([]string(nil), tips[d]...)
	if role != "" {
		out = append(out, fmt.Sprintf("Prepare two stories that show %s skills a %s hiring panel will ask about.", d.Label(), role))
	}
	return out
}

func templateRecommendations(in Input, weakest evaluation.Dimension) []string {
	out := []string{drills[weakest]}

	if worst := worstAnswer(in.Answers); worst != nil && worst.Scores.Overall < evaluation.GoodMin {
		out = append(out, fmt.Sprintf("Re-answer %q and aim for an overall score of at least %d.",
			worst.QuestionText, evaluation.GoodMin))
	}

	next := fmt.Sprintf("Run another %s session", in.SessionType)
	if in.JobRole != "" {
		next += " for the " + in.JobRole + " role"
	}
	out = append(out, next+" once you have worked on "+weakest.Label()+".")
	return out
}

// worstAnswer returns the answer with the lowest overall score, the first
// one on ties.
func worstAnswer(answers []Answer) *Answer {
	var worst *Answer
	for i := range answers {
		if worst == nil || answers[i].Scores.Overall < worst.Scores.Overall {
			worst = &answers[i]
		}
	}
	return worst
}
