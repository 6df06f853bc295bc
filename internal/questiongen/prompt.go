package questiongen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You write questions for mock job interviews.

Rules:
- Every question must be answerable in a few minutes of speech and stand on its own.
- Match the requested question type: technical questions test knowledge of a tool or concept, behavioral questions ask about past experience, situational questions pose a hypothetical scenario.
- Match the requested seniority level.
- For each question list three to six must-mention terms. Mark domain terms with the category "technical". For behavioral and situational questions use aspect labels such as situation, action, result or tradeoff.
- Terms must be short phrases that a strong answer would literally contain.
- Do not repeat or paraphrase any question from the "already in the bank" list.`

// buildUserMessage constructs the user message for one batch.
func buildUserMessage(in Input, existing []string, maxPrior int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Question type: %s\n", in.Type)
	fmt.Fprintf(&b, "Seniority: %s\n", in.Difficulty)
	if in.Role != "" {
		fmt.Fprintf(&b, "Target role: %s\n", in.Role)
	}
	if len(in.Skills) > 0 {
		fmt.Fprintf(&b, "Focus skills: %s\n", strings.Join(in.Skills, ", "))
	}
	fmt.Fprintf(&b, "Number of questions: %d\n", in.Count)

	b.WriteString("\nAlready in the bank:\n")
	b.WriteString(buildDedup(existing, maxPrior))
	return b.String()
}

// buildDedup formats existing questions for the prompt, keeping the last
// limit entries. Returns "None" when there are none.
func buildDedup(existing []string, limit int) string {
	if len(existing) == 0 {
		return "None"
	}
	if limit > 0 && len(existing) > limit {
		existing = existing[len(existing)-limit:]
	}

	var b strings.Builder
	for i, q := range existing {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}
