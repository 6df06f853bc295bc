package practice

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mockprep/internal/evaluation"
	"github.com/abhisek/mockprep/internal/ui/components"
	"github.com/abhisek/mockprep/internal/ui/layout"
	"github.com/abhisek/mockprep/internal/ui/theme"
)

func (s *Screen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return renderError(width, s.errMsg)
	case s.confirming:
		return s.renderConfirm(width)
	}
	switch s.phase {
	case phaseStarting:
		return renderWaiting(width, "Picking your questions...")
	case phaseScoring:
		return renderWaiting(width, "Scoring your answer...")
	case phaseClosing:
		return renderWaiting(width, "Wrapping up the session...")
	case phaseReviewing:
		return s.renderReview(width)
	}
	return s.renderQuestion(width)
}

func (s *Screen) renderQuestion(width int) string {
	p := s.prompt
	inner := min(width-8, 100)

	var b strings.Builder
	b.WriteString("\n")

	bar := components.NewProgressBar("", float64(p.Ordinal-1)/float64(p.Total), false, min(inner, 60))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	meta := fmt.Sprintf("%s · %s", p.Question.Type, p.Question.Difficulty)
	if p.Question.Category != "" {
		meta += " · " + p.Question.Category
	}
	b.WriteString(layout.Center(meta, width, theme.Subtitle))
	b.WriteString("\n\n")

	text := lipgloss.NewStyle().
		Width(inner).
		Foreground(theme.Text).
		Bold(true).
		Render(p.Question.Text)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, text))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.box.View()))

	if limit := p.Assignment.TimeLimit; limit > 0 && s.elapsed() > limit {
		b.WriteString("\n\n")
		b.WriteString(layout.Center("Time is up for this question. Wrap up and submit.", width,
			lipgloss.NewStyle().Foreground(theme.Warning)))
	}
	if s.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(layout.Center(s.notice, width, lipgloss.NewStyle().Foreground(theme.Error)))
	}
	return b.String()
}

func (s *Screen) renderReview(width int) string {
	ans := s.submission.Answer
	inner := min(width-8, 80)

	var b strings.Builder
	b.WriteString("\n")

	overall := ans.Scores.Overall
	headline := fmt.Sprintf("%d / 100  ·  %s", overall, evaluation.TierFor(overall).Label())
	b.WriteString(layout.Center(headline, width,
		lipgloss.NewStyle().Foreground(theme.ScoreColor(overall)).Bold(true)))
	b.WriteString("\n")
	if ans.Degraded {
		b.WriteString(layout.Center("This answer could not be scored in full; neutral scores were used.", width,
			lipgloss.NewStyle().Foreground(theme.Warning)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for _, d := range evaluation.Dimensions {
		label := fmt.Sprintf("%-19s", d.Label())
		bar := components.ScoreBar(label, ans.Scores.Get(d), min(inner, 60))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	fb := ans.Feedback
	if fb.Narrative != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Body.Width(inner).Render(fb.Narrative)))
		b.WriteString("\n\n")
	}
	writeSection(&b, width, inner, "Strengths", fb.Strengths, theme.Success)
	writeSection(&b, width, inner, "Weaknesses", fb.Weaknesses, theme.Error)
	writeSection(&b, width, inner, "Missing points", fb.MissingPoints, theme.Warning)
	writeSection(&b, width, inner, "Suggestions", fb.Suggestions, theme.Secondary)

	b.WriteString(layout.Center("Press Enter to continue", width, theme.Hint))
	return b.String()
}

func writeSection(b *strings.Builder, width, inner int, title string, items []string, accent color.Color) {
	if len(items) == 0 {
		return
	}
	var lines []string
	for _, it := range items {
		lines = append(lines, "• "+it)
	}
	block := lipgloss.NewStyle().Foreground(accent).Bold(true).Render(title) + "\n" +
		lipgloss.NewStyle().Width(inner).Foreground(theme.Text).Render(strings.Join(lines, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, lipgloss.NewStyle().Width(inner).Render(block)))
	b.WriteString("\n\n")
}

func (s *Screen) renderConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(layout.Center("End this session?", width,
		lipgloss.NewStyle().Foreground(theme.Text).Bold(true)))
	b.WriteString("\n\n")
	if s.session != nil && s.session.Answered > 0 {
		b.WriteString(layout.Center(fmt.Sprintf("[F] Finish now and get feedback on %d answered", s.session.Answered), width,
			lipgloss.NewStyle().Foreground(theme.Success)))
		b.WriteString("\n")
	}
	b.WriteString(layout.Center("[A] Abandon without feedback", width,
		lipgloss.NewStyle().Foreground(theme.Error)))
	b.WriteString("\n")
	b.WriteString(layout.Center("[N] No, keep going", width,
		lipgloss.NewStyle().Foreground(theme.Primary)))
	return b.String()
}

func renderWaiting(width int, msg string) string {
	return layout.Center("\n\n\n"+msg, width, lipgloss.NewStyle().Foreground(theme.TextDim))
}

func renderError(width int, errMsg string) string {
	return layout.Center(fmt.Sprintf("\n\n\nError: %s\n\nPress any key to quit.", errMsg), width,
		lipgloss.NewStyle().Foreground(theme.Error))
}
