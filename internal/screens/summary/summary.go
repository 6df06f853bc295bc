// Package summary shows the end-of-session report.
package summary

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mockprep/internal/evaluation"
	"github.com/abhisek/mockprep/internal/feedback"
	"github.com/abhisek/mockprep/internal/interview"
	"github.com/abhisek/mockprep/internal/screen"
	"github.com/abhisek/mockprep/internal/ui/components"
	"github.com/abhisek/mockprep/internal/ui/layout"
	"github.com/abhisek/mockprep/internal/ui/theme"
)

// SummaryScreen displays a session report in a scrollable viewport.
type SummaryScreen struct {
	session  *interview.Session
	feedback *feedback.SessionFeedback
	vp       viewport.Model
	width    int
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a SummaryScreen. session may be nil.
func New(session *interview.Session, fb *feedback.SessionFeedback) *SummaryScreen {
	return &SummaryScreen{session: session, feedback: fb, vp: viewport.New()}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Feedback"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Enter", Description: "Quit"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc", "q":
			return s, tea.Quit
		}
	}
	var cmd tea.Cmd
	s.vp, cmd = s.vp.Update(msg)
	return s, cmd
}

func (s *SummaryScreen) View(width, height int) string {
	if s.feedback == nil {
		return ""
	}
	if width != s.width {
		s.width = width
		s.vp.SetContent(Render(s.session, s.feedback, width))
	}
	s.vp.SetWidth(width)
	s.vp.SetHeight(height)
	return s.vp.View()
}

// Render lays out the report for the given width. The CLI prints it too.
func Render(session *interview.Session, fb *feedback.SessionFeedback, width int) string {
	inner := min(width-8, 80)
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(layout.Center("Session complete!", width, theme.Title))
	b.WriteString("\n\n")

	overall := fb.AverageScores.Overall
	headline := fmt.Sprintf("Overall %d / 100  ·  %s", overall, fb.Tier.Label())
	b.WriteString(layout.Center(headline, width,
		lipgloss.NewStyle().Foreground(theme.ScoreColor(overall)).Bold(true)))
	b.WriteString("\n")

	if session != nil {
		info := fmt.Sprintf("%s session · %s · %d of %d answered",
			session.Type, session.Difficulty, session.Answered, session.TotalQuestions)
		if session.JobRole != "" {
			info += " · " + session.JobRole
		}
		b.WriteString(layout.Center(info, width, theme.Subtitle))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	ratings := fmt.Sprintf("Technical %s    Communication %s    Confidence %s",
		stars(fb.TechnicalRating), stars(fb.CommunicationRating), stars(fb.ConfidenceRating))
	b.WriteString(layout.Center(ratings, width, lipgloss.NewStyle().Foreground(theme.Accent)))
	b.WriteString("\n\n")

	for _, d := range evaluation.Dimensions {
		label := fmt.Sprintf("%-19s", d.Label())
		if d == fb.WeakestDimension {
			label = fmt.Sprintf("%-19s", d.Label()+" ▼")
		}
		bar := components.ScoreBar(label, fb.AverageScores.Get(d), min(inner, 60))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	section(&b, width, inner, "Strengths", fb.Strengths)
	section(&b, width, inner, "Areas to improve", fb.AreasToImprove)
	section(&b, width, inner, "Preparation tips", fb.PreparationTips)
	section(&b, width, inner, "Practice next", fb.PracticeRecommendations)

	if len(fb.Resources) > 0 {
		var res []string
		for _, r := range fb.Resources {
			line := fmt.Sprintf("%s (%s)", r.Title, r.Kind)
			if r.URL != "" {
				line += " " + r.URL
			}
			res = append(res, line)
		}
		section(&b, width, inner, "Resources", res)
	}

	if fb.Source == feedback.SourceCoach {
		b.WriteString(layout.Center("Tips written by the AI coach", width, theme.Hint))
		b.WriteString("\n")
	}
	return b.String()
}

func section(b *strings.Builder, width, inner int, title string, items []string) {
	if len(items) == 0 {
		return
	}
	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", inner))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(inner).Foreground(theme.TextDim).Bold(true).Render(title)))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n")
	for _, it := range items {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Body.Width(inner).Render("• "+it)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// stars renders a 1-5 rating.
func stars(n int) string {
	n = max(0, min(5, n))
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}
