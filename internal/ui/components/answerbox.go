package components

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mockprep/internal/ui/theme"
)

// AnswerBox wraps bubbles/textarea for free-text interview answers.
type AnswerBox struct {
	Model    textarea.Model
	MaxChars int
}

// NewAnswerBox creates a focused multi-line input. maxChars of zero means
// no limit.
func NewAnswerBox(placeholder string, maxChars int) AnswerBox {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = maxChars
	ta.SetHeight(8)
	ta.Focus()
	return AnswerBox{Model: ta, MaxChars: maxChars}
}

// Update handles messages.
func (a AnswerBox) Update(msg tea.Msg) (AnswerBox, tea.Cmd) {
	var cmd tea.Cmd
	a.Model, cmd = a.Model.Update(msg)
	return a, cmd
}

// SetSize fits the box into width x height cells.
func (a *AnswerBox) SetSize(width, height int) {
	a.Model.SetWidth(max(width, 20))
	a.Model.SetHeight(max(height, 3))
}

// Value returns the typed answer.
func (a AnswerBox) Value() string {
	return a.Model.Value()
}

// Reset clears the box for the next question.
func (a *AnswerBox) Reset() {
	a.Model.Reset()
}

// Blank reports whether nothing but whitespace has been typed.
func (a AnswerBox) Blank() bool {
	return strings.TrimSpace(a.Model.Value()) == ""
}

// View renders the box with a word and character counter underneath.
func (a AnswerBox) View() string {
	v := a.Model.Value()
	status := fmt.Sprintf("%s · %s", pluralize(WordCount(v), "word"), pluralize(utf8.RuneCountInString(v), "char"))
	if a.MaxChars > 0 {
		status += fmt.Sprintf(" / %d", a.MaxChars)
	}
	return a.Model.View() + "\n" + lipgloss.NewStyle().Foreground(theme.TextDim).Render(status)
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
