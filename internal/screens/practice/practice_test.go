package practice

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mockprep/internal/evaluation"
	"github.com/abhisek/mockprep/internal/feedback"
	"github.com/abhisek/mockprep/internal/interview"
	"github.com/abhisek/mockprep/internal/question"
	"github.com/abhisek/mockprep/internal/router"
	"github.com/abhisek/mockprep/internal/screen"
	"github.com/abhisek/mockprep/internal/screens/summary"
)

// fakeEngine implements Engine for testing.
type fakeEngine struct {
	started   *interview.Started
	startErr  error
	submitted []interview.SubmitRequest
	next      *interview.Submission
	submitErr error
	completed []string
	abandoned []string
	report    *feedback.SessionFeedback
	prompt    *interview.Prompt
	asked     int
}

func (f *fakeEngine) NextQuestion(context.Context, string, string) (*interview.Prompt, error) {
	f.asked++
	return f.prompt, nil
}

func (f *fakeEngine) StartSession(context.Context, interview.StartRequest) (*interview.Started, error) {
	return f.started, f.startErr
}

func (f *fakeEngine) SubmitAnswer(_ context.Context, req interview.SubmitRequest) (*interview.Submission, error) {
	f.submitted = append(f.submitted, req)
	return f.next, f.submitErr
}

func (f *fakeEngine) CompleteSession(_ context.Context, id, _ string) (*feedback.SessionFeedback, error) {
	f.completed = append(f.completed, id)
	return f.report, nil
}

func (f *fakeEngine) AbandonSession(_ context.Context, id, _ string) (*interview.Session, error) {
	f.abandoned = append(f.abandoned, id)
	return &interview.Session{ID: id, Status: interview.StatusAbandoned}, nil
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func ctrlS() tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl}
}

func testPrompt(ordinal int) *interview.Prompt {
	return &interview.Prompt{
		SessionID: "sess-1",
		Assignment: interview.Assignment{
			ID: "asg-" + string(rune('0'+ordinal)), SessionID: "sess-1",
			QuestionID: "q1", Ordinal: ordinal, TimeLimit: 4 * time.Minute,
		},
		Question: question.Question{
			ID: "q1", Text: "Tell me about a time you resolved a conflict.",
			Type: question.TypeBehavioral, Difficulty: question.DifficultyMid,
		},
		Ordinal: ordinal,
		Total:   2,
	}
}

// fakeClock advances only when told to.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time           { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func startedScreen(t *testing.T, eng *fakeEngine) (*Screen, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	eng.started = &interview.Started{
		Session: &interview.Session{ID: "sess-1", UserRef: "u1", TotalQuestions: 2, Status: interview.StatusInProgress},
		First:   testPrompt(1),
	}
	s := New(eng, interview.StartRequest{User: "u1", Type: interview.SessionBehavioral, Difficulty: question.DifficultyMid},
		WithClock(clk.Now), WithMaxChars(500))

	msg := s.Init()()
	scr, cmd := s.Update(msg)
	if cmd == nil {
		t.Fatal("expected the clock to start after the session starts")
	}
	return scr.(*Screen), clk
}

func typeText(s *Screen, text string) {
	for _, r := range text {
		s.Update(keyPress(r))
	}
}

func TestScreen_StartShowsFirstQuestion(t *testing.T) {
	s, _ := startedScreen(t, &fakeEngine{})
	if s.phase != phaseAnswering {
		t.Fatalf("phase = %v, want answering", s.phase)
	}
	if s.Title() != "Question 1 of 2" {
		t.Errorf("Title = %q", s.Title())
	}
	if !strings.Contains(s.View(100, 40), "resolved a conflict") {
		t.Error("question text not rendered")
	}
}

func TestScreen_StartError(t *testing.T) {
	eng := &fakeEngine{startErr: errors.New("pool exhausted")}
	s := New(eng, interview.StartRequest{User: "u1"})
	scr, _ := s.Update(s.Init()())
	ss := scr.(*Screen)
	if !strings.Contains(ss.View(80, 24), "pool exhausted") {
		t.Error("start error not rendered")
	}
	if _, cmd := ss.Update(keyPress('x')); cmd == nil {
		t.Error("expected quit after error")
	}
}

func TestScreen_StatusShowsClock(t *testing.T) {
	s, clk := startedScreen(t, &fakeEngine{})
	clk.Advance(75 * time.Second)
	if got := s.Status(); got != "1:15 / 4:00" {
		t.Errorf("Status = %q, want %q", got, "1:15 / 4:00")
	}
}

func TestScreen_BlankSubmitIsRejectedLocally(t *testing.T) {
	eng := &fakeEngine{}
	s, _ := startedScreen(t, eng)

	if _, cmd := s.Update(ctrlS()); cmd != nil {
		t.Error("blank answer should not be submitted")
	}
	if s.notice == "" {
		t.Error("expected a notice for a blank answer")
	}
	if len(eng.submitted) != 0 {
		t.Errorf("submitted %d answers, want 0", len(eng.submitted))
	}
}

func TestScreen_SubmitReviewAndAdvance(t *testing.T) {
	eng := &fakeEngine{}
	s, clk := startedScreen(t, eng)
	typeText(s, "I listened first.")
	clk.Advance(90 * time.Second)

	eng.next = &interview.Submission{
		Answer: &interview.Answer{
			ID: "ans-1", Ordinal: 1,
			Scores:   evaluation.Scores{Relevance: 70, Completeness: 60, Clarity: 80, TechnicalAccuracy: 50, Communication: 75, Overall: 67},
			Feedback: evaluation.Feedback{Strengths: []string{"Clear structure"}, Narrative: "A solid start."},
		},
		Session: &interview.Session{ID: "sess-1", TotalQuestions: 2, Answered: 1, Status: interview.StatusInProgress},
		HasMore: true,
		Next:    testPrompt(2),
	}

	_, cmd := s.Update(ctrlS())
	if cmd == nil {
		t.Fatal("expected a submit command")
	}
	if s.phase != phaseScoring {
		t.Errorf("phase = %v, want scoring", s.phase)
	}
	s.Update(cmd())

	if len(eng.submitted) != 1 {
		t.Fatalf("submitted %d answers, want 1", len(eng.submitted))
	}
	req := eng.submitted[0]
	if req.Text != "I listened first." || req.AssignmentID != "asg-1" || req.User != "u1" {
		t.Errorf("submit request = %+v", req)
	}
	if req.TimeTaken != 90*time.Second {
		t.Errorf("TimeTaken = %v, want 90s", req.TimeTaken)
	}

	if s.phase != phaseReviewing {
		t.Fatalf("phase = %v, want reviewing", s.phase)
	}
	view := s.View(100, 60)
	for _, want := range []string{"67 / 100", "Clear structure", "A solid start."} {
		if !strings.Contains(view, want) {
			t.Errorf("review missing %q", want)
		}
	}

	s.Update(specialKey(tea.KeyEnter))
	if s.phase != phaseAnswering || s.prompt.Ordinal != 2 {
		t.Errorf("after continue: phase %v ordinal %d, want answering/2", s.phase, s.prompt.Ordinal)
	}
	if s.box.Value() != "" {
		t.Error("answer box should be cleared for the next question")
	}
	if s.Status() != "0:00 / 4:00" {
		t.Errorf("clock not restarted: %q", s.Status())
	}
}

func TestScreen_LastAnswerShowsSummary(t *testing.T) {
	eng := &fakeEngine{}
	s, _ := startedScreen(t, eng)
	typeText(s, "Done.")

	eng.next = &interview.Submission{
		Answer:   &interview.Answer{ID: "ans-1", Ordinal: 1},
		Session:  &interview.Session{ID: "sess-1", Status: interview.StatusCompleted},
		Feedback: &feedback.SessionFeedback{SessionID: "sess-1"},
	}
	_, cmd := s.Update(ctrlS())
	s.Update(cmd())

	_, cmd = s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected navigation to the summary")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	if _, ok := msg.Screen.(*summary.SummaryScreen); !ok {
		t.Errorf("replacement screen is %T, want *summary.SummaryScreen", msg.Screen)
	}
}

func TestScreen_FetchesNextQuestionWhenSubmissionHasNone(t *testing.T) {
	eng := &fakeEngine{prompt: testPrompt(2)}
	s, _ := startedScreen(t, eng)
	typeText(s, "I listened first.")

	eng.next = &interview.Submission{
		Answer:  &interview.Answer{ID: "ans-1", Ordinal: 1},
		Session: &interview.Session{ID: "sess-1", TotalQuestions: 2, Answered: 1, Status: interview.StatusInProgress},
		HasMore: true,
	}
	_, cmd := s.Update(ctrlS())
	s.Update(cmd())

	_, cmd = s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a command fetching the next question")
	}
	s.Update(cmd())
	if eng.asked != 1 {
		t.Errorf("NextQuestion called %d times, want 1", eng.asked)
	}
	if s.phase != phaseAnswering || s.prompt.Ordinal != 2 {
		t.Errorf("phase %v ordinal %d, want answering/2", s.phase, s.prompt.Ordinal)
	}
}

func TestScreen_CompletesWhenLastSubmissionHasNoReport(t *testing.T) {
	eng := &fakeEngine{report: &feedback.SessionFeedback{SessionID: "sess-1"}}
	s, _ := startedScreen(t, eng)
	typeText(s, "Done.")

	eng.next = &interview.Submission{
		Answer:  &interview.Answer{ID: "ans-1", Ordinal: 1},
		Session: &interview.Session{ID: "sess-1", TotalQuestions: 2, Answered: 2, Status: interview.StatusInProgress},
	}
	_, cmd := s.Update(ctrlS())
	s.Update(cmd())

	_, cmd = s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a completion command")
	}
	_, cmd = s.Update(cmd())
	if len(eng.completed) != 1 || eng.completed[0] != "sess-1" {
		t.Errorf("completed = %v, want [sess-1]", eng.completed)
	}
	if cmd == nil {
		t.Fatal("expected navigation to the summary")
	}
	if _, ok := cmd().(router.ReplaceScreenMsg); !ok {
		t.Errorf("expected ReplaceScreenMsg, got %T", cmd())
	}
}

func TestScreen_ValidationErrorKeepsAnswering(t *testing.T) {
	eng := &fakeEngine{submitErr: &interview.ValidationError{Field: "text", Reason: "is too long"}}
	s, _ := startedScreen(t, eng)
	typeText(s, "words")

	_, cmd := s.Update(ctrlS())
	s.Update(cmd())

	if s.phase != phaseAnswering {
		t.Errorf("phase = %v, want answering", s.phase)
	}
	if !strings.Contains(s.notice, "too long") {
		t.Errorf("notice = %q", s.notice)
	}
	if s.errMsg != "" {
		t.Errorf("validation error should not be fatal: %q", s.errMsg)
	}
}

func TestScreen_ConfirmDismiss(t *testing.T) {
	s, _ := startedScreen(t, &fakeEngine{})

	var scr screen.Screen = s
	scr, _ = scr.Update(specialKey(tea.KeyEscape))
	if !scr.(*Screen).confirming {
		t.Fatal("expected the end-session dialog")
	}
	scr, _ = scr.Update(keyPress('n'))
	if scr.(*Screen).confirming {
		t.Error("expected the dialog to be dismissed")
	}
}

func TestScreen_FinishNeedsAnAnswer(t *testing.T) {
	eng := &fakeEngine{}
	s, _ := startedScreen(t, eng)

	s.Update(specialKey(tea.KeyEscape))
	if _, cmd := s.Update(keyPress('f')); cmd != nil {
		t.Error("finishing with no answers should do nothing")
	}
	for _, h := range s.KeyHints() {
		if h.Key == "F" {
			t.Error("finish hint shown with no answers")
		}
	}
}

func TestScreen_FinishEarly(t *testing.T) {
	eng := &fakeEngine{report: &feedback.SessionFeedback{SessionID: "sess-1"}}
	s, _ := startedScreen(t, eng)
	s.session.Answered = 1

	s.Update(specialKey(tea.KeyEscape))
	_, cmd := s.Update(keyPress('f'))
	if cmd == nil {
		t.Fatal("expected a complete command")
	}
	_, cmd = s.Update(cmd())
	if len(eng.completed) != 1 || eng.completed[0] != "sess-1" {
		t.Errorf("completed = %v", eng.completed)
	}
	if cmd == nil {
		t.Fatal("expected navigation to the summary")
	}
	if _, ok := cmd().(router.ReplaceScreenMsg); !ok {
		t.Error("expected ReplaceScreenMsg")
	}
}

func TestScreen_Abandon(t *testing.T) {
	eng := &fakeEngine{}
	s, _ := startedScreen(t, eng)

	s.Update(specialKey(tea.KeyEscape))
	_, cmd := s.Update(keyPress('a'))
	if cmd == nil {
		t.Fatal("expected an abandon command")
	}
	_, cmd = s.Update(cmd())
	if len(eng.abandoned) != 1 {
		t.Errorf("abandoned = %v", eng.abandoned)
	}
	if cmd == nil {
		t.Error("expected quit after abandoning")
	}
}

func TestClock(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{-time.Second, "0:00"},
		{59 * time.Second, "0:59"},
		{5*time.Minute + 3*time.Second, "5:03"},
	}
	for _, tt := range tests {
		if got := clock(tt.d); got != tt.want {
			t.Errorf("clock(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
