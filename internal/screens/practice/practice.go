// Package practice is the TUI screen that runs one interview session.
package practice

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/mockprep/internal/feedback"
	"github.com/abhisek/mockprep/internal/interview"
	"github.com/abhisek/mockprep/internal/logger"
	"github.com/abhisek/mockprep/internal/router"
	"github.com/abhisek/mockprep/internal/screen"
	"github.com/abhisek/mockprep/internal/screens/summary"
	"github.com/abhisek/mockprep/internal/ui/components"
	"github.com/abhisek/mockprep/internal/ui/layout"
)

// Engine is the part of interview.Engine the screen drives.
type Engine interface {
	StartSession(ctx context.Context, req interview.StartRequest) (*interview.Started, error)
	NextQuestion(ctx context.Context, sessionID, user string) (*interview.Prompt, error)
	SubmitAnswer(ctx context.Context, req interview.SubmitRequest) (*interview.Submission, error)
	CompleteSession(ctx context.Context, sessionID, user string) (*feedback.SessionFeedback, error)
	AbandonSession(ctx context.Context, sessionID, user string) (*interview.Session, error)
}

type phase int

const (
	phaseStarting phase = iota
	phaseAnswering
	phaseScoring
	phaseReviewing
	phaseClosing
)

// Screen runs a session: it shows each question with a clock, collects
// the answer and shows its scores before moving on.
type Screen struct {
	engine Engine
	req    interview.StartRequest
	log    *zap.Logger
	now    func() time.Time

	phase      phase
	session    *interview.Session
	prompt     *interview.Prompt
	started    time.Time
	box        components.AnswerBox
	maxChars   int
	submission *interview.Submission
	confirming bool
	notice     string
	errMsg     string
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.StatusProvider = (*Screen)(nil)

// Option configures a Screen.
type Option func(*Screen)

func WithLogger(log *zap.Logger) Option {
	return func(s *Screen) { s.log = logger.OrNop(log) }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Screen) { s.now = now }
}

// WithMaxChars caps the answer box. It should match the engine limit.
func WithMaxChars(n int) Option {
	return func(s *Screen) { s.maxChars = n }
}

// New creates a screen that starts a session for req on Init.
func New(engine Engine, req interview.StartRequest, opts ...Option) *Screen {
	s := &Screen{
		engine: engine,
		req:    req,
		log:    zap.NewNop(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.box = components.NewAnswerBox("Type your answer...", s.maxChars)
	return s
}

func (s *Screen) Init() tea.Cmd {
	return s.startSession()
}

func (s *Screen) Title() string {
	if s.prompt == nil {
		return "Interview"
	}
	return fmt.Sprintf("Question %d of %d", s.prompt.Ordinal, s.prompt.Total)
}

// Status shows the time spent on the current question against its limit.
func (s *Screen) Status() string {
	if s.phase != phaseAnswering || s.prompt == nil {
		return ""
	}
	elapsed := s.elapsed()
	if limit := s.prompt.Assignment.TimeLimit; limit > 0 {
		return fmt.Sprintf("%s / %s", clock(elapsed), clock(limit))
	}
	return clock(elapsed)
}

func (s *Screen) KeyHints() []layout.KeyHint {
	switch {
	case s.errMsg != "":
		return []layout.KeyHint{{Key: "any key", Description: "Quit"}}
	case s.confirming:
		hints := []layout.KeyHint{{Key: "A", Description: "Abandon"}}
		if s.session != nil && s.session.Answered > 0 {
			hints = append([]layout.KeyHint{{Key: "F", Description: "Finish now"}}, hints...)
		}
		return append(hints, layout.KeyHint{Key: "N", Description: "Keep going"})
	case s.phase == phaseReviewing:
		return []layout.KeyHint{{Key: "Enter", Description: "Continue"}}
	case s.phase == phaseAnswering:
		return []layout.KeyHint{
			{Key: "Ctrl+S", Description: "Submit"},
			{Key: "Esc", Description: "End session"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.box.SetSize(min(msg.Width-8, 100), msg.Height/3)
		return s, nil

	case sessionStartedMsg:
		return s.handleStarted(msg)

	case answerScoredMsg:
		return s.handleScored(msg)

	case nextQuestionMsg:
		if msg.Err != nil {
			return s.fail(msg.Err)
		}
		s.ask(msg.Prompt)
		return s, nil

	case sessionCompletedMsg:
		return s.handleCompleted(msg)

	case sessionAbandonedMsg:
		if msg.Err != nil {
			return s.fail(msg.Err)
		}
		return s, tea.Quit

	case timerTickMsg:
		if s.phase == phaseClosing || s.errMsg != "" {
			return s, nil
		}
		return s, tickCmd()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.phase == phaseAnswering && !s.confirming {
		var cmd tea.Cmd
		s.box, cmd = s.box.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *Screen) handleStarted(msg sessionStartedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		return s.fail(msg.Err)
	}
	s.session = msg.Started.Session
	s.log.Info("practice session started", logger.SessionFields(s.session.ID, s.session.UserRef)...)
	s.ask(msg.Started.First)
	return s, tickCmd()
}

func (s *Screen) handleScored(msg answerScoredMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		var verr *interview.ValidationError
		if errors.As(msg.Err, &verr) {
			s.phase = phaseAnswering
			s.notice = verr.Error()
			return s, nil
		}
		return s.fail(msg.Err)
	}
	s.submission = msg.Submission
	s.session = msg.Submission.Session
	s.phase = phaseReviewing
	return s, nil
}

func (s *Screen) handleCompleted(msg sessionCompletedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		return s.fail(msg.Err)
	}
	return s, s.showSummary(msg.Feedback)
}

func (s *Screen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.errMsg != "" {
		return s, tea.Quit
	}
	if s.confirming {
		return s.handleConfirmKey(msg)
	}

	switch s.phase {
	case phaseAnswering:
		switch msg.String() {
		case "ctrl+s":
			return s.submit()
		case "esc":
			s.confirming = true
			return s, nil
		}
		s.notice = ""
		var cmd tea.Cmd
		s.box, cmd = s.box.Update(msg)
		return s, cmd

	case phaseReviewing:
		if msg.String() != "enter" {
			return s, nil
		}
		sub := s.submission
		s.submission = nil
		switch {
		case sub.HasMore && sub.Next != nil:
			s.ask(sub.Next)
			return s, nil
		case sub.HasMore:
			s.phase = phaseStarting
			return s, s.nextQuestion()
		case sub.Feedback == nil:
			s.phase = phaseClosing
			return s, s.completeSession()
		}
		return s, s.showSummary(sub.Feedback)
	}
	return s, nil
}

func (s *Screen) handleConfirmKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "f", "F":
		if s.session == nil || s.session.Answered == 0 {
			return s, nil
		}
		s.confirming = false
		s.phase = phaseClosing
		return s, s.completeSession()
	case "a", "A":
		s.confirming = false
		s.phase = phaseClosing
		return s, s.abandonSession()
	case "n", "N", "esc":
		s.confirming = false
	}
	return s, nil
}

func (s *Screen) submit() (screen.Screen, tea.Cmd) {
	if s.box.Blank() {
		s.notice = "Write an answer before submitting."
		return s, nil
	}
	s.phase = phaseScoring
	s.notice = ""
	req := interview.SubmitRequest{
		SessionID:    s.session.ID,
		User:         s.req.User,
		AssignmentID: s.prompt.Assignment.ID,
		Text:         s.box.Value(),
		TimeTaken:    s.elapsed(),
	}
	return s, func() tea.Msg {
		sub, err := s.engine.SubmitAnswer(context.Background(), req)
		return answerScoredMsg{Submission: sub, Err: err}
	}
}

// ask shows p and restarts the clock.
func (s *Screen) ask(p *interview.Prompt) {
	s.prompt = p
	s.started = s.now()
	s.box.Reset()
	s.notice = ""
	s.phase = phaseAnswering
}

func (s *Screen) showSummary(fb *feedback.SessionFeedback) tea.Cmd {
	s.phase = phaseClosing
	next := summary.New(s.session, fb)
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (s *Screen) fail(err error) (screen.Screen, tea.Cmd) {
	s.log.Error("practice session failed", zap.Error(err))
	s.errMsg = err.Error()
	return s, nil
}

func (s *Screen) elapsed() time.Duration {
	return s.now().Sub(s.started)
}

func (s *Screen) startSession() tea.Cmd {
	req := s.req
	return func() tea.Msg {
		started, err := s.engine.StartSession(context.Background(), req)
		return sessionStartedMsg{Started: started, Err: err}
	}
}

func (s *Screen) nextQuestion() tea.Cmd {
	id, user := s.session.ID, s.req.User
	return func() tea.Msg {
		p, err := s.engine.NextQuestion(context.Background(), id, user)
		return nextQuestionMsg{Prompt: p, Err: err}
	}
}

func (s *Screen) completeSession() tea.Cmd {
	id, user := s.session.ID, s.req.User
	return func() tea.Msg {
		fb, err := s.engine.CompleteSession(context.Background(), id, user)
		return sessionCompletedMsg{Feedback: fb, Err: err}
	}
}

func (s *Screen) abandonSession() tea.Cmd {
	id, user := s.session.ID, s.req.User
	return func() tea.Msg {
		_, err := s.engine.AbandonSession(context.Background(), id, user)
		return sessionAbandonedMsg{Err: err}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}

// clock formats d as m:ss.
func clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
