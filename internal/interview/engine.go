package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/mockprep/internal/evaluation"
	"github.com/abhisek/mockprep/internal/feedback"
	"github.com/abhisek/mockprep/internal/logger"
	"github.com/abhisek/mockprep/internal/metrics"
	"github.com/abhisek/mockprep/internal/question"
	"github.com/abhisek/mockprep/internal/selector"
)

// Selector builds the question sequence of a new session.
type Selector interface {
	Select(ctx context.Context, req selector.Request) (*selector.Selection, error)
}

// Config bounds session shape and answer size.
type Config struct {
	DefaultCount   int
	MaxCount       int
	MaxAnswerChars int
	// TimeLimits is the per-question allowance by question type.
	TimeLimits map[question.Type]time.Duration
}

// DefaultConfig returns the stock limits.
func DefaultConfig() Config {
	return Config{
		DefaultCount:   5,
		MaxCount:       20,
		MaxAnswerChars: 8000,
		TimeLimits: map[question.Type]time.Duration{
			question.TypeTechnical:   5 * time.Minute,
			question.TypeBehavioral:  4 * time.Minute,
			question.TypeSituational: 4 * time.Minute,
		},
	}
}

// Engine runs interview sessions. It is safe for concurrent use; calls on
// the same session are serialized.
type Engine struct {
	store     Store
	questions question.Repository
	selector  Selector
	evaluator *evaluation.Evaluator
	synth     *feedback.Synthesizer

	cfg      Config
	validate *validator.Validate
	log      *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	newID    func() string

	locks keyedMutex
}

// Option configures an Engine.
type Option func(*Engine)

func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = logger.OrNop(log) }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides the random UUID generator.
func WithIDGenerator(f func() string) Option {
	return func(e *Engine) { e.newID = f }
}

// NewEngine wires an Engine. A nil synthesizer uses the template-only one.
func NewEngine(store Store, questions question.Repository, sel Selector, eval *evaluation.Evaluator, synth *feedback.Synthesizer, opts ...Option) *Engine {
	if synth == nil {
		synth = feedback.New()
	}
	e := &Engine{
		store:     store,
		questions: questions,
		selector:  sel,
		evaluator: eval,
		synth:     synth,
		cfg:       DefaultConfig(),
		validate:  newValidator(),
		log:       zap.NewNop(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// StartSession selects the questions and opens a session.
func (e *Engine) StartSession(ctx context.Context, req StartRequest) (*Started, error) {
	if err := checkStruct(e.validate, req); err != nil {
		return nil, err
	}
	count := req.Count
	if count == 0 {
		count = e.cfg.DefaultCount
	}
	if count > e.cfg.MaxCount {
		return nil, &ValidationError{Field: "count", Reason: fmt.Sprintf("must be at most %d", e.cfg.MaxCount)}
	}

	sel, err := e.selector.Select(ctx, selector.Request{
		SessionType: req.Type,
		JobRole:     strings.TrimSpace(req.JobRole),
		Difficulty:  req.Difficulty,
		Count:       count,
		Hint:        req.Hint,
	})
	if err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}

	now := e.now().UTC()
	s := &Session{
		ID:             e.newID(),
		UserRef:        req.User,
		Type:           req.Type,
		JobRole:        strings.TrimSpace(req.JobRole),
		Difficulty:     req.Difficulty,
		TotalQuestions: len(sel.Questions),
		Status:         StatusInProgress,
		Hint:           req.Hint,
		StartedAt:      now,
		UpdatedAt:      now,
	}
	assignments := make([]Assignment, len(sel.Questions))
	for i, q := range sel.Questions {
		assignments[i] = Assignment{
			ID:         e.newID(),
			SessionID:  s.ID,
			QuestionID: q.ID,
			Ordinal:    i + 1,
			TimeLimit:  e.cfg.TimeLimits[q.Type],
		}
	}

	if err := e.store.CreateSession(ctx, s, assignments); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	e.metrics.SessionStarted(string(s.Type))
	e.log.Info("session started", append(logger.SessionFields(s.ID, s.UserRef),
		zap.String("type", string(s.Type)),
		zap.String("difficulty", string(s.Difficulty)),
		zap.Int("questions", s.TotalQuestions),
		zap.Stringer("selection_level", sel.Level),
	)...)

	return &Started{
		Session: s,
		First: &Prompt{
			SessionID:  s.ID,
			Assignment: assignments[0],
			Question:   sel.Questions[0],
			Ordinal:    1,
			Total:      s.TotalQuestions,
		},
	}, nil
}

// NextQuestion returns the first unanswered question.
func (e *Engine) NextQuestion(ctx context.Context, sessionID, user string) (*Prompt, error) {
	s, err := e.owned(ctx, sessionID, user)
	if err != nil {
		return nil, err
	}
	if _, err := Transition(s.Status, EventAnswer); err != nil {
		return nil, stateErr(s, err)
	}
	if s.Remaining() == 0 {
		return nil, &StateError{SessionID: s.ID, Status: s.Status, Err: ErrSessionComplete}
	}

	asgs, err := e.store.Assignments(ctx, s.ID)
	if err != nil {
		return nil, fmt.Errorf("load assignments: %w", err)
	}
	return e.prompt(ctx, s, asgs, s.Answered+1)
}

func (e *Engine) prompt(ctx context.Context, s *Session, asgs []Assignment, ordinal int) (*Prompt, error) {
	for _, a := range asgs {
		if a.Ordinal != ordinal {
			continue
		}
		q, err := e.questions.Get(ctx, a.QuestionID)
		if err != nil {
			if errors.Is(err, question.ErrNotFound) {
				return nil, &NotFoundError{Kind: "question", ID: a.QuestionID}
			}
			return nil, fmt.Errorf("load question: %w", err)
		}
		return &Prompt{SessionID: s.ID, Assignment: a, Question: *q, Ordinal: ordinal, Total: s.TotalQuestions}, nil
	}
	return nil, &NotFoundError{Kind: "assignment", ID: fmt.Sprintf("%s#%d", s.ID, ordinal)}
}

// SubmitAnswer scores and records one answer. The answer that fills the
// last slot also completes the session.
func (e *Engine) SubmitAnswer(ctx context.Context, req SubmitRequest) (*Submission, error) {
	if err := checkStruct(e.validate, req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, &ValidationError{Field: "text", Reason: "is required"}
	}
	if n := utf8.RuneCountInString(req.Text); e.cfg.MaxAnswerChars > 0 && n > e.cfg.MaxAnswerChars {
		return nil, &ValidationError{Field: "text", Reason: fmt.Sprintf("is %d characters, limit is %d", n, e.cfg.MaxAnswerChars)}
	}

	unlock := e.locks.Lock(req.SessionID)
	defer unlock()

	s, err := e.owned(ctx, req.SessionID, req.User)
	if err != nil {
		return nil, err
	}
	if _, err := Transition(s.Status, EventAnswer); err != nil {
		return nil, stateErr(s, err)
	}

	asgs, err := e.store.Assignments(ctx, s.ID)
	if err != nil {
		return nil, fmt.Errorf("load assignments: %w", err)
	}
	var asg *Assignment
	for i := range asgs {
		if asgs[i].ID == req.AssignmentID {
			asg = &asgs[i]
			break
		}
	}
	if asg == nil {
		return nil, &NotFoundError{Kind: "assignment", ID: req.AssignmentID}
	}
	switch {
	case asg.Ordinal <= s.Answered:
		return nil, &StateError{SessionID: s.ID, Status: s.Status, Event: EventAnswer, Err: ErrAlreadyAnswered}
	case asg.Ordinal != s.Answered+1:
		return nil, &StateError{SessionID: s.ID, Status: s.Status, Event: EventAnswer, Err: ErrOutOfOrder}
	}

	q, err := e.questions.Get(ctx, asg.QuestionID)
	if err != nil {
		if errors.Is(err, question.ErrNotFound) {
			return nil, &NotFoundError{Kind: "question", ID: asg.QuestionID}
		}
		return nil, fmt.Errorf("load question: %w", err)
	}

	res := e.evaluator.Evaluate(evaluation.Input{
		Question:  q,
		Text:      req.Text,
		TimeTaken: req.TimeTaken,
		TimeLimit: asg.TimeLimit,
	})
	ans := &Answer{
		ID:           e.newID(),
		AssignmentID: asg.ID,
		SessionID:    s.ID,
		QuestionID:   q.ID,
		Ordinal:      asg.Ordinal,
		Text:         req.Text,
		TimeTaken:    req.TimeTaken,
		Scores:       res.Scores,
		Feedback:     res.Feedback,
		WordCount:    res.WordCount,
		Sentiment:    res.Sentiment,
		Degraded:     res.Degraded,
		CreatedAt:    e.now().UTC(),
	}

	if err := e.store.SaveAnswer(ctx, ans, s.Answered); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, e.reloadState(ctx, s.ID, EventAnswer)
		}
		return nil, fmt.Errorf("save answer: %w", err)
	}
	s.Answered++
	s.UpdatedAt = ans.CreatedAt

	e.metrics.AnswerScored(string(q.Type), res.Scores.Overall, res.Degraded)
	e.log.Debug("answer scored", append(logger.SessionFields(s.ID, s.UserRef),
		zap.String("question_id", q.ID),
		zap.Int("ordinal", ans.Ordinal),
		zap.Int("overall", res.Scores.Overall),
		zap.Bool("degraded", res.Degraded),
	)...)

	// The answer is committed from here on. Follow-up failures leave Next or
	// Feedback nil; NextQuestion and CompleteSession pick up from the stored state.
	sub := &Submission{Answer: ans, Session: s, HasMore: s.Remaining() > 0}
	if sub.HasMore {
		if sub.Next, err = e.prompt(ctx, s, asgs, s.Answered+1); err != nil {
			sub.Next = nil
			e.log.Warn("load next question after answer", append(logger.SessionFields(s.ID, s.UserRef),
				zap.Int("ordinal", s.Answered+1), zap.Error(err))...)
		}
		return sub, nil
	}

	if sub.Feedback, err = e.complete(ctx, s); err != nil {
		sub.Feedback = nil
		e.log.Warn("complete session after last answer", append(logger.SessionFields(s.ID, s.UserRef),
			zap.Error(err))...)
	}
	return sub, nil
}

// CompleteSession finishes a session and returns its report. Completing a
// completed session returns the stored report. A session can be completed
// early once it has at least one answer.
func (e *Engine) CompleteSession(ctx context.Context, sessionID, user string) (*feedback.SessionFeedback, error) {
	unlock := e.locks.Lock(sessionID)
	defer unlock()

	s, err := e.owned(ctx, sessionID, user)
	if err != nil {
		return nil, err
	}
	if s.Status == StatusCompleted {
		fb, err := e.store.Feedback(ctx, s.ID)
		if err != nil {
			return nil, fmt.Errorf("load feedback: %w", err)
		}
		return fb, nil
	}
	if _, err := Transition(s.Status, EventComplete); err != nil {
		return nil, stateErr(s, err)
	}
	if s.Answered == 0 {
		return nil, &StateError{SessionID: s.ID, Status: s.Status, Event: EventComplete, Err: ErrNoAnswers}
	}
	return e.complete(ctx, s)
}

// complete synthesizes the report and moves s to completed. Callers hold
// the session lock.
func (e *Engine) complete(ctx context.Context, s *Session) (*feedback.SessionFeedback, error) {
	to, err := Transition(s.Status, EventComplete)
	if err != nil {
		return nil, stateErr(s, err)
	}

	answers, err := e.store.Answers(ctx, s.ID)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	in := feedback.Input{
		SessionID:   s.ID,
		SessionType: string(s.Type),
		JobRole:     s.JobRole,
		Answers:     make([]feedback.Answer, 0, len(answers)),
	}
	for _, a := range answers {
		fa := feedback.Answer{QuestionID: a.QuestionID, QuestionText: a.QuestionID, Scores: a.Scores, Feedback: a.Feedback}
		if q, err := e.questions.Get(ctx, a.QuestionID); err == nil {
			fa.QuestionText = q.Text
			fa.QuestionType = q.Type
		}
		in.Answers = append(in.Answers, fa)
	}

	fb, err := e.synth.Synthesize(ctx, in)
	if errors.Is(err, feedback.ErrNoAnswers) {
		return nil, &StateError{SessionID: s.ID, Status: s.Status, Event: EventComplete, Err: ErrNoAnswers}
	}
	if err != nil {
		return nil, fmt.Errorf("synthesize feedback: %w", err)
	}

	at := e.now().UTC()
	if err := e.store.CompleteSession(ctx, s.ID, at, fb.AverageScores, fb); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, e.reloadState(ctx, s.ID, EventComplete)
		}
		return nil, fmt.Errorf("complete session: %w", err)
	}
	avg := fb.AverageScores
	s.Status = to
	s.CompletedAt = &at
	s.UpdatedAt = at
	s.AverageScores = &avg

	e.metrics.SessionFinished(string(to))
	e.log.Info("session completed", append(logger.SessionFields(s.ID, s.UserRef),
		zap.Int("answered", s.Answered),
		zap.Int("total", s.TotalQuestions),
		zap.Int("overall", avg.Overall),
		zap.String("tier", string(fb.Tier)),
		zap.String("feedback_source", string(fb.Source)),
	)...)
	return fb, nil
}

// AbandonSession stops an in-progress session without a report. It does not
// wait for a submission that is being scored; that submission then loses
// its compare-and-set and fails.
func (e *Engine) AbandonSession(ctx context.Context, sessionID, user string) (*Session, error) {
	s, err := e.owned(ctx, sessionID, user)
	if err != nil {
		return nil, err
	}
	to, err := Transition(s.Status, EventAbandon)
	if err != nil {
		return nil, stateErr(s, err)
	}

	at := e.now().UTC()
	if err := e.store.AbandonSession(ctx, s.ID, at); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, e.reloadState(ctx, s.ID, EventAbandon)
		}
		return nil, fmt.Errorf("abandon session: %w", err)
	}
	s.Status = to
	s.UpdatedAt = at

	e.metrics.SessionFinished(string(to))
	e.log.Info("session abandoned", append(logger.SessionFields(s.ID, s.UserRef),
		zap.Int("answered", s.Answered),
		zap.Int("total", s.TotalQuestions),
	)...)
	return s, nil
}

// ListSessions pages through a user's sessions.
func (e *Engine) ListSessions(ctx context.Context, req ListRequest) (*SessionPage, error) {
	if err := checkStruct(e.validate, req); err != nil {
		return nil, err
	}
	limit := req.Limit
	if limit == 0 {
		limit = DefaultPageSize
	}
	sessions, total, err := e.store.ListSessions(ctx, ListFilter{
		User:   req.User,
		Status: req.Status,
		Type:   req.Type,
		Limit:  limit,
		Offset: req.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if sessions == nil {
		sessions = []Session{}
	}
	return &SessionPage{Sessions: sessions, Total: total, Limit: limit, Offset: req.Offset}, nil
}

// SessionDetail returns a session with its questions, answers and report.
func (e *Engine) SessionDetail(ctx context.Context, sessionID, user string) (*Detail, error) {
	s, err := e.owned(ctx, sessionID, user)
	if err != nil {
		return nil, err
	}
	asgs, err := e.store.Assignments(ctx, s.ID)
	if err != nil {
		return nil, fmt.Errorf("load assignments: %w", err)
	}
	answers, err := e.store.Answers(ctx, s.ID)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	byAssignment := make(map[string]*Answer, len(answers))
	for i := range answers {
		byAssignment[answers[i].AssignmentID] = &answers[i]
	}

	d := &Detail{Session: s, Items: make([]DetailItem, len(asgs))}
	for i, a := range asgs {
		d.Items[i] = DetailItem{Assignment: a, Answer: byAssignment[a.ID]}
		if q, err := e.questions.Get(ctx, a.QuestionID); err == nil {
			d.Items[i].Question = q
		}
	}
	if s.Status == StatusCompleted {
		if d.Feedback, err = e.store.Feedback(ctx, s.ID); err != nil && !errors.Is(err, ErrRecordNotFound) {
			return nil, fmt.Errorf("load feedback: %w", err)
		}
	}
	return d, nil
}

// DeleteSession removes a session in any status.
func (e *Engine) DeleteSession(ctx context.Context, sessionID, user string) error {
	unlock := e.locks.Lock(sessionID)
	defer unlock()

	s, err := e.owned(ctx, sessionID, user)
	if err != nil {
		return err
	}
	if err := e.store.DeleteSession(ctx, s.ID); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return &NotFoundError{Kind: "session", ID: s.ID}
		}
		return fmt.Errorf("delete session: %w", err)
	}
	e.log.Info("session deleted", logger.SessionFields(s.ID, s.UserRef)...)
	return nil
}

// owned loads a session and checks it belongs to user.
func (e *Engine) owned(ctx context.Context, sessionID, user string) (*Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, &ValidationError{Field: "session_id", Reason: "is required"}
	}
	s, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, &NotFoundError{Kind: "session", ID: sessionID}
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if s.UserRef != user {
		return nil, &StateError{SessionID: s.ID, Status: s.Status, Err: ErrWrongOwner}
	}
	return s, nil
}

// reloadState explains a lost compare-and-set using the current status. A
// session still in progress lost an answer race.
func (e *Engine) reloadState(ctx context.Context, sessionID string, ev Event) error {
	s, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("reload session: %w", err)
	}
	if _, err := Transition(s.Status, ev); err != nil {
		return stateErr(s, err)
	}
	cause := ErrInvalidTransition
	if ev == EventAnswer {
		cause = ErrAlreadyAnswered
	}
	return &StateError{SessionID: s.ID, Status: s.Status, Event: ev, Err: cause}
}

func stateErr(s *Session, err error) error {
	var se *StateError
	if errors.As(err, &se) {
		se.SessionID = s.ID
		return se
	}
	return err
}
