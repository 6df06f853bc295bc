package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/abhisek/mockprep/internal/evaluation"
	"github.com/abhisek/mockprep/internal/feedback"
	"github.com/abhisek/mockprep/internal/interview"
	"github.com/abhisek/mockprep/internal/question"
	"github.com/abhisek/mockprep/internal/selector"
)

var sessionColumns = []string{
	"id", "user_ref", "type", "job_role", "difficulty", "total_questions",
	"answered", "status", "hint", "started_at", "updated_at", "completed_at",
	"average_scores",
}

var answerColumns = []string{
	"id", "assignment_id", "session_id", "question_id", "ordinal", "text",
	"time_taken_ms", "relevance", "completeness", "clarity",
	"technical_accuracy", "communication", "overall", "feedback",
	"word_count", "sentiment", "degraded", "created_at",
}

// SessionStore is the SQLite interview.Store.
type SessionStore struct {
	db *sql.DB
}

var _ interview.Store = (*SessionStore)(nil)

func (s *SessionStore) CreateSession(ctx context.Context, sess *interview.Session, asgs []interview.Assignment) error {
	var hint any
	if sess.Hint != nil {
		b, err := json.Marshal(sess.Hint)
		if err != nil {
			return err
		}
		hint = string(b)
	}
	return inTx(ctx, s.db, func(tx *sql.Tx) error {
		ins := builder.Insert("sessions").
			Columns("id", "user_ref", "type", "job_role", "difficulty", "total_questions",
				"answered", "status", "hint", "started_at", "updated_at").
			Values(sess.ID, sess.UserRef, string(sess.Type), sess.JobRole, string(sess.Difficulty),
				sess.TotalQuestions, sess.Answered, string(sess.Status), hint,
				nanos(sess.StartedAt), nanos(sess.UpdatedAt))
		if _, err := exec(ctx, tx, ins); err != nil {
			return mapWriteErr(err, "insert session")
		}
		if len(asgs) == 0 {
			return nil
		}
		ins = builder.Insert("assignments").
			Columns("id", "session_id", "question_id", "ordinal", "time_limit_ms")
		for _, a := range asgs {
			ins.Values(a.ID, sess.ID, a.QuestionID, a.Ordinal, a.TimeLimit.Milliseconds())
		}
		if _, err := exec(ctx, tx, ins); err != nil {
			return mapWriteErr(err, "insert assignments")
		}
		return nil
	})
}

func (s *SessionStore) GetSession(ctx context.Context, id string) (*interview.Session, error) {
	sel := builder.Select(sessionColumns...).From(builder.Table("sessions")).Where(entsql.EQ("id", id))
	sess, err := scanSession(queryRow(ctx, s.db, sel))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, interview.ErrRecordNotFound
	}
	return sess, err
}

func (s *SessionStore) ListSessions(ctx context.Context, f interview.ListFilter) ([]interview.Session, int, error) {
	var total int
	count := builder.Select().Count().From(builder.Table("sessions")).Where(listPredicate(f))
	if err := queryRow(ctx, s.db, count).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}

	sel := builder.Select(sessionColumns...).From(builder.Table("sessions")).
		Where(listPredicate(f)).
		OrderBy(entsql.Desc("started_at"), "id")
	if f.Limit > 0 {
		sel.Limit(f.Limit)
	}
	if f.Offset > 0 {
		sel.Offset(f.Offset)
	}
	rows, err := query(ctx, s.db, sel)
	if err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []interview.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *sess)
	}
	return out, total, rows.Err()
}

// listPredicate builds a fresh predicate per statement; ent predicates
// render into their own buffer.
func listPredicate(f interview.ListFilter) *entsql.Predicate {
	preds := []*entsql.Predicate{entsql.EQ("user_ref", f.User)}
	if f.Status != "" {
		preds = append(preds, entsql.EQ("status", string(f.Status)))
	}
	if f.Type != "" {
		preds = append(preds, entsql.EQ("type", string(f.Type)))
	}
	return entsql.And(preds...)
}

func (s *SessionStore) Assignments(ctx context.Context, sessionID string) ([]interview.Assignment, error) {
	sel := builder.Select("id", "session_id", "question_id", "ordinal", "time_limit_ms").
		From(builder.Table("assignments")).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy("ordinal")
	rows, err := query(ctx, s.db, sel)
	if err != nil {
		return nil, fmt.Errorf("query assignments: %w", err)
	}
	defer rows.Close()

	var out []interview.Assignment
	for rows.Next() {
		var (
			a       interview.Assignment
			limitMs int64
		)
		if err := rows.Scan(&a.ID, &a.SessionID, &a.QuestionID, &a.Ordinal, &limitMs); err != nil {
			return nil, err
		}
		a.TimeLimit = time.Duration(limitMs) * time.Millisecond
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SessionStore) Answers(ctx context.Context, sessionID string) ([]interview.Answer, error) {
	sel := builder.Select(answerColumns...).
		From(builder.Table("answers")).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy("ordinal")
	rows, err := query(ctx, s.db, sel)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	var out []interview.Answer
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// SaveAnswer advances the counter with a compare-and-set and inserts the
// answer in the same transaction. The UNIQUE constraint on assignment_id
// catches a second answer to the same assignment.
func (s *SessionStore) SaveAnswer(ctx context.Context, a *interview.Answer, expectedAnswered int) error {
	fb, err := json.Marshal(a.Feedback)
	if err != nil {
		return err
	}
	return inTx(ctx, s.db, func(tx *sql.Tx) error {
		upd := builder.Update("sessions").
			Add("answered", 1).
			Set("updated_at", nanos(a.CreatedAt)).
			Where(entsql.And(
				entsql.EQ("id", a.SessionID),
				entsql.EQ("answered", expectedAnswered),
				entsql.EQ("status", string(interview.StatusInProgress)),
			))
		if err := casExec(ctx, tx, upd, a.SessionID); err != nil {
			return err
		}

		ins := builder.Insert("answers").Columns(answerColumns...).Values(
			a.ID, a.AssignmentID, a.SessionID, a.QuestionID, a.Ordinal, a.Text,
			a.TimeTaken.Milliseconds(), a.Scores.Relevance, a.Scores.Completeness,
			a.Scores.Clarity, a.Scores.TechnicalAccuracy, a.Scores.Communication,
			a.Scores.Overall, string(fb), a.WordCount, string(a.Sentiment),
			a.Degraded, nanos(a.CreatedAt),
		)
		if _, err := exec(ctx, tx, ins); err != nil {
			return mapWriteErr(err, "insert answer")
		}
		return nil
	})
}

func (s *SessionStore) CompleteSession(ctx context.Context, id string, at time.Time, avg evaluation.Scores, fb *feedback.SessionFeedback) error {
	avgJSON, err := json.Marshal(avg)
	if err != nil {
		return err
	}
	report, err := json.Marshal(fb)
	if err != nil {
		return err
	}
	return inTx(ctx, s.db, func(tx *sql.Tx) error {
		upd := builder.Update("sessions").
			Set("status", string(interview.StatusCompleted)).
			Set("completed_at", nanos(at)).
			Set("updated_at", nanos(at)).
			Set("average_scores", string(avgJSON)).
			Where(inProgress(id))
		if err := casExec(ctx, tx, upd, id); err != nil {
			return err
		}
		ins := builder.Insert("session_feedback").
			Columns("session_id", "report", "created_at").
			Values(id, string(report), nanos(at))
		if _, err := exec(ctx, tx, ins); err != nil {
			return mapWriteErr(err, "insert feedback")
		}
		return nil
	})
}

func (s *SessionStore) AbandonSession(ctx context.Context, id string, at time.Time) error {
	return inTx(ctx, s.db, func(tx *sql.Tx) error {
		upd := builder.Update("sessions").
			Set("status", string(interview.StatusAbandoned)).
			Set("updated_at", nanos(at)).
			Where(inProgress(id))
		return casExec(ctx, tx, upd, id)
	})
}

func (s *SessionStore) Feedback(ctx context.Context, sessionID string) (*feedback.SessionFeedback, error) {
	var report string
	sel := builder.Select("report").From(builder.Table("session_feedback")).Where(entsql.EQ("session_id", sessionID))
	err := queryRow(ctx, s.db, sel).Scan(&report)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, interview.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	var fb feedback.SessionFeedback
	if err := json.Unmarshal([]byte(report), &fb); err != nil {
		return nil, fmt.Errorf("decode feedback: %w", err)
	}
	return &fb, nil
}

// DeleteSession removes children explicitly so the result does not depend
// on the connection having foreign_keys enabled.
func (s *SessionStore) DeleteSession(ctx context.Context, id string) error {
	return inTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, table := range []string{"session_feedback", "answers", "assignments"} {
			if _, err := exec(ctx, tx, builder.Delete(table).Where(entsql.EQ("session_id", id))); err != nil {
				return fmt.Errorf("delete %s: %w", table, err)
			}
		}
		res, err := exec(ctx, tx, builder.Delete("sessions").Where(entsql.EQ("id", id)))
		if err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return interview.ErrRecordNotFound
		}
		return nil
	})
}

func inProgress(id string) *entsql.Predicate {
	return entsql.And(
		entsql.EQ("id", id),
		entsql.EQ("status", string(interview.StatusInProgress)),
	)
}

// casExec runs a guarded update. No affected rows means the session is
// missing or its guard no longer holds.
func casExec(ctx context.Context, tx *sql.Tx, upd builderQuery, id string) error {
	res, err := exec(ctx, tx, upd)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var found string
	err = queryRow(ctx, tx, builder.Select("id").From(builder.Table("sessions")).Where(entsql.EQ("id", id))).Scan(&found)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return interview.ErrRecordNotFound
	case err != nil:
		return err
	}
	return interview.ErrConflict
}

// mapWriteErr turns key violations into interview.ErrConflict and foreign
// key violations into interview.ErrRecordNotFound.
func mapWriteErr(err error, op string) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch code := se.Code(); {
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%s: %w", op, interview.ErrConflict)
		case code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%s: %w", op, interview.ErrRecordNotFound)
		case code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE"):
			// Connection without extended result codes.
			return fmt.Errorf("%s: %w", op, interview.ErrConflict)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func scanSession(row scanner) (*interview.Session, error) {
	var (
		sess              interview.Session
		typ, diff, status string
		hint, avg         sql.NullString
		started, updated  int64
		completed         sql.NullInt64
	)
	err := row.Scan(&sess.ID, &sess.UserRef, &typ, &sess.JobRole, &diff, &sess.TotalQuestions,
		&sess.Answered, &status, &hint, &started, &updated, &completed, &avg)
	if err != nil {
		return nil, err
	}
	sess.Type = interview.SessionType(typ)
	sess.Difficulty = question.Difficulty(diff)
	sess.Status = interview.Status(status)
	sess.StartedAt = fromNanos(started)
	sess.UpdatedAt = fromNanos(updated)
	if completed.Valid {
		at := fromNanos(completed.Int64)
		sess.CompletedAt = &at
	}
	if hint.Valid {
		var h selector.Hint
		if err := json.Unmarshal([]byte(hint.String), &h); err != nil {
			return nil, fmt.Errorf("session %s hint: %w", sess.ID, err)
		}
		sess.Hint = &h
	}
	if avg.Valid {
		var sc evaluation.Scores
		if err := json.Unmarshal([]byte(avg.String), &sc); err != nil {
			return nil, fmt.Errorf("session %s average_scores: %w", sess.ID, err)
		}
		sess.AverageScores = &sc
	}
	return &sess, nil
}

func scanAnswer(row scanner) (*interview.Answer, error) {
	var (
		a                interview.Answer
		takenMs, created int64
		fb, sentiment    string
	)
	err := row.Scan(&a.ID, &a.AssignmentID, &a.SessionID, &a.QuestionID, &a.Ordinal, &a.Text,
		&takenMs, &a.Scores.Relevance, &a.Scores.Completeness, &a.Scores.Clarity,
		&a.Scores.TechnicalAccuracy, &a.Scores.Communication, &a.Scores.Overall, &fb,
		&a.WordCount, &sentiment, &a.Degraded, &created)
	if err != nil {
		return nil, err
	}
	a.TimeTaken = time.Duration(takenMs) * time.Millisecond
	a.Sentiment = evaluation.Sentiment(sentiment)
	a.CreatedAt = fromNanos(created)
	if err := json.Unmarshal([]byte(fb), &a.Feedback); err != nil {
		return nil, fmt.Errorf("answer %s feedback: %w", a.ID, err)
	}
	return &a, nil
}

func nanos(t time.Time) int64 {
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
