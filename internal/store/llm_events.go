package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/mockprep/internal/llm"
)

// LLMEventRepo persists the audit trail of LLM calls.
type LLMEventRepo struct {
	db *sql.DB
}

var _ llm.EventRecorder = (*LLMEventRepo)(nil)

// LLMEvent is a stored llm.Event.
type LLMEvent struct {
	ID int64
	llm.Event
}

// UsageTotals sums token usage per purpose.
type UsageTotals struct {
	Purpose      string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
}

func (r *LLMEventRepo) RecordLLMEvent(ctx context.Context, ev llm.Event) error {
	ins := builder.Insert("llm_events").
		Columns("timestamp", "provider", "model", "purpose", "input_tokens",
			"output_tokens", "latency_ms", "success", "error", "request", "response").
		Values(nanos(ev.Timestamp), ev.Provider, ev.Model, ev.Purpose, ev.InputTokens,
			ev.OutputTokens, ev.LatencyMs, ev.Success, ev.Error, ev.Request, ev.Response)
	if _, err := exec(ctx, r.db, ins); err != nil {
		return fmt.Errorf("save LLM event: %w", err)
	}
	return nil
}

var llmEventColumns = []string{"id", "timestamp", "provider", "model", "purpose", "input_tokens",
	"output_tokens", "latency_ms", "success", "error", "request", "response"}

// List returns the most recent events, newest first. limit <= 0 returns
// everything.
func (r *LLMEventRepo) List(ctx context.Context, limit int) ([]LLMEvent, error) {
	sel := builder.Select(llmEventColumns...).
		From(builder.Table("llm_events")).
		OrderBy(entsql.Desc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}
	rows, err := query(ctx, r.db, sel)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var out []LLMEvent
	for rows.Next() {
		ev, err := scanLLMEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ev)
	}
	return out, rows.Err()
}

// Get returns one event. A missing id yields (nil, nil).
func (r *LLMEventRepo) Get(ctx context.Context, id int64) (*LLMEvent, error) {
	sel := builder.Select(llmEventColumns...).
		From(builder.Table("llm_events")).
		Where(entsql.EQ("id", id))
	ev, err := scanLLMEvent(queryRow(ctx, r.db, sel))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get LLM event %d: %w", id, err)
	}
	return ev, nil
}

func scanLLMEvent(row scanner) (*LLMEvent, error) {
	var (
		ev LLMEvent
		ts int64
	)
	if err := row.Scan(&ev.ID, &ts, &ev.Provider, &ev.Model, &ev.Purpose, &ev.InputTokens,
		&ev.OutputTokens, &ev.LatencyMs, &ev.Success, &ev.Error, &ev.Request, &ev.Response); err != nil {
		return nil, err
	}
	ev.Timestamp = fromNanos(ts)
	return &ev, nil
}

// Usage aggregates calls and tokens per purpose, ordered by purpose.
func (r *LLMEventRepo) Usage(ctx context.Context) ([]UsageTotals, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT purpose, COUNT(*), SUM(CASE WHEN success THEN 0 ELSE 1 END),
		       SUM(input_tokens), SUM(output_tokens)
		FROM llm_events GROUP BY purpose ORDER BY purpose`)
	if err != nil {
		return nil, fmt.Errorf("query LLM usage: %w", err)
	}
	defer rows.Close()

	var out []UsageTotals
	for rows.Next() {
		var u UsageTotals
		if err := rows.Scan(&u.Purpose, &u.Calls, &u.Failures, &u.InputTokens, &u.OutputTokens); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
