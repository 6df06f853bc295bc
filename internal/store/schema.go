package store

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations are applied in order; PRAGMA user_version records how many
// have run. Append only.
var migrations = []string{
	`CREATE TABLE questions (
		id             TEXT PRIMARY KEY,
		text           TEXT NOT NULL,
		type           TEXT NOT NULL,
		difficulty     TEXT NOT NULL,
		category       TEXT NOT NULL DEFAULT '',
		required_skills TEXT NOT NULL DEFAULT '[]',
		job_roles      TEXT NOT NULL DEFAULT '[]',
		key_points     TEXT NOT NULL DEFAULT '{}',
		sample_answer  TEXT NOT NULL DEFAULT '',
		usage_count    INTEGER NOT NULL DEFAULT 0,
		source         TEXT NOT NULL DEFAULT 'bank',
		created_at     INTEGER NOT NULL
	);
	CREATE INDEX questions_type_difficulty ON questions (type, difficulty);

	CREATE TABLE metadata (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE sessions (
		id              TEXT PRIMARY KEY,
		user_ref        TEXT NOT NULL,
		type            TEXT NOT NULL,
		job_role        TEXT NOT NULL DEFAULT '',
		difficulty      TEXT NOT NULL,
		total_questions INTEGER NOT NULL CHECK (total_questions > 0),
		answered        INTEGER NOT NULL DEFAULT 0,
		status          TEXT NOT NULL,
		hint            TEXT,
		started_at      INTEGER NOT NULL,
		updated_at      INTEGER NOT NULL,
		completed_at    INTEGER,
		average_scores  TEXT,
		CHECK (answered >= 0 AND answered <= total_questions)
	);
	CREATE INDEX sessions_user_started ON sessions (user_ref, started_at DESC);

	CREATE TABLE assignments (
		id            TEXT PRIMARY KEY,
		session_id    TEXT NOT NULL REFERENCES sessions (id) ON DELETE CASCADE,
		question_id   TEXT NOT NULL,
		ordinal       INTEGER NOT NULL,
		time_limit_ms INTEGER NOT NULL DEFAULT 0,
		UNIQUE (session_id, ordinal)
	);

	CREATE TABLE answers (
		id                 TEXT PRIMARY KEY,
		assignment_id      TEXT NOT NULL UNIQUE REFERENCES assignments (id) ON DELETE CASCADE,
		session_id         TEXT NOT NULL REFERENCES sessions (id) ON DELETE CASCADE,
		question_id        TEXT NOT NULL,
		ordinal            INTEGER NOT NULL,
		text               TEXT NOT NULL,
		time_taken_ms      INTEGER NOT NULL,
		relevance          INTEGER NOT NULL,
		completeness       INTEGER NOT NULL,
		clarity            INTEGER NOT NULL,
		technical_accuracy INTEGER NOT NULL,
		communication      INTEGER NOT NULL,
		overall            INTEGER NOT NULL,
		feedback           TEXT NOT NULL,
		word_count         INTEGER NOT NULL,
		sentiment          TEXT NOT NULL,
		degraded           INTEGER NOT NULL DEFAULT 0,
		created_at         INTEGER NOT NULL
	);
	CREATE INDEX answers_session ON answers (session_id, ordinal);

	CREATE TABLE session_feedback (
		session_id TEXT PRIMARY KEY REFERENCES sessions (id) ON DELETE CASCADE,
		report     TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);`,

	`CREATE TABLE llm_events (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp     INTEGER NOT NULL,
		provider      TEXT NOT NULL,
		model         TEXT NOT NULL,
		purpose       TEXT NOT NULL,
		input_tokens  INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms    INTEGER NOT NULL DEFAULT 0,
		success       INTEGER NOT NULL,
		error         TEXT NOT NULL DEFAULT '',
		request       TEXT NOT NULL DEFAULT '',
		response      TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX llm_events_timestamp ON llm_events (timestamp);`,
}

// migrate brings the schema up to date. Each step runs in its own
// transaction together with the version bump.
func migrate(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for i := version; i < len(migrations); i++ {
		err := inTx(ctx, db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
				return err
			}
			// PRAGMA does not take bind parameters.
			_, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", i+1))
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}

// SchemaVersion reports the applied migration count.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v)
	return v, err
}
