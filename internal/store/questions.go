package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/mockprep/internal/question"
)

// metaBankVersion is the metadata key holding the installed bank version.
const metaBankVersion = "bank_version"

// Question sources.
const (
	SourceBank      = "bank"
	SourceGenerated = "generated"
)

var questionColumns = []string{
	"id", "text", "type", "difficulty", "category", "required_skills",
	"job_roles", "key_points", "sample_answer", "usage_count",
}

// QuestionRepo is the SQLite question.Repository.
type QuestionRepo struct {
	db *sql.DB
}

var _ question.Repository = (*QuestionRepo)(nil)

// Find narrows by type in SQL and applies the rest of the filter in Go,
// since role and skill matching works on tokenized JSON arrays.
func (r *QuestionRepo) Find(ctx context.Context, f question.Filter) ([]question.Question, error) {
	sel := builder.Select(questionColumns...).From(builder.Table("questions")).OrderBy("id")
	if len(f.Types) > 0 {
		types := make([]any, len(f.Types))
		for i, t := range f.Types {
			types[i] = string(t)
		}
		sel.Where(entsql.In("type", types...))
	}
	rows, err := query(ctx, r.db, sel)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var out []question.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		if f.Matches(q) {
			out = append(out, *q)
		}
	}
	return out, rows.Err()
}

func (r *QuestionRepo) Get(ctx context.Context, id string) (*question.Question, error) {
	sel := builder.Select(questionColumns...).From(builder.Table("questions")).Where(entsql.EQ("id", id))
	q, err := scanQuestion(queryRow(ctx, r.db, sel))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("question %q: %w", id, question.ErrNotFound)
	}
	return q, err
}

func (r *QuestionRepo) IncrementUsage(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	upd := builder.Update("questions").Add("usage_count", 1).Where(entsql.In("id", args...))
	if _, err := exec(ctx, r.db, upd); err != nil {
		return fmt.Errorf("increment usage: %w", err)
	}
	return nil
}

// Save upserts bank questions. Usage counters survive a re-import.
func (r *QuestionRepo) Save(ctx context.Context, qs ...question.Question) error {
	return r.save(ctx, SourceBank, qs)
}

// SaveGenerated upserts questions produced by the generator.
func (r *QuestionRepo) SaveGenerated(ctx context.Context, qs ...question.Question) error {
	return r.save(ctx, SourceGenerated, qs)
}

func (r *QuestionRepo) save(ctx context.Context, source string, qs []question.Question) error {
	if len(qs) == 0 {
		return nil
	}
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		return upsertQuestions(ctx, tx, source, qs)
	})
}

func upsertQuestions(ctx context.Context, tx *sql.Tx, source string, qs []question.Question) error {
	now := time.Now().UnixNano()
	for i := range qs {
		q := &qs[i]
		if q.ID == "" {
			return errors.New("question ID is required")
		}
		skills, err := json.Marshal(nonNil(q.RequiredSkills))
		if err != nil {
			return err
		}
		roles, err := json.Marshal(nonNil(q.JobRoles))
		if err != nil {
			return err
		}
		kp, err := json.Marshal(q.KeyPoints)
		if err != nil {
			return err
		}
		ins := builder.Insert("questions").
			Columns("id", "text", "type", "difficulty", "category", "required_skills",
				"job_roles", "key_points", "sample_answer", "source", "created_at").
			Values(q.ID, q.Text, string(q.Type), string(q.Difficulty), q.Category, string(skills),
				string(roles), string(kp), q.SampleAnswer, source, now).
			OnConflict(
				entsql.ConflictColumns("id"),
				entsql.ResolveWith(func(u *entsql.UpdateSet) {
					for _, c := range []string{"text", "type", "difficulty", "category",
						"required_skills", "job_roles", "key_points", "sample_answer", "source"} {
						u.SetExcluded(c)
					}
				}),
			)
		if _, err := exec(ctx, tx, ins); err != nil {
			return fmt.Errorf("save question %s: %w", q.ID, err)
		}
	}
	return nil
}

// Texts returns the text of every stored question.
func (r *QuestionRepo) Texts(ctx context.Context) ([]string, error) {
	rows, err := query(ctx, r.db, builder.Select("text").From(builder.Table("questions")).OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("query question texts: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Count returns the number of stored questions.
func (r *QuestionRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := queryRow(ctx, r.db, builder.Select().Count().From(builder.Table("questions"))).Scan(&n)
	return n, err
}

// BankVersion returns the installed bank version, or "" before any import.
func (r *QuestionRepo) BankVersion(ctx context.Context) (string, error) {
	return getMeta(ctx, r.db, metaBankVersion)
}

// ImportBank installs b unless it is older than the installed bank.
// Questions and version are written in one transaction.
func (r *QuestionRepo) ImportBank(ctx context.Context, b *question.Bank) error {
	if err := b.Validate(); err != nil {
		return err
	}
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		installed, err := getMeta(ctx, tx, metaBankVersion)
		if err != nil {
			return err
		}
		if err := question.CheckUpgrade(installed, b.Version); err != nil {
			return err
		}
		if err := upsertQuestions(ctx, tx, SourceBank, b.Questions); err != nil {
			return err
		}
		return setMeta(ctx, tx, metaBankVersion, b.Version)
	})
}

// SeedDefaultBank installs the built-in bank on an empty database and
// upgrades it when the built-in version is newer. It reports whether
// anything was written.
func (r *QuestionRepo) SeedDefaultBank(ctx context.Context) (bool, error) {
	installed, err := r.BankVersion(ctx)
	if err != nil {
		return false, err
	}
	b := question.DefaultBank()
	if installed != "" && question.CheckUpgrade(b.Version, installed) == nil {
		// installed >= built-in
		return false, nil
	}
	if err := r.ImportBank(ctx, b); err != nil {
		return false, err
	}
	return true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row scanner) (*question.Question, error) {
	var (
		q                 question.Question
		typ, diff         string
		skills, roles, kp string
	)
	err := row.Scan(&q.ID, &q.Text, &typ, &diff, &q.Category, &skills,
		&roles, &kp, &q.SampleAnswer, &q.UsageCount)
	if err != nil {
		return nil, err
	}
	q.Type = question.Type(typ)
	q.Difficulty = question.Difficulty(diff)
	if err := json.Unmarshal([]byte(skills), &q.RequiredSkills); err != nil {
		return nil, fmt.Errorf("question %s required_skills: %w", q.ID, err)
	}
	if err := json.Unmarshal([]byte(roles), &q.JobRoles); err != nil {
		return nil, fmt.Errorf("question %s job_roles: %w", q.ID, err)
	}
	if err := json.Unmarshal([]byte(kp), &q.KeyPoints); err != nil {
		return nil, fmt.Errorf("question %s key_points: %w", q.ID, err)
	}
	if len(q.RequiredSkills) == 0 {
		q.RequiredSkills = nil
	}
	if len(q.JobRoles) == 0 {
		q.JobRoles = nil
	}
	return &q, nil
}

func getMeta(ctx context.Context, db querier, key string) (string, error) {
	var v string
	sel := builder.Select("value").From(builder.Table("metadata")).Where(entsql.EQ("key", key))
	err := queryRow(ctx, db, sel).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return v, nil
}

func setMeta(ctx context.Context, db execer, key, value string) error {
	ins := builder.Insert("metadata").Columns("key", "value").Values(key, value).
		OnConflict(entsql.ConflictColumns("key"), entsql.ResolveWithNewValues())
	if _, err := exec(ctx, db, ins); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
