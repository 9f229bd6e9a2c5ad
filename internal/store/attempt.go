package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/vocabquiz/internal/bank"
)

const attemptsTable = "attempts"

var attemptColumns = []string{
	"id", "owner", "parent_id", "selected_lessons", "questions", "answers",
	"current_index", "status", "score", "created_at", "updated_at",
}

// attemptRepo implements AttemptRepo over database/sql with ent's query builder.
type attemptRepo struct {
	db      *sql.DB
	dialect string
	now     func() time.Time
}

func (r *attemptRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.dialect)
}

func (r *attemptRepo) Create(ctx context.Context, a *Attempt) (*Attempt, error) {
	out := a.Clone()
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = r.now().UTC()
	}
	out.UpdatedAt = out.CreatedAt
	if out.Answers == nil {
		out.Answers = []*string{}
	}
	if out.SelectedLessons == nil {
		out.SelectedLessons = []string{}
	}

	lessons, err := json.Marshal(out.SelectedLessons)
	if err != nil {
		return nil, fmt.Errorf("marshal lessons: %w", err)
	}
	questions, err := json.Marshal(out.Questions)
	if err != nil {
		return nil, fmt.Errorf("marshal questions: %w", err)
	}
	answers, err := json.Marshal(out.Answers)
	if err != nil {
		return nil, fmt.Errorf("marshal answers: %w", err)
	}

	query, args := r.builder().Insert(attemptsTable).
		Columns(attemptColumns...).
		Values(
			out.ID, out.Owner, nullString(out.ParentID), string(lessons), string(questions),
			string(answers), out.CurrentIndex, string(out.Status), nullInt(out.Score),
			out.CreatedAt.UnixNano(), out.UpdatedAt.UnixNano(),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("insert attempt: %w", err)
	}
	return out, nil
}

func (r *attemptRepo) Get(ctx context.Context, id string) (*Attempt, error) {
	b := r.builder()
	query, args := b.Select(attemptColumns...).
		From(b.Table(attemptsTable)).
		Where(entsql.EQ("id", id)).
		Query()

	a, err := scanAttempt(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("attempt %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query attempt: %w", err)
	}
	return a, nil
}

func (r *attemptRepo) Update(ctx context.Context, id string, patch AttemptPatch) error {
	upd := r.builder().Update(attemptsTable).
		Set("updated_at", r.now().UTC().UnixNano()).
		Where(entsql.EQ("id", id))

	if patch.Answers != nil {
		answers := *patch.Answers
		if answers == nil {
			answers = []*string{}
		}
		raw, err := json.Marshal(answers)
		if err != nil {
			return fmt.Errorf("marshal answers: %w", err)
		}
		upd.Set("answers", string(raw))
	}
	if patch.CurrentIndex != nil {
		upd.Set("current_index", *patch.CurrentIndex)
	}
	if patch.Status != nil {
		upd.Set("status", string(*patch.Status))
	}
	if patch.Score != nil {
		upd.Set("score", *patch.Score)
	}

	query, args := upd.Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update attempt: %w", err)
	}
	return expectOneRow(res, id)
}

func (r *attemptRepo) Delete(ctx context.Context, id string) error {
	query, args := r.builder().Delete(attemptsTable).
		Where(entsql.EQ("id", id)).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete attempt: %w", err)
	}
	return expectOneRow(res, id)
}

func (r *attemptRepo) ListForOwner(ctx context.Context, owner string, opts ListOpts) ([]Attempt, error) {
	b := r.builder()
	pred := entsql.EQ("owner", owner)
	if opts.Status != "" {
		pred = entsql.And(pred, entsql.EQ("status", string(opts.Status)))
	}
	sel := b.Select(attemptColumns...).
		From(b.Table(attemptsTable)).
		Where(pred).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row rowScanner) (*Attempt, error) {
	var (
		a                          Attempt
		parentID                   sql.NullString
		lessons, questions, answer []byte
		status                     string
		score                      sql.NullInt64
		createdAt, updatedAt       int64
	)
	err := row.Scan(&a.ID, &a.Owner, &parentID, &lessons, &questions, &answer,
		&a.CurrentIndex, &status, &score, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	a.ParentID = parentID.String
	a.Status = Status(status)
	if score.Valid {
		s := int(score.Int64)
		a.Score = &s
	}
	a.CreatedAt = time.Unix(0, createdAt).UTC()
	a.UpdatedAt = time.Unix(0, updatedAt).UTC()

	if err := json.Unmarshal(lessons, &a.SelectedLessons); err != nil {
		return nil, fmt.Errorf("decode selected_lessons: %w", err)
	}
	a.Questions = []bank.Question{}
	if err := json.Unmarshal(questions, &a.Questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	if err := json.Unmarshal(answer, &a.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	return &a, nil
}

func expectOneRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("attempt %s: %w", id, ErrNotFound)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}
