package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const masteryTable = "lesson_mastery"

// masteryRepo implements MasteryRepo over database/sql.
type masteryRepo struct {
	db      *sql.DB
	dialect string
	now     func() time.Time
}

func (r *masteryRepo) Get(ctx context.Context, owner string) ([]string, error) {
	b := entsql.Dialect(r.dialect)
	query, args := b.Select("lesson_id").
		From(b.Table(masteryTable)).
		Where(entsql.EQ("owner", owner)).
		OrderBy("granted_at", "lesson_id").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query mastery: %w", err)
	}
	defer rows.Close()

	lessons := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan mastery: %w", err)
		}
		lessons = append(lessons, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mastery: %w", err)
	}
	return lessons, nil
}

func (r *masteryRepo) AddIfAbsent(ctx context.Context, owner, lessonID string) error {
	query, args := entsql.Dialect(r.dialect).Insert(masteryTable).
		Columns("owner", "lesson_id", "granted_at").
		Values(owner, lessonID, r.now().UTC().UnixNano()).
		OnConflict(
			entsql.ConflictColumns("owner", "lesson_id"),
			entsql.DoNothing(),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert mastery: %w", err)
	}
	return nil
}
