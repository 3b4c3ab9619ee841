package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/coursebite/internal/course/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/sequence"
)

func categoryScope(parentKey int64) sequence.Scope {
	return sequence.Scope{
		Name:          "course.category_children",
		Table:         "course_categories",
		ParentColumn:  "parent_key",
		ParentID:      parentKey,
		OrdinalColumn: "ordinal",
	}
}

// CreateCategory appends a category after its siblings. Top-level categories
// share the root scope.
func (s *DB) CreateCategory(ctx context.Context, in entity.NewCategory) (_ *entity.Category, err error) {
	ctx, span := s.startSpan(ctx, "CreateCategory")
	defer func() { s.endSpan(span, err) }()

	parentKey := entity.RootCategory
	if in.ParentID != nil {
		parentKey = *in.ParentID
	}

	var c entity.Category
	err = s.withTx(ctx, func(tx pgx.Tx) error {
		if in.ParentID != nil {
			var id int64
			if err := tx.QueryRow(ctx, "SELECT id FROM course_categories WHERE id = $1", *in.ParentID).Scan(&id); err != nil {
				return s.mapError(err)
			}
		}

		ordinal, err := s.seq.NextOrdinal(ctx, tx, categoryScope(parentKey))
		if err != nil {
			return err
		}

		return s.mapError(tx.QueryRow(ctx, `
			INSERT INTO course_categories (id, parent_id, title, slug, ordinal) VALUES ($1, $2, $3, $4, $5)
			RETURNING id, parent_id, title, slug, ordinal, created_at`,
			in.ID, in.ParentID, in.Title, in.Slug, ordinal).
			Scan(&c.ID, &c.ParentID, &c.Title, &c.Slug, &c.Ordinal, &c.CreatedAt))
	})
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// ListCategories returns every category, siblings in ordinal order.
func (s *DB) ListCategories(ctx context.Context) (_ []entity.Category, err error) {
	ctx, span := s.startSpan(ctx, "ListCategories")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
		SELECT id, parent_id, title, slug, ordinal, created_at
		FROM course_categories ORDER BY parent_key, ordinal`)
	if err != nil {
		return nil, s.mapError(err)
	}

	categories, err := pgx.CollectRows(rows, pgx.RowToStructByPos[entity.Category])
	if err != nil {
		return nil, s.mapError(err)
	}

	return categories, nil
}
