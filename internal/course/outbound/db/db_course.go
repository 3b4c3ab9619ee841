package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/coursebite/internal/course/entity"
)

const selectCourse = `
	SELECT id, title, slug, short_description, long_description, session_count,
		is_published, category_id, created_by, created_at, updated_at
	FROM course_courses`

func scanCourse(row pgx.Row) (*entity.Course, error) {
	var c entity.Course
	err := row.Scan(&c.ID, &c.Title, &c.Slug, &c.ShortDescription, &c.LongDescription, &c.SessionCount,
		&c.IsPublished, &c.CategoryID, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCourse stores a course. An unknown category surfaces as
// goerror.ErrNotFound.
func (s *DB) CreateCourse(ctx context.Context, c entity.Course) (err error) {
	ctx, span := s.startSpan(ctx, "CreateCourse")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO course_courses (id, title, slug, short_description, long_description,
			session_count, is_published, category_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.Title, c.Slug, c.ShortDescription, c.LongDescription, c.SessionCount, c.IsPublished, c.CategoryID, c.CreatedBy)

	return s.mapError(err)
}

func (s *DB) GetCourse(ctx context.Context, id int64) (_ *entity.Course, err error) {
	ctx, span := s.startSpan(ctx, "GetCourse")
	defer func() { s.endSpan(span, err) }()

	c, err := scanCourse(s.conn.QueryRow(ctx, selectCourse+" WHERE id = $1", id))
	if err != nil {
		return nil, s.mapError(err)
	}
	return c, nil
}

func (s *DB) ListPublishedCourses(ctx context.Context, filter entity.CourseListFilter) (_ []entity.Course, _ int64, err error) {
	ctx, span := s.startSpan(ctx, "ListPublishedCourses")
	defer func() { s.endSpan(span, err) }()

	where := " WHERE is_published AND ($1::BIGINT IS NULL OR category_id = $1)"

	var total int64
	if err = s.conn.QueryRow(ctx, "SELECT COUNT(*) FROM course_courses"+where, filter.CategoryID).Scan(&total); err != nil {
		return nil, 0, s.mapError(err)
	}

	rows, err := s.conn.Query(ctx,
		selectCourse+where+" ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3",
		filter.CategoryID, filter.Size, filter.Offset)
	if err != nil {
		return nil, 0, s.mapError(err)
	}
	defer rows.Close()

	courses := make([]entity.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, 0, s.mapError(err)
		}
		courses = append(courses, *c)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, s.mapError(err)
	}

	return courses, total, nil
}
