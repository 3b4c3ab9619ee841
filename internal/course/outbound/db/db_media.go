package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/coursebite/internal/course/entity"
)

func (s *DB) CreateCourseMedia(ctx context.Context, m entity.CourseMedia) (err error) {
	ctx, span := s.startSpan(ctx, "CreateCourseMedia")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO course_media (id, course_id, media_type, url, alt_text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.CourseID, m.Type, m.URL, m.AltText, m.CreatedAt)

	return s.mapError(err)
}

func (s *DB) ListCourseMedia(ctx context.Context, courseID int64) (_ []entity.CourseMedia, err error) {
	ctx, span := s.startSpan(ctx, "ListCourseMedia")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
		SELECT id, course_id, media_type, url, alt_text, created_at
		FROM course_media WHERE course_id = $1 ORDER BY created_at, id`, courseID)
	if err != nil {
		return nil, s.mapError(err)
	}

	media, err := pgx.CollectRows(rows, pgx.RowToStructByPos[entity.CourseMedia])
	if err != nil {
		return nil, s.mapError(err)
	}

	return media, nil
}
