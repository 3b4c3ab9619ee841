package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
)

// AssignInstructor links a user to an edition as one of its instructors.
func (s *DB) AssignInstructor(ctx context.Context, editionID, userID int64, now time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "AssignInstructor")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx,
		"INSERT INTO course_edition_instructors (edition_id, user_id, created_at) VALUES ($1, $2, $3)",
		editionID, userID, now)

	return s.mapError(err)
}

func (s *DB) RemoveInstructor(ctx context.Context, editionID, userID int64) (err error) {
	ctx, span := s.startSpan(ctx, "RemoveInstructor")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx,
		"DELETE FROM course_edition_instructors WHERE edition_id = $1 AND user_id = $2",
		editionID, userID)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

func (s *DB) ListInstructors(ctx context.Context, editionID int64) (_ []int64, err error) {
	ctx, span := s.startSpan(ctx, "ListInstructors")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx,
		"SELECT user_id FROM course_edition_instructors WHERE edition_id = $1 ORDER BY created_at, user_id",
		editionID)
	if err != nil {
		return nil, s.mapError(err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, s.mapError(err)
	}

	return ids, nil
}

func (s *DB) IsInstructor(ctx context.Context, editionID, userID int64) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "IsInstructor")
	defer func() { s.endSpan(span, err) }()

	var ok bool
	err = s.conn.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM course_edition_instructors WHERE edition_id = $1 AND user_id = $2)",
		editionID, userID).Scan(&ok)
	if err != nil {
		return false, s.mapError(err)
	}

	return ok, nil
}
