package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/coursebite/internal/course/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
	"github.com/shandysiswandi/coursebite/internal/pkg/sequence"
)

func seatScope(editionID int64) sequence.Scope {
	return sequence.Scope{
		Name:         "course.edition_enrollments",
		Table:        "course_enrollments",
		ParentColumn: "edition_id",
		ParentID:     editionID,
		ActiveColumn: "is_active",
	}
}

// Enroll takes one seat of an edition for a user. Under the edition seat lock
// it checks the edition window, refuses duplicates, reserves capacity, and
// inserts or reactivates the enrollment row.
func (s *DB) Enroll(ctx context.Context, in entity.NewEnrollment) (_ *entity.Enrollment, _ *entity.Edition, err error) {
	ctx, span := s.startSpan(ctx, "Enroll")
	defer func() { s.endSpan(span, err) }()

	var (
		en      entity.Enrollment
		edition *entity.Edition
	)
	err = s.withTx(ctx, func(tx pgx.Tx) error {
		scope := seatScope(in.EditionID)
		if err := s.seq.Lock(ctx, tx, scope); err != nil {
			return err
		}

		var err error
		edition, err = scanEdition(tx.QueryRow(ctx, selectEdition+" WHERE e.id = $1", in.EditionID))
		if err != nil {
			return s.mapError(err)
		}
		if err := edition.CheckEnrollable(in.Now); err != nil {
			return err
		}

		var (
			existingID int64
			active     bool
		)
		err = tx.QueryRow(ctx,
			"SELECT id, is_active FROM course_enrollments WHERE edition_id = $1 AND user_id = $2",
			in.EditionID, in.UserID).Scan(&existingID, &active)
		exists := err == nil
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return s.mapError(err)
		}
		if exists && active {
			return entity.ErrAlreadyEnrolled
		}

		ok, err := s.seq.ReserveCapacity(ctx, tx, scope, edition.Capacity)
		if err != nil {
			return err
		}
		if !ok {
			return entity.ErrNoSeats
		}

		expires := edition.AccessExpiresAt(in.Now)
		if exists {
			err = tx.QueryRow(ctx, `
				UPDATE course_enrollments
				SET is_active = TRUE, purchased_by = $2, access_expires_at = $3, enrolled_at = $4, updated_at = $4
				WHERE id = $1
				RETURNING id, edition_id, user_id, purchased_by, is_active, access_expires_at, enrolled_at`,
				existingID, in.PurchasedBy, expires, in.Now).
				Scan(&en.ID, &en.EditionID, &en.UserID, &en.PurchasedBy, &en.IsActive, &en.AccessExpiresAt, &en.EnrolledAt)
		} else {
			err = tx.QueryRow(ctx, `
				INSERT INTO course_enrollments (id, edition_id, user_id, purchased_by, is_active, access_expires_at, enrolled_at, updated_at)
				VALUES ($1, $2, $3, $4, TRUE, $5, $6, $6)
				RETURNING id, edition_id, user_id, purchased_by, is_active, access_expires_at, enrolled_at`,
				in.ID, in.EditionID, in.UserID, in.PurchasedBy, expires, in.Now).
				Scan(&en.ID, &en.EditionID, &en.UserID, &en.PurchasedBy, &en.IsActive, &en.AccessExpiresAt, &en.EnrolledAt)
		}
		if err != nil {
			return s.mapError(err)
		}

		edition.SeatsTaken++
		en.CourseTitle = edition.CourseTitle
		en.EditionTitle = edition.Title
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &en, edition, nil
}

const selectEnrollment = `
	SELECT en.id, en.edition_id, en.user_id, en.purchased_by, en.is_active, en.access_expires_at,
		en.enrolled_at, c.title, e.title
	FROM course_enrollments en
	JOIN course_editions e ON e.id = en.edition_id
	JOIN course_courses c ON c.id = e.course_id`

func scanEnrollment(row pgx.Row) (*entity.Enrollment, error) {
	var en entity.Enrollment
	err := row.Scan(&en.ID, &en.EditionID, &en.UserID, &en.PurchasedBy, &en.IsActive, &en.AccessExpiresAt,
		&en.EnrolledAt, &en.CourseTitle, &en.EditionTitle)
	if err != nil {
		return nil, err
	}
	return &en, nil
}

func (s *DB) GetEnrollment(ctx context.Context, id int64) (_ *entity.Enrollment, err error) {
	ctx, span := s.startSpan(ctx, "GetEnrollment")
	defer func() { s.endSpan(span, err) }()

	en, err := scanEnrollment(s.conn.QueryRow(ctx, selectEnrollment+" WHERE en.id = $1", id))
	if err != nil {
		return nil, s.mapError(err)
	}
	return en, nil
}

// GetUserEnrollment returns the enrollment of a user in an edition, active or not.
func (s *DB) GetUserEnrollment(ctx context.Context, editionID, userID int64) (_ *entity.Enrollment, err error) {
	ctx, span := s.startSpan(ctx, "GetUserEnrollment")
	defer func() { s.endSpan(span, err) }()

	en, err := scanEnrollment(s.conn.QueryRow(ctx,
		selectEnrollment+" WHERE en.edition_id = $1 AND en.user_id = $2", editionID, userID))
	if err != nil {
		return nil, s.mapError(err)
	}
	return en, nil
}

// DeactivateEnrollment frees the seat of an active enrollment.
func (s *DB) DeactivateEnrollment(ctx context.Context, id int64, now time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "DeactivateEnrollment")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx,
		"UPDATE course_enrollments SET is_active = FALSE, updated_at = $2 WHERE id = $1 AND is_active",
		id, now)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

func (s *DB) ListUserEnrollments(ctx context.Context, userID int64) (_ []entity.Enrollment, err error) {
	ctx, span := s.startSpan(ctx, "ListUserEnrollments")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx,
		selectEnrollment+" WHERE en.user_id = $1 AND en.is_active ORDER BY en.enrolled_at DESC, en.id DESC", userID)
	if err != nil {
		return nil, s.mapError(err)
	}

	enrollments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Enrollment, error) {
		en, err := scanEnrollment(row)
		if err != nil {
			return entity.Enrollment{}, err
		}
		return *en, nil
	})
	if err != nil {
		return nil, s.mapError(err)
	}

	return enrollments, nil
}
