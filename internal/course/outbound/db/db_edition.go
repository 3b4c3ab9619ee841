package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shandysiswandi/coursebite/internal/course/entity"
)

const selectEdition = `
	SELECT e.id, e.course_id, c.title, e.title, e.slug, e.type, e.level, e.start_date, e.end_date,
		e.capacity, e.price, e.allow_group_purchase, e.enroll_open_from, e.enroll_open_until,
		e.access_duration_days, e.is_active, e.created_at,
		(SELECT COUNT(*)::INT FROM course_enrollments en WHERE en.edition_id = e.id AND en.is_active)
	FROM course_editions e
	JOIN course_courses c ON c.id = e.course_id`

func toDate(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: *t, Valid: true}
}

func fromDate(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}

func scanEdition(row pgx.Row) (*entity.Edition, error) {
	var (
		e          entity.Edition
		start, end pgtype.Date
	)
	err := row.Scan(&e.ID, &e.CourseID, &e.CourseTitle, &e.Title, &e.Slug, &e.Type, &e.Level, &start, &end,
		&e.Capacity, &e.Price, &e.AllowGroupPurchase, &e.EnrollOpenFrom, &e.EnrollOpenUntil,
		&e.AccessDurationDays, &e.IsActive, &e.CreatedAt, &e.SeatsTaken)
	if err != nil {
		return nil, err
	}

	e.StartDate = fromDate(start)
	e.EndDate = fromDate(end)
	return &e, nil
}

func (s *DB) CreateEdition(ctx context.Context, e entity.Edition) (err error) {
	ctx, span := s.startSpan(ctx, "CreateEdition")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO course_editions (id, course_id, title, slug, type, level, start_date, end_date,
			capacity, price, allow_group_purchase, enroll_open_from, enroll_open_until,
			access_duration_days, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		e.ID, e.CourseID, e.Title, e.Slug, e.Type, e.Level, toDate(e.StartDate), toDate(e.EndDate),
		e.Capacity, e.Price, e.AllowGroupPurchase, e.EnrollOpenFrom, e.EnrollOpenUntil,
		e.AccessDurationDays, e.IsActive)

	return s.mapError(err)
}

func (s *DB) GetEdition(ctx context.Context, id int64) (_ *entity.Edition, err error) {
	ctx, span := s.startSpan(ctx, "GetEdition")
	defer func() { s.endSpan(span, err) }()

	e, err := scanEdition(s.conn.QueryRow(ctx, selectEdition+" WHERE e.id = $1", id))
	if err != nil {
		return nil, s.mapError(err)
	}
	return e, nil
}

func (s *DB) ListGroupPricings(ctx context.Context, editionID int64) (_ []entity.GroupPricing, err error) {
	ctx, span := s.startSpan(ctx, "ListGroupPricings")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
		SELECT id, edition_id, min_participants, price_per_person
		FROM course_group_pricings WHERE edition_id = $1 ORDER BY min_participants`, editionID)
	if err != nil {
		return nil, s.mapError(err)
	}

	tiers, err := pgx.CollectRows(rows, pgx.RowToStructByPos[entity.GroupPricing])
	if err != nil {
		return nil, s.mapError(err)
	}
	return tiers, nil
}

func (s *DB) CreateGroupPricing(ctx context.Context, gp entity.GroupPricing) (err error) {
	ctx, span := s.startSpan(ctx, "CreateGroupPricing")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO course_group_pricings (id, edition_id, min_participants, price_per_person)
		VALUES ($1, $2, $3, $4)`,
		gp.ID, gp.EditionID, gp.MinParticipants, gp.PricePerPerson)

	return s.mapError(err)
}
