package db

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/samber/lo"
	"github.com/shandysiswandi/coursebite/internal/identity/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
	"github.com/shandysiswandi/coursebite/internal/shared/authz"
)

const selectProfile = `
	SELECT u.id, u.phone_number, u.status, u.created_at,
		COALESCE((SELECT array_agg(r.role ORDER BY r.role) FROM identity_user_roles r WHERE r.user_id = u.id), '{}'),
		p.first_name, p.last_name, COALESCE(p.national_id, ''), COALESCE(p.email, ''),
		p.avatar_url, p.bio, p.job_title, p.birth_date, p.province, p.city, p.address, p.membership_date
	FROM identity_users u
	JOIN identity_user_profiles p ON p.user_id = u.id`

func scanProfile(row pgx.Row) (*entity.Profile, error) {
	var (
		p     entity.Profile
		roles []string
		birth pgtype.Date
	)
	err := row.Scan(
		&p.User.ID, &p.User.PhoneNumber, &p.User.Status, &p.User.CreatedAt, &roles,
		&p.FirstName, &p.LastName, &p.NationalID, &p.Email,
		&p.AvatarURL, &p.Bio, &p.JobTitle, &birth, &p.Province, &p.City, &p.Address, &p.MembershipDate,
	)
	if err != nil {
		return nil, err
	}

	p.User.Roles = authz.ParseRoles(roles)
	if birth.Valid {
		bd := birth.Time
		p.BirthDate = &bd
	}
	return &p, nil
}

func (s *DB) GetUserByID(ctx context.Context, id int64) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByID")
	defer func() { s.endSpan(span, err) }()

	var (
		user  entity.User
		roles []string
	)
	err = s.conn.QueryRow(ctx, `
		SELECT u.id, u.phone_number, u.status, u.created_at,
			COALESCE((SELECT array_agg(r.role ORDER BY r.role) FROM identity_user_roles r WHERE r.user_id = u.id), '{}')
		FROM identity_users u WHERE u.id = $1`, id).
		Scan(&user.ID, &user.PhoneNumber, &user.Status, &user.CreatedAt, &roles)
	if err != nil {
		return nil, s.mapError(err)
	}

	user.Roles = authz.ParseRoles(roles)
	return &user, nil
}

func (s *DB) GetProfile(ctx context.Context, userID int64) (_ *entity.Profile, err error) {
	ctx, span := s.startSpan(ctx, "GetProfile")
	defer func() { s.endSpan(span, err) }()

	p, err := scanProfile(s.conn.QueryRow(ctx, selectProfile+" WHERE u.id = $1", userID))
	if err != nil {
		return nil, s.mapError(err)
	}
	return p, nil
}

func (s *DB) ListProfiles(ctx context.Context, filter entity.ProfileListFilter) (_ []entity.Profile, _ int64, err error) {
	ctx, span := s.startSpan(ctx, "ListProfiles")
	defer func() { s.endSpan(span, err) }()

	where := ""
	args := []any{}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		where = ` WHERE u.phone_number LIKE $1
			OR LOWER(p.first_name || ' ' || p.last_name) LIKE $1
			OR LOWER(COALESCE(p.email, '')) LIKE $1
			OR COALESCE(p.national_id, '') LIKE $1`
	}

	var total int64
	if err := s.conn.QueryRow(ctx,
		"SELECT COUNT(*) FROM identity_users u JOIN identity_user_profiles p ON p.user_id = u.id"+where,
		args...).Scan(&total); err != nil {
		return nil, 0, s.mapError(err)
	}

	args = append(args, filter.Size, filter.Offset)
	rows, err := s.conn.Query(ctx,
		selectProfile+where+" ORDER BY u.created_at DESC, u.id DESC LIMIT $"+strconv.Itoa(len(args)-1)+" OFFSET $"+strconv.Itoa(len(args)),
		args...)
	if err != nil {
		return nil, 0, s.mapError(err)
	}
	defer rows.Close()

	profiles := make([]entity.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, s.mapError(err)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, s.mapError(err)
	}

	return profiles, total, nil
}

func (s *DB) UpdateProfile(ctx context.Context, in entity.UpdateProfile) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateProfile")
	defer func() { s.endSpan(span, err) }()

	var birth pgtype.Date
	if in.BirthDate != nil {
		birth = pgtype.Date{Time: *in.BirthDate, Valid: true}
	}

	tag, err := s.conn.Exec(ctx, `
		UPDATE identity_user_profiles SET
			first_name = $2, last_name = $3, national_id = NULLIF($4, ''), email = NULLIF($5, ''),
			bio = $6, job_title = $7, birth_date = $8, province = $9, city = $10, address = $11,
			updated_at = NOW()
		WHERE user_id = $1`,
		in.UserID, in.FirstName, in.LastName, in.NationalID, in.Email,
		in.Bio, in.JobTitle, birth, in.Province, in.City, in.Address)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

func (s *DB) UpdateProfileAvatar(ctx context.Context, userID int64, avatarURL string) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateProfileAvatar")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx,
		"UPDATE identity_user_profiles SET avatar_url = $2, updated_at = NOW() WHERE user_id = $1",
		userID, avatarURL)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

// ReplaceUserRoles sets the exact role set of a user.
func (s *DB) ReplaceUserRoles(ctx context.Context, userID int64, roles []authz.Role) (err error) {
	ctx, span := s.startSpan(ctx, "ReplaceUserRoles")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rolback", "error", rErr)
		}
	}()

	var id int64
	if err := tx.QueryRow(ctx, "SELECT id FROM identity_users WHERE id = $1 FOR UPDATE", userID).Scan(&id); err != nil {
		return s.mapError(err)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM identity_user_roles WHERE user_id = $1", userID); err != nil {
		return s.mapError(err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO identity_user_roles (user_id, role)
		SELECT $1, UNNEST($2::VARCHAR[])`,
		userID, authz.RoleNames(lo.Uniq(roles))); err != nil {
		return s.mapError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return s.mapError(err)
	}

	return nil
}
