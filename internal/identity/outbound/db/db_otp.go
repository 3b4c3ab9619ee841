package db

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/coursebite/internal/identity/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
	"github.com/shandysiswandi/coursebite/internal/shared/authz"
)

func lockPhone(ctx context.Context, tx pgx.Tx, phone string) error {
	_, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", "identity.otp:"+phone)
	return err
}

// IssueOTP supersedes every pending code of the phone and stores otp, all under
// the per-phone lock. It returns goerror.ErrConflict when otp reuses the code
// of a record it would supersede; the caller should retry with a new code.
func (s *DB) IssueOTP(ctx context.Context, otp entity.OTP) (err error) {
	ctx, span := s.startSpan(ctx, "IssueOTP")
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

	if err = lockPhone(ctx, tx, otp.PhoneNumber); err != nil {
		return err
	}

	rows, err := tx.Query(ctx, `
		UPDATE identity_otps SET expires_at = $2
		WHERE phone_number = $1 AND is_verified = FALSE AND expires_at > $2
		RETURNING code_hash`,
		otp.PhoneNumber, otp.CreatedAt)
	if err != nil {
		return s.mapError(err)
	}

	superseded, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return s.mapError(err)
	}

	if slices.Contains(superseded, otp.CodeHash) {
		return goerror.ErrConflict
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO identity_otps (id, phone_number, code_hash, attempts, is_verified, expires_at, created_at)
		VALUES ($1, $2, $3, 0, FALSE, $4, $5)`,
		otp.ID, otp.PhoneNumber, otp.CodeHash, otp.ExpiresAt, otp.CreatedAt); err != nil {
		return s.mapError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return s.mapError(err)
	}

	return nil
}

// VerifyOTP runs one verification attempt against the latest unverified code of
// phone. The attempt rule of entity.OTP decides the outcome; its rejection is
// returned as is and the counted attempt is committed with it. On a match the
// user is fetched or created (with an empty profile and newUser.Role) and
// newUser.Session is stored, so a failed token insert leaves the code unspent.
func (s *DB) VerifyOTP(ctx context.Context, phone string, now time.Time, matches func(string) bool, newUser entity.NewUser) (_ *entity.SignIn, err error) {
	ctx, span := s.startSpan(ctx, "VerifyOTP")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rolback", "error", rErr)
		}
	}()

	if err = lockPhone(ctx, tx, phone); err != nil {
		return nil, err
	}

	var otp entity.OTP
	err = tx.QueryRow(ctx, `
		SELECT id, phone_number, code_hash, attempts, is_verified, expires_at, created_at
		FROM identity_otps
		WHERE phone_number = $1 AND is_verified = FALSE
		ORDER BY created_at DESC, id DESC
		LIMIT 1
		FOR UPDATE`, phone).
		Scan(&otp.ID, &otp.PhoneNumber, &otp.CodeHash, &otp.Attempts, &otp.IsVerified, &otp.ExpiresAt, &otp.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrOTPNotFoundOrExpired
	}
	if err != nil {
		return nil, s.mapError(err)
	}

	before := otp.Attempts
	outcome := otp.Attempt(now, matches)

	if otp.Attempts != before || otp.IsVerified {
		if _, err = tx.Exec(ctx,
			"UPDATE identity_otps SET attempts = $2, is_verified = $3 WHERE id = $1",
			otp.ID, otp.Attempts, otp.IsVerified); err != nil {
			return nil, s.mapError(err)
		}
	}

	if outcome != nil {
		if err = tx.Commit(ctx); err != nil {
			return nil, s.mapError(err)
		}
		return nil, outcome
	}

	signIn, err := s.getOrCreateUser(ctx, tx, newUser)
	if err != nil {
		return nil, err
	}

	if newUser.Session != nil && signIn.User.Status == entity.UserStatusActive {
		rt := *newUser.Session
		if _, err = tx.Exec(ctx, `
			INSERT INTO identity_refresh_tokens (id, user_id, token, expires_at, metadata)
			VALUES ($1, $2, $3, $4, $5)`,
			rt.ID, signIn.User.ID, rt.Token, rt.ExpiresAt, rt.Metadata); err != nil {
			return nil, s.mapError(err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, s.mapError(err)
	}

	return signIn, nil
}

func (s *DB) getOrCreateUser(ctx context.Context, tx pgx.Tx, nu entity.NewUser) (*entity.SignIn, error) {
	var user entity.User
	err := tx.QueryRow(ctx, `
		INSERT INTO identity_users (id, phone_number, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (phone_number) DO NOTHING
		RETURNING id, phone_number, status, created_at`,
		nu.ID, nu.PhoneNumber, entity.UserStatusActive).
		Scan(&user.ID, &user.PhoneNumber, &user.Status, &user.CreatedAt)
	created := err == nil
	if errors.Is(err, pgx.ErrNoRows) {
		err = tx.QueryRow(ctx,
			"SELECT id, phone_number, status, created_at FROM identity_users WHERE phone_number = $1",
			nu.PhoneNumber).
			Scan(&user.ID, &user.PhoneNumber, &user.Status, &user.CreatedAt)
	}
	if err != nil {
		return nil, s.mapError(err)
	}

	if created {
		if _, err = tx.Exec(ctx,
			"INSERT INTO identity_user_profiles (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING",
			user.ID); err != nil {
			return nil, s.mapError(err)
		}
		if _, err = tx.Exec(ctx,
			"INSERT INTO identity_user_roles (user_id, role) VALUES ($1, $2) ON CONFLICT DO NOTHING",
			user.ID, nu.Role.String()); err != nil {
			return nil, s.mapError(err)
		}
	}

	var roles []string
	if err := tx.QueryRow(ctx,
		"SELECT COALESCE(array_agg(role ORDER BY role), '{}') FROM identity_user_roles WHERE user_id = $1",
		user.ID).Scan(&roles); err != nil {
		return nil, s.mapError(err)
	}
	user.Roles = authz.ParseRoles(roles)

	return &entity.SignIn{User: user, Created: created}, nil
}
