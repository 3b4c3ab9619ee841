package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/coursebite/internal/identity/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
	"github.com/shandysiswandi/coursebite/internal/shared/authz"
)

func (s *DB) GetUserRefreshToken(ctx context.Context, token string) (_ *entity.UserRefreshToken, err error) {
	ctx, span := s.startSpan(ctx, "GetUserRefreshToken")
	defer func() { s.endSpan(span, err) }()

	var (
		rt    entity.UserRefreshToken
		roles []string
	)
	err = s.conn.QueryRow(ctx, `
		SELECT u.id, u.phone_number, u.status,
			COALESCE((SELECT array_agg(r.role ORDER BY r.role) FROM identity_user_roles r WHERE r.user_id = u.id), '{}'),
			t.id, t.revoked, t.replaced_by_token_id, t.expires_at
		FROM identity_refresh_tokens t
		JOIN identity_users u ON u.id = t.user_id
		WHERE t.token = $1`, token).
		Scan(&rt.UserID, &rt.UserPhoneNumber, &rt.UserStatus, &roles,
			&rt.RefreshID, &rt.RefreshRevoked, &rt.RefreshReplacedByTokenID, &rt.RefreshExpiresAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	rt.UserRoles = authz.ParseRoles(roles)
	return &rt, nil
}

// RotateRefreshToken revokes the old token, links it to the new one and stores
// the new one. goerror.ErrNotFound means the old token was already revoked.
func (s *DB) RotateRefreshToken(ctx context.Context, ro entity.RotateRefreshToken) (err error) {
	ctx, span := s.startSpan(ctx, "RotateRefreshToken")
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

	if _, err := tx.Exec(ctx, `
		INSERT INTO identity_refresh_tokens (id, user_id, token, expires_at, metadata)
		VALUES ($1, $2, $3, $4, $5)`,
		ro.NewID, ro.UserID, ro.NewToken, ro.NewExpiresAt, ro.Metadata); err != nil {
		return s.mapError(err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE identity_refresh_tokens
		SET revoked = TRUE, replaced_by_token_id = $2, updated_at = NOW()
		WHERE id = $1 AND revoked = FALSE`,
		ro.OldID, ro.NewID)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	if err = tx.Commit(ctx); err != nil {
		return s.mapError(err)
	}

	return nil
}

// RevokeRefreshToken blacklists one live token of userID and reports whether
// a token was revoked.
func (s *DB) RevokeRefreshToken(ctx context.Context, token string, userID int64) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "RevokeRefreshToken")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
		UPDATE identity_refresh_tokens SET revoked = TRUE, updated_at = NOW()
		WHERE token = $1 AND user_id = $2 AND revoked = FALSE AND expires_at > NOW()`,
		token, userID)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() > 0, nil
}

func (s *DB) RevokeAllRefreshToken(ctx context.Context, userID int64) (err error) {
	ctx, span := s.startSpan(ctx, "RevokeAllRefreshToken")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx,
		"UPDATE identity_refresh_tokens SET revoked = TRUE, updated_at = NOW() WHERE user_id = $1 AND revoked = FALSE",
		userID)
	return s.mapError(err)
}
