package db

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/coursebite/internal/notification/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
	"github.com/shandysiswandi/coursebite/internal/pkg/valueobject"
)

func statusCondition(status entity.NotificationStatus) string {
	switch status {
	case entity.NotificationStatusUnread:
		return "read_at IS NULL"
	case entity.NotificationStatusRead:
		return "read_at IS NOT NULL"
	default:
		return "TRUE"
	}
}

// CreateDelivery stores the in-app notification together with the SMS attempt made for it.
func (s *DB) CreateDelivery(ctx context.Context, n entity.Notification, sl entity.SMSLog) (err error) {
	ctx, span := s.startSpan(ctx, "CreateDelivery")
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

	data := n.Data
	if data == nil {
		data = valueobject.JSONMap{}
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO notification_notifications (id, user_id, category, title, body, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		n.ID, n.UserID, n.Category.String(), n.Title, n.Body, data, n.CreatedAt); err != nil {
		return s.mapError(err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO notification_sms_logs (id, user_id, phone_number, category, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		sl.ID, sl.UserID, sl.PhoneNumber, sl.Category.String(), string(sl.Status), sl.CreatedAt); err != nil {
		return s.mapError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return s.mapError(err)
	}

	return nil
}

// ListNotifications returns one page of a user's notifications, the number matching the
// status filter, and the user's total unread count.
func (s *DB) ListNotifications(ctx context.Context, filter entity.ListFilter) (_ []entity.Notification, total, unread int64, err error) {
	ctx, span := s.startSpan(ctx, "ListNotifications")
	defer func() { s.endSpan(span, err) }()

	cond := statusCondition(filter.Status)

	if err := s.conn.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE `+cond+`), COUNT(*) FILTER (WHERE read_at IS NULL)
		FROM notification_notifications WHERE user_id = $1`, filter.UserID).
		Scan(&total, &unread); err != nil {
		return nil, 0, 0, s.mapError(err)
	}

	rows, err := s.conn.Query(ctx, `
		SELECT id, user_id, category, title, body, data, read_at, created_at
		FROM notification_notifications
		WHERE user_id = $1 AND `+cond+`
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		filter.UserID, filter.Size, filter.Offset)
	if err != nil {
		return nil, 0, 0, s.mapError(err)
	}
	defer rows.Close()

	items := make([]entity.Notification, 0)
	for rows.Next() {
		var (
			n        entity.Notification
			category string
		)
		if err := rows.Scan(&n.ID, &n.UserID, &category, &n.Title, &n.Body, &n.Data, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, 0, 0, s.mapError(err)
		}
		n.Category = entity.Category(category)
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, s.mapError(err)
	}

	return items, total, unread, nil
}

// MarkNotificationRead keeps the first read time when called again.
func (s *DB) MarkNotificationRead(ctx context.Context, userID, id int64, now time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "MarkNotificationRead")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
		UPDATE notification_notifications SET read_at = COALESCE(read_at, $3)
		WHERE id = $1 AND user_id = $2`,
		id, userID, now)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

func (s *DB) MarkAllNotificationsRead(ctx context.Context, userID int64, now time.Time) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "MarkAllNotificationsRead")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx,
		"UPDATE notification_notifications SET read_at = $2 WHERE user_id = $1 AND read_at IS NULL",
		userID, now)
	if err != nil {
		return 0, s.mapError(err)
	}

	return tag.RowsAffected(), nil
}
