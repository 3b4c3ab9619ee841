package db

import (
	"context"
	"testing"
	"time"

	"github.com/shandysiswandi/coursebite/internal/notification/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
	"github.com/shandysiswandi/coursebite/internal/pkg/instrument"
	"github.com/shandysiswandi/coursebite/internal/pkg/pgtest"
	"github.com/shandysiswandi/coursebite/internal/pkg/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDeliveries(t *testing.T, s *DB, userID int64, n int) time.Time {
	t.Helper()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := range n {
		created := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.CreateDelivery(context.Background(),
			entity.Notification{
				ID: userID*100 + int64(i), UserID: userID, Category: entity.CategoryEnrollment,
				Title: "t", Body: "b", Data: valueobject.JSONMap{"edition_id": "7"}, CreatedAt: created,
			},
			entity.SMSLog{
				ID: userID*100 + int64(i), UserID: &userID, PhoneNumber: "09120000000",
				Category: entity.CategoryEnrollment, Status: entity.SMSStatusSent, CreatedAt: created,
			}))
	}

	return base
}

func TestDB_ListNotifications(t *testing.T) {
	s := NewDB(pgtest.New(t), instrument.NewNoop())
	ctx := context.Background()
	base := seedDeliveries(t, s, 1, 3)
	seedDeliveries(t, s, 2, 1)

	items, total, unread, err := s.ListNotifications(ctx, entity.ListFilter{UserID: 1, Status: entity.NotificationStatusAll, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(3), unread)
	require.Len(t, items, 2)
	assert.Equal(t, int64(102), items[0].ID)
	assert.Equal(t, "7", items[0].Data["edition_id"])

	require.NoError(t, s.MarkNotificationRead(ctx, 1, 100, base.Add(time.Hour)))
	require.NoError(t, s.MarkNotificationRead(ctx, 1, 100, base.Add(2*time.Hour)))

	items, total, unread, err = s.ListNotifications(ctx, entity.ListFilter{UserID: 1, Status: entity.NotificationStatusRead, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, int64(2), unread)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].ReadAt)
	assert.True(t, items[0].ReadAt.Equal(base.Add(time.Hour)))
}

func TestDB_MarkNotificationRead_OtherUser(t *testing.T) {
	s := NewDB(pgtest.New(t), instrument.NewNoop())
	seedDeliveries(t, s, 1, 1)

	err := s.MarkNotificationRead(context.Background(), 2, 100, time.Now())
	assert.ErrorIs(t, err, goerror.ErrNotFound)
}

func TestDB_MarkAllNotificationsRead(t *testing.T) {
	s := NewDB(pgtest.New(t), instrument.NewNoop())
	ctx := context.Background()
	seedDeliveries(t, s, 1, 3)
	require.NoError(t, s.MarkNotificationRead(ctx, 1, 101, time.Now()))

	n, err := s.MarkAllNotificationsRead(ctx, 1, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, _, unread, err := s.ListNotifications(ctx, entity.ListFilter{UserID: 1, Status: entity.NotificationStatusAll, Size: 10})
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestDB_CreateDelivery_WithoutUser(t *testing.T) {
	s := NewDB(pgtest.New(t), instrument.NewNoop())
	ctx := context.Background()

	err := s.CreateDelivery(ctx,
		entity.Notification{ID: 1, UserID: 5, Category: entity.CategoryWelcome, Title: "t", Body: "b", CreatedAt: time.Now()},
		entity.SMSLog{ID: 1, PhoneNumber: "09120000000", Category: entity.CategoryWelcome, Status: entity.SMSStatusFailed, CreatedAt: time.Now()})
	require.NoError(t, err)

	err = s.CreateDelivery(ctx,
		entity.Notification{ID: 1, UserID: 5, Category: entity.CategoryWelcome, Title: "t", Body: "b", CreatedAt: time.Now()},
		entity.SMSLog{ID: 2, PhoneNumber: "09120000000", Category: entity.CategoryWelcome, Status: entity.SMSStatusSent, CreatedAt: time.Now()})
	assert.ErrorIs(t, err, goerror.ErrConflict)

	var logs int
	require.NoError(t, s.conn.QueryRow(ctx, "SELECT COUNT(*) FROM notification_sms_logs").Scan(&logs))
	assert.Equal(t, 1, logs)
}
