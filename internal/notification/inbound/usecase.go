package inbound

import (
	"context"

	"github.com/shandysiswandi/coursebite/internal/notification/usecase"
)

type ucConsumer interface {
	ConsumeUserSignedUp(ctx context.Context, in usecase.ConsumeUserSignedUpInput) error
	ConsumeEnrollmentCreated(ctx context.Context, in usecase.ConsumeEnrollmentCreatedInput) error
}

type uc interface {
	ucConsumer

	ListNotifications(ctx context.Context, in usecase.ListNotificationsInput) (*usecase.ListNotificationsOutput, error)
	MarkNotificationRead(ctx context.Context, in usecase.MarkNotificationReadInput) error
	MarkAllNotificationsRead(ctx context.Context) (int64, error)
}
