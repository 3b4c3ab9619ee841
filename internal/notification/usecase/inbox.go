package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/coursebite/internal/notification/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
)

type ListNotificationsInput struct {
	Status string `validate:"omitempty,oneof=all unread read"`
	Page   int32  `validate:"gte=0"`
	Size   int32  `validate:"gte=0,lte=100"`
}

type ListNotificationsOutput struct {
	Items  []entity.Notification
	Total  int64
	Unread int64
	Page   int32
	Size   int32
}

func (s *Usecase) ListNotifications(ctx context.Context, in ListNotificationsInput) (*ListNotificationsOutput, error) {
	ctx, span := s.startSpan(ctx, "ListNotifications")
	defer span.End()

	clm, err := s.reader(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	status := entity.NotificationStatus(in.Status)
	if status == "" {
		status = entity.NotificationStatusAll
	}
	if in.Page == 0 {
		in.Page = 1
	}
	if in.Size == 0 {
		in.Size = 20
	}

	items, total, unread, err := s.repoDB.ListNotifications(ctx, entity.ListFilter{
		UserID: clm.UserID,
		Status: status,
		Size:   in.Size,
		Offset: (in.Page - 1) * in.Size,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list notifications", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ListNotificationsOutput{
		Items:  items,
		Total:  total,
		Unread: unread,
		Page:   in.Page,
		Size:   in.Size,
	}, nil
}

type MarkNotificationReadInput struct {
	ID int64 `validate:"required,gt=0"`
}

func (s *Usecase) MarkNotificationRead(ctx context.Context, in MarkNotificationReadInput) error {
	ctx, span := s.startSpan(ctx, "MarkNotificationRead")
	defer span.End()

	clm, err := s.reader(ctx)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	err = s.repoDB.MarkNotificationRead(ctx, clm.UserID, in.ID, s.clock.Now())
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "notification not found", "user_id", clm.UserID, "notification_id", in.ID)
		return goerror.NewBusiness("Notification not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo mark notification read", "user_id", clm.UserID, "notification_id", in.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

// MarkAllNotificationsRead returns the number of notifications that became read.
func (s *Usecase) MarkAllNotificationsRead(ctx context.Context) (int64, error) {
	ctx, span := s.startSpan(ctx, "MarkAllNotificationsRead")
	defer span.End()

	clm, err := s.reader(ctx)
	if err != nil {
		return 0, err
	}

	n, err := s.repoDB.MarkAllNotificationsRead(ctx, clm.UserID, s.clock.Now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo mark all notifications read", "user_id", clm.UserID, "error", err)
		return 0, goerror.NewServer(err)
	}

	return n, nil
}
