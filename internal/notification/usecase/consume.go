package usecase

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/shandysiswandi/coursebite/internal/notification/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
	"github.com/shandysiswandi/coursebite/internal/pkg/valueobject"
)

type ConsumeUserSignedUpInput struct {
	UserID      int64  `validate:"required,gt=0"`
	PhoneNumber string `validate:"required,phone"`
}

func (s *Usecase) ConsumeUserSignedUp(ctx context.Context, in ConsumeUserSignedUpInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeUserSignedUp")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.WarnContext(ctx, "drop invalid user signed up message", "user_id", in.UserID, "error", err)
		return nil
	}

	return s.deliver(ctx, in.UserID, in.PhoneNumber, entity.WelcomeMessage(), valueobject.JSONMap{})
}

type ConsumeEnrollmentCreatedInput struct {
	EnrollmentID int64  `validate:"required,gt=0"`
	EditionID    int64  `validate:"required,gt=0"`
	UserID       int64  `validate:"required,gt=0"`
	PhoneNumber  string `validate:"required,phone"`
	CourseTitle  string `validate:"required"`
	EditionTitle string `validate:"required"`
}

func (s *Usecase) ConsumeEnrollmentCreated(ctx context.Context, in ConsumeEnrollmentCreatedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeEnrollmentCreated")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.WarnContext(ctx, "drop invalid enrollment created message", "enrollment_id", in.EnrollmentID, "error", err)
		return nil
	}

	return s.deliver(ctx, in.UserID, in.PhoneNumber,
		entity.EnrollmentMessage(in.CourseTitle, in.EditionTitle),
		valueobject.JSONMap{
			"enrollment_id": strconv.FormatInt(in.EnrollmentID, 10),
			"edition_id":    strconv.FormatInt(in.EditionID, 10),
		})
}

// deliver sends msg by SMS and stores it as an in-app notification, logging the SMS outcome.
// A failed SMS does not fail the delivery.
func (s *Usecase) deliver(ctx context.Context, userID int64, phone string, msg entity.Message, data valueobject.JSONMap) error {
	delivered := s.sms.Send(ctx, phone, msg.Body)
	if !delivered {
		slog.WarnContext(ctx, "sms not delivered", "user_id", userID, "category", msg.Category.String())
	}

	now := s.clock.Now()
	err := s.repoDB.CreateDelivery(ctx,
		entity.Notification{
			ID:        s.uid.Generate(),
			UserID:    userID,
			Category:  msg.Category,
			Title:     msg.Title,
			Body:      msg.Body,
			Data:      data,
			CreatedAt: now,
		},
		entity.SMSLog{
			ID:          s.uid.Generate(),
			UserID:      &userID,
			PhoneNumber: phone,
			Category:    msg.Category,
			Status:      entity.SMSStatusOf(delivered),
			CreatedAt:   now,
		})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create delivery", "user_id", userID, "category", msg.Category.String(), "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
