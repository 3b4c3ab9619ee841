package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/coursebite/internal/course/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
	"github.com/shandysiswandi/coursebite/internal/shared/authz"
)

type EnrollmentCreateInput struct {
	EditionID int64
}

type EnrollmentCreateOutput struct {
	Enrollment     entity.Enrollment
	AvailableSeats *int32
}

// EnrollmentCreate takes a seat of an edition for the caller.
func (s *Usecase) EnrollmentCreate(ctx context.Context, in EnrollmentCreateInput) (*EnrollmentCreateOutput, error) {
	ctx, span := s.startSpan(ctx, "EnrollmentCreate")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, authz.CapEnrollmentCreate)
	if err != nil {
		return nil, err
	}

	en, edition, err := s.repoDB.Enroll(ctx, entity.NewEnrollment{
		ID:          s.uid.Generate(),
		EditionID:   in.EditionID,
		UserID:      clm.UserID,
		PurchasedBy: clm.UserID,
		Now:         s.clock.Now(),
	})
	switch {
	case err == nil:
	case errors.Is(err, goerror.ErrNotFound):
		slog.WarnContext(ctx, "edition not found", "edition_id", in.EditionID)
		return nil, goerror.NewBusiness("Edition not found", goerror.CodeNotFound)
	case errors.Is(err, entity.ErrEditionInactive):
		return nil, goerror.Wrap(err, "Edition is not active", goerror.CodeInvalidInput)
	case errors.Is(err, entity.ErrEnrollmentClosed):
		return nil, goerror.Wrap(err, "Enrollment is closed", goerror.CodeInvalidInput)
	case errors.Is(err, entity.ErrAlreadyEnrolled):
		return nil, goerror.Wrap(err, "Already enrolled", goerror.CodeConflict)
	case errors.Is(err, entity.ErrNoSeats):
		slog.InfoContext(ctx, "edition is full", "edition_id", in.EditionID, "user_id", clm.UserID)
		return nil, goerror.Wrap(err, "No seats available", goerror.CodeConflict)
	default:
		slog.ErrorContext(ctx, "failed to repo enroll", "edition_id", in.EditionID, "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "enrollment created", "enrollment_id", en.ID, "edition_id", en.EditionID, "user_id", en.UserID)

	evt := EnrollmentCreatedEvent{
		EnrollmentID: en.ID,
		EditionID:    en.EditionID,
		UserID:       en.UserID,
		PhoneNumber:  clm.Phone,
		CourseTitle:  en.CourseTitle,
		EditionTitle: en.EditionTitle,
	}
	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := s.repoMessaging.PublishEnrollmentCreated(ctx, evt); err != nil {
			slog.ErrorContext(ctx, "failed to publish enrollment created", "enrollment_id", evt.EnrollmentID, "error", err)
			return err
		}
		return nil
	})

	return &EnrollmentCreateOutput{Enrollment: *en, AvailableSeats: edition.AvailableSeats()}, nil
}

type EnrollmentCancelInput struct {
	EnrollmentID int64
}

// EnrollmentCancel deactivates an enrollment and frees its seat. Owners may
// cancel their own; anyone else needs enrollment:manage.
func (s *Usecase) EnrollmentCancel(ctx context.Context, in EnrollmentCancelInput) error {
	ctx, span := s.startSpan(ctx, "EnrollmentCancel")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	en, err := s.repoDB.GetEnrollment(ctx, in.EnrollmentID)
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewBusiness("Enrollment not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get enrollment", "enrollment_id", in.EnrollmentID, "error", err)
		return goerror.NewServer(err)
	}

	if en.UserID != clm.UserID {
		ok, err := s.allowed(ctx, clm, authz.CapEnrollmentManage)
		if err != nil {
			return err
		}
		if !ok {
			slog.WarnContext(ctx, "account not allowed", "user_id", clm.UserID, "enrollment_id", en.ID)
			return goerror.NewBusiness("Account not allowed", goerror.CodeForbidden)
		}
	}

	err = s.repoDB.DeactivateEnrollment(ctx, en.ID, s.clock.Now())
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewBusiness("Enrollment not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo deactivate enrollment", "enrollment_id", en.ID, "error", err)
		return goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "enrollment cancelled", "enrollment_id", en.ID, "by", clm.UserID)

	return nil
}

func (s *Usecase) EnrollmentList(ctx context.Context) ([]entity.Enrollment, error) {
	ctx, span := s.startSpan(ctx, "EnrollmentList")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	enrollments, err := s.repoDB.ListUserEnrollments(ctx, clm.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list enrollments", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return enrollments, nil
}
