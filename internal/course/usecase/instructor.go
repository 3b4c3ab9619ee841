package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
	"github.com/shandysiswandi/coursebite/internal/pkg/jwt"
	"github.com/shandysiswandi/coursebite/internal/shared/authz"
)

// contentWriter lets course managers write any edition and instructors only
// the editions they are assigned to.
func (s *Usecase) contentWriter(ctx context.Context, editionID int64) (*jwt.Claims, error) {
	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	ok, err := s.allowed(ctx, clm, authz.CapCourseManage)
	if err != nil {
		return nil, err
	}
	if ok {
		return clm, nil
	}

	ok, err = s.allowed(ctx, clm, authz.CapCourseContentWrite)
	if err != nil {
		return nil, err
	}
	if ok {
		ok, err = s.isInstructor(ctx, editionID, clm.UserID)
		if err != nil {
			return nil, err
		}
	}
	if !ok {
		slog.WarnContext(ctx, "account not allowed to write edition content", "user_id", clm.UserID, "edition_id", editionID)
		return nil, goerror.NewBusiness("Account not allowed", goerror.CodeForbidden)
	}

	return clm, nil
}

func (s *Usecase) isInstructor(ctx context.Context, editionID, userID int64) (bool, error) {
	ok, err := s.repoDB.IsInstructor(ctx, editionID, userID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo check instructor", "edition_id", editionID, "user_id", userID, "error", err)
		return false, goerror.NewServer(err)
	}
	return ok, nil
}

func (s *Usecase) moduleEdition(ctx context.Context, moduleID int64) (int64, error) {
	editionID, err := s.repoDB.ModuleEditionID(ctx, moduleID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "module not found", "module_id", moduleID)
		return 0, goerror.NewBusiness("Module not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get module edition", "module_id", moduleID, "error", err)
		return 0, goerror.NewServer(err)
	}
	return editionID, nil
}

func (s *Usecase) lessonEdition(ctx context.Context, lessonID int64) (int64, error) {
	editionID, err := s.repoDB.LessonEditionID(ctx, lessonID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "lesson not found", "lesson_id", lessonID)
		return 0, goerror.NewBusiness("Lesson not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get lesson edition", "lesson_id", lessonID, "error", err)
		return 0, goerror.NewServer(err)
	}
	return editionID, nil
}

type EditionInstructorInput struct {
	EditionID int64 `validate:"gt=0"`
	UserID    int64 `validate:"gt=0"`
}

func (s *Usecase) EditionInstructorAssign(ctx context.Context, in EditionInstructorInput) error {
	ctx, span := s.startSpan(ctx, "EditionInstructorAssign")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, authz.CapCourseManage)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	err = s.repoDB.AssignInstructor(ctx, in.EditionID, in.UserID, s.clock.Now())
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "edition not found", "edition_id", in.EditionID)
		return goerror.NewBusiness("Edition not found", goerror.CodeNotFound)
	}
	if errors.Is(err, goerror.ErrConflict) {
		slog.WarnContext(ctx, "instructor already assigned", "edition_id", in.EditionID, "user_id", in.UserID)
		return goerror.NewBusiness("Instructor already assigned", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo assign instructor", "edition_id", in.EditionID, "user_id", in.UserID, "error", err)
		return goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "instructor assigned", "edition_id", in.EditionID, "user_id", in.UserID, "assigned_by", clm.UserID)

	return nil
}

func (s *Usecase) EditionInstructorRemove(ctx context.Context, in EditionInstructorInput) error {
	ctx, span := s.startSpan(ctx, "EditionInstructorRemove")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, authz.CapCourseManage); err != nil {
		return err
	}

	err := s.repoDB.RemoveInstructor(ctx, in.EditionID, in.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "instructor not assigned", "edition_id", in.EditionID, "user_id", in.UserID)
		return goerror.NewBusiness("Instructor not assigned", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo remove instructor", "edition_id", in.EditionID, "user_id", in.UserID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

type EditionInstructorListInput struct {
	EditionID int64
}

func (s *Usecase) EditionInstructorList(ctx context.Context, in EditionInstructorListInput) ([]int64, error) {
	ctx, span := s.startSpan(ctx, "EditionInstructorList")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, authz.CapCourseManage); err != nil {
		return nil, err
	}

	if _, err := s.edition(ctx, in.EditionID); err != nil {
		return nil, err
	}

	ids, err := s.repoDB.ListInstructors(ctx, in.EditionID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list instructors", "edition_id", in.EditionID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return ids, nil
}
