package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/coursebite/internal/course/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
	"github.com/shandysiswandi/coursebite/internal/pkg/jwt"
	"github.com/shandysiswandi/coursebite/internal/shared/authz"
)

type ModuleCreateInput struct {
	EditionID int64
	Title     string `validate:"required,max=255"`
}

// ModuleCreate appends a module; its ordinal is assigned under the edition lock.
func (s *Usecase) ModuleCreate(ctx context.Context, in ModuleCreateInput) (*entity.Module, error) {
	ctx, span := s.startSpan(ctx, "ModuleCreate")
	defer span.End()

	if _, err := s.contentWriter(ctx, in.EditionID); err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	module, err := s.repoDB.CreateModule(ctx, entity.NewModule{
		ID:        s.uid.Generate(),
		EditionID: in.EditionID,
		Title:     in.Title,
	})
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "edition not found", "edition_id", in.EditionID)
		return nil, goerror.NewBusiness("Edition not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create module", "edition_id", in.EditionID, "error", err)
		return nil, goerror.NewServer(err)
	}

	module.Lessons = []entity.Lesson{}
	return module, nil
}

type LessonCreateInput struct {
	ModuleID      int64
	Title         string `validate:"required,max=255"`
	Content       string `validate:"omitempty,max=100000"`
	IsFreePreview bool
}

func (s *Usecase) LessonCreate(ctx context.Context, in LessonCreateInput) (*entity.Lesson, error) {
	ctx, span := s.startSpan(ctx, "LessonCreate")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, authz.CapCourseContentWrite); err != nil {
		return nil, err
	}

	editionID, err := s.moduleEdition(ctx, in.ModuleID)
	if err != nil {
		return nil, err
	}

	if _, err := s.contentWriter(ctx, editionID); err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	lesson, err := s.repoDB.CreateLesson(ctx, entity.NewLesson{
		ID:            s.uid.Generate(),
		ModuleID:      in.ModuleID,
		Title:         in.Title,
		Content:       in.Content,
		IsFreePreview: in.IsFreePreview,
	})
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "module not found", "module_id", in.ModuleID)
		return nil, goerror.NewBusiness("Module not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create lesson", "module_id", in.ModuleID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return lesson, nil
}

type ModuleListInput struct {
	EditionID int64
}

// ModuleList is the public syllabus of an edition. Lesson content is only
// exposed for free previews.
func (s *Usecase) ModuleList(ctx context.Context, in ModuleListInput) ([]entity.Module, error) {
	ctx, span := s.startSpan(ctx, "ModuleList")
	defer span.End()

	if _, err := s.edition(ctx, in.EditionID); err != nil {
		return nil, err
	}

	modules, err := s.repoDB.ListModules(ctx, in.EditionID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list modules", "edition_id", in.EditionID, "error", err)
		return nil, goerror.NewServer(err)
	}

	for i := range modules {
		for j := range modules[i].Lessons {
			modules[i].Lessons[j] = modules[i].Lessons[j].Restricted()
		}
	}

	return modules, nil
}

type SyllabusInput struct {
	EditionID int64
}

// Syllabus is the full content of an edition. Course managers and assigned
// instructors always read it, learners while their access lasts.
func (s *Usecase) Syllabus(ctx context.Context, in SyllabusInput) ([]entity.Module, error) {
	ctx, span := s.startSpan(ctx, "Syllabus")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.edition(ctx, in.EditionID); err != nil {
		return nil, err
	}

	if err := s.syllabusReader(ctx, clm, in.EditionID); err != nil {
		return nil, err
	}

	modules, err := s.repoDB.ListModules(ctx, in.EditionID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list modules", "edition_id", in.EditionID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return modules, nil
}

func (s *Usecase) syllabusReader(ctx context.Context, clm *jwt.Claims, editionID int64) error {
	userID := clm.UserID

	ok, err := s.allowed(ctx, clm, authz.CapCourseManage)
	if err != nil || ok {
		return err
	}

	ok, err = s.isInstructor(ctx, editionID, userID)
	if err != nil || ok {
		return err
	}

	enrollment, err := s.repoDB.GetUserEnrollment(ctx, editionID, userID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "syllabus read without enrollment", "edition_id", editionID, "user_id", userID)
		return goerror.NewBusiness("Enrollment required", goerror.CodeForbidden)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user enrollment", "edition_id", editionID, "user_id", userID, "error", err)
		return goerror.NewServer(err)
	}

	if !enrollment.HasAccess(s.clock.Now()) {
		slog.WarnContext(ctx, "syllabus read after access ended", "enrollment_id", enrollment.ID, "is_active", enrollment.IsActive)
		return goerror.NewBusiness("Enrollment access has ended", goerror.CodeForbidden)
	}

	return nil
}
