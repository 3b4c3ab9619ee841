package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/coursebite/internal/course/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
	"github.com/shandysiswandi/coursebite/internal/shared/authz"
)

type CourseCreateInput struct {
	CategoryID       *int64 `validate:"omitempty,gt=0"`
	Title            string `validate:"required,max=255"`
	ShortDescription string `validate:"omitempty,max=500"`
	LongDescription  string `validate:"omitempty,max=10000"`
	SessionCount     int32  `validate:"gte=0"`
	IsPublished      bool
}

func (s *Usecase) CourseCreate(ctx context.Context, in CourseCreateInput) (*entity.Course, error) {
	ctx, span := s.startSpan(ctx, "CourseCreate")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, authz.CapCourseManage)
	if err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	slug := entity.CourseSlug(in.Title)
	if slug == "" {
		return nil, goerror.NewInvalidInput(nil, "title", "title must contain letters or digits")
	}

	now := s.clock.Now()
	course := entity.Course{
		ID:               s.uid.Generate(),
		CategoryID:       in.CategoryID,
		Title:            in.Title,
		Slug:             slug,
		ShortDescription: in.ShortDescription,
		LongDescription:  in.LongDescription,
		SessionCount:     in.SessionCount,
		IsPublished:      in.IsPublished,
		CreatedBy:        clm.UserID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = s.repoDB.CreateCourse(ctx, course)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "category not found", "category_id", in.CategoryID)
		return nil, goerror.NewBusiness("Category not found", goerror.CodeNotFound)
	}
	if errors.Is(err, goerror.ErrConflict) {
		slog.WarnContext(ctx, "course slug already used", "slug", slug)
		return nil, goerror.NewBusiness("Course slug already used", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create course", "slug", slug, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "course created", "course_id", course.ID, "created_by", clm.UserID)

	return &course, nil
}

type CourseListInput struct {
	Page       int32
	Size       int32
	CategoryID *int64
}

type CourseListOutput struct {
	Page    int32
	Size    int32
	Total   int64
	Courses []entity.Course
}

func (s *Usecase) CourseList(ctx context.Context, in CourseListInput) (*CourseListOutput, error) {
	ctx, span := s.startSpan(ctx, "CourseList")
	defer span.End()

	page, size, offset := pagination(in.Page, in.Size)

	courses, total, err := s.repoDB.ListPublishedCourses(ctx, entity.CourseListFilter{
		Size:       size,
		Offset:     offset,
		CategoryID: in.CategoryID,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list published courses", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &CourseListOutput{Page: page, Size: size, Total: total, Courses: courses}, nil
}

type CourseDetailInput struct {
	CourseID int64
}

// CourseDetail returns a published course. Drafts read as missing.
func (s *Usecase) CourseDetail(ctx context.Context, in CourseDetailInput) (*entity.Course, error) {
	ctx, span := s.startSpan(ctx, "CourseDetail")
	defer span.End()

	course, err := s.course(ctx, in.CourseID)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished {
		return nil, goerror.NewBusiness("Course not found", goerror.CodeNotFound)
	}

	media, err := s.repoDB.ListCourseMedia(ctx, course.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list course media", "course_id", course.ID, "error", err)
		return nil, goerror.NewServer(err)
	}
	course.Media = media

	return course, nil
}

func (s *Usecase) course(ctx context.Context, id int64) (*entity.Course, error) {
	course, err := s.repoDB.GetCourse(ctx, id)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "course not found", "course_id", id)
		return nil, goerror.NewBusiness("Course not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get course", "course_id", id, "error", err)
		return nil, goerror.NewServer(err)
	}
	return course, nil
}
