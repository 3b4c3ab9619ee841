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

type CategoryCreateInput struct {
	ParentID *int64 `validate:"omitempty,gt=0"`
	Title    string `validate:"required,max=255"`
}

// CategoryCreate appends a category after its siblings.
func (s *Usecase) CategoryCreate(ctx context.Context, in CategoryCreateInput) (*entity.Category, error) {
	ctx, span := s.startSpan(ctx, "CategoryCreate")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, authz.CapCourseManage); err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	slug := entity.CategorySlug(in.Title)
	if slug == "" {
		return nil, goerror.NewInvalidInput(nil, "title", "title must contain letters or digits")
	}

	category, err := s.repoDB.CreateCategory(ctx, entity.NewCategory{
		ID:       s.uid.Generate(),
		ParentID: in.ParentID,
		Title:    in.Title,
		Slug:     slug,
	})
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "parent category not found", "parent_id", in.ParentID)
		return nil, goerror.NewBusiness("Parent category not found", goerror.CodeNotFound)
	}
	if errors.Is(err, goerror.ErrConflict) {
		slog.WarnContext(ctx, "category already exists", "slug", slug)
		return nil, goerror.NewBusiness("Category already exists", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create category", "slug", slug, "error", err)
		return nil, goerror.NewServer(err)
	}

	return category, nil
}

func (s *Usecase) CategoryList(ctx context.Context) ([]entity.Category, error) {
	ctx, span := s.startSpan(ctx, "CategoryList")
	defer span.End()

	categories, err := s.repoDB.ListCategories(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list categories", "error", err)
		return nil, goerror.NewServer(err)
	}

	return categories, nil
}
