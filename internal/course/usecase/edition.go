package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/coursebite/internal/course/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
	"github.com/shandysiswandi/coursebite/internal/shared/authz"
)

type EditionCreateInput struct {
	CourseID           int64
	Title              string `validate:"required,max=255"`
	Type               string `validate:"required,oneof=online offline"`
	Level              string `validate:"required,oneof=beginner intermediate advanced"`
	StartDate          string `validate:"omitempty,datetime=2006-01-02"`
	EndDate            string `validate:"omitempty,datetime=2006-01-02"`
	Capacity           *int32 `validate:"omitempty,gt=0"`
	Price              int64  `validate:"gte=0"`
	AllowGroupPurchase bool
	EnrollOpenFrom     *time.Time
	EnrollOpenUntil    *time.Time
	AccessDurationDays *int32 `validate:"omitempty,gt=0"`
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil
	}
	return &t
}

func (s *Usecase) EditionCreate(ctx context.Context, in EditionCreateInput) (*entity.Edition, error) {
	ctx, span := s.startSpan(ctx, "EditionCreate")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, authz.CapCourseManage)
	if err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	in.Level = strings.ToLower(strings.TrimSpace(in.Level))
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	course, err := s.course(ctx, in.CourseID)
	if err != nil {
		return nil, err
	}

	titleSlug := entity.CourseSlug(in.Title)
	if titleSlug == "" {
		return nil, goerror.NewInvalidInput(nil, "title", "title must contain letters or digits")
	}

	edition := entity.Edition{
		ID:                 s.uid.Generate(),
		CourseID:           course.ID,
		CourseTitle:        course.Title,
		Title:              in.Title,
		Slug:               entity.EditionSlug(course.Slug, in.Title),
		Type:               entity.EditionType(in.Type),
		Level:              entity.Level(in.Level),
		StartDate:          parseDate(in.StartDate),
		EndDate:            parseDate(in.EndDate),
		Capacity:           in.Capacity,
		Price:              in.Price,
		AllowGroupPurchase: in.AllowGroupPurchase,
		EnrollOpenFrom:     in.EnrollOpenFrom,
		EnrollOpenUntil:    in.EnrollOpenUntil,
		AccessDurationDays: in.AccessDurationDays,
		IsActive:           true,
		CreatedAt:          s.clock.Now(),
	}

	var ruleErr *entity.RuleError
	if err := edition.Validate(); errors.As(err, &ruleErr) {
		return nil, goerror.NewInvalidInput(nil, ruleErr.Field, ruleErr.Msg)
	}

	err = s.repoDB.CreateEdition(ctx, edition)
	if errors.Is(err, goerror.ErrConflict) {
		slog.WarnContext(ctx, "edition already exists", "course_id", course.ID, "slug", edition.Slug)
		return nil, goerror.NewBusiness("Edition title already used", goerror.CodeConflict)
	}
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("Course not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create edition", "course_id", course.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "edition created", "edition_id", edition.ID, "course_id", course.ID, "created_by", clm.UserID)

	return &edition, nil
}

type EditionDetailInput struct {
	EditionID int64
}

func (s *Usecase) EditionDetail(ctx context.Context, in EditionDetailInput) (*entity.Edition, error) {
	ctx, span := s.startSpan(ctx, "EditionDetail")
	defer span.End()

	return s.edition(ctx, in.EditionID)
}

func (s *Usecase) edition(ctx context.Context, id int64) (*entity.Edition, error) {
	edition, err := s.repoDB.GetEdition(ctx, id)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "edition not found", "edition_id", id)
		return nil, goerror.NewBusiness("Edition not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get edition", "edition_id", id, "error", err)
		return nil, goerror.NewServer(err)
	}
	return edition, nil
}

type EditionPriceInput struct {
	EditionID    int64
	Participants int32 `validate:"gte=1,lte=1000"`
}

func (s *Usecase) EditionPrice(ctx context.Context, in EditionPriceInput) (*entity.Quote, error) {
	ctx, span := s.startSpan(ctx, "EditionPrice")
	defer span.End()

	if in.Participants == 0 {
		in.Participants = 1
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	edition, err := s.edition(ctx, in.EditionID)
	if err != nil {
		return nil, err
	}

	var tiers []entity.GroupPricing
	if edition.AllowGroupPurchase && in.Participants > 1 {
		tiers, err = s.repoDB.ListGroupPricings(ctx, edition.ID)
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo list group pricings", "edition_id", edition.ID, "error", err)
			return nil, goerror.NewServer(err)
		}
	}

	quote := edition.Quote(in.Participants, tiers)
	return &quote, nil
}

type GroupPricingCreateInput struct {
	EditionID       int64
	MinParticipants int32 `validate:"gte=2"`
	PricePerPerson  int64 `validate:"gte=0"`
}

func (s *Usecase) GroupPricingCreate(ctx context.Context, in GroupPricingCreateInput) (*entity.GroupPricing, error) {
	ctx, span := s.startSpan(ctx, "GroupPricingCreate")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, authz.CapCourseManage); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	edition, err := s.edition(ctx, in.EditionID)
	if err != nil {
		return nil, err
	}
	if !edition.AllowGroupPurchase {
		return nil, goerror.NewInvalidInput(nil, "edition_id", "edition does not allow group purchase")
	}

	gp := entity.GroupPricing{
		ID:              s.uid.Generate(),
		EditionID:       edition.ID,
		MinParticipants: in.MinParticipants,
		PricePerPerson:  in.PricePerPerson,
	}

	err = s.repoDB.CreateGroupPricing(ctx, gp)
	if errors.Is(err, goerror.ErrConflict) {
		return nil, goerror.NewBusiness("Group pricing for this size already exists", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create group pricing", "edition_id", edition.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &gp, nil
}
