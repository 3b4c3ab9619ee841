package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/coursebite/internal/identity/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
	"github.com/shandysiswandi/coursebite/internal/shared/authz"
)

type ProfileListInput struct {
	Search string
	Page   int32
	Size   int32
}

type ProfileListOutput struct {
	Page     int32
	Size     int32
	Total    int64
	Profiles []entity.Profile
}

func (s *Usecase) ProfileList(ctx context.Context, in ProfileListInput) (*ProfileListOutput, error) {
	ctx, span := s.startSpan(ctx, "ProfileList")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, authz.CapProfileReadAny); err != nil {
		return nil, err
	}

	if in.Size <= 0 || in.Size > 100 {
		in.Size = 10
	}
	page := max(in.Page, 1)

	profiles, total, err := s.repoDB.ListProfiles(ctx, entity.ProfileListFilter{
		Search: strings.TrimSpace(in.Search),
		Size:   in.Size,
		Offset: (page - 1) * in.Size,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list profiles", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ProfileListOutput{Page: page, Size: in.Size, Total: total, Profiles: profiles}, nil
}

type ProfileDetailInput struct {
	UserID int64
}

func (s *Usecase) ProfileDetail(ctx context.Context, in ProfileDetailInput) (*entity.Profile, error) {
	ctx, span := s.startSpan(ctx, "ProfileDetail")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, authz.CapProfileReadAny); err != nil {
		return nil, err
	}

	return s.profileByID(ctx, in.UserID)
}

type UserRolesUpdateInput struct {
	UserID int64
	Roles  []string `validate:"required,min=1,dive,required"`
}

func (s *Usecase) UserRolesUpdate(ctx context.Context, in UserRolesUpdateInput) error {
	ctx, span := s.startSpan(ctx, "UserRolesUpdate")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, authz.CapRoleManage)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	roles := make([]authz.Role, 0, len(in.Roles))
	for _, name := range in.Roles {
		r := authz.ParseRole(name)
		if !r.Assignable() {
			return goerror.NewInvalidInput(nil, "roles", "role "+strings.TrimSpace(name)+" cannot be assigned")
		}
		roles = append(roles, r)
	}
	roles = lo.Uniq(roles)

	if in.UserID == clm.UserID && !lo.Contains(roles, authz.RoleSuperAdmin) {
		return goerror.NewBusiness("You cannot remove your own super admin role", goerror.CodeForbidden)
	}

	err = s.repoDB.ReplaceUserRoles(ctx, in.UserID, roles)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user not found", "user_id", in.UserID)
		return goerror.NewBusiness("User not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo replace user roles", "user_id", in.UserID, "error", err)
		return goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "user roles replaced", "user_id", in.UserID, "by", clm.UserID, "roles", authz.RoleNames(roles))
	return nil
}
