package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/coursebite/internal/identity/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
	"github.com/shandysiswandi/coursebite/internal/shared/authz"
)

type MeOutput struct {
	UserID      int64
	PhoneNumber string
	Roles       []authz.Role
}

// Me resolves the caller of an access token.
func (s *Usecase) Me(ctx context.Context) (*MeOutput, error) {
	ctx, span := s.startSpan(ctx, "Me")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.repoDB.GetUserByID(ctx, clm.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "user_id", clm.UserID)
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.ensureUserActive(ctx, user.ID, user.Status); err != nil {
		return nil, err
	}

	return &MeOutput{UserID: user.ID, PhoneNumber: user.PhoneNumber, Roles: user.Roles}, nil
}

func (s *Usecase) Profile(ctx context.Context) (*entity.Profile, error) {
	ctx, span := s.startSpan(ctx, "Profile")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	return s.profileByID(ctx, clm.UserID)
}

func (s *Usecase) profileByID(ctx context.Context, userID int64) (*entity.Profile, error) {
	profile, err := s.repoDB.GetProfile(ctx, userID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user profile not found", "user_id", userID)
		return nil, goerror.NewBusiness("Profile not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get profile", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return profile, nil
}

func (s *Usecase) ProfilePermissions(ctx context.Context) ([]authz.Capability, error) {
	ctx, span := s.startSpan(ctx, "ProfilePermissions")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	caps, err := s.authz.Capabilities(authz.ParseRoles(clm.Roles))
	if err != nil {
		slog.ErrorContext(ctx, "failed to resolve capabilities", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return caps, nil
}
