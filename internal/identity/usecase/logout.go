package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/coursebite/internal/identity/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
)

type LogoutInput struct {
	RefreshToken string `validate:"required,len=64,hexadecimal"`
}

func errLogoutToken() error {
	return goerror.Wrap(entity.ErrTokenInvalid, "Invalid or already revoked refresh token", goerror.CodeBadRequest)
}

// Logout blacklists one refresh token of the caller. Malformed, unknown,
// foreign, expired or already revoked tokens all fail the same way.
func (s *Usecase) Logout(ctx context.Context, in LogoutInput) error {
	ctx, span := s.startSpan(ctx, "Logout")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		slog.WarnContext(ctx, "malformed refresh token on logout", "user_id", clm.UserID, "error", err)
		return errLogoutToken()
	}

	tokenHash, err := s.hmac.Hash(in.RefreshToken)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash refresh token", "error", err)
		return goerror.NewServer(err)
	}

	revoked, err := s.repoDB.RevokeRefreshToken(ctx, string(tokenHash), clm.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo revoke refresh token", "user_id", clm.UserID, "error", err)
		return goerror.NewServer(err)
	}
	if !revoked {
		slog.WarnContext(ctx, "refresh token not revocable", "user_id", clm.UserID)
		return errLogoutToken()
	}

	return nil
}

func (s *Usecase) LogoutAll(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "LogoutAll")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	if err := s.repoDB.RevokeAllRefreshToken(ctx, clm.UserID); err != nil {
		slog.ErrorContext(ctx, "failed to repo revoke all refresh token", "user_id", clm.UserID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
