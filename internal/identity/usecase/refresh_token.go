package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/coursebite/internal/identity/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
)

type RefreshTokenInput struct {
	RefreshToken string `validate:"required,len=64,hexadecimal"`
	IP           string
	UserAgent    string
}

type RefreshTokenOutput struct {
	AccessToken  string
	RefreshToken string
}

func errRefreshInvalid(err error) error {
	return goerror.Wrap(err, "Invalid or expired refresh token", goerror.CodeUnauthorized)
}

func (s *Usecase) RefreshToken(ctx context.Context, in RefreshTokenInput) (*RefreshTokenOutput, error) {
	ctx, span := s.startSpan(ctx, "RefreshToken")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	oldRefreshTokenHash, err := s.hmac.Hash(in.RefreshToken)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash old refresh token", "error", err)
		return nil, goerror.NewServer(err)
	}

	rt, err := s.repoDB.GetUserRefreshToken(ctx, string(oldRefreshTokenHash))
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user refresh token not found")
		return nil, errRefreshInvalid(entity.ErrTokenInvalid)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user refresh token", "error", err)
		return nil, goerror.NewServer(err)
	}

	if rt.RefreshRevoked {
		if rt.RefreshReplacedByTokenID != nil {
			// A rotated token came back: treat the whole token family as stolen.
			if err := s.repoDB.RevokeAllRefreshToken(ctx, rt.UserID); err != nil {
				slog.ErrorContext(ctx, "failed to repo revoke all refresh token", "user_id", rt.UserID, "error", err)
			}

			slog.WarnContext(ctx, "SECURITY: refresh token reuse detected", "user_id", rt.UserID)
			return nil, errRefreshInvalid(errors.Join(entity.ErrTokenInvalid, entity.ErrTokenReused))
		}

		slog.WarnContext(ctx, "refresh token is revoked", "refresh_token_id", rt.RefreshID)
		return nil, errRefreshInvalid(entity.ErrTokenInvalid)
	}

	if !s.clock.Now().Before(rt.RefreshExpiresAt) {
		slog.WarnContext(ctx, "user refresh token is expired", "refresh_token_id", rt.RefreshID)
		return nil, errRefreshInvalid(entity.ErrTokenInvalid)
	}

	if err := s.ensureUserActive(ctx, rt.UserID, rt.UserStatus); err != nil {
		return nil, err
	}

	newRefreshToken := s.oid.Generate()
	newRefreshTokenHash, err := s.hmac.Hash(newRefreshToken)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash new refresh token", "error", err)
		return nil, goerror.NewServer(err)
	}

	acToken, err := s.accessToken(ctx, rt.UserID, rt.UserPhoneNumber, rt.UserRoles)
	if err != nil {
		return nil, err
	}

	err = s.repoDB.RotateRefreshToken(ctx, entity.RotateRefreshToken{
		NewID:        s.uid.Generate(),
		OldID:        rt.RefreshID,
		UserID:       rt.UserID,
		NewToken:     string(newRefreshTokenHash),
		NewExpiresAt: s.clock.Now().Add(s.refreshTokenTTL()),
		Metadata:     sessionMeta{IP: in.IP, UserAgent: in.UserAgent}.jsonMap(),
	})
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "refresh token already rotated or revoked", "refresh_token_id", rt.RefreshID)
		return nil, errRefreshInvalid(entity.ErrTokenInvalid)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo rotate refresh token", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &RefreshTokenOutput{
		AccessToken:  acToken,
		RefreshToken: newRefreshToken,
	}, nil
}
