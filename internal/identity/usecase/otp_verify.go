package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/coursebite/internal/identity/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
	"github.com/shandysiswandi/coursebite/internal/pkg/sms"
	"github.com/shandysiswandi/coursebite/internal/shared/authz"
)

type OTPVerifyInput struct {
	PhoneNumber string `validate:"required,phone"`
	Code        string `validate:"required,otpcode"`
	IP          string
	UserAgent   string
}

type OTPVerifyOutput struct {
	AccessToken  string
	RefreshToken string
	User         entity.User
	Created      bool
}

func (s *Usecase) OTPVerify(ctx context.Context, in OTPVerifyInput) (*OTPVerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "OTPVerify")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidRequest(err)
	}

	matches := func(codeHash string) bool {
		return s.hmac.Verify(codeHash, in.Code)
	}

	refresh, session, err := s.newRefreshToken(ctx, sessionMeta{IP: in.IP, UserAgent: in.UserAgent})
	if err != nil {
		return nil, err
	}

	signIn, err := s.repoDB.VerifyOTP(ctx, in.PhoneNumber, s.clock.Now(), matches, entity.NewUser{
		ID:          s.uid.Generate(),
		PhoneNumber: in.PhoneNumber,
		Role:        authz.DefaultRole,
		Session:     session,
	})
	switch {
	case errors.Is(err, entity.ErrOTPNotFoundOrExpired):
		slog.WarnContext(ctx, "otp not found or expired", "phone", sms.Mask(in.PhoneNumber))
		return nil, goerror.Wrap(err, "Invalid or expired code", goerror.CodeBadRequest)
	case errors.Is(err, entity.ErrOTPAttemptsExceeded):
		slog.WarnContext(ctx, "otp attempts exceeded", "phone", sms.Mask(in.PhoneNumber))
		return nil, goerror.Wrap(err, "Too many attempts, request a new code", goerror.CodeBadRequest)
	case errors.Is(err, entity.ErrOTPMismatch):
		slog.WarnContext(ctx, "otp code mismatch", "phone", sms.Mask(in.PhoneNumber))
		return nil, goerror.Wrap(err, "Incorrect code", goerror.CodeBadRequest)
	case err != nil:
		slog.ErrorContext(ctx, "failed to repo verify otp", "phone", sms.Mask(in.PhoneNumber), "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.ensureUserActive(ctx, signIn.User.ID, signIn.User.Status); err != nil {
		return nil, err
	}

	access, err := s.accessToken(ctx, signIn.User.ID, signIn.User.PhoneNumber, signIn.User.Roles)
	if err != nil {
		return nil, err
	}

	if signIn.Created {
		evt := UserSignedUpEvent{
			UserID:      signIn.User.ID,
			PhoneNumber: signIn.User.PhoneNumber,
			SignedUpAt:  signIn.User.CreatedAt,
		}
		s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
			if err := s.repoMessaging.PublishUserSignedUp(ctx, evt); err != nil {
				slog.ErrorContext(ctx, "failed to publish user signed up", "user_id", evt.UserID, "error", err)
			}
			return nil
		})
	}

	return &OTPVerifyOutput{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         signIn.User,
		Created:      signIn.Created,
	}, nil
}
