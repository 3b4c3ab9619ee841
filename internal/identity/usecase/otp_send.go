package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/coursebite/internal/identity/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
	"github.com/shandysiswandi/coursebite/internal/pkg/sms"
)

const defaultOTPMessage = "Your CourseBite verification code: %s"

type OTPSendInput struct {
	PhoneNumber string `validate:"required,phone"`
}

func otpRateLimitKey(phone string) string {
	return "otp_sent_" + phone
}

func (s *Usecase) OTPSend(ctx context.Context, in OTPSendInput) error {
	ctx, span := s.startSpan(ctx, "OTPSend")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidRequest(err)
	}

	window := s.durationOr(s.cfg.GetSecond("modules.identity.otp_resend_window_seconds"), entity.OTPResendWindow)
	allowed, err := s.limiter.Allow(ctx, otpRateLimitKey(in.PhoneNumber), window)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check otp rate limit", "phone", sms.Mask(in.PhoneNumber), "error", err)
		return goerror.NewServer(err)
	}
	if !allowed {
		slog.WarnContext(ctx, "otp requested too often", "phone", sms.Mask(in.PhoneNumber))
		return s.errOTPRateLimited(ctx, in.PhoneNumber)
	}

	code, err := s.issueOTP(ctx, in.PhoneNumber)
	if err != nil {
		if rErr := s.limiter.Release(ctx, otpRateLimitKey(in.PhoneNumber)); rErr != nil {
			slog.ErrorContext(ctx, "failed to release otp rate limit", "phone", sms.Mask(in.PhoneNumber), "error", rErr)
		}
		slog.ErrorContext(ctx, "failed to issue otp", "phone", sms.Mask(in.PhoneNumber), "error", err)
		return goerror.NewServer(err)
	}

	tmpl := s.cfg.GetString("modules.identity.otp_message")
	if !strings.Contains(tmpl, "%s") {
		tmpl = defaultOTPMessage
	}

	if !s.sms.Send(ctx, in.PhoneNumber, fmt.Sprintf(tmpl, code)) {
		slog.WarnContext(ctx, "otp delivery failed", "phone", sms.Mask(in.PhoneNumber))
		return goerror.Wrap(entity.ErrOTPDelivery, "Failed to send verification code", goerror.CodeBadGateway)
	}

	return nil
}

func (s *Usecase) errOTPRateLimited(ctx context.Context, phone string) error {
	wait, err := s.limiter.Remaining(ctx, otpRateLimitKey(phone))
	if err != nil {
		slog.WarnContext(ctx, "failed to read otp rate limit window", "phone", sms.Mask(phone), "error", err)
	}
	if err != nil || wait <= 0 {
		return goerror.Wrap(entity.ErrOTPRateLimited, "Please wait before requesting a new code", goerror.CodeBadRequest)
	}

	seconds := int64(math.Ceil(wait.Seconds()))
	msg := fmt.Sprintf("Please wait before requesting a new code, retry in %d s", seconds)
	return goerror.Wrap(entity.ErrOTPRateLimited, msg, goerror.CodeBadRequest)
}

// issueOTP stores a fresh code, drawing again when the code collides with a
// code that is being superseded.
func (s *Usecase) issueOTP(ctx context.Context, phone string) (string, error) {
	ttl := s.durationOr(s.cfg.GetSecond("modules.identity.otp_ttl_seconds"), entity.OTPTTL)

	var code string
	backoff := retry.WithMaxRetries(2, retry.NewConstant(time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		code, err = entity.GenerateOTPCode()
		if err != nil {
			return err
		}

		codeHash, err := s.hmac.Hash(code)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		err = s.repoDB.IssueOTP(ctx, entity.OTP{
			ID:          s.uid.Generate(),
			PhoneNumber: phone,
			CodeHash:    string(codeHash),
			ExpiresAt:   now.Add(ttl),
			CreatedAt:   now,
		})
		if errors.Is(err, goerror.ErrConflict) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return "", err
	}

	return code, nil
}
