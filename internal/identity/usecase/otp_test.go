package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shandysiswandi/coursebite/internal/identity/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const phone = "09123456789"

func wrongCode(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}

func TestUsecase_OTPSend(t *testing.T) {
	t.Run("invalid phone never touches storage", func(t *testing.T) {
		s := newSuite(t)

		err := s.uc.OTPSend(context.Background(), OTPSendInput{PhoneNumber: "9123456789"})

		requireCode(t, err, goerror.CodeBadRequest)
		assert.Empty(t, s.limiter.markers)
		assert.Empty(t, s.repo.otps)
	})

	t.Run("padded phone fails validation", func(t *testing.T) {
		s := newSuite(t)

		err := s.uc.OTPSend(context.Background(), OTPSendInput{PhoneNumber: " " + phone + " "})

		requireCode(t, err, goerror.CodeBadRequest)
		assert.Empty(t, s.repo.otps)
		assert.Empty(t, s.sms.sent)
	})

	t.Run("rate limited message carries the remaining wait", func(t *testing.T) {
		s := newSuite(t)
		s.limiter.remaining = 41500 * time.Millisecond
		ctx := context.Background()

		require.NoError(t, s.uc.OTPSend(ctx, OTPSendInput{PhoneNumber: phone}))
		err := s.uc.OTPSend(ctx, OTPSendInput{PhoneNumber: phone})

		var gerr *goerror.Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, "Please wait before requesting a new code, retry in 42 s", gerr.Msg())
		assert.ErrorIs(t, err, entity.ErrOTPRateLimited)
	})

	t.Run("rate limited without a readable window", func(t *testing.T) {
		s := newSuite(t)
		s.limiter.ttlErr = errors.New("redis down")
		ctx := context.Background()

		require.NoError(t, s.uc.OTPSend(ctx, OTPSendInput{PhoneNumber: phone}))
		err := s.uc.OTPSend(ctx, OTPSendInput{PhoneNumber: phone})

		var gerr *goerror.Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, "Please wait before requesting a new code", gerr.Msg())
		assert.Equal(t, goerror.CodeBadRequest, gerr.Code())
	})

	t.Run("second request inside the window is rate limited", func(t *testing.T) {
		s := newSuite(t)
		ctx := context.Background()

		require.NoError(t, s.uc.OTPSend(ctx, OTPSendInput{PhoneNumber: phone}))
		err := s.uc.OTPSend(ctx, OTPSendInput{PhoneNumber: phone})

		requireCode(t, err, goerror.CodeBadRequest)
		assert.ErrorIs(t, err, entity.ErrOTPRateLimited)
		assert.Len(t, s.repo.otps, 1)
		assert.Len(t, s.sms.sent, 1)
		assert.Equal(t, phone, s.sms.sent[0].phone)
	})

	t.Run("new request supersedes the pending code", func(t *testing.T) {
		s := newSuite(t)
		ctx := context.Background()

		require.NoError(t, s.uc.OTPSend(ctx, OTPSendInput{PhoneNumber: phone}))
		first := s.sms.lastCode(t)
		s.limiter.markers = map[string]bool{}
		s.clock.now = s.clock.now.Add(time.Second)
		require.NoError(t, s.uc.OTPSend(ctx, OTPSendInput{PhoneNumber: phone}))
		second := s.sms.lastCode(t)

		assert.NotEqual(t, first, second)
		require.Len(t, s.repo.otps, 2)
		assert.True(t, s.repo.otps[0].IsExpired(s.clock.now))
		assert.False(t, s.repo.otps[1].IsExpired(s.clock.now))
		assert.Equal(t, s.clock.now.Add(entity.OTPTTL), s.repo.otps[1].ExpiresAt)
	})

	t.Run("delivery failure keeps record and marker", func(t *testing.T) {
		s := newSuite(t)
		s.sms.fail = true

		err := s.uc.OTPSend(context.Background(), OTPSendInput{PhoneNumber: phone})

		requireCode(t, err, goerror.CodeBadGateway)
		assert.ErrorIs(t, err, entity.ErrOTPDelivery)
		assert.Len(t, s.repo.otps, 1)
		assert.True(t, s.limiter.markers[otpRateLimitKey(phone)])
	})

	t.Run("storage failure releases the marker", func(t *testing.T) {
		s := newSuite(t)
		s.repo.issueErr = errors.New("db down")

		err := s.uc.OTPSend(context.Background(), OTPSendInput{PhoneNumber: phone})

		requireCode(t, err, goerror.CodeInternal)
		assert.Empty(t, s.limiter.markers)
		assert.Empty(t, s.sms.sent)
	})

	t.Run("limiter failure is a server error", func(t *testing.T) {
		s := newSuite(t)
		s.limiter.err = errors.New("redis down")

		err := s.uc.OTPSend(context.Background(), OTPSendInput{PhoneNumber: phone})

		requireCode(t, err, goerror.CodeInternal)
		assert.Empty(t, s.repo.otps)
	})
}

func TestUsecase_OTPVerify(t *testing.T) {
	t.Run("sign up then code cannot be reused", func(t *testing.T) {
		s := newSuite(t)
		ctx := context.Background()
		require.NoError(t, s.uc.OTPSend(ctx, OTPSendInput{PhoneNumber: phone}))
		code := s.sms.lastCode(t)

		out, err := s.uc.OTPVerify(ctx, OTPVerifyInput{PhoneNumber: phone, Code: code, IP: "10.0.0.1"})
		require.NoError(t, err)
		assert.True(t, out.Created)
		assert.Equal(t, phone, out.User.PhoneNumber)
		assert.Equal(t, fmt.Sprintf("access-%d-student", out.User.ID), out.AccessToken)
		assert.Len(t, out.RefreshToken, refreshTokenLength)

		_, err = s.uc.OTPVerify(ctx, OTPVerifyInput{PhoneNumber: phone, Code: code})
		requireCode(t, err, goerror.CodeBadRequest)
		assert.ErrorIs(t, err, entity.ErrOTPNotFoundOrExpired)

		require.NoError(t, s.workers.Wait())
		require.Len(t, s.messaging.events, 1)
		assert.Equal(t, out.User.ID, s.messaging.events[0].UserID)
	})

	t.Run("session store failure leaves the code usable", func(t *testing.T) {
		s := newSuite(t)
		ctx := context.Background()
		require.NoError(t, s.uc.OTPSend(ctx, OTPSendInput{PhoneNumber: phone}))
		code := s.sms.lastCode(t)
		s.repo.sessionErr = errors.New("db down")

		_, err := s.uc.OTPVerify(ctx, OTPVerifyInput{PhoneNumber: phone, Code: code})
		requireCode(t, err, goerror.CodeInternal)
		assert.False(t, s.repo.otps[0].IsVerified)
		assert.Empty(t, s.repo.users)

		s.repo.sessionErr = nil
		out, err := s.uc.OTPVerify(ctx, OTPVerifyInput{PhoneNumber: phone, Code: code})
		require.NoError(t, err)
		assert.True(t, out.Created)
		stored := s.repo.tokens[hashToken(t, out.RefreshToken)]
		require.NotNil(t, stored)
		assert.Equal(t, out.User.ID, stored.UserID)
	})

	t.Run("existing user signs in", func(t *testing.T) {
		s := newSuite(t)
		ctx := context.Background()
		require.NoError(t, s.uc.OTPSend(ctx, OTPSendInput{PhoneNumber: phone}))
		_, err := s.uc.OTPVerify(ctx, OTPVerifyInput{PhoneNumber: phone, Code: s.sms.lastCode(t)})
		require.NoError(t, err)

		s.limiter.markers = map[string]bool{}
		s.clock.now = s.clock.now.Add(time.Minute)
		require.NoError(t, s.uc.OTPSend(ctx, OTPSendInput{PhoneNumber: phone}))
		out, err := s.uc.OTPVerify(ctx, OTPVerifyInput{PhoneNumber: phone, Code: s.sms.lastCode(t)})

		require.NoError(t, err)
		assert.False(t, out.Created)
		require.NoError(t, s.workers.Wait())
		assert.Len(t, s.messaging.events, 1)
	})

	t.Run("five wrong codes exhaust the otp", func(t *testing.T) {
		s := newSuite(t)
		ctx := context.Background()
		require.NoError(t, s.uc.OTPSend(ctx, OTPSendInput{PhoneNumber: phone}))
		code := s.sms.lastCode(t)
		bad := wrongCode(code)

		for i := 1; i <= 4; i++ {
			_, err := s.uc.OTPVerify(ctx, OTPVerifyInput{PhoneNumber: phone, Code: bad})
			assert.ErrorIs(t, err, entity.ErrOTPMismatch, "attempt %d", i)
		}
		_, err := s.uc.OTPVerify(ctx, OTPVerifyInput{PhoneNumber: phone, Code: bad})
		assert.ErrorIs(t, err, entity.ErrOTPAttemptsExceeded)

		_, err = s.uc.OTPVerify(ctx, OTPVerifyInput{PhoneNumber: phone, Code: code})
		requireCode(t, err, goerror.CodeBadRequest)
		assert.ErrorIs(t, err, entity.ErrOTPAttemptsExceeded)
		assert.EqualValues(t, entity.OTPMaxAttempts, s.repo.otps[0].Attempts)
	})

	t.Run("expired code fails even when correct", func(t *testing.T) {
		s := newSuite(t)
		ctx := context.Background()
		require.NoError(t, s.uc.OTPSend(ctx, OTPSendInput{PhoneNumber: phone}))
		code := s.sms.lastCode(t)
		s.clock.now = s.clock.now.Add(entity.OTPTTL)

		_, err := s.uc.OTPVerify(ctx, OTPVerifyInput{PhoneNumber: phone, Code: code})

		assert.ErrorIs(t, err, entity.ErrOTPNotFoundOrExpired)
		assert.Empty(t, s.repo.users)
	})

	t.Run("no pending otp", func(t *testing.T) {
		s := newSuite(t)

		_, err := s.uc.OTPVerify(context.Background(), OTPVerifyInput{PhoneNumber: phone, Code: "123456"})

		assert.ErrorIs(t, err, entity.ErrOTPNotFoundOrExpired)
	})

	t.Run("malformed code", func(t *testing.T) {
		s := newSuite(t)

		_, err := s.uc.OTPVerify(context.Background(), OTPVerifyInput{PhoneNumber: phone, Code: "12a456"})

		requireCode(t, err, goerror.CodeBadRequest)
		assert.False(t, entity.IsOTPRejection(err))
	})
}
