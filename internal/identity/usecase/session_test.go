package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/shandysiswandi/coursebite/internal/identity/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signUp(t *testing.T, s *suite) *OTPVerifyOutput {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.uc.OTPSend(ctx, OTPSendInput{PhoneNumber: phone}))
	out, err := s.uc.OTPVerify(ctx, OTPVerifyInput{PhoneNumber: phone, Code: s.sms.lastCode(t)})
	require.NoError(t, err)
	return out
}

func TestUsecase_Logout(t *testing.T) {
	t.Run("revoked token cannot refresh and cannot be revoked twice", func(t *testing.T) {
		s := newSuite(t)
		out := signUp(t, s)
		ctx := withAuth(out.User.ID)

		require.NoError(t, s.uc.Logout(ctx, LogoutInput{RefreshToken: out.RefreshToken}))

		_, err := s.uc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: out.RefreshToken})
		requireCode(t, err, goerror.CodeUnauthorized)
		assert.ErrorIs(t, err, entity.ErrTokenInvalid)

		err = s.uc.Logout(ctx, LogoutInput{RefreshToken: out.RefreshToken})
		requireCode(t, err, goerror.CodeBadRequest)
		assert.ErrorIs(t, err, entity.ErrTokenInvalid)
	})

	t.Run("malformed token", func(t *testing.T) {
		s := newSuite(t)

		err := s.uc.Logout(withAuth(1), LogoutInput{RefreshToken: "short"})

		requireCode(t, err, goerror.CodeBadRequest)
		assert.ErrorIs(t, err, entity.ErrTokenInvalid)
	})

	t.Run("non hex token of the right length", func(t *testing.T) {
		s := newSuite(t)
		out := signUp(t, s)

		err := s.uc.Logout(withAuth(out.User.ID), LogoutInput{RefreshToken: strings.Repeat("z", 64)})

		requireCode(t, err, goerror.CodeBadRequest)
		assert.ErrorIs(t, err, entity.ErrTokenInvalid)
		assert.False(t, s.repo.tokens[hashToken(t, out.RefreshToken)].revoked)
	})

	t.Run("padded token is rejected", func(t *testing.T) {
		s := newSuite(t)
		out := signUp(t, s)

		err := s.uc.Logout(withAuth(out.User.ID), LogoutInput{RefreshToken: " " + out.RefreshToken + " "})

		assert.ErrorIs(t, err, entity.ErrTokenInvalid)
	})

	t.Run("token of another user", func(t *testing.T) {
		s := newSuite(t)
		out := signUp(t, s)

		err := s.uc.Logout(withAuth(out.User.ID+100), LogoutInput{RefreshToken: out.RefreshToken})

		assert.ErrorIs(t, err, entity.ErrTokenInvalid)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		s := newSuite(t)

		err := s.uc.Logout(context.Background(), LogoutInput{RefreshToken: strings.Repeat("a", 64)})

		requireCode(t, err, goerror.CodeUnauthorized)
	})
}

func TestUsecase_RefreshToken(t *testing.T) {
	t.Run("rotates and detects reuse", func(t *testing.T) {
		s := newSuite(t)
		out := signUp(t, s)
		ctx := context.Background()

		rotated, err := s.uc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: out.RefreshToken})
		require.NoError(t, err)
		assert.NotEqual(t, out.RefreshToken, rotated.RefreshToken)
		assert.Equal(t, fmt.Sprintf("access-%d-student", out.User.ID), rotated.AccessToken)

		_, err = s.uc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: out.RefreshToken})
		requireCode(t, err, goerror.CodeUnauthorized)
		assert.ErrorIs(t, err, entity.ErrTokenReused)

		_, err = s.uc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: rotated.RefreshToken})
		assert.ErrorIs(t, err, entity.ErrTokenInvalid)
	})

	t.Run("expired", func(t *testing.T) {
		s := newSuite(t)
		out := signUp(t, s)
		s.clock.now = s.clock.now.Add(s.uc.refreshTokenTTL())

		_, err := s.uc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: out.RefreshToken})

		assert.ErrorIs(t, err, entity.ErrTokenInvalid)
	})

	t.Run("unknown", func(t *testing.T) {
		s := newSuite(t)

		_, err := s.uc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: strings.Repeat("b", 64)})

		requireCode(t, err, goerror.CodeUnauthorized)
	})

	t.Run("logout all revokes every session", func(t *testing.T) {
		s := newSuite(t)
		out := signUp(t, s)

		require.NoError(t, s.uc.LogoutAll(withAuth(out.User.ID)))
		_, err := s.uc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: out.RefreshToken})

		assert.ErrorIs(t, err, entity.ErrTokenInvalid)
	})
}
