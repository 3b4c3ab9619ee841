package inbound

import (
	"context"

	"github.com/shandysiswandi/coursebite/internal/identity/entity"
	"github.com/shandysiswandi/coursebite/internal/identity/usecase"
	"github.com/shandysiswandi/coursebite/internal/pkg/router"
	"github.com/shandysiswandi/coursebite/internal/shared/authz"
)

type uc interface {
	OTPSend(ctx context.Context, in usecase.OTPSendInput) error
	OTPVerify(ctx context.Context, in usecase.OTPVerifyInput) (*usecase.OTPVerifyOutput, error)
	RefreshToken(ctx context.Context, in usecase.RefreshTokenInput) (*usecase.RefreshTokenOutput, error)

	Logout(ctx context.Context, in usecase.LogoutInput) error
	LogoutAll(ctx context.Context) error
	Me(ctx context.Context) (*usecase.MeOutput, error)

	Profile(ctx context.Context) (*entity.Profile, error)
	ProfileUpdate(ctx context.Context, in usecase.ProfileUpdateInput) error
	ProfileUpdateAvatar(ctx context.Context, in usecase.ProfileUpdateAvatarInput) (*usecase.ProfileUpdateAvatarOutput, error)
	ProfilePermissions(ctx context.Context) ([]authz.Capability, error)

	ProfileList(ctx context.Context, in usecase.ProfileListInput) (*usecase.ProfileListOutput, error)
	ProfileDetail(ctx context.Context, in usecase.ProfileDetailInput) (*entity.Profile, error)
	UserRolesUpdate(ctx context.Context, in usecase.UserRolesUpdateInput) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Phone OTP authentication
	r.POST("/auth/otp/send", end.OTPSend)
	r.POST("/auth/otp/verify", end.OTPVerify)
	r.POST("/auth/refresh", end.RefreshToken)
	r.GET("/auth/me", end.Me)

	// Session revocation (need authenticated)
	r.POST("/logout", end.Logout)
	r.POST("/logout/all", end.LogoutAll)

	// Own profile (need authenticated)
	r.GET("/profile", end.Profile)
	r.PUT("/profile", end.ProfileUpdate)
	r.PUT("/profile/avatar", end.ProfileUpdateAvatar)
	r.GET("/profile/permissions", end.ProfilePermissions)

	// Administration (need authenticated & authorization)
	r.GET("/admin/profiles", end.ProfileList)
	r.GET("/admin/profiles/:id", end.ProfileDetail)
	r.PUT("/admin/users/:id/roles", end.UserRolesUpdate)
}
