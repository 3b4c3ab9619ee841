package inbound

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/samber/lo"
	"github.com/shandysiswandi/coursebite/internal/identity/usecase"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
	"github.com/shandysiswandi/coursebite/internal/pkg/router"
	"github.com/shandysiswandi/coursebite/internal/shared/authz"
)

// HTTPEndpoint exposes HTTP handlers for phone authentication and profile workflows.
type HTTPEndpoint struct {
	uc uc
}

// OTPSend issues a one-time code to a phone number.
// @Summary Send OTP code
// @Description Generates a 6 digit code and delivers it by SMS. A phone can request at most one code per resend window.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param request body OTPSendRequest true "OTP send payload"
// @Success 202 {object} router.successResponse{data=OTPSendResponse} "Code sent"
// @Failure 400 {object} router.errorResponse "Invalid request or rate limited"
// @Failure 502 {object} router.errorResponse "SMS delivery failed"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /auth/otp/send [post]
func (h *HTTPEndpoint) OTPSend(r *router.Request) (any, error) {
	var req OTPSendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.OTPSend(r.Context(), usecase.OTPSendInput{PhoneNumber: req.PhoneNumber}); err != nil {
		return nil, err
	}

	return OTPSendResponse{}, nil
}

// OTPVerify checks a one-time code and opens a session, creating the account on first use.
// @Summary Verify OTP code
// @Description Verifies the latest code of the phone number and returns access/refresh tokens.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param request body OTPVerifyRequest true "OTP verify payload"
// @Success 200 {object} router.successResponse{data=OTPVerifyResponse} "Session issued"
// @Failure 400 {object} router.errorResponse "Invalid, expired or exhausted code"
// @Failure 403 {object} router.errorResponse "Account banned"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /auth/otp/verify [post]
func (h *HTTPEndpoint) OTPVerify(r *router.Request) (any, error) {
	var req OTPVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.OTPVerify(r.Context(), usecase.OTPVerifyInput{
		PhoneNumber: req.PhoneNumber,
		Code:        req.Code,
		IP:          r.RemoteAddr,
		UserAgent:   r.UserAgent(),
	})
	if err != nil {
		return nil, err
	}

	return OTPVerifyResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         toUserResponse(resp.User),
		created:      resp.Created,
	}, nil
}

// RefreshToken rotates a refresh token and issues a new access token.
// @Summary Refresh session
// @Description Exchanges a refresh token for a new token pair. Reusing a rotated token revokes every session of the user.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param request body RefreshTokenRequest true "Refresh payload"
// @Success 200 {object} router.successResponse{data=RefreshTokenResponse} "Token pair"
// @Failure 401 {object} router.errorResponse "Invalid or expired refresh token"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /auth/refresh [post]
func (h *HTTPEndpoint) RefreshToken(r *router.Request) (any, error) {
	var req RefreshTokenRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.RefreshToken(r.Context(), usecase.RefreshTokenInput{
		RefreshToken: req.RefreshToken,
		IP:           r.RemoteAddr,
		UserAgent:    r.UserAgent(),
	})
	if err != nil {
		return nil, err
	}

	return RefreshTokenResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

// Me returns the identity behind the access token.
// @Summary Current user
// @Tags Identity, Authentication
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=UserResponse} "Current user"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Router /auth/me [get]
func (h *HTTPEndpoint) Me(r *router.Request) (any, error) {
	resp, err := h.uc.Me(r.Context())
	if err != nil {
		return nil, err
	}

	roles := authz.RoleNames(resp.Roles)
	if roles == nil {
		roles = []string{}
	}

	return UserResponse{ID: resp.UserID, PhoneNumber: resp.PhoneNumber, Roles: roles}, nil
}

// Logout revokes one refresh token of the caller.
// @Summary Logout
// @Tags Identity, Authentication
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body LogoutRequest true "Logout payload"
// @Success 200 {object} router.successResponse{data=LogoutResponse} "Logged out"
// @Failure 400 {object} router.errorResponse "Invalid or already revoked refresh token"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /logout [post]
func (h *HTTPEndpoint) Logout(r *router.Request) (any, error) {
	var req LogoutRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.Logout(r.Context(), usecase.LogoutInput{RefreshToken: req.RefreshToken}); err != nil {
		return nil, err
	}

	return LogoutResponse{}, nil
}

// LogoutAll revokes every refresh token of the caller.
// @Summary Logout from all devices
// @Tags Identity, Authentication
// @Security BearerAuth
// @Success 204 "No content"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /logout/all [post]
func (h *HTTPEndpoint) LogoutAll(r *router.Request) (any, error) {
	return nil, h.uc.LogoutAll(r.Context())
}

// Profile retrieves the caller's profile.
// @Summary Get profile
// @Tags Identity, Profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=ProfileResponse} "Profile result"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /profile [get]
func (h *HTTPEndpoint) Profile(r *router.Request) (any, error) {
	resp, err := h.uc.Profile(r.Context())
	if err != nil {
		return nil, err
	}

	return toProfileResponse(*resp), nil
}

// ProfileUpdate replaces the editable profile fields of the caller.
// @Summary Update profile
// @Tags Identity, Profile
// @Security BearerAuth
// @Accept json
// @Param request body ProfileUpdateRequest true "Profile payload"
// @Success 204 "No content"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 409 {object} router.errorResponse "Email or national id already used"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /profile [put]
func (h *HTTPEndpoint) ProfileUpdate(r *router.Request) (any, error) {
	var req ProfileUpdateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.ProfileUpdate(r.Context(), usecase.ProfileUpdateInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		NationalID: req.NationalID,
		Email:      req.Email,
		Bio:        req.Bio,
		JobTitle:   req.JobTitle,
		BirthDate:  req.BirthDate,
		Province:   req.Province,
		City:       req.City,
		Address:    req.Address,
	})
}

// ProfileUpdateAvatar uploads a new avatar image.
// @Summary Update avatar
// @Tags Identity, Profile
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param avatar formData file true "Avatar image (jpeg, png or webp)"
// @Success 200 {object} router.successResponse{data=ProfileAvatarResponse} "Avatar uploaded"
// @Failure 400 {object} router.errorResponse "Invalid file"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /profile/avatar [put]
func (h *HTTPEndpoint) ProfileUpdateAvatar(r *router.Request) (any, error) {
	ctx := r.Context()

	file, err := r.StreamSingleFile("avatar")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			slog.ErrorContext(ctx, "failed to close file", "error", err)
		}
	}()

	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, goerror.NewInvalidFormat()
	}

	resp, err := h.uc.ProfileUpdateAvatar(ctx, usecase.ProfileUpdateAvatarInput{
		File:        io.MultiReader(bytes.NewReader(head[:n]), file),
		ContentType: http.DetectContentType(head[:n]),
	})
	if err != nil {
		return nil, err
	}

	return ProfileAvatarResponse{AvatarURL: resp.AvatarURL}, nil
}

// ProfilePermissions lists the capabilities granted by the caller's roles.
// @Summary Get permissions
// @Tags Identity, Profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=ProfilePermissionsResponse} "Capabilities"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Router /profile/permissions [get]
func (h *HTTPEndpoint) ProfilePermissions(r *router.Request) (any, error) {
	caps, err := h.uc.ProfilePermissions(r.Context())
	if err != nil {
		return nil, err
	}

	return ProfilePermissionsResponse{
		Permissions: lo.Map(caps, func(c authz.Capability, _ int) string { return string(c) }),
	}, nil
}

// ProfileList lists user profiles for administrators.
// @Summary List profiles
// @Tags Identity, Admin
// @Security BearerAuth
// @Produce json
// @Param search query string false "Phone number, name or email fragment"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} router.successResponse{data=ProfilesResponse} "Profiles"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /admin/profiles [get]
func (h *HTTPEndpoint) ProfileList(r *router.Request) (any, error) {
	size, err := r.GetQueryInt32("size")
	if err != nil {
		return nil, err
	}

	page, err := r.GetQueryInt32("page")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.ProfileList(r.Context(), usecase.ProfileListInput{
		Search: r.GetQuery("search"),
		Page:   page,
		Size:   size,
	})
	if err != nil {
		return nil, err
	}

	profiles := make([]ProfileResponse, 0, len(resp.Profiles))
	for _, p := range resp.Profiles {
		profiles = append(profiles, toProfileResponse(p))
	}

	return ProfilesResponse{
		Profiles: profiles,
		total:    resp.Total,
		size:     resp.Size,
		page:     resp.Page,
	}, nil
}

// ProfileDetail returns one user profile for administrators.
// @Summary Get profile by user id
// @Tags Identity, Admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} router.successResponse{data=ProfileResponse} "Profile"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "Profile not found"
// @Router /admin/profiles/{id} [get]
func (h *HTTPEndpoint) ProfileDetail(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.ProfileDetail(r.Context(), usecase.ProfileDetailInput{UserID: id})
	if err != nil {
		return nil, err
	}

	return toProfileResponse(*resp), nil
}

// UserRolesUpdate replaces the role set of a user.
// @Summary Update user roles
// @Tags Identity, Admin
// @Security BearerAuth
// @Accept json
// @Param id path int true "User ID"
// @Param request body UserRolesUpdateRequest true "Roles payload"
// @Success 204 "No content"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "User not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /admin/users/{id}/roles [put]
func (h *HTTPEndpoint) UserRolesUpdate(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req UserRolesUpdateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.UserRolesUpdate(r.Context(), usecase.UserRolesUpdateInput{
		UserID: id,
		Roles:  req.Roles,
	})
}
