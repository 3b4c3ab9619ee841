package inbound

import (
	"net/http"
	"time"

	"github.com/shandysiswandi/coursebite/internal/identity/entity"
	"github.com/shandysiswandi/coursebite/internal/shared/authz"
)

type OTPSendRequest struct {
	PhoneNumber string `json:"phone_number"`
}

type OTPSendResponse struct{}

func (OTPSendResponse) StatusCode() int {
	return http.StatusAccepted
}

func (OTPSendResponse) Message() string {
	return "OTP code has been sent"
}

type OTPVerifyRequest struct {
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"code"`
}

type OTPVerifyResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
	created      bool
}

func (r OTPVerifyResponse) Message() string {
	if r.created {
		return "Sign up"
	}
	return "Sign in"
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutResponse struct{}

func (LogoutResponse) Message() string {
	return "Logged out"
}

type UserResponse struct {
	ID          int64    `json:"id,string"`
	PhoneNumber string   `json:"phone_number"`
	Roles       []string `json:"roles"`
}

func toUserResponse(u entity.User) UserResponse {
	roles := authz.RoleNames(u.Roles)
	if roles == nil {
		roles = []string{}
	}
	return UserResponse{ID: u.ID, PhoneNumber: u.PhoneNumber, Roles: roles}
}

type ProfileUpdateRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	NationalID string `json:"national_id"`
	Email      string `json:"email"`
	Bio        string `json:"bio"`
	JobTitle   string `json:"job_title"`
	BirthDate  string `json:"birth_date" example:"1995-04-12"`
	Province   string `json:"province"`
	City       string `json:"city"`
	Address    string `json:"address"`
}

type ProfileResponse struct {
	User             UserResponse `json:"user"`
	FirstName        string       `json:"first_name"`
	LastName         string       `json:"last_name"`
	FullName         string       `json:"full_name"`
	NationalID       string       `json:"national_id"`
	Email            string       `json:"email"`
	AvatarURL        string       `json:"avatar_url"`
	Bio              string       `json:"bio"`
	JobTitle         string       `json:"job_title"`
	BirthDate        *string      `json:"birth_date"`
	Province         string       `json:"province"`
	City             string       `json:"city"`
	Address          string       `json:"address"`
	MembershipDate   time.Time    `json:"membership_date"`
	IsComplete       bool         `json:"is_complete"`
	IncompleteFields []string     `json:"incomplete_fields"`
}

func toProfileResponse(p entity.Profile) ProfileResponse {
	var birth *string
	if p.BirthDate != nil {
		bd := p.BirthDate.Format(time.DateOnly)
		birth = &bd
	}

	incomplete := p.IncompleteFields()
	if incomplete == nil {
		incomplete = []string{}
	}

	return ProfileResponse{
		User:             toUserResponse(p.User),
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		FullName:         p.FullName(),
		NationalID:       p.NationalID,
		Email:            p.Email,
		AvatarURL:        p.AvatarURL,
		Bio:              p.Bio,
		JobTitle:         p.JobTitle,
		BirthDate:        birth,
		Province:         p.Province,
		City:             p.City,
		Address:          p.Address,
		MembershipDate:   p.MembershipDate,
		IsComplete:       len(incomplete) == 0,
		IncompleteFields: incomplete,
	}
}

type ProfileAvatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}

type ProfilePermissionsResponse struct {
	Permissions []string `json:"permissions"`
}

type ProfilesResponse struct {
	Profiles []ProfileResponse `json:"profiles"`
	// meta
	total int64
	size  int32
	page  int32
}

func (r ProfilesResponse) Meta() map[string]any {
	return map[string]any{
		"total": r.total,
		"size":  r.size,
		"page":  r.page,
	}
}

type UserRolesUpdateRequest struct {
	Roles []string `json:"roles"`
}
