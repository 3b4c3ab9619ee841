package entity

import (
	"slices"
	"strings"
	"time"

	"github.com/shandysiswandi/coursebite/internal/pkg/valueobject"
	"github.com/shandysiswandi/coursebite/internal/shared/authz"
)

type UserStatus int16

const (
	UserStatusUnknown UserStatus = 0
	UserStatusActive  UserStatus = 1
	UserStatusBanned  UserStatus = 2
)

func (us UserStatus) String() string {
	switch us {
	case UserStatusActive:
		return "Active"
	case UserStatusBanned:
		return "Banned"
	default:
		return "Unknown"
	}
}

type User struct {
	ID          int64
	PhoneNumber string
	Status      UserStatus
	Roles       []authz.Role
	CreatedAt   time.Time
}

// NewUser carries what the OTP verification path needs to create a user,
// its empty profile and its default role in one transaction.
type NewUser struct {
	ID          int64
	PhoneNumber string
	Role        authz.Role
	// Session, when set, is stored for the signed-in user in the same
	// transaction as the verification. UserID is filled in by the store.
	// It is skipped for users that are not active.
	Session *RefreshToken
}

// SignIn is the result of a successful OTP verification.
type SignIn struct {
	User    User
	Created bool
}

type Profile struct {
	User           User
	FirstName      string
	LastName       string
	NationalID     string
	Email          string
	AvatarURL      string
	Bio            string
	JobTitle       string
	BirthDate      *time.Time
	Province       string
	City           string
	Address        string
	MembershipDate time.Time
}

func (p *Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// IncompleteFields lists the fields a profile still needs before it counts as complete.
func (p *Profile) IncompleteFields() []string {
	var out []string
	if strings.TrimSpace(p.FirstName) == "" {
		out = append(out, "first_name")
	}
	if strings.TrimSpace(p.LastName) == "" {
		out = append(out, "last_name")
	}
	if strings.TrimSpace(p.Email) == "" {
		out = append(out, "email")
	}
	if strings.TrimSpace(p.NationalID) == "" {
		out = append(out, "national_id")
	}
	return out
}

func (p *Profile) IsComplete() bool {
	return len(p.IncompleteFields()) == 0
}

type UpdateProfile struct {
	UserID     int64
	FirstName  string
	LastName   string
	NationalID string
	Email      string
	Bio        string
	JobTitle   string
	BirthDate  *time.Time
	Province   string
	City       string
	Address    string
}

type ProfileListFilter struct {
	Search string
	Size   int32
	Offset int32
}

// HasRole reports whether u holds r.
func (u *User) HasRole(r authz.Role) bool {
	return slices.Contains(u.Roles, r)
}

type RefreshToken struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
	Metadata  valueobject.JSONMap
}

type UserRefreshToken struct {
	UserID                   int64
	UserPhoneNumber          string
	UserStatus               UserStatus
	UserRoles                []authz.Role
	RefreshID                int64
	RefreshRevoked           bool
	RefreshReplacedByTokenID *int64
	RefreshExpiresAt         time.Time
}

type RotateRefreshToken struct {
	NewID        int64
	OldID        int64
	UserID       int64
	NewToken     string
	NewExpiresAt time.Time
	Metadata     valueobject.JSONMap
}
