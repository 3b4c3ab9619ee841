package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/shandysiswandi/coursebite/internal/identity/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/clock"
	"github.com/shandysiswandi/coursebite/internal/pkg/config"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
	"github.com/shandysiswandi/coursebite/internal/pkg/goroutine"
	"github.com/shandysiswandi/coursebite/internal/pkg/hash"
	"github.com/shandysiswandi/coursebite/internal/pkg/instrument"
	"github.com/shandysiswandi/coursebite/internal/pkg/jwt"
	"github.com/shandysiswandi/coursebite/internal/pkg/ratelimit"
	"github.com/shandysiswandi/coursebite/internal/pkg/sms"
	"github.com/shandysiswandi/coursebite/internal/pkg/storage"
	"github.com/shandysiswandi/coursebite/internal/pkg/uid"
	"github.com/shandysiswandi/coursebite/internal/pkg/validator"
	"github.com/shandysiswandi/coursebite/internal/shared/authz"
	"go.opentelemetry.io/otel/trace"
)

type UserSignedUpEvent struct {
	UserID      int64
	PhoneNumber string
	SignedUpAt  time.Time
}

type repoMessaging interface {
	PublishUserSignedUp(ctx context.Context, msg UserSignedUpEvent) error
}

type repoDB interface {
	IssueOTP(ctx context.Context, otp entity.OTP) error
	VerifyOTP(ctx context.Context, phone string, now time.Time, matches func(string) bool, newUser entity.NewUser) (*entity.SignIn, error)

	GetUserByID(ctx context.Context, id int64) (*entity.User, error)
	GetProfile(ctx context.Context, userID int64) (*entity.Profile, error)
	ListProfiles(ctx context.Context, filter entity.ProfileListFilter) ([]entity.Profile, int64, error)
	UpdateProfile(ctx context.Context, in entity.UpdateProfile) error
	UpdateProfileAvatar(ctx context.Context, userID int64, avatarURL string) error
	ReplaceUserRoles(ctx context.Context, userID int64, roles []authz.Role) error

	GetUserRefreshToken(ctx context.Context, token string) (*entity.UserRefreshToken, error)
	RotateRefreshToken(ctx context.Context, ro entity.RotateRefreshToken) error
	RevokeRefreshToken(ctx context.Context, token string, userID int64) (bool, error)
	RevokeAllRefreshToken(ctx context.Context, userID int64) error
}

type objectStorage interface {
	PutObject(ctx context.Context, bucket, key string, r io.Reader, opts storage.PutOptions) (storage.ObjectInfo, error)
}

type authorizer interface {
	Allowed(roles []authz.Role, c authz.Capability) (bool, error)
	Capabilities(roles []authz.Role) ([]authz.Capability, error)
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	limiter       ratelimit.Limiter
	sms           sms.Sender
	validator     validator.Validator
	cfg           config.Config
	storage       objectStorage
	hmac          hash.Hash
	uid           uid.NumberID
	uuid          uid.StringID
	oid           uid.StringID
	clock         clock.Clocker
	jwt           jwt.JWT
	authz         authorizer
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Limiter       ratelimit.Limiter
	SMS           sms.Sender
	Validator     validator.Validator
	Config        config.Config
	Storage       objectStorage
	HMAC          hash.Hash
	UID           uid.NumberID
	UUID          uid.StringID
	OID           uid.StringID
	Clock         clock.Clocker
	JWT           jwt.JWT
	Authorizer    authorizer
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		limiter:       dep.Limiter,
		sms:           dep.SMS,
		validator:     dep.Validator,
		cfg:           dep.Config,
		storage:       dep.Storage,
		hmac:          dep.HMAC,
		uid:           dep.UID,
		uuid:          dep.UUID,
		oid:           dep.OID,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		authz:         dep.Authorizer,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.usecase").Start(ctx, name)
}

func (s *Usecase) authenticated(ctx context.Context) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}
	return clm, nil
}

func (s *Usecase) authenticatedAndAuthorized(ctx context.Context, c authz.Capability) (*jwt.Claims, error) {
	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	ok, err := s.authz.Allowed(authz.ParseRoles(clm.Roles), c)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check authorization", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !ok {
		slog.WarnContext(ctx, "account not allowed", "user_id", clm.UserID, "capability", c.String())
		return nil, goerror.NewBusiness("Account not allowed", goerror.CodeForbidden)
	}

	return clm, nil
}

func (s *Usecase) ensureUserActive(ctx context.Context, userID int64, status entity.UserStatus) error {
	switch status {
	case entity.UserStatusActive:
		return nil
	case entity.UserStatusBanned:
		slog.WarnContext(ctx, "user account is banned", "user_id", userID)
		return goerror.NewBusiness("account is banned", goerror.CodeForbidden)
	default:
		slog.WarnContext(ctx, "user account status is unrecognized", "user_id", userID)
		return goerror.NewBusiness("account status is unrecognized", goerror.CodeForbidden)
	}
}

func (s *Usecase) durationOr(value, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return value
}
