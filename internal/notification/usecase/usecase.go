package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/coursebite/internal/notification/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/clock"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
	"github.com/shandysiswandi/coursebite/internal/pkg/instrument"
	"github.com/shandysiswandi/coursebite/internal/pkg/jwt"
	"github.com/shandysiswandi/coursebite/internal/pkg/uid"
	"github.com/shandysiswandi/coursebite/internal/pkg/validator"
	"github.com/shandysiswandi/coursebite/internal/shared/authz"
	"go.opentelemetry.io/otel/trace"
)

type repoDB interface {
	CreateDelivery(ctx context.Context, n entity.Notification, sl entity.SMSLog) error
	ListNotifications(ctx context.Context, filter entity.ListFilter) ([]entity.Notification, int64, int64, error)
	MarkNotificationRead(ctx context.Context, userID, id int64, now time.Time) error
	MarkAllNotificationsRead(ctx context.Context, userID int64, now time.Time) (int64, error)
}

type smsSender interface {
	Send(ctx context.Context, phone, text string) bool
}

type authorizer interface {
	Allowed(roles []authz.Role, c authz.Capability) (bool, error)
}

type Usecase struct {
	repoDB    repoDB
	sms       smsSender
	validator validator.Validator
	uid       uid.NumberID
	clock     clock.Clocker
	authz     authorizer
	ins       instrument.Instrumentation
}

type Dependency struct {
	RepoDB     repoDB
	SMS        smsSender
	Validator  validator.Validator
	UID        uid.NumberID
	Clock      clock.Clocker
	Authorizer authorizer
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:    dep.RepoDB,
		sms:       dep.SMS,
		validator: dep.Validator,
		uid:       dep.UID,
		clock:     dep.Clock,
		authz:     dep.Authorizer,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}

// reader returns the claims of a caller allowed to read their own notifications.
func (s *Usecase) reader(ctx context.Context) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	ok, err := s.authz.Allowed(authz.ParseRoles(clm.Roles), authz.CapNotificationReadOwn)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check authorization", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !ok {
		slog.WarnContext(ctx, "account not allowed", "user_id", clm.UserID, "capability", authz.CapNotificationReadOwn.String())
		return nil, goerror.NewBusiness("Account not allowed", goerror.CodeForbidden)
	}

	return clm, nil
}
