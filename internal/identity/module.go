package identity

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/coursebite/internal/identity/inbound"
	"github.com/shandysiswandi/coursebite/internal/identity/outbound/db"
	"github.com/shandysiswandi/coursebite/internal/identity/outbound/mq"
	"github.com/shandysiswandi/coursebite/internal/identity/usecase"
	"github.com/shandysiswandi/coursebite/internal/pkg/clock"
	"github.com/shandysiswandi/coursebite/internal/pkg/config"
	"github.com/shandysiswandi/coursebite/internal/pkg/goroutine"
	"github.com/shandysiswandi/coursebite/internal/pkg/hash"
	"github.com/shandysiswandi/coursebite/internal/pkg/instrument"
	"github.com/shandysiswandi/coursebite/internal/pkg/jwt"
	"github.com/shandysiswandi/coursebite/internal/pkg/messaging"
	"github.com/shandysiswandi/coursebite/internal/pkg/ratelimit"
	"github.com/shandysiswandi/coursebite/internal/pkg/router"
	"github.com/shandysiswandi/coursebite/internal/pkg/sms"
	"github.com/shandysiswandi/coursebite/internal/pkg/storage"
	"github.com/shandysiswandi/coursebite/internal/pkg/uid"
	"github.com/shandysiswandi/coursebite/internal/pkg/validator"
	"github.com/shandysiswandi/coursebite/internal/shared/authz"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Authorizer *authz.Authorizer          `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Limiter    ratelimit.Limiter          `validate:"required"`
	SMS        sms.Sender                 `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Storage    storage.Storage            `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	OID        uid.StringID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbIdentity := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        dbIdentity,
		RepoMessaging: repoMsg,
		Limiter:       dep.Limiter,
		SMS:           dep.SMS,
		Validator:     dep.Validator,
		Config:        dep.Config,
		Storage:       dep.Storage,
		HMAC:          dep.HMAC,
		UID:           dep.UID,
		UUID:          dep.UUID,
		OID:           dep.OID,
		Clock:         dep.Clock,
		JWT:           dep.JWT,
		Authorizer:    dep.Authorizer,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
