package course

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/coursebite/internal/course/inbound"
	"github.com/shandysiswandi/coursebite/internal/course/outbound/db"
	"github.com/shandysiswandi/coursebite/internal/course/outbound/mq"
	"github.com/shandysiswandi/coursebite/internal/course/usecase"
	"github.com/shandysiswandi/coursebite/internal/pkg/clock"
	"github.com/shandysiswandi/coursebite/internal/pkg/config"
	"github.com/shandysiswandi/coursebite/internal/pkg/goroutine"
	"github.com/shandysiswandi/coursebite/internal/pkg/instrument"
	"github.com/shandysiswandi/coursebite/internal/pkg/messaging"
	"github.com/shandysiswandi/coursebite/internal/pkg/router"
	"github.com/shandysiswandi/coursebite/internal/pkg/sequence"
	"github.com/shandysiswandi/coursebite/internal/pkg/storage"
	"github.com/shandysiswandi/coursebite/internal/pkg/uid"
	"github.com/shandysiswandi/coursebite/internal/pkg/validator"
	"github.com/shandysiswandi/coursebite/internal/shared/authz"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	Sequence   *sequence.Allocator        `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Authorizer *authz.Authorizer          `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Storage    storage.Storage            `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbCourse := db.NewDB(dep.DBConn, dep.Sequence, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        dbCourse,
		RepoMessaging: repoMsg,
		Storage:       dep.Storage,
		Config:        dep.Config,
		Validator:     dep.Validator,
		UID:           dep.UID,
		UUID:          dep.UUID,
		Clock:         dep.Clock,
		Authorizer:    dep.Authorizer,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
