package app

import (
	"context"
	"log/slog"
	"os"

	"github.com/shandysiswandi/coursebite/internal/course"
	"github.com/shandysiswandi/coursebite/internal/identity"
	"github.com/shandysiswandi/coursebite/internal/notification"
)

func (a *App) initModules() {
	registerHealth(a.router, a.dbConn, pingFunc(func(ctx context.Context) error {
		return a.cacheConn.Ping(ctx).Err()
	}), a.ins)

	if a.config.GetBool("modules.identity.enabled") {
		if err := identity.New(identity.Dependency{
			DBConn:     a.dbConn,
			Goroutine:  a.goroutine,
			Authorizer: a.authorizer,
			Router:     a.router,
			Limiter:    a.limiter,
			SMS:        a.sms,
			Messaging:  a.messaging,
			Storage:    a.storage,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			UUID:       a.uuid,
			OID:        a.oid,
			HMAC:       a.hmac,
			Clock:      a.clock,
			Validator:  a.validator,
			JWT:        a.jwt,
		}); err != nil {
			slog.Error("failed to init module identity", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.course.enabled") {
		if err := course.New(course.Dependency{
			DBConn:     a.dbConn,
			Sequence:   a.sequence,
			Goroutine:  a.goroutine,
			Authorizer: a.authorizer,
			Router:     a.router,
			Messaging:  a.messaging,
			Storage:    a.storage,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			UUID:       a.uuid,
			Clock:      a.clock,
			Validator:  a.validator,
		}); err != nil {
			slog.Error("failed to init module course", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.notification.enabled") {
		if err := notification.New(notification.Dependency{
			Ctx:        a.ctx,
			DBConn:     a.dbConn,
			Messaging:  a.messaging,
			SMS:        a.sms,
			Authorizer: a.authorizer,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			UUID:       a.uuid,
			Clock:      a.clock,
			Goroutine:  a.goroutine,
			Validator:  a.validator,
			Router:     a.router,
		}); err != nil {
			slog.Error("failed to init module notification", "error", err)
			os.Exit(1)
		}
	}
}
