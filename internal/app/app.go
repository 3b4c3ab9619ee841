package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/coursebite/internal/pkg/clock"
	"github.com/shandysiswandi/coursebite/internal/pkg/config"
	"github.com/shandysiswandi/coursebite/internal/pkg/goroutine"
	"github.com/shandysiswandi/coursebite/internal/pkg/hash"
	"github.com/shandysiswandi/coursebite/internal/pkg/instrument"
	"github.com/shandysiswandi/coursebite/internal/pkg/jwt"
	"github.com/shandysiswandi/coursebite/internal/pkg/messaging"
	"github.com/shandysiswandi/coursebite/internal/pkg/ratelimit"
	"github.com/shandysiswandi/coursebite/internal/pkg/router"
	"github.com/shandysiswandi/coursebite/internal/pkg/sequence"
	"github.com/shandysiswandi/coursebite/internal/pkg/sms"
	"github.com/shandysiswandi/coursebite/internal/pkg/storage"
	"github.com/shandysiswandi/coursebite/internal/pkg/uid"
	"github.com/shandysiswandi/coursebite/internal/pkg/validator"
	"github.com/shandysiswandi/coursebite/internal/shared/authz"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine  *goroutine.Manager
	validator  validator.Validator
	clock      clock.Clocker
	hmac       hash.Hash
	uid        uid.NumberID
	oid        uid.StringID
	uuid       uid.StringID
	jwt        jwt.JWT
	authorizer *authz.Authorizer
	sequence   *sequence.Allocator

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	limiter   ratelimit.Limiter
	sms       sms.Sender
	messaging messaging.Messaging
	storage   storage.Storage

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initAuthorization()
	app.initDatabase()
	app.initCache()
	app.initSMS()
	app.initStorage()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
