package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/shandysiswandi/coursebite/internal/pkg/instrument"
	"github.com/shandysiswandi/coursebite/internal/pkg/router"
)

const (
	healthUp   = "up"
	healthDown = "down"

	healthTimeout = 2 * time.Second
)

type pinger interface {
	Ping(ctx context.Context) error
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthResponse struct {
	Database string `json:"database" example:"up"`
	Redis    string `json:"redis" example:"up"`
}

func (r HealthResponse) healthy() bool {
	return r.Database == healthUp && r.Redis == healthUp
}

func (r HealthResponse) StatusCode() int {
	if r.healthy() {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

func (r HealthResponse) Message() string {
	if r.healthy() {
		return "Service is healthy"
	}
	return "Service is unhealthy"
}

type healthEndpoint struct {
	db    pinger
	redis pinger
	ins   instrument.Instrumentation
}

func registerHealth(r *router.Router, db, redis pinger, ins instrument.Instrumentation) {
	end := &healthEndpoint{db: db, redis: redis, ins: ins}
	r.GET("/health", end.Health)
}

// Health reports database and redis reachability.
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} router.successResponse{data=HealthResponse} "Service is healthy"
// @Failure 503 {object} router.successResponse{data=HealthResponse} "Service is unhealthy"
// @Router /health [get]
func (h *healthEndpoint) Health(r *router.Request) (any, error) {
	ctx, span := h.ins.Tracer("app.health").Start(r.Context(), "Health")
	defer span.End()

	return HealthResponse{
		Database: h.check(ctx, "database", h.db),
		Redis:    h.check(ctx, "redis", h.redis),
	}, nil
}

func (h *healthEndpoint) check(ctx context.Context, name string, p pinger) string {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		slog.ErrorContext(ctx, "health check failed", "dependency", name, "error", err)
		return healthDown
	}
	return healthUp
}
