package inbound

import (
	"github.com/shandysiswandi/coursebite/internal/pkg/router"
)

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.GET("/notifications", end.ListNotifications)
	r.PATCH("/notifications/:id/read", end.MarkNotificationRead)
	r.PUT("/notifications/read-all", end.MarkAllNotificationsRead)
}
