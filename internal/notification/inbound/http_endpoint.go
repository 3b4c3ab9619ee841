package inbound

import (
	"github.com/samber/lo"
	"github.com/shandysiswandi/coursebite/internal/notification/entity"
	"github.com/shandysiswandi/coursebite/internal/notification/usecase"
	"github.com/shandysiswandi/coursebite/internal/pkg/router"
)

type HTTPEndpoint struct {
	uc uc
}

// ListNotifications returns the caller's in-app notifications.
// @Summary List notifications
// @Description Returns in-app notifications of the authenticated user, newest first.
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Param status query string false "Filter by status" Enums(all, unread, read)
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} router.successResponse{data=NotificationsResponse} "Notification list"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /notifications [get]
func (h *HTTPEndpoint) ListNotifications(r *router.Request) (any, error) {
	size, err := r.GetQueryInt32("size")
	if err != nil {
		return nil, err
	}

	page, err := r.GetQueryInt32("page")
	if err != nil {
		return nil, err
	}

	out, err := h.uc.ListNotifications(r.Context(), usecase.ListNotificationsInput{
		Status: r.GetQuery("status"),
		Page:   page,
		Size:   size,
	})
	if err != nil {
		return nil, err
	}

	return NotificationsResponse{
		Notifications: lo.Map(out.Items, func(n entity.Notification, _ int) NotificationResponse {
			return toNotificationResponse(n)
		}),
		total:  out.Total,
		unread: out.Unread,
		size:   out.Size,
		page:   out.Page,
	}, nil
}

// MarkNotificationRead marks one notification as read.
// @Summary Mark notification read
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} router.successResponse "Notification marked as read"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 404 {object} router.errorResponse "Notification not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /notifications/{id}/read [patch]
func (h *HTTPEndpoint) MarkNotificationRead(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	if err := h.uc.MarkNotificationRead(r.Context(), usecase.MarkNotificationReadInput{ID: id}); err != nil {
		return nil, err
	}

	return MarkNotificationReadResponse{}, nil
}

// MarkAllNotificationsRead marks every unread notification of the caller as read.
// @Summary Mark all notifications read
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=MarkAllNotificationsReadResponse} "All notifications marked as read"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /notifications/read-all [put]
func (h *HTTPEndpoint) MarkAllNotificationsRead(r *router.Request) (any, error) {
	n, err := h.uc.MarkAllNotificationsRead(r.Context())
	if err != nil {
		return nil, err
	}

	return MarkAllNotificationsReadResponse{Updated: n}, nil
}
