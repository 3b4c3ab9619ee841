package inbound

import (
	"strconv"
	"time"

	"github.com/shandysiswandi/coursebite/internal/notification/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/valueobject"
)

type NotificationResponse struct {
	ID        string              `json:"id"`
	Category  string              `json:"category" example:"enrollment"`
	Title     string              `json:"title"`
	Body      string              `json:"body"`
	Data      valueobject.JSONMap `json:"data"`
	IsRead    bool                `json:"is_read"`
	ReadAt    *time.Time          `json:"read_at"`
	CreatedAt time.Time           `json:"created_at"`
}

func toNotificationResponse(n entity.Notification) NotificationResponse {
	data := n.Data
	if data == nil {
		data = valueobject.JSONMap{}
	}

	return NotificationResponse{
		ID:        strconv.FormatInt(n.ID, 10),
		Category:  n.Category.String(),
		Title:     n.Title,
		Body:      n.Body,
		Data:      data,
		IsRead:    n.IsRead(),
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

type NotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	// meta
	total  int64
	unread int64
	size   int32
	page   int32
}

func (r NotificationsResponse) Meta() map[string]any {
	return map[string]any{
		"total":  r.total,
		"unread": r.unread,
		"size":   r.size,
		"page":   r.page,
	}
}

type MarkNotificationReadResponse struct{}

func (MarkNotificationReadResponse) Message() string {
	return "Notification marked as read"
}

type MarkAllNotificationsReadResponse struct {
	Updated int64 `json:"updated"`
}

func (MarkAllNotificationsReadResponse) Message() string {
	return "All notifications marked as read"
}
