package entity

type NotificationStatus string

const (
	NotificationStatusAll    NotificationStatus = "all"
	NotificationStatusUnread NotificationStatus = "unread"
	NotificationStatusRead   NotificationStatus = "read"
)

func (s NotificationStatus) Valid() bool {
	switch s {
	case NotificationStatusAll, NotificationStatusUnread, NotificationStatusRead:
		return true
	default:
		return false
	}
}
