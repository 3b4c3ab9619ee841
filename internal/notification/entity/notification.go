package entity

import (
	"fmt"
	"time"

	"github.com/shandysiswandi/coursebite/internal/pkg/valueobject"
)

type Category string

const (
	CategoryWelcome    Category = "welcome"
	CategoryEnrollment Category = "enrollment"
)

func (c Category) String() string {
	return string(c)
}

type Notification struct {
	ID        int64
	UserID    int64
	Category  Category
	Title     string
	Body      string
	Data      valueobject.JSONMap
	ReadAt    *time.Time
	CreatedAt time.Time
}

func (n Notification) IsRead() bool {
	return n.ReadAt != nil
}

type SMSStatus string

const (
	SMSStatusSent   SMSStatus = "sent"
	SMSStatusFailed SMSStatus = "failed"
)

// SMSStatusOf maps a sender result to the logged status.
func SMSStatusOf(delivered bool) SMSStatus {
	if delivered {
		return SMSStatusSent
	}
	return SMSStatusFailed
}

// SMSLog records one SMS attempt. UserID is nil when the receiver has no account.
type SMSLog struct {
	ID          int64
	UserID      *int64
	PhoneNumber string
	Category    Category
	Status      SMSStatus
	CreatedAt   time.Time
}

type ListFilter struct {
	UserID int64
	Status NotificationStatus
	Size   int32
	Offset int32
}

// Message is the rendered text of a notification, shared by the SMS and in-app channels.
type Message struct {
	Category Category
	Title    string
	Body     string
}

func WelcomeMessage() Message {
	return Message{
		Category: CategoryWelcome,
		Title:    "Welcome to Coursebite",
		Body:     "Welcome to Coursebite! Complete your profile to get the most out of your courses.",
	}
}

func EnrollmentMessage(courseTitle, editionTitle string) Message {
	return Message{
		Category: CategoryEnrollment,
		Title:    "Enrollment confirmed",
		Body:     fmt.Sprintf("You are enrolled in %s (%s). See you in class!", courseTitle, editionTitle),
	}
}
