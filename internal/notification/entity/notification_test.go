package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnrollmentMessage(t *testing.T) {
	msg := EnrollmentMessage("Go Basics", "Spring 2026")

	assert.Equal(t, CategoryEnrollment, msg.Category)
	assert.Equal(t, "You are enrolled in Go Basics (Spring 2026). See you in class!", msg.Body)
	assert.Equal(t, CategoryWelcome, WelcomeMessage().Category)
}

func TestSMSStatusOf(t *testing.T) {
	assert.Equal(t, SMSStatusSent, SMSStatusOf(true))
	assert.Equal(t, SMSStatusFailed, SMSStatusOf(false))
}

func TestNotification_IsRead(t *testing.T) {
	now := time.Now()

	assert.False(t, Notification{}.IsRead())
	assert.True(t, Notification{ReadAt: &now}.IsRead())
}

func TestNotificationStatus_Valid(t *testing.T) {
	assert.True(t, NotificationStatusUnread.Valid())
	assert.True(t, NotificationStatusAll.Valid())
	assert.False(t, NotificationStatus("archived").Valid())
}
