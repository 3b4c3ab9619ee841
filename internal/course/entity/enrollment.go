package entity

import "time"

type Enrollment struct {
	ID              int64
	EditionID       int64
	UserID          int64
	PurchasedBy     int64
	IsActive        bool
	AccessExpiresAt *time.Time
	EnrolledAt      time.Time

	CourseTitle  string
	EditionTitle string
}

type NewEnrollment struct {
	ID          int64
	EditionID   int64
	UserID      int64
	PurchasedBy int64
	Now         time.Time
}

// HasAccess reports whether the enrollment still opens the edition content.
func (e Enrollment) HasAccess(now time.Time) bool {
	if !e.IsActive {
		return false
	}
	return e.AccessExpiresAt == nil || now.Before(*e.AccessExpiresAt)
}
