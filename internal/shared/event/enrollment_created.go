package event

const EnrollmentCreatedDestination string = "course.enrollment.created"
const EnrollmentCreatedConsumerNotification string = "course.enrollment.created.notification"

type EnrollmentCreatedMessage struct {
	EnrollmentID int64  `json:"enrollment_id,string"`
	EditionID    int64  `json:"edition_id,string"`
	UserID       int64  `json:"user_id,string"`
	PhoneNumber  string `json:"phone_number"`
	CourseTitle  string `json:"course_title"`
	EditionTitle string `json:"edition_title"`
}
