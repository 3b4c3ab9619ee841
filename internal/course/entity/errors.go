package entity

import "errors"

var (
	ErrEditionInactive  = errors.New("course: edition is not active")
	ErrEnrollmentClosed = errors.New("course: enrollment window is closed")
	ErrAlreadyEnrolled  = errors.New("course: user already enrolled")
	ErrNoSeats          = errors.New("course: no seats available")
)

// IsEnrollmentRejection reports whether err is a business refusal of an enrollment.
func IsEnrollmentRejection(err error) bool {
	return errors.Is(err, ErrEditionInactive) ||
		errors.Is(err, ErrEnrollmentClosed) ||
		errors.Is(err, ErrAlreadyEnrolled) ||
		errors.Is(err, ErrNoSeats)
}
