package entity

import "errors"

var (
	ErrOTPRateLimited       = errors.New("identity: otp requested too often")
	ErrOTPNotFoundOrExpired = errors.New("identity: no pending otp or otp expired")
	ErrOTPAttemptsExceeded  = errors.New("identity: otp attempts exceeded")
	ErrOTPMismatch          = errors.New("identity: otp code mismatch")
	ErrOTPDelivery          = errors.New("identity: otp delivery failed")

	ErrTokenInvalid = errors.New("identity: refresh token invalid or revoked")
	ErrTokenReused  = errors.New("identity: refresh token reuse detected")
)

// IsOTPRejection reports whether err is an outcome of the OTP attempt rule
// rather than an infrastructure failure.
func IsOTPRejection(err error) bool {
	return errors.Is(err, ErrOTPNotFoundOrExpired) ||
		errors.Is(err, ErrOTPAttemptsExceeded) ||
		errors.Is(err, ErrOTPMismatch)
}
