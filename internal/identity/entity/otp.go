package entity

import (
	"crypto/rand"
	"math/big"
	"time"
)

const (
	OTPCodeLength   = 6
	OTPTTL          = 2 * time.Minute
	OTPMaxAttempts  = 5
	OTPResendWindow = 60 * time.Second
)

// OTP is one issued code for a phone number. Only the HMAC of the code is kept.
type OTP struct {
	ID          int64
	PhoneNumber string
	CodeHash    string
	Attempts    int16
	IsVerified  bool
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// IsExpired reports whether the code can no longer be used at now.
func (o *OTP) IsExpired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

// Attempt applies one verification attempt and reports its outcome.
//
// An exhausted record is rejected without being touched so attempts never
// exceeds OTPMaxAttempts. Otherwise the attempt is counted before expiry and
// the code are checked; matches is not called for an expired record. A nil
// return means the code matched and the record is now verified.
func (o *OTP) Attempt(now time.Time, matches func(codeHash string) bool) error {
	if o.Attempts >= OTPMaxAttempts {
		return ErrOTPAttemptsExceeded
	}

	o.Attempts++

	if o.IsExpired(now) {
		return ErrOTPNotFoundOrExpired
	}

	if !matches(o.CodeHash) {
		if o.Attempts >= OTPMaxAttempts {
			return ErrOTPAttemptsExceeded
		}
		return ErrOTPMismatch
	}

	o.IsVerified = true
	return nil
}

// GenerateOTPCode returns a uniformly random numeric code of OTPCodeLength digits.
func GenerateOTPCode() (string, error) {
	upper := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, upper)
	if err != nil {
		return "", err
	}

	code := n.String()
	for len(code) < OTPCodeLength {
		code = "0" + code
	}
	return code, nil
}
