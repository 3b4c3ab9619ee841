// Package validator provides a small validation abstraction for request and
// domain structs.
//
// Besides the stock go-playground rules it registers the project tags:
//
//	phone       11 digits starting with 09
//	otpcode     exactly 6 digits
//	nationalid  exactly 10 digits
package validator

// Validator validates a struct and returns a V10ValidationError when fields fail.
type Validator interface {
	Validate(data any) error
}
