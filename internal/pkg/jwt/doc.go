// Package jwt issues and verifies the short-lived access tokens handed out after a
// successful phone OTP verification.
//
// Tokens are HS512 signed and carry the user id, phone number and role names.
// The router's authentication middleware verifies them and stores the claims in
// the request context, where handlers read them with GetAuth.
package jwt
