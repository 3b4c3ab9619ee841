// Package hash provides keyed hashing for short-lived secrets.
//
// OTP codes and refresh tokens are never stored in plaintext: only their HMAC is
// persisted, and user input is verified against it in constant time.
package hash

// Hash hashes a secret and verifies plaintext input against a stored hash.
type Hash interface {
	Hash(str string) ([]byte, error)
	Verify(hashed, str string) bool
}
