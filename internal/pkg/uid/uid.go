// Package uid provides identifier generators.
//
// NumberID is used for primary keys, StringID for correlation ids, object keys
// and opaque tokens.
package uid

// NumberID generates unique, roughly time-ordered 64-bit identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates unique string identifiers.
type StringID interface {
	Generate() string
}
