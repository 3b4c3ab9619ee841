// Package config exposes typed read access to the application configuration.
//
// Values come from a YAML file and may be overridden by environment variables
// prefixed with COURSEBITE_, where dots in the key become underscores
// (jwt.secret -> COURSEBITE_JWT_SECRET). Missing keys read as zero values.
package config

import (
	"io"
	"time"
)

// TimeConfig reads integer values as durations of the named unit.
type TimeConfig interface {
	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration
	GetHour(key string) time.Duration
	GetDay(key string) time.Duration
}

// SignedIntConfig reads signed integers.
type SignedIntConfig interface {
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
}

// UnsignedIntConfig reads unsigned integers.
type UnsignedIntConfig interface {
	GetUint(key string) uint
	GetUint16(key string) uint16
	GetUint32(key string) uint32
	GetUint64(key string) uint64
}

// FloatConfig reads floating-point values.
type FloatConfig interface {
	GetFloat32(key string) float32
	GetFloat64(key string) float64
}

// Config is the application configuration source.
type Config interface {
	io.Closer
	TimeConfig
	SignedIntConfig
	UnsignedIntConfig
	FloatConfig

	GetBool(key string) bool
	GetString(key string) string

	// GetBinary decodes a base64 value.
	GetBinary(key string) []byte

	// GetArray splits a "<a>,<b>,..." value, trimming blanks and dropping empty items.
	GetArray(key string) []string

	// GetMap parses a "<k1>:<v1>,<k2>:<v2>" value.
	GetMap(key string) map[string]string
}
