// Package ratelimit gates repeated actions with a single Redis marker per key.
//
// A marker is set with SET NX and a TTL: while it is alive every further Allow
// for the same key is denied. Exactly one concurrent caller wins a window.
package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrInvalidWindow is returned when Allow is called with a non-positive TTL.
var ErrInvalidWindow = errors.New("ratelimit: window must be positive")

// Limiter allows one action per key per window.
type Limiter interface {
	Allow(ctx context.Context, key string, window time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
	Remaining(ctx context.Context, key string) (time.Duration, error)
}

// Redis is a Limiter backed by go-redis.
type Redis struct {
	client redis.Cmdable
	prefix string
}

// NewRedis builds a limiter. prefix is prepended to every key and may be empty.
func NewRedis(client redis.Cmdable, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

// Allow reports whether the caller may proceed and, if so, starts a new window.
func (r *Redis) Allow(ctx context.Context, key string, window time.Duration) (bool, error) {
	if window <= 0 {
		return false, ErrInvalidWindow
	}

	acquired, err := r.client.SetNX(ctx, r.prefix+key, "true", window).Result()
	if err != nil {
		return false, err
	}

	return acquired, nil
}

// Release ends the window for key early.
func (r *Redis) Release(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

// Remaining returns how long the window for key stays closed. Zero means open.
func (r *Redis) Remaining(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := r.client.TTL(ctx, r.prefix+key).Result()
	if err != nil {
		return 0, err
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}
