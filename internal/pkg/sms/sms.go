// Package sms delivers text messages to phone numbers.
//
// Senders never return transport errors to callers: Send reports plain success
// or failure, and failures are logged here with their cause.
package sms

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// ErrUnknownDriver is returned by New for an unsupported driver name.
var ErrUnknownDriver = errors.New("sms: unknown driver")

// Sender sends a single SMS.
type Sender interface {
	Send(ctx context.Context, phone, text string) bool
}

// Driver selects a Sender implementation.
type Driver string

const (
	// DriverLog logs messages instead of sending them.
	DriverLog Driver = "log"
	// DriverKavenegar sends through the Kavenegar REST API.
	DriverKavenegar Driver = "kavenegar"
)

// Config configures New.
type Config struct {
	Driver Driver
	// Region is the default region used to normalize local numbers (e.g. "IR").
	Region string

	// Kavenegar settings.
	BaseURL    string
	APIKey     string
	SenderLine string
	Timeout    time.Duration
	MaxRetries uint64

	// HTTPClient overrides the client used by HTTP drivers.
	HTTPClient *http.Client
}

// New builds a Sender for cfg.Driver.
func New(cfg Config) (Sender, error) {
	switch cfg.Driver {
	case DriverLog, "":
		return NewLogSender(cfg.Region), nil
	case DriverKavenegar:
		return NewKavenegar(cfg)
	default:
		return nil, ErrUnknownDriver
	}
}
