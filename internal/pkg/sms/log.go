package sms

import (
	"context"
	"log/slog"
)

// LogSender writes messages to the log and always succeeds. Used outside production.
type LogSender struct {
	region string
}

// NewLogSender creates a LogSender.
func NewLogSender(region string) *LogSender {
	return &LogSender{region: region}
}

// Send logs the message and returns true.
func (s *LogSender) Send(ctx context.Context, phone, text string) bool {
	slog.InfoContext(ctx, "sms send skipped by log driver",
		"receptor", FormatE164(phone, s.region),
		"text", text,
	)
	return true
}
