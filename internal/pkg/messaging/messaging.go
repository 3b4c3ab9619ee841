package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrUnsupported is returned when a feature is not supported by the selected broker.
var ErrUnsupported = errors.New("messaging: unsupported operation")

// Messaging is a broker-agnostic client that can publish and consume domain events.
type Messaging interface {
	io.Closer

	Publisher
	Consumer
}

// Publisher publishes messages to a destination (topic or subject).
type Publisher interface {
	// Publish sends a message to the destination.
	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

// Consumer consumes messages from a source (topic or subject).
type Consumer interface {
	// Consume blocks, delivering messages to handler until ctx is canceled.
	Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes a received message.
//
// With auto-ack enabled a nil error acks and a non-nil error nacks the message.
type Handler func(ctx context.Context, msg Message) error

// OutgoingMessage is a message to be published.
type OutgoingMessage struct {
	// Body is the message payload.
	Body []byte
	// Key is used by Kafka for partitioning.
	Key []byte
	// Headers support arbitrary binary values and duplicate keys.
	Headers []Header
	// Delay is used for deferred delivery (when supported).
	Delay time.Duration
}

// Header is a key/value pair used for message headers.
type Header struct {
	Key   string
	Value []byte
}

// PublishResult carries optional broker-specific publish metadata.
type PublishResult struct {
	MessageID string
	Topic     string
	Timestamp time.Time
}

// Message is a received message.
type Message interface {
	// Body returns the message payload.
	Body() []byte
	// Key returns the message key.
	Key() []byte
	// Headers returns message headers.
	Headers() []Header
	// ID returns the broker message ID.
	ID() string
	// Topic returns the topic or subject the message arrived on.
	Topic() string
	// Timestamp returns the broker timestamp.
	Timestamp() time.Time
	// Ack acknowledges successful processing.
	Ack(ctx context.Context) error
}

// Nackable can request a message redelivery.
type Nackable interface {
	Nack(ctx context.Context) error
}

// HeaderValue returns the first header value named key, or "".
func HeaderValue(msg Message, key string) string {
	for _, h := range msg.Headers() {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

type responder interface {
	hasResponded() bool
	Ack(context.Context) error
	Nack(context.Context) error
}

func autoAck(ctx context.Context, msg responder, handlerErr error) error {
	if msg.hasResponded() {
		return nil
	}
	if handlerErr == nil {
		return msg.Ack(ctx)
	}
	return msg.Nack(ctx)
}

func concurrencyOrDefault(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}
