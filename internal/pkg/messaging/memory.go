package messaging

import (
	"context"
	"errors"
	"io"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// ErrMemoryHandlerRequired is returned when Consume is called with a nil handler.
var ErrMemoryHandlerRequired = errors.New("messaging: memory handler is required")

// Memory is an in-process broker. Every active Consume call on a topic receives
// every message published to it; messages published with no consumer are dropped.
type Memory struct {
	mu     sync.RWMutex
	subs   map[string][]chan *memoryMessage
	closed bool
	seq    atomic.Uint64
}

// NewMemory creates an in-process broker.
func NewMemory() *Memory {
	return &Memory{subs: map[string][]chan *memoryMessage{}}
}

// Close stops accepting publishes. Running consumers exit when their context ends.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Publish fans the message out to the current consumers of destination.
func (m *Memory) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if msg.Delay > 0 {
		return PublishResult{}, ErrUnsupported
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return PublishResult{}, io.ErrClosedPipe
	}

	now := time.Now()
	id := strconv.FormatUint(m.seq.Add(1), 10)
	for _, ch := range m.subs[destination] {
		mm := &memoryMessage{
			id:      id,
			topic:   destination,
			body:    append([]byte(nil), msg.Body...),
			key:     append([]byte(nil), msg.Key...),
			headers: append([]Header(nil), msg.Headers...),
			ts:      now,
		}
		select {
		case ch <- mm:
		case <-ctx.Done():
			return PublishResult{}, ctx.Err()
		}
	}

	return PublishResult{MessageID: id, Topic: destination, Timestamp: now}, nil
}

// Consume delivers messages on source to handler until ctx is canceled.
func (m *Memory) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if handler == nil {
		return ErrMemoryHandlerRequired
	}
	co := newConsumeOptions(opts...)
	concurrency := concurrencyOrDefault(co.concurrency, 1)

	ch := make(chan *memoryMessage, 64)
	if err := m.subscribe(source, ch); err != nil {
		return err
	}
	defer m.unsubscribe(source, ch)

	var wg sync.WaitGroup
	for range concurrency {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case msg := <-ch:
					herr := callHandlerWithRecover(ctx, "memory", func() error {
						return handler(ctx, msg)
					})
					if co.autoAck {
						//nolint:errcheck // in-process ack cannot fail
						autoAck(ctx, msg, herr)
					}
				}
			}
		})
	}

	<-ctx.Done()
	wg.Wait()
	return ctx.Err()
}

func (m *Memory) subscribe(topic string, ch chan *memoryMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return io.ErrClosedPipe
	}
	m.subs[topic] = append(m.subs[topic], ch)
	return nil
}

func (m *Memory) unsubscribe(topic string, ch chan *memoryMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	subs := m.subs[topic]
	for i := range subs {
		if subs[i] == ch {
			m.subs[topic] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

type memoryMessage struct {
	id      string
	topic   string
	body    []byte
	key     []byte
	headers []Header
	ts      time.Time

	responded atomic.Bool
	acked     atomic.Bool
}

func (m *memoryMessage) hasResponded() bool   { return m.responded.Load() }
func (m *memoryMessage) Body() []byte         { return m.body }
func (m *memoryMessage) Key() []byte          { return m.key }
func (m *memoryMessage) Headers() []Header    { return m.headers }
func (m *memoryMessage) ID() string           { return m.id }
func (m *memoryMessage) Topic() string        { return m.topic }
func (m *memoryMessage) Timestamp() time.Time { return m.ts }

func (m *memoryMessage) Ack(context.Context) error {
	if !m.responded.Swap(true) {
		m.acked.Store(true)
	}
	return nil
}

func (m *memoryMessage) Nack(context.Context) error {
	m.responded.Store(true)
	return nil
}
