package messaging

import (
	"context"
	"io"
	"slices"
	"sync"
	"time"
)

// Memory is an in-process broker for single-node deployments and tests.
//
// Each queue group on a topic receives every message once; consumers sharing
// a group compete. Delivery is at-most-once: a message published while no
// consumer is subscribed is dropped, and Nack does not redeliver.
type Memory struct {
	mu     sync.RWMutex
	groups map[string]map[string]chan memoryMessage
	closed bool
}

// NewMemory returns an empty in-process broker.
func NewMemory() *Memory {
	return &Memory{groups: map[string]map[string]chan memoryMessage{}}
}

// memoryBuffer bounds how far a slow group can lag before Publish blocks.
const memoryBuffer = 64

func (m *Memory) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrDestinationRequired
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return PublishResult{}, io.ErrClosedPipe
	}

	now := time.Now()
	for _, ch := range m.groups[destination] {
		mm := memoryMessage{
			topic:   destination,
			body:    slices.Clone(msg.Body),
			key:     slices.Clone(msg.Key),
			headers: slices.Clone(msg.Headers),
			at:      now,
		}
		select {
		case ch <- mm:
		case <-ctx.Done():
			return PublishResult{}, ctx.Err()
		}
	}

	return PublishResult{Topic: destination, Timestamp: now}, nil
}

func (m *Memory) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if err := validateConsume(ctx, source, handler); err != nil {
		return err
	}
	co := newConsumeOptions(opts...)

	ch, err := m.subscribe(source, co.queueGroup)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case mm, ok := <-ch:
					if !ok {
						return
					}
					//nolint:errcheck // in-process acks cannot fail
					_ = dispatch(ctx, "memory", handler, &mm, co.autoAck)
				}
			}
		})
	}

	wg.Wait()
	return ctx.Err()
}

func (m *Memory) subscribe(topic, group string) (chan memoryMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, io.ErrClosedPipe
	}
	if m.groups[topic] == nil {
		m.groups[topic] = map[string]chan memoryMessage{}
	}
	ch, ok := m.groups[topic][group]
	if !ok {
		ch = make(chan memoryMessage, memoryBuffer)
		m.groups[topic][group] = ch
	}
	return ch, nil
}

// Close stops delivery; running consumers return once their channel drains.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	for _, groups := range m.groups {
		for _, ch := range groups {
			close(ch)
		}
	}
	return nil
}

type memoryMessage struct {
	topic   string
	body    []byte
	key     []byte
	headers []Header
	at      time.Time
}

func (m *memoryMessage) Body() []byte              { return m.body }
func (m *memoryMessage) Key() []byte               { return m.key }
func (m *memoryMessage) Headers() []Header         { return m.headers }
func (m *memoryMessage) Topic() string             { return m.topic }
func (m *memoryMessage) Timestamp() time.Time      { return m.at }
func (m *memoryMessage) Ack(context.Context) error { return nil }
func (m *memoryMessage) Nack(context.Context) error {
	return nil
}
