// Package mailbox provides an unbounded, ordered, closable queue used to pass
// messages between the UI and the fetch worker.
package mailbox

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Put after Close, and by Get once a closed mailbox
// has been drained.
var ErrClosed = errors.New("mailbox: closed")

// Mailbox is a FIFO queue without a capacity limit. Put never blocks. Any
// number of goroutines may Put; Get is intended for a single consumer.
type Mailbox[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
	// ready carries at most one pending wake-up for a blocked Get.
	ready chan struct{}
}

func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{ready: make(chan struct{}, 1)}
}

// Put appends v. It fails with ErrClosed once the mailbox is closed.
func (m *Mailbox[T]) Put(v T) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.items = append(m.items, v)
	m.mu.Unlock()
	m.signal()
	return nil
}

// Get removes and returns the oldest message, waiting while the mailbox is
// empty. Messages queued before Close are still delivered.
func (m *Mailbox[T]) Get(ctx context.Context) (T, error) {
	for {
		if v, ok, closed := m.pop(); ok {
			return v, nil
		} else if closed {
			var zero T
			return zero, ErrClosed
		}
		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-m.ready:
		}
	}
}

// TryGet returns the oldest message without waiting.
func (m *Mailbox[T]) TryGet() (T, bool) {
	v, ok, _ := m.pop()
	return v, ok
}

// Drain returns every queued message in order without waiting.
func (m *Mailbox[T]) Drain() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.items
	m.items = nil
	return out
}

// Len returns the number of queued messages.
func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close stops the mailbox from accepting messages and wakes a waiting Get.
// Closing twice is a no-op.
func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.signal()
}

func (m *Mailbox[T]) pop() (v T, ok bool, closed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.items) == 0 {
		return v, false, m.closed
	}
	v = m.items[0]
	var zero T
	m.items[0] = zero
	m.items = m.items[1:]
	return v, true, m.closed
}

func (m *Mailbox[T]) signal() {
	select {
	case m.ready <- struct{}{}:
	default:
	}
}
