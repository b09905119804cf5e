package transport

import (
	"context"

	"github.com/yndnr/scenelink/internal/wire"
)

// DefaultQueueCapacity is used when a queue is created with capacity <= 0.
const DefaultQueueCapacity = 16

// PeerID is the routing identity the Router assigns to a connection.
type PeerID string

// Outbound is a frame waiting to be written. Peer is ignored by the Dealer.
type Outbound struct {
	Peer  PeerID
	Frame []byte
}

// Inbound is a classified frame from a verified peer.
type Inbound struct {
	Peer    PeerID
	Kind    wire.FrameKind
	Payload []byte
	// Frame is the complete frame including the kind byte.
	Frame []byte
}

// Queue is a bounded FIFO safe for concurrent use.
type Queue[T any] struct {
	ch chan T
}

// NewQueue creates a queue holding at most capacity items.
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &Queue[T]{ch: make(chan T, capacity)}
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int { return len(q.ch) }

// Cap returns the queue capacity.
func (q *Queue[T]) Cap() int { return cap(q.ch) }

// Offer enqueues v without blocking. It reports false if the queue is full.
func (q *Queue[T]) Offer(v T) bool {
	select {
	case q.ch <- v:
		return true
	default:
		return false
	}
}

// Put enqueues v, blocking while the queue is full.
func (q *Queue[T]) Put(ctx context.Context, v T) error {
	select {
	case q.ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Take dequeues the oldest item, blocking while the queue is empty.
func (q *Queue[T]) Take(ctx context.Context) (T, error) {
	select {
	case v := <-q.ch:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Drain dequeues up to max items without blocking; max <= 0 means all items
// present when Drain was called.
func (q *Queue[T]) Drain(max int) []T {
	n := len(q.ch)
	if max > 0 && max < n {
		n = max
	}
	if n == 0 {
		return nil
	}
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		select {
		case v := <-q.ch:
			out = append(out, v)
		default:
			return out
		}
	}
	return out
}
