// Package queue implements the shared work queue of the coordinator: a FIFO with
// completion accounting, in the spirit of a monitor guarding both the pending
// items and the count of unfinished work.
package queue

import (
	"context"
	"errors"
	"sync"
	"time"
)

const Namespace = "queue"

var (
	ErrClosed      = errors.New(Namespace + ": queue is closed")
	ErrTooManyDone = errors.New(Namespace + ": MarkDone called with no item in flight")
)

// Queue is a FIFO of pending items paired with an unfinished-items counter.
//
// The counter is incremented once per Enqueue and decremented once per MarkDone
// (or per item removed by Clear), so at any time
//
//	Unfinished() == Len() + InFlight()
//
// A single mutex guards the items, the counter and the closed flag. Waiters never
// hold the lock: they capture a signal channel under the lock and block on it after
// releasing. Signal channels are closed and replaced on every state change they
// represent, which wakes all current waiters at once.
//
// Queue is safe for concurrent use. The zero value is not usable; construct via New.
type Queue[T any] struct {
	mu sync.Mutex

	items    []T
	capacity int // 0: unbounded
	closed   bool

	unfinished int

	notEmpty chan struct{} // closed when an item is added or the queue is closed
	notFull  chan struct{} // closed when an item is removed or the queue is closed
	drained  chan struct{} // closed while unfinished == 0
}

// New creates a queue. capacity == 0 makes the queue unbounded; with capacity > 0
// Enqueue blocks while the queue holds capacity items.
func New[T any](capacity int) *Queue[T] {
	if capacity < 0 {
		capacity = 0
	}
	drained := make(chan struct{})
	close(drained)
	return &Queue[T]{
		capacity: capacity,
		notEmpty: make(chan struct{}),
		notFull:  make(chan struct{}),
		drained:  drained,
	}
}

// broadcast wakes every goroutine waiting on *ch and arms a fresh channel.
// Must be called with q.mu held.
func broadcast(ch *chan struct{}) {
	close(*ch)
	*ch = make(chan struct{})
}

// Enqueue appends item at the tail and counts it as unfinished.
//
// An unbounded queue never blocks. A bounded queue blocks until an item is removed,
// the queue is closed (ErrClosed) or ctx is done (ctx.Err()).
func (q *Queue[T]) Enqueue(ctx context.Context, item T) error {
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return ErrClosed
		}

		if q.capacity == 0 || len(q.items) < q.capacity {
			q.items = append(q.items, item)
			if q.unfinished == 0 {
				q.drained = make(chan struct{})
			}
			q.unfinished++
			broadcast(&q.notEmpty)
			q.mu.Unlock()
			return nil
		}

		wait := q.notFull
		q.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Dequeue removes and returns the head item, waiting up to timeout for one to arrive.
//
// It returns ok == false, not an error, when the timeout elapses, when ctx is done or
// when the queue is closed and empty. A timeout <= 0 waits until ctx is done.
// ctx is checked before an item is taken, so a canceled caller never receives one.
func (q *Queue[T]) Dequeue(ctx context.Context, timeout time.Duration) (item T, ok bool) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	for {
		if ctx.Err() != nil {
			return item, false
		}

		q.mu.Lock()
		if len(q.items) > 0 {
			item = q.pop()
			q.mu.Unlock()
			return item, true
		}
		if q.closed {
			q.mu.Unlock()
			return item, false
		}
		wait := q.notEmpty
		q.mu.Unlock()

		select {
		case <-wait:
		case <-expired:
			return item, false
		case <-ctx.Done():
			return item, false
		}
	}
}

// TryDequeue removes and returns the head item without waiting.
func (q *Queue[T]) TryDequeue() (item T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return item, false
	}
	return q.pop(), true
}

// pop removes the head. Must be called with q.mu held and len(q.items) > 0.
func (q *Queue[T]) pop() T {
	var zero T
	x := q.items[0]
	q.items[0] = zero // drop the reference held by the backing array
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	broadcast(&q.notFull)
	return x
}

// MarkDone records that one dequeued item has finished, whatever its outcome.
// When the unfinished count reaches zero every WaitUntilDrained caller is released.
// It returns ErrTooManyDone if no item is currently in flight.
func (q *Queue[T]) MarkDone() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.unfinished <= len(q.items) {
		return ErrTooManyDone
	}

	q.unfinished--
	if q.unfinished == 0 {
		close(q.drained)
	}
	return nil
}

// WaitUntilDrained blocks until no item is queued or in flight, or ctx is done.
// It reports the queue state at one point in time: items enqueued after it returns
// require another call.
func (q *Queue[T]) WaitUntilDrained(ctx context.Context) error {
	q.mu.Lock()
	drained := q.drained
	q.mu.Unlock()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Clear removes every queued item and returns them in FIFO order.
// Removed items stop counting as unfinished; in-flight items are unaffected.
func (q *Queue[T]) Clear() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	removed := q.items
	if len(removed) == 0 {
		return nil
	}
	q.items = nil
	q.unfinished -= len(removed)
	if q.unfinished == 0 {
		close(q.drained)
	}
	broadcast(&q.notFull)
	return removed
}

// Close rejects further Enqueue calls with ErrClosed and wakes all waiters.
// Items already queued can still be dequeued or cleared. Close is idempotent.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	broadcast(&q.notEmpty)
	broadcast(&q.notFull)
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Unfinished returns the number of queued plus in-flight items.
func (q *Queue[T]) Unfinished() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.unfinished
}

// InFlight returns the number of dequeued items not yet marked done.
func (q *Queue[T]) InFlight() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.unfinished - len(q.items)
}

// Capacity returns the configured capacity; 0 means unbounded.
func (q *Queue[T]) Capacity() int { return q.capacity }

// Closed reports whether Close has been called.
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
