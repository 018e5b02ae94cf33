package events

import (
	"sync"
	"sync/atomic"
)

const defaultAsyncBuffer = 1024

// Async forwards events to another sink from a single background goroutine.
//
// Record never blocks: when the buffer is full the event is dropped and counted.
// Close stops accepting events, delivers everything buffered, and waits for the
// forwarding goroutine to exit.
type Async struct {
	next    Sink
	ch      chan Event
	dropped atomic.Uint64

	mu     sync.RWMutex // guards closed against concurrent Record/Close
	closed bool

	wg sync.WaitGroup
}

// NewAsync starts forwarding to next through a buffer of the given size
// (0 selects the default of 1024).
func NewAsync(next Sink, buffer int) *Async {
	if buffer <= 0 {
		buffer = defaultAsyncBuffer
	}
	a := &Async{next: next, ch: make(chan Event, buffer)}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		for e := range a.ch {
			a.next.Record(e)
		}
	}()
	return a
}

func (a *Async) Record(e Event) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		a.dropped.Add(1)
		return
	}
	select {
	case a.ch <- e:
	default:
		a.dropped.Add(1)
	}
}

// Dropped returns the number of events discarded because the buffer was full
// or the sink was closed.
func (a *Async) Dropped() uint64 { return a.dropped.Load() }

// Close flushes buffered events and stops the forwarder. It is idempotent.
func (a *Async) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.ch)
	}
	a.mu.Unlock()
	a.wg.Wait()
}
