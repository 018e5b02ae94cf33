// Package events defines the observability events emitted by the coordinator and
// the sinks that receive them.
//
// A Sink is fire-and-forget: Record must return promptly and never fail. Sinks that
// perform I/O should be wrapped with NewAsync so that workers never wait on them.
package events

import (
	"time"
)

// Kind identifies what happened.
type Kind string

const (
	// KindAssigned is recorded when a task is accepted into the queue.
	KindAssigned Kind = "assigned"
	// KindStarted is recorded when a worker begins executing a task.
	KindStarted Kind = "started"
	// KindCompleted is recorded when a task finishes without error.
	KindCompleted Kind = "completed"
	// KindFailed is recorded when a task returns an error or panics.
	KindFailed Kind = "failed"
	// KindAbandoned is recorded for a queued task discarded at shutdown.
	KindAbandoned Kind = "abandoned"
	// KindWorkerStarted is recorded when a worker goroutine begins polling.
	KindWorkerStarted Kind = "worker_started"
	// KindWorkerStopped is recorded when a worker goroutine exits.
	KindWorkerStopped Kind = "worker_stopped"
)

// NoWorker is the WorkerID of events not tied to a worker.
const NoWorker = -1

// Event is a single observability record.
type Event struct {
	Kind     Kind
	Time     time.Time
	PoolID   string
	WorkerID int
	TaskID   int
	Cost     uint
	Duration time.Duration // execution time, set on completed/failed
	Err      error         // set on failed
}

// IsTask reports whether the event is about a task rather than a worker.
func (e Event) IsTask() bool {
	return e.Kind != KindWorkerStarted && e.Kind != KindWorkerStopped
}

// Sink receives events. Implementations must be safe for concurrent use and must not block.
type Sink interface {
	Record(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Record(e Event) { f(e) }

// Nop discards all events.
type Nop struct{}

func (Nop) Record(Event) {}

// multi fans out to several sinks in order.
type multi []Sink

// Multi returns a Sink recording every event into each of sinks. Nil sinks are skipped.
func Multi(sinks ...Sink) Sink {
	m := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	return m
}

func (m multi) Record(e Event) {
	for _, s := range m {
		s.Record(e)
	}
}
