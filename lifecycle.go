package coordinator

import (
	"sync"
)

// shutdownSequence runs the Coordinator teardown steps in a fixed order.
// It owns nothing; every step is supplied by the Coordinator and nil steps are skipped.
//
// run is safe for concurrent calls; the sequence executes exactly once and later
// callers wait for it and get nil.
type shutdownSequence struct {
	closeQueue     func()
	drain          func() error
	stopWorkers    func()
	cancel         func()
	waitWorkers    func()
	abandonPending func()

	once sync.Once
}

// run executes:
// 1) close the queue so no new task is accepted
// 2) wait for queued and in-flight tasks (drain policy only)
// 3) signal every worker to stop
// 4) cancel the polling context to wake idle workers
// 5) wait for every worker goroutine to exit
// 6) abandon whatever is still queued
//
// A drain error does not interrupt the sequence; it is returned after step 6.
func (s *shutdownSequence) run() error {
	var err error
	first := false
	s.once.Do(func() {
		first = true
		if s.closeQueue != nil {
			s.closeQueue()
		}
		if s.drain != nil {
			err = s.drain()
		}
		if s.stopWorkers != nil {
			s.stopWorkers()
		}
		if s.cancel != nil {
			s.cancel()
		}
		if s.waitWorkers != nil {
			s.waitWorkers()
		}
		if s.abandonPending != nil {
			s.abandonPending()
		}
	})
	if !first {
		return nil
	}
	return err
}
