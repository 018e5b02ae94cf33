package coordinator

import (
	"context"
	"time"
)

// DefaultCostUnit is the duration of one cost unit for the default executor.
const DefaultCostUnit = time.Second

// Executor runs a task. A returned error marks the task as failed; it never stops
// the worker. The context carries the values of the context passed to Start but is
// never canceled: a started task always runs to completion.
type Executor interface {
	Execute(ctx context.Context, t Task) error
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, t Task) error

func (f ExecutorFunc) Execute(ctx context.Context, t Task) error { return f(ctx, t) }

// Sleep returns an executor that simulates processing by sleeping cost × unit.
// A cost of zero returns immediately.
func Sleep(unit time.Duration) Executor {
	return ExecutorFunc(func(ctx context.Context, t Task) error {
		d := time.Duration(t.Cost()) * unit
		if d <= 0 {
			return nil
		}
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}
