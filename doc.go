// Package coordinator distributes tasks over a fixed pool of workers that share
// one FIFO work queue.
//
// Lifecycle
//   - New(opts ...Option): create a coordinator with an empty queue.
//   - Start(ctx, n): start n workers. Tasks submitted before Start wait in the queue.
//   - Submit(ctx, tasks...): enqueue tasks in order; safe while workers are running.
//   - AwaitCompletion(ctx): block until every submitted task has been executed.
//   - Shutdown(ctx): stop the workers and wait for them to exit. Idempotent.
//
// Defaults
// Unless overridden, the following defaults apply to a newly created instance:
//   - Executor: Sleep(DefaultCostUnit), one second per cost unit
//   - PollInterval: 1s
//   - QueueCapacity: 0 (unbounded)
//   - ShutdownPolicy: ShutdownDrain
//   - Event sink: zap logging through zap.L()
//   - Metrics: none
//
// Ordering
// Tasks are dequeued in submission order and each task is executed by exactly one
// worker. Completion order across workers is not guaranteed.
//
// Failures
// An executor error or panic marks the task as failed: it is reported as a
// KindFailed event carrying a *TaskError and never stops its worker. A task that has
// started always runs to completion; stopping is cooperative and only keeps workers
// from taking new tasks.
//
// Observability
// Every state change is recorded as an events.Event on the configured sink. Sinks
// must not block; wrap I/O bound sinks with events.NewAsync. Counters, the in-flight
// gauge and the duration histogram are published through a metrics.Provider.
package coordinator
