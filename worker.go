package coordinator

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ygrebnov/coordinator/events"
	"github.com/ygrebnov/coordinator/queue"
)

// WorkerStatus is a worker lifecycle state.
type WorkerStatus int32

const (
	WorkerIdle WorkerStatus = iota
	WorkerRunning
	WorkerStopping
	WorkerTerminated
)

func (s WorkerStatus) String() string {
	switch s {
	case WorkerIdle:
		return "idle"
	case WorkerRunning:
		return "running"
	case WorkerStopping:
		return "stopping"
	case WorkerTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// WorkerState is a point-in-time view of one worker.
type WorkerState struct {
	ID        int
	Status    WorkerStatus
	Processed uint64 // tasks executed, including failed ones
	Failed    uint64
}

// worker repeatedly pulls a task from the queue, executes it and marks it done.
// Stopping is cooperative: stop only prevents the worker from taking a new task.
type worker struct {
	id       int
	poolID   string
	queue    *queue.Queue[Task]
	executor Executor
	poll     time.Duration
	sink     events.Sink
	inst     *instruments

	running   atomic.Bool
	status    atomic.Int32
	processed atomic.Uint64
	failed    atomic.Uint64

	done chan struct{} // closed when run returns
}

func newWorker(id int, c *Coordinator) *worker {
	return &worker{
		id:       id,
		poolID:   c.id,
		queue:    c.queue,
		executor: c.config.Executor,
		poll:     c.config.PollInterval,
		sink:     c.config.Sink,
		inst:     c.inst,
		done:     make(chan struct{}),
	}
}

// run is the worker loop. ctx ends polling; execCtx is handed to the executor.
func (w *worker) run(ctx, execCtx context.Context) {
	defer close(w.done)
	defer func() {
		w.status.Store(int32(WorkerTerminated))
		w.record(events.Event{Kind: events.KindWorkerStopped})
	}()

	w.record(events.Event{Kind: events.KindWorkerStarted})

	for w.running.Load() {
		t, ok := w.queue.Dequeue(ctx, w.poll)
		if !ok {
			// a closed queue never refills
			if ctx.Err() != nil || (w.queue.Closed() && w.queue.Len() == 0) {
				return
			}
			continue
		}
		w.process(execCtx, t)
	}
}

// start marks the worker running and launches its goroutine.
func (w *worker) start(ctx, execCtx context.Context) {
	w.running.Store(true)
	w.status.Store(int32(WorkerRunning))
	go w.run(ctx, execCtx)
}

// stop asks the worker to exit after its current task. It is idempotent.
func (w *worker) stop() {
	if w.running.CompareAndSwap(true, false) {
		w.status.CompareAndSwap(int32(WorkerRunning), int32(WorkerStopping))
	}
}

func (w *worker) process(ctx context.Context, t Task) {
	w.inst.inFlight.Add(1)
	w.record(events.Event{Kind: events.KindStarted, TaskID: t.ID(), Cost: t.Cost()})

	start := time.Now()
	err := w.execute(ctx, t)
	elapsed := time.Since(start)

	w.processed.Add(1)
	w.inst.duration.Record(elapsed.Seconds())
	w.inst.inFlight.Add(-1)

	if err != nil {
		w.failed.Add(1)
		w.inst.failed.Add(1)
		w.record(events.Event{
			Kind:     events.KindFailed,
			TaskID:   t.ID(),
			Cost:     t.Cost(),
			Duration: elapsed,
			Err:      newTaskError(err, t.ID(), w.id),
		})
	} else {
		w.inst.completed.Add(1)
		w.record(events.Event{Kind: events.KindCompleted, TaskID: t.ID(), Cost: t.Cost(), Duration: elapsed})
	}

	// t was dequeued by this worker and is marked done exactly once, so MarkDone can't fail.
	_ = w.queue.MarkDone()
}

// execute runs the executor, turning a panic into ErrTaskPanicked.
func (w *worker) execute(ctx context.Context, t Task) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, p)
		}
	}()
	return w.executor.Execute(ctx, t)
}

func (w *worker) record(e events.Event) {
	e.Time = time.Now()
	e.PoolID = w.poolID
	e.WorkerID = w.id
	w.sink.Record(e)
}

func (w *worker) state() WorkerState {
	return WorkerState{
		ID:        w.id,
		Status:    WorkerStatus(w.status.Load()),
		Processed: w.processed.Load(),
		Failed:    w.failed.Load(),
	}
}
