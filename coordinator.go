package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/coordinator/events"
	"github.com/ygrebnov/coordinator/metrics"
	"github.com/ygrebnov/coordinator/queue"
)

type lifecycleState int

const (
	stateCreated lifecycleState = iota
	stateStarted
	stateStopped
)

// Coordinator owns a work queue and a fixed pool of workers consuming it.
// Methods are safe for concurrent use. Construct via New.
type Coordinator struct {
	// noCopy prevents accidental copying of the coordinator.
	//go:nocopy
	nc noCopy

	id     string
	config *config
	queue  *queue.Queue[Task]
	inst   *instruments

	mu      sync.Mutex
	state   lifecycleState
	workers []*worker
	cancel  context.CancelFunc // stops worker polling

	// sequence used by WithSequentialIDs
	seq atomic.Int64

	submitted atomic.Uint64
	abandoned atomic.Uint64

	shutdownOnce sync.Once
}

// noCopy is a vet-recognized marker to discourage copying types with this field embedded.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// instruments are the metrics recorded by the coordinator and its workers.
type instruments struct {
	submitted metrics.Counter
	completed metrics.Counter
	failed    metrics.Counter
	abandoned metrics.Counter
	inFlight  metrics.UpDownCounter
	duration  metrics.Histogram
}

func newInstruments(p metrics.Provider) *instruments {
	return &instruments{
		submitted: p.Counter(metrics.TasksSubmitted, metrics.WithDescription("Tasks accepted into the queue"), metrics.WithUnit("1")),
		completed: p.Counter(metrics.TasksCompleted, metrics.WithDescription("Tasks executed without error"), metrics.WithUnit("1")),
		failed:    p.Counter(metrics.TasksFailed, metrics.WithDescription("Tasks whose execution failed"), metrics.WithUnit("1")),
		abandoned: p.Counter(metrics.TasksAbandoned, metrics.WithDescription("Queued tasks discarded at shutdown"), metrics.WithUnit("1")),
		inFlight:  p.UpDownCounter(metrics.TasksInFlight, metrics.WithDescription("Tasks currently executing"), metrics.WithUnit("1")),
		duration:  p.Histogram(metrics.TaskDuration, metrics.WithDescription("Task execution time"), metrics.WithUnit("seconds")),
	}
}

// New creates a Coordinator with an empty queue and no workers.
// Tasks may be submitted before Start; they wait in the queue.
func New(opts ...Option) (*Coordinator, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &Coordinator{
		id:     uuid.NewString(),
		config: &cfg,
		queue:  queue.New[Task](cfg.QueueCapacity),
		inst:   newInstruments(cfg.Metrics),
	}, nil
}

// ID returns the pool identifier stamped on every event.
func (c *Coordinator) ID() string { return c.id }

// Start creates n workers sharing the queue and starts them.
//
// Canceling ctx stops the workers the same way Shutdown does, without draining.
// Executors receive a context carrying ctx values that is never canceled.
// Start returns ErrInvalidConfig for n <= 0, ErrAlreadyStarted on a second call and
// ErrShutdown after Shutdown.
func (c *Coordinator) Start(ctx context.Context, n int) error {
	if n <= 0 {
		return errorc.With(ErrInvalidConfig, errorc.String("workers", strconv.Itoa(n)))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case stateStarted:
		return ErrAlreadyStarted
	case stateStopped:
		return ErrShutdown
	}

	pollCtx, cancel := context.WithCancel(ctx)
	execCtx := context.WithoutCancel(ctx)

	c.cancel = cancel
	c.workers = make([]*worker, n)
	for i := range n {
		w := newWorker(i, c)
		c.workers[i] = w
		w.start(pollCtx, execCtx)
	}
	c.state = stateStarted
	return nil
}

// Submit enqueues tasks in order.
//
// It is safe to call concurrently with running workers, before Start and any number
// of times. With a bounded queue it blocks while the queue is full; if ctx ends
// first, the returned error wraps ctx.Err() and reports how many tasks were accepted.
// After Shutdown it returns ErrShutdown.
func (c *Coordinator) Submit(ctx context.Context, tasks ...Task) error {
	c.mu.Lock()
	stopped := c.state == stateStopped
	c.mu.Unlock()
	if stopped {
		return ErrShutdown
	}

	for i, t := range tasks {
		if c.config.SequentialIDs {
			t = t.withID(int(c.seq.Add(1) - 1))
		}

		if err := c.queue.Enqueue(ctx, t); err != nil {
			if errors.Is(err, queue.ErrClosed) {
				err = ErrShutdown
			}
			return fmt.Errorf("%w (accepted %d of %d tasks)", err, i, len(tasks))
		}

		c.submitted.Add(1)
		c.inst.submitted.Add(1)
		c.record(events.Event{Kind: events.KindAssigned, TaskID: t.ID(), Cost: t.Cost()})
	}
	return nil
}

// AwaitCompletion blocks until every submitted task has been executed and marked
// done, or until ctx ends. It does not prevent further submissions; tasks submitted
// after it returns need another call. Without started workers it can only end via ctx.
func (c *Coordinator) AwaitCompletion(ctx context.Context) error {
	return c.queue.WaitUntilDrained(ctx)
}

// Shutdown stops the pool and waits until no worker goroutine is left running.
//
// Under ShutdownDrain (the default) it first waits, bounded by ctx, for queued and
// in-flight tasks to finish. Under ShutdownAbandon it stops right away. Running tasks
// always finish; tasks still queued afterwards are abandoned and reported as
// KindAbandoned events. If ctx ends before the queue drains, the returned error
// wraps ErrDrainIncomplete and ctx.Err().
//
// Shutdown is idempotent: later calls wait for the first one and return nil.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	var err error
	c.shutdownOnce.Do(func() {
		err = c.shutdownSequence(ctx).run()
	})
	return err
}

func (c *Coordinator) shutdownSequence(ctx context.Context) *shutdownSequence {
	c.mu.Lock()
	started := c.state == stateStarted
	c.state = stateStopped
	workers := c.workers
	cancel := c.cancel
	c.mu.Unlock()

	seq := &shutdownSequence{
		closeQueue:     c.queue.Close,
		abandonPending: c.abandonPending,
	}
	if !started {
		return seq
	}

	if c.config.ShutdownPolicy == ShutdownDrain {
		seq.drain = func() error { return c.drain(ctx, workers) }
	}
	seq.stopWorkers = func() {
		for _, w := range workers {
			w.stop()
		}
	}
	seq.cancel = cancel
	seq.waitWorkers = func() {
		for _, w := range workers {
			<-w.done
		}
	}
	return seq
}

// drain waits for the queue to drain, giving up when ctx ends or when every worker
// has already exited (e.g. the Start context was canceled).
func (c *Coordinator) drain(ctx context.Context, workers []*worker) error {
	dctx, stop := context.WithCancel(ctx)
	defer stop()

	go func() {
		for _, w := range workers {
			select {
			case <-w.done:
			case <-dctx.Done():
				return
			}
		}
		stop()
	}()

	err := c.queue.WaitUntilDrained(dctx)
	if err == nil || c.queue.Unfinished() == 0 {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %w", ErrDrainIncomplete, ctx.Err())
	}
	return fmt.Errorf("%w: all workers exited with %d tasks queued", ErrDrainIncomplete, c.queue.Len())
}

func (c *Coordinator) abandonPending() {
	for _, t := range c.queue.Clear() {
		c.abandoned.Add(1)
		c.inst.abandoned.Add(1)
		c.record(events.Event{Kind: events.KindAbandoned, TaskID: t.ID(), Cost: t.Cost()})
	}
}

func (c *Coordinator) record(e events.Event) {
	e.Time = time.Now()
	e.PoolID = c.id
	e.WorkerID = events.NoWorker
	c.config.Sink.Record(e)
}

// Workers returns the state of every worker in id order. It is empty before Start.
func (c *Coordinator) Workers() []WorkerState {
	c.mu.Lock()
	workers := c.workers
	c.mu.Unlock()

	states := make([]WorkerState, len(workers))
	for i, w := range workers {
		states[i] = w.state()
	}
	return states
}

// Stats is a point-in-time summary of a Coordinator.
type Stats struct {
	Workers    int
	Queued     int
	InFlight   int
	Unfinished int
	Submitted  uint64
	Completed  uint64
	Failed     uint64
	Abandoned  uint64
}

// Stats returns current counters. Values are read independently and may be
// mutually inconsistent while tasks are running.
func (c *Coordinator) Stats() Stats {
	s := Stats{
		Queued:     c.queue.Len(),
		InFlight:   c.queue.InFlight(),
		Unfinished: c.queue.Unfinished(),
		Submitted:  c.submitted.Load(),
		Abandoned:  c.abandoned.Load(),
	}
	for _, ws := range c.Workers() {
		s.Workers++
		s.Completed += ws.Processed - ws.Failed
		s.Failed += ws.Failed
	}
	return s
}
