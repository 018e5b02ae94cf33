package coordinator_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ygrebnov/coordinator"
	"github.com/ygrebnov/coordinator/events"
	"github.com/ygrebnov/coordinator/metrics"
)

// Example runs five zero-cost tasks on one worker and prints them in completion order.
func Example() {
	ctx := context.Background()
	rec := events.NewRecorder()

	c, _ := coordinator.New(
		coordinator.WithEventSink(rec),
		coordinator.WithPollInterval(10*time.Millisecond),
	)
	_ = c.Start(ctx, 1)
	_ = c.Submit(ctx, coordinator.NewTasks(0, 0, 0, 0, 0)...)
	_ = c.AwaitCompletion(ctx)
	_ = c.Shutdown(ctx)

	for _, e := range rec.OfKind(events.KindCompleted) {
		fmt.Print(e.TaskID, " ")
	}
	fmt.Println()
	// Output: 0 1 2 3 4
}

// ExampleWithMetrics shows how to configure a Coordinator with a metrics provider.
// Here we use the built-in BasicProvider; metrics.NewPrometheusProvider exports the
// same instruments to a Prometheus registry.
func ExampleWithMetrics() {
	ctx := context.Background()
	p := metrics.NewBasicProvider()

	c, _ := coordinator.New(
		coordinator.WithMetrics(p),
		coordinator.WithEventSink(events.Nop{}),
		coordinator.WithExecutor(coordinator.ExecutorFunc(func(_ context.Context, t coordinator.Task) error {
			if t.Cost() > 1 {
				return errors.New("too expensive")
			}
			return nil
		})),
	)
	_ = c.Start(ctx, 2)
	_ = c.Submit(ctx, coordinator.NewTasks(1, 2, 1)...)
	_ = c.AwaitCompletion(ctx)
	_ = c.Shutdown(ctx)

	fmt.Println("completed:", p.BasicCounter(metrics.TasksCompleted).Snapshot())
	fmt.Println("failed:", p.BasicCounter(metrics.TasksFailed).Snapshot())
	// Output:
	// completed: 2
	// failed: 1
}

// ExampleWithShutdownPolicy abandons queued work instead of draining it.
func ExampleWithShutdownPolicy() {
	ctx := context.Background()
	rec := events.NewRecorder()

	c, _ := coordinator.New(
		coordinator.WithEventSink(rec),
		coordinator.WithShutdownPolicy(coordinator.ShutdownAbandon),
	)
	// never started: everything submitted is abandoned
	_ = c.Submit(ctx, coordinator.NewTasks(3, 3, 3)...)
	_ = c.Shutdown(ctx)

	fmt.Println("abandoned:", rec.Count(events.KindAbandoned))
	fmt.Println(errors.Is(c.Submit(ctx, coordinator.NewTask(9, 0)), coordinator.ErrShutdown))
	// Output:
	// abandoned: 3
	// true
}

// ExampleWithSequentialIDs lets the coordinator number tasks across batches.
func ExampleWithSequentialIDs() {
	ctx := context.Background()
	rec := events.NewRecorder()

	c, _ := coordinator.New(coordinator.WithEventSink(rec), coordinator.WithSequentialIDs())
	_ = c.Submit(ctx, coordinator.NewTasks(0, 0)...)
	_ = c.Submit(ctx, coordinator.NewTasks(0)...)
	_ = c.Shutdown(ctx)

	for _, e := range rec.OfKind(events.KindAssigned) {
		fmt.Print(e.TaskID, " ")
	}
	fmt.Println()
	// Output: 0 1 2
}
