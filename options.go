package coordinator

import (
	"strconv"
	"time"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/coordinator/events"
	"github.com/ygrebnov/coordinator/metrics"
)

// Option configures a Coordinator. Invalid input is reported by New as ErrInvalidConfig.
type Option func(*config) error

// WithExecutor sets the executor running every task.
func WithExecutor(e Executor) Option {
	return func(cfg *config) error {
		if e == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithExecutor requires a non-nil executor"))
		}
		cfg.Executor = e
		return nil
	}
}

// WithSleepExecutor simulates tasks by sleeping cost × unit.
func WithSleepExecutor(unit time.Duration) Option {
	return func(cfg *config) error {
		if unit < 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("cost unit", unit.String()))
		}
		cfg.Executor = Sleep(unit)
		return nil
	}
}

// WithPollInterval sets how often an idle worker re-checks its stop flag (must be > 0).
func WithPollInterval(d time.Duration) Option {
	return func(cfg *config) error {
		if d <= 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithPollInterval requires d > 0"))
		}
		cfg.PollInterval = d
		return nil
	}
}

// WithQueueCapacity bounds the queue; Submit blocks while it is full. 0 means unbounded.
func WithQueueCapacity(n int) Option {
	return func(cfg *config) error {
		if n < 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("queue capacity", strconv.Itoa(n)))
		}
		cfg.QueueCapacity = n
		return nil
	}
}

// WithShutdownPolicy selects what Shutdown does with queued tasks.
func WithShutdownPolicy(p ShutdownPolicy) Option {
	return func(cfg *config) error {
		if _, err := ParseShutdownPolicy(string(p)); err != nil {
			return err
		}
		cfg.ShutdownPolicy = p
		return nil
	}
}

// WithEventSink sets the sink receiving task and worker events.
func WithEventSink(s events.Sink) Option {
	return func(cfg *config) error {
		if s == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithEventSink requires a non-nil sink"))
		}
		cfg.Sink = s
		return nil
	}
}

// WithMetrics sets the metrics provider.
func WithMetrics(p metrics.Provider) Option {
	return func(cfg *config) error {
		if p == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithMetrics requires a non-nil provider"))
		}
		cfg.Metrics = p
		return nil
	}
}

// WithSequentialIDs makes the coordinator assign task ids from a pool-wide sequence
// starting at 0, ignoring the ids set by the caller.
func WithSequentialIDs() Option {
	return func(cfg *config) error { cfg.SequentialIDs = true; return nil }
}
