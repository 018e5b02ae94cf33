package coordinator

import (
	"time"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/coordinator/events"
	"github.com/ygrebnov/coordinator/metrics"
)

// ShutdownPolicy selects what Shutdown does with tasks still queued.
type ShutdownPolicy string

const (
	// ShutdownDrain waits for the queue to drain before stopping the workers.
	// Tasks still queued when the Shutdown context expires are abandoned.
	ShutdownDrain ShutdownPolicy = "drain"
	// ShutdownAbandon stops the workers right away. Tasks already running finish;
	// queued tasks are abandoned.
	ShutdownAbandon ShutdownPolicy = "abandon"
)

// ParseShutdownPolicy converts a policy name into a ShutdownPolicy.
func ParseShutdownPolicy(s string) (ShutdownPolicy, error) {
	switch p := ShutdownPolicy(s); p {
	case ShutdownDrain, ShutdownAbandon:
		return p, nil
	default:
		return "", errorc.With(ErrInvalidConfig, errorc.String("shutdown policy", s))
	}
}

// config holds Coordinator configuration.
type config struct {
	// Executor runs tasks.
	// Default: Sleep(DefaultCostUnit)
	Executor Executor

	// PollInterval bounds how long an idle worker waits in the queue before it
	// re-checks its stop flag.
	// Default: 1s
	PollInterval time.Duration

	// QueueCapacity bounds the number of queued tasks; Submit blocks while the queue is full.
	// Default: 0 (unbounded)
	QueueCapacity int

	// ShutdownPolicy selects the Shutdown behavior for queued tasks.
	// Default: ShutdownDrain
	ShutdownPolicy ShutdownPolicy

	// Sink receives task and worker events.
	// Default: events.NewZapSink(nil), logging through zap.L()
	Sink events.Sink

	// Metrics provides instruments.
	// Default: metrics.NoopProvider{}
	Metrics metrics.Provider

	// SequentialIDs replaces caller task ids with a pool-wide sequence starting at 0.
	// Default: false
	SequentialIDs bool
}

func defaultConfig() config {
	return config{
		Executor:       Sleep(DefaultCostUnit),
		PollInterval:   time.Second,
		QueueCapacity:  0,
		ShutdownPolicy: ShutdownDrain,
		Sink:           events.NewZapSink(nil),
		Metrics:        metrics.NoopProvider{},
		SequentialIDs:  false,
	}
}

func validateConfig(cfg *config) error {
	switch {
	case cfg.Executor == nil:
		return errorc.With(ErrInvalidConfig, errorc.String("executor", "must not be nil"))
	case cfg.PollInterval <= 0:
		return errorc.With(ErrInvalidConfig, errorc.String("poll interval", cfg.PollInterval.String()))
	case cfg.Sink == nil:
		return errorc.With(ErrInvalidConfig, errorc.String("event sink", "must not be nil"))
	case cfg.Metrics == nil:
		return errorc.With(ErrInvalidConfig, errorc.String("metrics", "must not be nil"))
	}
	_, err := ParseShutdownPolicy(string(cfg.ShutdownPolicy))
	return err
}
