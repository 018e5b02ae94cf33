// Package metrics defines the instruments the coordinator records into and a few
// providers for them: a no-op default, an in-memory provider for tests and small
// programs, and a Prometheus-backed provider.
package metrics

// Instrument names recorded by the coordinator.
const (
	TasksSubmitted = "tasks_submitted_total"
	TasksCompleted = "tasks_completed_total"
	TasksFailed    = "tasks_failed_total"
	TasksAbandoned = "tasks_abandoned_total"
	TasksInFlight  = "tasks_in_flight"
	TaskDuration   = "task_duration_seconds"
)

// Provider constructs instruments by name. Asking twice for the same name returns
// the same instrument. Implementations must be safe for concurrent use.
type Provider interface {
	Counter(name string, opts ...InstrumentOption) Counter
	UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter
	Histogram(name string, opts ...InstrumentOption) Histogram
}

// Counter records monotonic counts.
type Counter interface {
	Add(n int64)
}

// UpDownCounter records a value that moves both ways, such as tasks in flight.
type UpDownCounter interface {
	Add(n int64)
}

// Histogram records a distribution of measurements, such as durations in seconds.
type Histogram interface {
	Record(v float64)
}

// InstrumentConfig carries advisory instrument metadata.
type InstrumentConfig struct {
	Description string
	Unit        string
}

// InstrumentOption mutates InstrumentConfig.
type InstrumentOption func(*InstrumentConfig)

// WithDescription sets the instrument description (Prometheus help text).
func WithDescription(desc string) InstrumentOption {
	return func(c *InstrumentConfig) { c.Description = desc }
}

// WithUnit sets the instrument unit, e.g. "1" or "seconds".
func WithUnit(unit string) InstrumentOption {
	return func(c *InstrumentConfig) { c.Unit = unit }
}

func applyOptions(opts []InstrumentOption) InstrumentConfig {
	var cfg InstrumentConfig
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	return cfg
}
