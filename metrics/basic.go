package metrics

import (
	"math"
	"sync"
	"sync/atomic"
)

// BasicProvider keeps instruments in memory. Instruments are created on first use
// and reused by name.
type BasicProvider struct {
	mu         sync.Mutex
	counters   map[string]*BasicCounter
	updowns    map[string]*BasicUpDownCounter
	histograms map[string]*BasicHistogram
}

// NewBasicProvider returns an empty BasicProvider.
func NewBasicProvider() *BasicProvider {
	return &BasicProvider{
		counters:   make(map[string]*BasicCounter),
		updowns:    make(map[string]*BasicUpDownCounter),
		histograms: make(map[string]*BasicHistogram),
	}
}

// getOrCreate returns m[name], creating it with mk under p.mu.
func getOrCreate[T any](p *BasicProvider, m map[string]*T, name string, mk func() *T) *T {
	p.mu.Lock()
	defer p.mu.Unlock()
	if v, ok := m[name]; ok {
		return v
	}
	v := mk()
	m[name] = v
	return v
}

func (p *BasicProvider) Counter(name string, _ ...InstrumentOption) Counter {
	return p.BasicCounter(name)
}

func (p *BasicProvider) UpDownCounter(name string, _ ...InstrumentOption) UpDownCounter {
	return p.BasicUpDownCounter(name)
}

func (p *BasicProvider) Histogram(name string, _ ...InstrumentOption) Histogram {
	return p.BasicHistogram(name)
}

// BasicCounter returns the concrete counter for name, for reading snapshots.
func (p *BasicProvider) BasicCounter(name string) *BasicCounter {
	return getOrCreate(p, p.counters, name, func() *BasicCounter { return &BasicCounter{} })
}

// BasicUpDownCounter returns the concrete up/down counter for name.
func (p *BasicProvider) BasicUpDownCounter(name string) *BasicUpDownCounter {
	return getOrCreate(p, p.updowns, name, func() *BasicUpDownCounter { return &BasicUpDownCounter{} })
}

// BasicHistogram returns the concrete histogram for name.
func (p *BasicProvider) BasicHistogram(name string) *BasicHistogram {
	return getOrCreate(p, p.histograms, name, func() *BasicHistogram {
		return &BasicHistogram{min: math.Inf(1), max: math.Inf(-1)}
	})
}

// BasicCounter is a concurrency-safe monotonic counter.
type BasicCounter struct{ val atomic.Int64 }

func (c *BasicCounter) Add(n int64) { c.val.Add(n) }

// Snapshot returns the current value.
func (c *BasicCounter) Snapshot() int64 { return c.val.Load() }

// BasicUpDownCounter is a concurrency-safe up/down counter.
type BasicUpDownCounter struct{ val atomic.Int64 }

func (u *BasicUpDownCounter) Add(n int64) { u.val.Add(n) }

// Snapshot returns the current value.
func (u *BasicUpDownCounter) Snapshot() int64 { return u.val.Load() }

// BasicHistogram aggregates count, sum, min and max. It keeps no buckets.
type BasicHistogram struct {
	mu    sync.Mutex
	count int64
	sum   float64
	min   float64
	max   float64
}

func (h *BasicHistogram) Record(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += v
	h.min = math.Min(h.min, v)
	h.max = math.Max(h.max, v)
}

// HistSnapshot is a point-in-time copy of a BasicHistogram.
type HistSnapshot struct {
	Count int64
	Sum   float64
	Min   float64
	Max   float64
	Mean  float64
}

// Snapshot returns the histogram state. Min and Max are ±Inf while Count is zero.
func (h *BasicHistogram) Snapshot() HistSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := HistSnapshot{Count: h.count, Sum: h.sum, Min: h.min, Max: h.max}
	if h.count > 0 {
		s.Mean = h.sum / float64(h.count)
	}
	return s
}
