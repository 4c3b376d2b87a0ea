package metrics

import (
	"fmt"
	"sync"
)

// Histogram wraps a Reservoir, recording statistics over the distribution
// of every value ever notified (through the lens of whatever retention
// policy the reservoir implements).
type Histogram struct {
	shutdownNoop

	mu        sync.Mutex
	reservoir Reservoir
	count     int64
}

func newHistogram(reservoir Reservoir) *Histogram {
	return &Histogram{reservoir: reservoir}
}

// Notify coerces value to float64, adds it to the underlying reservoir, and
// increments the all-time sample count.
func (h *Histogram) Notify(value interface{}) error {
	f, err := toFloat64(value)
	if err != nil {
		return fmt.Errorf("histogram: %w: %v", ErrInvalidArgument, err)
	}

	h.mu.Lock()
	h.reservoir.Add(f)
	h.count++
	h.mu.Unlock()
	return nil
}

// Count returns the total number of samples ever notified, which may
// exceed the reservoir's current size once its retention policy starts
// discarding or evicting.
func (h *Histogram) Count() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Reservoir exposes the underlying Reservoir, primarily so Timed can
// compare descriptors for decorator reuse.
func (h *Histogram) Reservoir() Reservoir {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reservoir
}

// Snapshot implements Instrument. Per spec, an empty reservoir snapshots as
// {kind, size:0} only; otherwise the full descriptive statistics from
// computeStats are included.
func (h *Histogram) Snapshot() map[string]interface{} {
	h.mu.Lock()
	values := h.reservoir.Values()
	h.mu.Unlock()

	stats := computeStats(values)
	stats["kind"] = string(KindHistogram)
	return stats
}

// Kind implements Instrument.
func (h *Histogram) Kind() Kind { return KindHistogram }
