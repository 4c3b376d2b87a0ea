package metrics

import (
	"sync"
	"time"
)

// SlidingTimeWindowReservoir retains every sample added within the last
// window duration, as measured by its Clock. Stale entries are evicted
// from the front both on Add and lazily on Values, since time passes even
// when nothing is being added.
type SlidingTimeWindowReservoir struct {
	mu      sync.Mutex
	clock   Clock
	window  time.Duration
	entries []timeSample
}

type timeSample struct {
	at    time.Time
	value float64
}

// NewSlidingTimeWindowReservoir constructs a SlidingTimeWindowReservoir
// retaining samples added within the last window. If clock is nil,
// SystemClock is used.
func NewSlidingTimeWindowReservoir(window time.Duration, clock Clock) *SlidingTimeWindowReservoir {
	if clock == nil {
		clock = SystemClock{}
	}
	return &SlidingTimeWindowReservoir{clock: clock, window: window}
}

// Add implements Reservoir.
func (r *SlidingTimeWindowReservoir) Add(value float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	r.entries = append(r.entries, timeSample{at: now, value: value})
	r.evictLocked(now)
}

// Values implements Reservoir.
func (r *SlidingTimeWindowReservoir) Values() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.evictLocked(r.clock.Now())
	out := make([]float64, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.value
	}
	return out
}

// Size implements Reservoir.
func (r *SlidingTimeWindowReservoir) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evictLocked(r.clock.Now())
	return len(r.entries)
}

// Descriptor implements Reservoir.
func (r *SlidingTimeWindowReservoir) Descriptor() ReservoirDescriptor {
	return ReservoirDescriptor{
		Kind:   ReservoirSlidingTimeWindow,
		Params: map[string]float64{"window_seconds": r.window.Seconds()},
	}
}

// evictLocked drops every entry at or before the window cutoff (now -
// window), keeping only entries strictly newer than the cutoff. Caller
// must hold r.mu. Timestamps are appended in non-decreasing order, so it is
// always safe to drop from the front only.
func (r *SlidingTimeWindowReservoir) evictLocked(now time.Time) {
	cutoff := now.Add(-r.window)
	i := 0
	for i < len(r.entries) && !r.entries[i].at.After(cutoff) {
		i++
	}
	if i > 0 {
		r.entries = append(r.entries[:0], r.entries[i:]...)
	}
}
