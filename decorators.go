package metrics

import (
	"fmt"
	"time"
)

// HistogramSpec describes how Timed should construct (or validate reuse
// of) the backing histogram's reservoir.
type HistogramSpec struct {
	// NewReservoir builds the reservoir for a first-time registration.
	NewReservoir func() Reservoir

	// Descriptor must match NewReservoir()'s own Descriptor(); it lets
	// Timed check compatibility against an already-registered histogram
	// without constructing a throwaway reservoir.
	Descriptor ReservoirDescriptor
}

// ensureHistogram registers name as a Histogram per spec, or reuses an
// existing registration if its reservoir descriptor matches exactly.
func ensureHistogram(registry *Registry, name string, spec HistogramSpec) (*Histogram, error) {
	if existing, err := registry.Lookup(name); err == nil {
		h, ok := existing.(*Histogram)
		if !ok || !h.Reservoir().Descriptor().Equal(spec.Descriptor) {
			return nil, fmt.Errorf("metrics: %q: %w: incompatible histogram registration", name, ErrDuplicateMetric)
		}
		return h, nil
	}
	return registry.RegisterHistogram(name, spec.NewReservoir())
}

// ensureMeter registers name as a Meter per spec, or reuses an existing
// registration if its tick interval matches exactly.
func ensureMeter(registry *Registry, name string, tickInterval time.Duration) (*Meter, error) {
	if existing, err := registry.Lookup(name); err == nil {
		m, ok := existing.(*Meter)
		if !ok || m.tickInterval != tickInterval {
			return nil, fmt.Errorf("metrics: %q: %w: incompatible meter registration", name, ErrDuplicateMetric)
		}
		return m, nil
	}
	return registry.RegisterMeterWithTickInterval(name, tickInterval)
}

// Timed wraps fn so that every call's wall-clock duration is recorded into
// a histogram named name (created, or reused if an existing registration's
// reservoir descriptor matches spec exactly). fn's return value and error
// are passed through unmodified; no sample is recorded if fn panics, since
// the deferred recovery that would be needed to record one is explicitly
// not part of this wrapper's contract.
func Timed[T any](registry *Registry, name string, spec HistogramSpec, fn func() (T, error)) (func() (T, error), error) {
	h, err := ensureHistogram(registry, name, spec)
	if err != nil {
		return nil, err
	}
	return func() (T, error) {
		start := time.Now()
		result, err := fn()
		if err == nil {
			h.Notify(time.Since(start).Seconds())
		}
		return result, err
	}, nil
}

// Counted wraps fn so that every call that returns a nil error increments a
// meter named name by one (created, or reused if an existing registration's
// tick interval matches exactly). A returned error, or a panic, is not
// counted.
func Counted[T any](registry *Registry, name string, tickInterval time.Duration, fn func() (T, error)) (func() (T, error), error) {
	m, err := ensureMeter(registry, name, tickInterval)
	if err != nil {
		return nil, err
	}
	return func() (T, error) {
		result, err := fn()
		if err == nil {
			m.Notify(int64(1))
		}
		return result, err
	}, nil
}
