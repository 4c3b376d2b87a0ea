/*
Package metrics provides a small, concurrency-safe in-process metrics library for Go.

# Overview

The library is organized around a process-wide Registry of named instruments. Five
instrument kinds are supported:

  - Counter: a signed running total; negative notifications decrement it.
  - Gauge: the last value set, of any serializable type.
  - Timer: the duration of the last start/stop pair or measured call.
  - Histogram: statistics over a bounded sample reservoir.
  - Meter: one-/five-/fifteen-minute exponentially-weighted moving rates.

	reg := metrics.NewRegistry()
	c, _ := reg.RegisterCounter("requests")
	c.Notify(1)

	h, _ := reg.RegisterHistogram("latency", metrics.NewUniformReservoir(metrics.DefaultReservoirSize))
	h.Notify(0.042)

	snap, _ := reg.Get("latency")
	_ = snap // map[string]interface{}{"kind": "histogram", "min": ..., "percentile": map[string]float64{"99": ..., ...}, ...}

# Reservoirs

Histogram accuracy is governed by its Reservoir, one of four sampling strategies:

  - UniformReservoir: Vitter's Algorithm R, a fixed-capacity uniform sample of everything
    ever added.
  - SlidingWindowReservoir: the last W samples, by count.
  - SlidingTimeWindowReservoir: every sample added within the last D seconds.
  - ExpDecayingReservoir: a forward-decaying weighted sample (Cormode et al.), biased
    towards recent values without a hard time window.

Two reservoirs are considered the same kind only when their kind tag and every
constructor parameter match exactly; Timed uses this to decide whether a histogram
already registered under its name is reused or rejected. Registry.Register itself
rejects every re-registration of an existing name.

# Meters

A Meter keeps three EWMA-based rates (1m, 5m, 15m) plus a simple mean rate
(total count / elapsed time). Each Meter owns a background goroutine that ticks its
EWMAs every tick interval (5s by default); the goroutine is stopped deterministically
when the Meter is deleted from its Registry or the Registry is shut down.

# Concurrency

The Registry holds one mutex that serializes creation, deletion, and tag mutation of
the name→instrument mapping; it is never held while an instrument's own Notify or
Snapshot runs. Every instrument owns its own mutex, so two different instruments never
contend with each other. Read operations on the Registry resolve the name under the
registry lock and then operate on the instrument directly.

# HTTP exposition

NewHTTPHandler wraps an existing http.Handler and intercepts requests under a base
path (default "/_app-metrics"), translating them into Registry operations. It is a
thin translation layer: JSON (de)serialization and status-code mapping only, no
independent business logic.

# Errors

Operations fail with one of three sentinel-rooted errors: ErrDuplicateMetric,
ErrInvalidMetric, and ErrInvalidArgument. Use errors.Is to test for a specific kind.

# Build and test

  - Run unit tests:

	go test ./...

  - Run with the race detector:

	go test -race ./...
*/
package metrics
