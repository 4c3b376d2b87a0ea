package metrics

import (
	"fmt"
	"sync"
	"time"
)

// Timer tracks the duration, in seconds, of the most recent timed operation.
// Use Start/Stop for a manual pair, or Time to wrap a single call. Notify
// also accepts a duration or a float64/int number of seconds directly, so a
// Timer can be driven like any other Instrument.
type Timer struct {
	shutdownNoop

	clock Clock

	mu      sync.Mutex
	value   float64
	running bool
	started time.Time
}

func newTimer(clock Clock) *Timer {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Timer{clock: clock}
}

// Start begins timing. A second Start before Stop simply resets the start
// point.
func (t *Timer) Start() {
	t.mu.Lock()
	t.started = t.clock.Now()
	t.running = true
	t.mu.Unlock()
}

// Stop ends timing and records the elapsed seconds since the matching
// Start. It returns the recorded duration. Calling Stop without a prior
// Start is a no-op that returns 0.
func (t *Timer) Stop() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return 0
	}
	elapsed := t.clock.Now().Sub(t.started)
	t.value = elapsed.Seconds()
	t.running = false
	return elapsed
}

// Time runs fn, recording its wall-clock duration, and returns that duration.
func (t *Timer) Time(fn func()) time.Duration {
	t.Start()
	fn()
	return t.Stop()
}

// Value returns the last recorded duration, in seconds.
func (t *Timer) Value() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value
}

// Notify sets the timer's recorded value directly, accepting a
// time.Duration or a number of seconds (any numeric Go type).
func (t *Timer) Notify(value interface{}) error {
	seconds, err := toSeconds(value)
	if err != nil {
		return fmt.Errorf("timer: %w: %v", ErrInvalidArgument, err)
	}
	t.mu.Lock()
	t.value = seconds
	t.mu.Unlock()
	return nil
}

// Snapshot implements Instrument.
func (t *Timer) Snapshot() map[string]interface{} {
	return map[string]interface{}{
		"kind":  string(KindTimer),
		"value": t.Value(),
	}
}

// Kind implements Instrument.
func (t *Timer) Kind() Kind { return KindTimer }

func toSeconds(value interface{}) (float64, error) {
	if d, ok := value.(time.Duration); ok {
		return d.Seconds(), nil
	}
	return toFloat64(value)
}
