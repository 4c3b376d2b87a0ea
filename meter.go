package metrics

import (
	"fmt"
	"math"
	"sync"
	"time"
)

const (
	meter1MinuteTau  = 60.0
	meter5MinuteTau  = 300.0
	meter15MinuteTau = 900.0

	defaultMeterTickInterval = 5 * time.Second
)

// Meter tracks the mean rate and three exponentially-weighted moving
// average rates (1, 5 and 15 minute windows) of a count of events.
type Meter struct {
	mu    sync.Mutex
	clock Clock

	startTime time.Time
	count     int64
	uncounted int64

	ewma1  *ewma
	ewma5  *ewma
	ewma15 *ewma

	tickInterval time.Duration
	done         chan struct{}
	stopOnce     sync.Once
	stopped      chan struct{}
}

// ewma implements the UNIX load-average style exponentially-weighted
// moving average used by most metrics libraries: every tick, the instantaneous rate observed since the last
// tick is blended into the running average with weight alpha = 1 -
// exp(-interval/tau).
type ewma struct {
	alpha   float64
	rate    float64
	primed  bool
}

func newEWMA(tau float64, tickInterval time.Duration) *ewma {
	return &ewma{alpha: 1 - math.Exp(-tickInterval.Seconds()/tau)}
}

// update folds instantRate (events per second since the last tick) into
// the moving average.
func (e *ewma) update(instantRate float64) {
	if !e.primed {
		e.rate = instantRate
		e.primed = true
		return
	}
	e.rate += e.alpha * (instantRate - e.rate)
}

func newMeter(clock Clock, tickInterval time.Duration) *Meter {
	if clock == nil {
		clock = SystemClock{}
	}
	if tickInterval <= 0 {
		tickInterval = defaultMeterTickInterval
	}
	interval := tickInterval
	m := &Meter{
		clock:        clock,
		startTime:    clock.Now(),
		tickInterval: interval,
		ewma1:        newEWMA(meter1MinuteTau, interval),
		ewma5:        newEWMA(meter5MinuteTau, interval),
		ewma15:       newEWMA(meter15MinuteTau, interval),
		done:         make(chan struct{}),
		stopped:      make(chan struct{}),
	}
	go m.tickLoop()
	return m
}

// tickLoop periodically folds the events accumulated since the last tick
// into each EWMA, until shutdown() closes done.
func (m *Meter) tickLoop() {
	defer close(m.stopped)
	for {
		if woken := m.clock.Sleep(m.tickInterval, m.done); woken {
			return
		}
		m.tick()
	}
}

func (m *Meter) tick() {
	m.mu.Lock()
	defer m.mu.Unlock()

	instantRate := float64(m.uncounted) / m.tickInterval.Seconds()
	m.uncounted = 0

	m.ewma1.update(instantRate)
	m.ewma5.update(instantRate)
	m.ewma15.update(instantRate)
}

// Notify implements Instrument. value must coerce to a non-negative
// integer count of events to add (typically 1).
func (m *Meter) Notify(value interface{}) error {
	n, err := toInt64(value)
	if err != nil {
		return fmt.Errorf("meter: %w: %v", ErrInvalidArgument, err)
	}
	if n < 0 {
		return fmt.Errorf("meter: %w: negative count %d", ErrInvalidArgument, n)
	}

	m.mu.Lock()
	m.count += n
	m.uncounted += n
	m.mu.Unlock()
	return nil
}

// Mark is a convenience for Notify(n), matching the vocabulary used by
// most metrics libraries for meter updates.
func (m *Meter) Mark(n int64) error {
	return m.Notify(n)
}

// Count returns the all-time total number of events marked.
func (m *Meter) Count() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

// meanRateLocked returns the average rate of events per second since the meter
// was created. Caller must hold m.mu.
func (m *Meter) meanRateLocked() float64 {
	elapsed := m.clock.Now().Sub(m.startTime).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(m.count) / elapsed
}

// Snapshot implements Instrument.
func (m *Meter) Snapshot() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	return map[string]interface{}{
		"kind":          string(KindMeter),
		"count":         m.count,
		"mean_rate":     m.meanRateLocked(),
		"m1":            m.ewma1.rate,
		"m5":            m.ewma5.rate,
		"m15":           m.ewma15.rate,
		"unit":          "per-second",
		"tick_interval": m.tickInterval.Seconds(),
	}
}

// Kind implements Instrument.
func (m *Meter) Kind() Kind { return KindMeter }

// shutdown stops the background tick goroutine and waits for it to exit.
func (m *Meter) shutdown() {
	m.stopOnce.Do(func() { close(m.done) })
	<-m.stopped
}
