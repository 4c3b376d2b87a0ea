package metrics

import "sync"

// Gauge is a point-in-time metric: Notify(v) replaces the stored value
// verbatim. v may be any serializable value and is returned unmodified by
// Snapshot. A Gauge with nothing notified yet snapshots with value nil.
type Gauge struct {
	shutdownNoop

	mu  sync.Mutex
	set bool
	val interface{}
}

func newGauge() *Gauge {
	return &Gauge{}
}

// Notify stores value as the gauge's new current value. Gauge never rejects
// a value; any serializable Go value is accepted.
func (g *Gauge) Notify(value interface{}) error {
	g.mu.Lock()
	g.val = value
	g.set = true
	g.mu.Unlock()
	return nil
}

// Value returns the last notified value and whether one has been set.
func (g *Gauge) Value() (interface{}, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.val, g.set
}

// Snapshot implements Instrument.
func (g *Gauge) Snapshot() map[string]interface{} {
	v, _ := g.Value()
	return map[string]interface{}{
		"kind":  string(KindGauge),
		"value": v,
	}
}

// Kind implements Instrument.
func (g *Gauge) Kind() Kind { return KindGauge }
