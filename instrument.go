package metrics

// Kind identifies an instrument's variant. It is surfaced verbatim in every
// snapshot under the "kind" key.
type Kind string

const (
	KindCounter   Kind = "counter"
	KindGauge     Kind = "gauge"
	KindTimer     Kind = "timer"
	KindHistogram Kind = "histogram"
	KindMeter     Kind = "meter"
)

// Instrument is the capability set every registered metric implements:
// accept a new sample and produce a serializable snapshot of current state.
// Implementations must be safe for concurrent use.
type Instrument interface {
	// Notify records a new value. The accepted type and its interpretation
	// are instrument-specific (see each concrete type's doc comment).
	Notify(value interface{}) error

	// Snapshot returns a serializable, self-consistent view of the
	// instrument's current state. The returned map is always safe for the
	// caller to mutate or marshal.
	Snapshot() map[string]interface{}

	// Kind reports the instrument's stable variant tag.
	Kind() Kind

	// shutdown releases any background resources (e.g. a Meter's ticker
	// goroutine). It is idempotent and is called by the Registry before a
	// name is removed or on Registry.Shutdown.
	shutdown()
}

// shutdownNoop is embedded by instruments with no background resources.
type shutdownNoop struct{}

func (shutdownNoop) shutdown() {}
