package metrics

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Registry is a process-wide name→instrument mapping plus a tag index over
// those names. It is the single point of mutation for the instrument set;
// every Instrument's own hot-path state is protected independently, so the
// registry lock is only ever held for the brief window of a map lookup or
// mutation, never across a Notify or Snapshot call.
type Registry struct {
	mu          sync.Mutex
	instruments map[string]Instrument
	tags        map[string]map[string]struct{}

	logger logrus.FieldLogger
	clock  Clock

	invariantReports sync.Map // map[string]*atomic.Int32, rate-limits reportInvariantViolation
}

// maxInvariantReports caps how many times a single (kind, key) pair is
// logged, so a persistent inconsistency doesn't flood the log.
const maxInvariantReports = 10

// reportInvariantViolation logs an unexpected internal state — e.g. a tag
// set referencing a name no longer in the registry — at Warn, up to
// maxInvariantReports times per key. It never panics: these are defensive
// checks against bugs in this package, not caller errors.
func (r *Registry) reportInvariantViolation(kind, key string) {
	reportKey := kind + ":" + key
	v, _ := r.invariantReports.LoadOrStore(reportKey, new(atomic.Int32))
	count := v.(*atomic.Int32).Add(1)
	if count > maxInvariantReports {
		return
	}
	r.logger.WithField("kind", kind).WithField("key", key).Warn("metrics: registry invariant violation")
}

// RegistryOption configures a Registry constructed with NewRegistry.
type RegistryOption func(*Registry)

// WithLogger overrides the logrus.FieldLogger used for diagnostic logging.
// The default discards everything.
func WithLogger(logger logrus.FieldLogger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock overrides the Clock used to construct timers and meters
// registered through this Registry. The default is SystemClock. Tests
// inject a ManualClock. Reservoirs are built by the caller and use the
// Clock given to their own constructor.
func WithClock(clock Clock) RegistryOption {
	return func(r *Registry) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// NewRegistry constructs an empty Registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		instruments: make(map[string]Instrument),
		tags:        make(map[string]map[string]struct{}),
		logger:      newNoopLogger(),
		clock:       SystemClock{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the process-wide default Registry, constructing it on
// first use with no options.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Register installs the instrument returned by constructor under name. It
// fails with ErrDuplicateMetric if name is already bound. Registration is
// atomic: either the instrument is installed and returned, or the error is
// raised and no state changes.
func (r *Registry) Register(name string, constructor func() Instrument) (Instrument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.instruments[name]; ok {
		return nil, fmt.Errorf("metrics: register %q: %w (existing kind %q)", name, ErrDuplicateMetric, existing.Kind())
	}
	inst := constructor()
	r.instruments[name] = inst
	return inst, nil
}

// RegisterCounter registers a new Counter under name.
func (r *Registry) RegisterCounter(name string) (*Counter, error) {
	inst, err := r.Register(name, func() Instrument { return newCounter() })
	if err != nil {
		return nil, err
	}
	return inst.(*Counter), nil
}

// RegisterGauge registers a new Gauge under name.
func (r *Registry) RegisterGauge(name string) (*Gauge, error) {
	inst, err := r.Register(name, func() Instrument { return newGauge() })
	if err != nil {
		return nil, err
	}
	return inst.(*Gauge), nil
}

// RegisterTimer registers a new Timer under name, using the Registry's
// configured Clock.
func (r *Registry) RegisterTimer(name string) (*Timer, error) {
	inst, err := r.Register(name, func() Instrument { return newTimer(r.clock) })
	if err != nil {
		return nil, err
	}
	return inst.(*Timer), nil
}

// RegisterMeter registers a new Meter under name with the default tick
// interval, using the Registry's configured Clock. The meter's background
// ticker starts immediately.
func (r *Registry) RegisterMeter(name string) (*Meter, error) {
	return r.RegisterMeterWithTickInterval(name, defaultMeterTickInterval)
}

// RegisterMeterWithTickInterval is like RegisterMeter but lets the caller
// override the interval at which EWMA rates are folded.
func (r *Registry) RegisterMeterWithTickInterval(name string, tickInterval time.Duration) (*Meter, error) {
	inst, err := r.Register(name, func() Instrument { return newMeter(r.clock, tickInterval) })
	if err != nil {
		return nil, err
	}
	return inst.(*Meter), nil
}

// RegisterHistogram registers a new Histogram under name, backed by the
// given Reservoir.
func (r *Registry) RegisterHistogram(name string, reservoir Reservoir) (*Histogram, error) {
	inst, err := r.Register(name, func() Instrument { return newHistogram(reservoir) })
	if err != nil {
		return nil, err
	}
	return inst.(*Histogram), nil
}

// Lookup returns the instrument bound to name, failing with ErrInvalidMetric
// if none exists.
func (r *Registry) Lookup(name string) (Instrument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, ok := r.instruments[name]
	if !ok {
		return nil, fmt.Errorf("metrics: lookup %q: %w", name, ErrInvalidMetric)
	}
	return inst, nil
}

// Delete removes name, stopping its instrument's background resources (if
// any) and removing it from every tag set. It returns the removed
// instrument, or nil if name was not bound. Delete is idempotent.
func (r *Registry) Delete(name string) Instrument {
	r.mu.Lock()
	inst, ok := r.instruments[name]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	delete(r.instruments, name)
	for _, members := range r.tags {
		delete(members, name)
	}
	r.mu.Unlock()

	inst.shutdown()
	return inst
}

// Names returns every registered name, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.instruments))
	for name := range r.instruments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get looks up name and returns its snapshot.
func (r *Registry) Get(name string) (map[string]interface{}, error) {
	inst, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	return inst.Snapshot(), nil
}

// Notify looks up name and delegates value to its Notify method.
func (r *Registry) Notify(name string, value interface{}) error {
	inst, err := r.Lookup(name)
	if err != nil {
		return err
	}
	return inst.Notify(value)
}

// Tag inserts name into the tagName set, creating the set if it does not
// already exist. It fails with ErrInvalidMetric if name is unknown.
// Tagging an already-tagged name is a no-op.
func (r *Registry) Tag(name, tagName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.instruments[name]; !ok {
		return fmt.Errorf("metrics: tag %q: %w", name, ErrInvalidMetric)
	}
	members, ok := r.tags[tagName]
	if !ok {
		members = make(map[string]struct{})
		r.tags[tagName] = members
	}
	members[name] = struct{}{}
	return nil
}

// TagsSnapshot returns a defensive copy of the tag index: tag name → sorted
// member names. Mutating the result does not affect the registry.
func (r *Registry) TagsSnapshot() map[string][]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string][]string, len(r.tags))
	for tagName, members := range r.tags {
		names := make([]string, 0, len(members))
		for name := range members {
			names = append(names, name)
		}
		sort.Strings(names)
		out[tagName] = names
	}
	return out
}

// ByTag returns the snapshot of every instrument tagged tagName, keyed by
// name. An unknown tag returns an empty map, not an error. Names that are
// deleted between enumeration and lookup are skipped without an error.
func (r *Registry) ByTag(tagName string) map[string]interface{} {
	r.mu.Lock()
	members, ok := r.tags[tagName]
	var names []string
	if ok {
		names = make([]string, 0, len(members))
		for name := range members {
			names = append(names, name)
		}
	}
	r.mu.Unlock()

	out := make(map[string]interface{}, len(names))
	for _, name := range names {
		inst, err := r.Lookup(name)
		if err != nil {
			// The name is gone: either a concurrent Delete removed it
			// after the tag set was enumerated, or a tag set still
			// references a name Delete did not clean up. It is skipped
			// and reported as a diagnostic.
			r.reportInvariantViolation("tag_references_deleted_name", tagName+"/"+name)
			continue
		}
		out[name] = inst.Snapshot()
	}
	return out
}

// Shutdown stops every instrument's background resources and clears the
// registry. It is used at process teardown and between tests.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	instruments := make([]Instrument, 0, len(r.instruments))
	for _, inst := range r.instruments {
		instruments = append(instruments, inst)
	}
	r.instruments = make(map[string]Instrument)
	r.tags = make(map[string]map[string]struct{})
	r.mu.Unlock()

	for _, inst := range instruments {
		inst.shutdown()
	}
}
