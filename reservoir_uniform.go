package metrics

import (
	"math/rand"
	"sync"
)

// UniformReservoir implements Vitter's Algorithm R: a fixed-capacity
// uniform random sample over the entire history of added values. After any
// sequence of Add calls, each of the k values seen so far is present in the
// reservoir with probability min(1, capacity/k).
type UniformReservoir struct {
	mu       sync.Mutex
	capacity int
	seen     int64
	samples  []float64
	rng      *rand.Rand
}

// NewUniformReservoir constructs a UniformReservoir with the given capacity.
// A non-positive capacity selects DefaultReservoirSize.
func NewUniformReservoir(capacity int) *UniformReservoir {
	if capacity <= 0 {
		capacity = DefaultReservoirSize
	}
	return &UniformReservoir{
		capacity: capacity,
		samples:  make([]float64, 0, capacity),
		rng:      rand.New(rand.NewSource(rand.Int63())),
	}
}

// Add implements Reservoir.
func (r *UniformReservoir) Add(value float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seen++
	if len(r.samples) < r.capacity {
		r.samples = append(r.samples, value)
		return
	}

	j := r.rng.Int63n(r.seen)
	if j < int64(r.capacity) {
		r.samples[j] = value
	}
}

// Values implements Reservoir.
func (r *UniformReservoir) Values() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]float64, len(r.samples))
	copy(out, r.samples)
	return out
}

// Size implements Reservoir.
func (r *UniformReservoir) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

// Descriptor implements Reservoir.
func (r *UniformReservoir) Descriptor() ReservoirDescriptor {
	return ReservoirDescriptor{
		Kind:   ReservoirUniform,
		Params: map[string]float64{"capacity": float64(r.capacity)},
	}
}
