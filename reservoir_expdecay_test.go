package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExpDecayingReservoir_CapsAtCapacity(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	r := NewExpDecayingReservoir(5, DefaultExpDecayAlpha, clock)

	for i := 0; i < 100; i++ {
		r.Add(float64(i))
		clock.Advance(time.Second)
	}

	assert.Equal(t, 5, r.Size())
	assert.Len(t, r.Values(), 5)
}

func TestExpDecayingReservoir_RescalesWithoutOverflow(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	r := NewExpDecayingReservoir(5, DefaultExpDecayAlpha, clock)

	r.Add(1)
	clock.Advance(3 * defaultRescaleInterval)
	r.Add(2)

	assert.Equal(t, clock.Now(), r.startTime)
	for _, e := range r.entries {
		assert.False(t, math.IsInf(e.priority, 0))
	}
}

func TestExpDecayingReservoir_Descriptor(t *testing.T) {
	r := NewExpDecayingReservoir(100, 0.05, nil)
	d := r.Descriptor()
	assert.Equal(t, ReservoirExpDecaying, d.Kind)
	assert.Equal(t, float64(100), d.Params["capacity"])
	assert.Equal(t, 0.05, d.Params["alpha"])
}
