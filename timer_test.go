package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimer_StartStop(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	tm := newTimer(clock)

	tm.Start()
	clock.Advance(250 * time.Millisecond)
	elapsed := tm.Stop()

	assert.Equal(t, 250*time.Millisecond, elapsed)
	assert.Equal(t, 0.25, tm.Value())
}

func TestTimer_StopWithoutStartIsNoop(t *testing.T) {
	tm := newTimer(nil)
	assert.Equal(t, time.Duration(0), tm.Stop())
}

func TestTimer_Time(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	tm := newTimer(clock)

	tm.Time(func() {
		clock.Advance(time.Second)
	})
	assert.Equal(t, 1.0, tm.Value())
}

func TestTimer_NotifyAcceptsDurationOrSeconds(t *testing.T) {
	tm := newTimer(nil)
	require.NoError(t, tm.Notify(2*time.Second))
	assert.Equal(t, 2.0, tm.Value())

	require.NoError(t, tm.Notify(1.5))
	assert.Equal(t, 1.5, tm.Value())
}
