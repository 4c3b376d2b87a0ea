package metrics

import (
	"fmt"
	"sync"
)

// Counter is a cumulative metric: Notify(v) adds v to the running total. v
// may be negative. The zero value is a counter at 0; a Registry constructs
// one with newCounter.
type Counter struct {
	shutdownNoop

	mu    sync.Mutex
	value int64
}

func newCounter() *Counter {
	return &Counter{}
}

// Notify adds value to the counter. value must be an integer type (any of
// Go's signed or unsigned integer kinds, or a float with no fractional
// part); anything else fails with ErrInvalidArgument.
func (c *Counter) Notify(value interface{}) error {
	delta, err := toInt64(value)
	if err != nil {
		return fmt.Errorf("counter: %w: %v", ErrInvalidArgument, err)
	}

	c.mu.Lock()
	c.value += delta
	c.mu.Unlock()
	return nil
}

// Value returns the current running total.
func (c *Counter) Value() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Snapshot implements Instrument.
func (c *Counter) Snapshot() map[string]interface{} {
	return map[string]interface{}{
		"kind":  string(KindCounter),
		"value": c.Value(),
	}
}

// Kind implements Instrument.
func (c *Counter) Kind() Kind { return KindCounter }

// toInt64 coerces a notify value into an integer delta, per the Notify
// contract shared by Counter.
func toInt64(value interface{}) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case float32:
		return coerceWholeFloat(float64(v))
	case float64:
		return coerceWholeFloat(v)
	default:
		return 0, fmt.Errorf("value %v (%T) is not a number", value, value)
	}
}

func coerceWholeFloat(f float64) (int64, error) {
	i := int64(f)
	if float64(i) != f {
		return 0, fmt.Errorf("value %v has a fractional part", f)
	}
	return i, nil
}
