package metrics

import "errors"

// Sentinel error kinds. Operations wrap these with fmt.Errorf("...: %w", ErrXxx) so
// callers can match with errors.Is while still getting a human-readable diagnostic.
var (
	// ErrDuplicateMetric indicates a name is already bound, or bound to an
	// incompatible instrument kind or configuration.
	ErrDuplicateMetric = errors.New("metrics: duplicate metric")

	// ErrInvalidMetric indicates a name is not bound to any instrument.
	ErrInvalidMetric = errors.New("metrics: invalid metric")

	// ErrInvalidArgument indicates a value could not be coerced for the target
	// instrument, or an unknown reservoir/instrument type was requested.
	ErrInvalidArgument = errors.New("metrics: invalid argument")
)
