package coordinator

import "errors"

// Domain errors for the coordinator package.
var (
	// ErrInvalidThresholds is returned when StaleAfter is not strictly
	// below CriticalAfter or either threshold is not positive.
	ErrInvalidThresholds = errors.New("coordinator: invalid thresholds")

	// ErrNonMonotonic is returned when a status is not newer than the last
	// accepted one. The monitor is left unchanged.
	ErrNonMonotonic = errors.New("coordinator: status observed_at is not after the previous status")

	// ErrInvalidStatus is returned for a status message that cannot be used.
	ErrInvalidStatus = errors.New("coordinator: invalid status")
)
