package firmware

import "errors"

// Domain errors for the firmware package.
//
//	if errors.Is(err, firmware.ErrPersistence) {
//	    // in-memory history is intact, the write is retried on the next cycle
//	}
var (
	// ErrPersistence is returned when the store rejects a read or write.
	// Tracker state is never rolled back on this error.
	ErrPersistence = errors.New("firmware: persistence failure")

	// ErrDeviceIDRequired is returned when an operation receives an empty device ID.
	ErrDeviceIDRequired = errors.New("firmware: device id is required")

	// ErrHistoryNotFound is returned when no history exists for a device.
	ErrHistoryNotFound = errors.New("firmware: history not found")
)
