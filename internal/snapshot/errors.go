package snapshot

import "errors"

// Domain errors for the snapshot package.
var (
	// ErrInvalidSnapshot is returned when a snapshot message cannot be decoded.
	ErrInvalidSnapshot = errors.New("snapshot: invalid message")

	// ErrDeviceNotFound is returned when no snapshot is held for a device.
	ErrDeviceNotFound = errors.New("snapshot: device not found")
)
